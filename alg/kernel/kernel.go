// Package kernel holds similarity functions between examples for the
// kernelized learners.
package kernel

import (
	"encoding/gob"
	"fmt"
	"strings"

	"yasl/nlp/types"
)

func init() {
	gob.Register(&Linear{})
	gob.Register(&Combination{})
	gob.Register(&Cached{})
}

type Kernel interface {
	Compute(a, b *types.Example) float64
	String() string
}

// Linear is the dot product of one named representation; examples missing
// it contribute 0.
type Linear struct {
	Representation string
}

var _ Kernel = &Linear{}

func NewLinear(representation string) *Linear {
	return &Linear{Representation: representation}
}

func (k *Linear) Compute(a, b *types.Example) float64 {
	va, existsA := a.Representation(k.Representation)
	vb, existsB := b.Representation(k.Representation)
	if !existsA || !existsB {
		return 0
	}
	return va.Dot(vb)
}

func (k *Linear) String() string {
	return "linear(" + k.Representation + ")"
}

// Combination is a weighted sum of kernels.
type Combination struct {
	Kernels []Kernel
	Weights []float64
}

var _ Kernel = &Combination{}

func (k *Combination) Add(weight float64, kernel Kernel) {
	k.Kernels = append(k.Kernels, kernel)
	k.Weights = append(k.Weights, weight)
}

// NormalizeWeights rescales the weights to sum to 1.
func (k *Combination) NormalizeWeights() {
	var sum float64
	for _, w := range k.Weights {
		sum += w
	}
	if sum == 0 {
		return
	}
	for i := range k.Weights {
		k.Weights[i] /= sum
	}
}

func (k *Combination) Compute(a, b *types.Example) float64 {
	var result float64
	for i, kernel := range k.Kernels {
		if k.Weights[i] == 0 {
			continue
		}
		result += k.Weights[i] * kernel.Compute(a, b)
	}
	return result
}

func (k *Combination) String() string {
	parts := make([]string, len(k.Kernels))
	for i, kernel := range k.Kernels {
		parts[i] = fmt.Sprintf("%g*%v", k.Weights[i], kernel)
	}
	return strings.Join(parts, " + ")
}
