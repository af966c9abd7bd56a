// Package tagger labels sequences with a single-item classifier whose
// examples are enriched with the labels of the preceding positions.
package tagger

import (
	"yasl/alg/kernel"
	"yasl/nlp/types"
)

// Classifier is the multiclass learner the tagger wraps. Predict returns a
// score per label; higher is better and scores need not be normalized.
type Classifier interface {
	SetLabels(labels []types.Label)
	Labels() []types.Label
	Train(examples []*types.Example) error
	Predict(ex *types.Example) (map[types.Label]float64, error)
	// Duplicate returns an untrained classifier with the same parameters.
	Duplicate() Classifier
	Reset()
}

// LinearMethod learns over one sparse representation.
type LinearMethod interface {
	Classifier
	Representation() string
}

// KernelMethod learns through a kernel between examples.
type KernelMethod interface {
	Classifier
	Kernel() kernel.Kernel
	SetKernel(kernel.Kernel)
}
