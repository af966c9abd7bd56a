// Package perceptron holds the online learners the tagger trains: binary
// linear and kernel perceptrons, passive-aggressive, and a one-vs-all
// wrapper that turns any of them into a multiclass classifier.
package perceptron

import (
	"encoding/gob"

	"github.com/pkg/errors"

	"yasl/alg/kernel"
	"yasl/nlp/types"
)

func init() {
	gob.Register(&LinearPerceptron{})
	gob.Register(&PassiveAggressive{})
	gob.Register(&KernelPerceptron{})
	gob.Register(&OneVsAll{})
	gob.Register(&KernelOneVsAll{})
}

var (
	ErrRepresentation = errors.New("unusable representation")
	ErrNoLabels       = errors.New("no labels set")
)

// Binary is an online two-class learner. Score is positive for the
// positive class.
type Binary interface {
	Learn(ex *types.Example, positive bool) error
	Score(ex *types.Example) (float64, error)
	// Finalize ends a training run, applying the update strategy.
	Finalize()
	// Copy returns an untrained learner with the same parameters.
	Copy() Binary
	Reset()
}

type LinearBinary interface {
	Binary
	Representation() string
}

type KernelBinary interface {
	Binary
	Kernel() kernel.Kernel
	SetKernel(kernel.Kernel)
}

func sign(positive bool) float64 {
	if positive {
		return 1
	}
	return -1
}
