package perceptron

import (
	"math"

	"github.com/pkg/errors"

	"yasl/alg/featurevector"
	"yasl/nlp/types"
)

// LinearWeights is the sparse weight vector shared by the linear learners.
// Weights always holds the current vector; during training the averaging
// history is kept alongside it.
type LinearWeights struct {
	RepName  string
	Unbiased bool
	Averaged bool

	Weights featurevector.Sparse
	Bias    float64

	history    *featurevector.AvgSparse
	biasValue  featurevector.HistoryValue
	generation int
}

func (w *LinearWeights) Representation() string {
	return w.RepName
}

func (w *LinearWeights) features(ex *types.Example) (featurevector.Sparse, error) {
	vec, exists := ex.Representation(w.RepName)
	if !exists {
		return nil, errors.Wrapf(ErrRepresentation, "example %d has no representation %q", ex.ID, w.RepName)
	}
	sparse, ok := vec.(featurevector.Sparse)
	if !ok {
		return nil, errors.Wrapf(ErrRepresentation, "representation %q is %v, linear learners need sparse", w.RepName, vec.Kind())
	}
	return sparse, nil
}

func (w *LinearWeights) score(x featurevector.Sparse) float64 {
	return w.Weights.Dot(x) + w.Bias
}

func (w *LinearWeights) Score(ex *types.Example) (float64, error) {
	x, err := w.features(ex)
	if err != nil {
		return 0, err
	}
	return w.score(x), nil
}

func (w *LinearWeights) begin() {
	if w.history != nil {
		return
	}
	if w.Weights == nil {
		w.Weights = featurevector.NewSparse()
	}
	w.history = featurevector.NewAvgSparse()
	w.history.AddScaled(0, w.Weights, 1)
	w.biasValue = featurevector.HistoryValue{Value: w.Bias}
	w.generation = 0
}

func (w *LinearWeights) update(x featurevector.Sparse, step float64) {
	w.Weights.UpdateAddScaled(x, step)
	w.history.AddScaled(w.generation, x, step)
	if !w.Unbiased {
		w.biasValue.Add(w.generation, step)
		w.Bias = w.biasValue.Value
	}
}

func (w *LinearWeights) Finalize() {
	if w.history == nil {
		return
	}
	strategy := strategyFor(w.Averaged)
	w.Weights = strategy.Weights(w.history, w.generation)
	w.Bias = strategy.Value(&w.biasValue, w.generation)
	w.history = nil
}

func (w *LinearWeights) Reset() {
	w.Weights = nil
	w.Bias = 0
	w.history = nil
	w.generation = 0
}

// LinearPerceptron updates w += alpha*y*x whenever an example is
// misclassified or scored inside the margin.
type LinearPerceptron struct {
	LinearWeights
	Alpha  float64
	Margin float64
}

var _ LinearBinary = &LinearPerceptron{}

func NewLinearPerceptron(representation string, alpha, margin float64, unbiased, averaged bool) *LinearPerceptron {
	return &LinearPerceptron{
		LinearWeights: LinearWeights{RepName: representation, Unbiased: unbiased, Averaged: averaged},
		Alpha:         alpha,
		Margin:        margin,
	}
}

func (p *LinearPerceptron) Learn(ex *types.Example, positive bool) error {
	x, err := p.features(ex)
	if err != nil {
		return err
	}
	p.begin()
	score := p.score(x)
	if (score > 0) != positive || math.Abs(score) < p.Margin {
		p.update(x, p.Alpha*sign(positive))
	}
	p.generation++
	return nil
}

func (p *LinearPerceptron) Copy() Binary {
	return NewLinearPerceptron(p.RepName, p.Alpha, p.Margin, p.Unbiased, p.Averaged)
}
