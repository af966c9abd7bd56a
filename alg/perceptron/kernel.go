package perceptron

import (
	"math"

	"github.com/pkg/errors"

	"yasl/alg/featurevector"
	"yasl/alg/kernel"
	"yasl/nlp/types"
)

type SupportVector struct {
	Example *types.Example
	Weight  float64
}

// KernelPerceptron is the dual form of the perceptron: the model is a set
// of support vectors and the score of x is sum(w_i * K(sv_i, x)) + b.
type KernelPerceptron struct {
	KernelFunc kernel.Kernel
	Alpha      float64
	Margin     float64
	Unbiased   bool
	Averaged   bool

	SupportVectors []*SupportVector
	Bias           float64

	training   bool
	history    []*featurevector.HistoryValue
	index      map[uint64]int
	biasValue  featurevector.HistoryValue
	generation int
}

var _ KernelBinary = &KernelPerceptron{}

func NewKernelPerceptron(k kernel.Kernel, alpha, margin float64, unbiased, averaged bool) *KernelPerceptron {
	return &KernelPerceptron{
		KernelFunc: k,
		Alpha:      alpha,
		Margin:     margin,
		Unbiased:   unbiased,
		Averaged:   averaged,
	}
}

func (p *KernelPerceptron) Kernel() kernel.Kernel {
	return p.KernelFunc
}

func (p *KernelPerceptron) SetKernel(k kernel.Kernel) {
	p.KernelFunc = k
}

func (p *KernelPerceptron) Score(ex *types.Example) (float64, error) {
	if p.KernelFunc == nil {
		return 0, errors.New("kernel perceptron has no kernel")
	}
	score := p.Bias
	for _, sv := range p.SupportVectors {
		if sv.Weight == 0 {
			continue
		}
		score += sv.Weight * p.KernelFunc.Compute(sv.Example, ex)
	}
	return score, nil
}

func (p *KernelPerceptron) begin() {
	if p.training {
		return
	}
	p.training = true
	p.generation = 0
	p.history = make([]*featurevector.HistoryValue, len(p.SupportVectors))
	p.index = make(map[uint64]int, len(p.SupportVectors))
	for i, sv := range p.SupportVectors {
		p.history[i] = featurevector.NewHistoryValue(0, sv.Weight)
		p.index[sv.Example.ID] = i
	}
	p.biasValue = featurevector.HistoryValue{Value: p.Bias}
}

func (p *KernelPerceptron) Learn(ex *types.Example, positive bool) error {
	score, err := p.Score(ex)
	if err != nil {
		return err
	}
	p.begin()
	if (score > 0) != positive || math.Abs(score) < p.Margin {
		step := p.Alpha * sign(positive)
		i, exists := p.index[ex.ID]
		if !exists {
			i = len(p.SupportVectors)
			p.index[ex.ID] = i
			p.SupportVectors = append(p.SupportVectors, &SupportVector{Example: ex})
			p.history = append(p.history, featurevector.NewHistoryValue(p.generation, 0))
		}
		p.history[i].Add(p.generation, step)
		p.SupportVectors[i].Weight = p.history[i].Value
		if !p.Unbiased {
			p.biasValue.Add(p.generation, step)
			p.Bias = p.biasValue.Value
		}
	}
	p.generation++
	return nil
}

// Finalize applies the update strategy and drops support vectors whose
// final weight is zero.
func (p *KernelPerceptron) Finalize() {
	if !p.training {
		return
	}
	strategy := strategyFor(p.Averaged)
	kept := p.SupportVectors[:0]
	for i, sv := range p.SupportVectors {
		sv.Weight = strategy.Value(p.history[i], p.generation)
		if sv.Weight != 0 {
			kept = append(kept, sv)
		}
	}
	p.SupportVectors = kept
	p.Bias = strategy.Value(&p.biasValue, p.generation)
	p.training = false
	p.history = nil
	p.index = nil
}

func (p *KernelPerceptron) Reset() {
	p.SupportVectors = nil
	p.Bias = 0
	p.training = false
	p.history = nil
	p.index = nil
}

func (p *KernelPerceptron) Copy() Binary {
	return NewKernelPerceptron(p.KernelFunc, p.Alpha, p.Margin, p.Unbiased, p.Averaged)
}
