package perceptron

import (
	"math"

	"yasl/nlp/types"
)

// PassiveAggressive is the PA-I learner: on hinge loss it moves the
// weights just far enough to fix the example, with the step capped by C.
type PassiveAggressive struct {
	LinearWeights
	C float64
}

var _ LinearBinary = &PassiveAggressive{}

func NewPassiveAggressive(representation string, c float64, unbiased, averaged bool) *PassiveAggressive {
	return &PassiveAggressive{
		LinearWeights: LinearWeights{RepName: representation, Unbiased: unbiased, Averaged: averaged},
		C:             c,
	}
}

func (p *PassiveAggressive) Learn(ex *types.Example, positive bool) error {
	x, err := p.features(ex)
	if err != nil {
		return err
	}
	p.begin()
	y := sign(positive)
	if loss := 1 - y*p.score(x); loss > 0 {
		norm := x.SquaredNorm()
		if !p.Unbiased {
			// the bias is a constant feature of value 1
			norm++
		}
		if norm > 0 {
			p.update(x, y*math.Min(p.C, loss/norm))
		}
	}
	p.generation++
	return nil
}

func (p *PassiveAggressive) Copy() Binary {
	return NewPassiveAggressive(p.RepName, p.C, p.Unbiased, p.Averaged)
}
