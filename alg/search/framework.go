// Package search holds the beam search used to decode label sequences.
package search

import (
	"github.com/pkg/errors"

	"yasl/nlp/types"
)

const (
	DefaultBeamSize              = 20
	DefaultMaxEmissionCandidates = 5
)

var (
	ErrNoEmissions = errors.New("no emissions")
	ErrInvalidBeam = errors.New("invalid beam")
)

// Emission is one candidate label for a position with its probability.
type Emission struct {
	Label       types.Label
	Probability float64
}

// Emitter produces the candidate labels of a position given the hypothesis
// that reached it. Emit may be called concurrently for different paths.
type Emitter interface {
	Emit(p *Path, position int) ([]Emission, error)
	// Branching is false when emissions cannot depend on history; each
	// hypothesis then keeps only its single best emission.
	Branching() bool
}

// Prediction holds the retained hypotheses, best first.
type Prediction struct {
	Paths []*Path
}

func (p *Prediction) Len() int {
	return len(p.Paths)
}

// BestPath is nil for an empty prediction.
func (p *Prediction) BestPath() *Path {
	if len(p.Paths) == 0 {
		return nil
	}
	return p.Paths[0]
}
