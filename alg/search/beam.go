package search

import (
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"yasl/util"
)

// AgendaOut logs every agenda after pruning.
var AgendaOut bool = false

// Beam keeps the Size best hypotheses after each position. Every
// hypothesis branches into at most MaxCandidates emissions.
type Beam struct {
	Size          int
	MaxCandidates int

	// Concurrent expands the hypotheses of a position in parallel; the
	// result is the same as sequential expansion.
	Concurrent bool
	Metrics    *Metrics
}

func NewBeam() *Beam {
	return &Beam{Size: DefaultBeamSize, MaxCandidates: DefaultMaxEmissionCandidates}
}

func (b *Beam) Validate() error {
	if b.Size < 1 {
		return errors.Wrapf(ErrInvalidBeam, "beam size must be >= 1, got %d", b.Size)
	}
	if b.MaxCandidates < 1 {
		return errors.Wrapf(ErrInvalidBeam, "max emission candidates must be >= 1, got %d", b.MaxCandidates)
	}
	return nil
}

// Search decodes length positions and returns the retained paths, best
// first. A zero length yields one empty path.
func (b *Beam) Search(length int, e Emitter) ([]*Path, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	agenda := []*Path{NewPath()}
	for position := 0; position < length; position++ {
		// each hypothesis fills only its own slot
		tempAgendas := make([][]*Path, len(agenda))
		if b.Concurrent && len(agenda) > 1 {
			var g errgroup.Group
			for i, candidate := range agenda {
				g.Go(func() error {
					var err error
					tempAgendas[i], err = b.Expand(candidate, position, e)
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return nil, err
			}
		} else {
			for i, candidate := range agenda {
				var err error
				if tempAgendas[i], err = b.Expand(candidate, position, e); err != nil {
					return nil, err
				}
			}
		}
		agenda = b.Insert(tempAgendas)
		if AgendaOut {
			util.Logger().Debugw("Agenda", "position", position, "size", len(agenda), "best", agenda[0])
		}
	}
	b.Metrics.observeSequence()
	return agenda, nil
}

// Expand returns the children of one hypothesis at position.
func (b *Beam) Expand(candidate *Path, position int, e Emitter) ([]*Path, error) {
	emissions, err := e.Emit(candidate, position)
	if err != nil {
		return nil, errors.WithMessagef(err, "position %d", position)
	}
	if len(emissions) == 0 {
		return nil, errors.Wrapf(ErrNoEmissions, "position %d", position)
	}
	sorted := make([]Emission, len(emissions))
	copy(sorted, emissions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Probability > sorted[j].Probability
	})
	branches := 1
	if e.Branching() {
		branches = util.Min(b.MaxCandidates, len(sorted))
	}
	children := make([]*Path, branches)
	for i, emission := range sorted[:branches] {
		children[i] = candidate.Append(emission.Label, emission.Probability)
	}
	return children, nil
}

// Insert pools the children in hypothesis order, sorts them by score
// keeping production order among ties, and prunes to the beam size.
func (b *Beam) Insert(tempAgendas [][]*Path) []*Path {
	var generated int
	for _, children := range tempAgendas {
		generated += len(children)
	}
	pool := make([]*Path, 0, generated)
	for _, children := range tempAgendas {
		pool = append(pool, children...)
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score() > pool[j].Score()
	})
	if len(pool) > b.Size {
		pool = pool[:b.Size]
	}
	b.Metrics.observePosition(generated, len(pool))
	return pool
}
