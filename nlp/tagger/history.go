package tagger

import (
	"encoding/gob"
	"strings"

	"github.com/pkg/errors"

	"yasl/alg/featurevector"
	"yasl/nlp/types"
)

func init() {
	gob.Register(&ExplicitEncoder{})
	gob.Register(&KernelEncoder{})
}

// TransitionRepresentation holds the history of kernel-encoded examples.
const TransitionRepresentation = "__trans_rep__"

var (
	ErrNotSparse             = errors.New("representation is not sparse")
	ErrMissingRepresentation = errors.New("missing representation")
	ErrNegativeWindow        = errors.New("negative history window")
	ErrMissingGoldLabel      = errors.New("missing gold label")
)

// HistoryEncoder adds the labels of the preceding positions to an example.
// Implementations never modify their inputs.
type HistoryEncoder interface {
	// Enrich returns a new example carrying history.
	Enrich(ex *types.Example, history []string) (*types.Example, error)
	// EnrichSequence enriches every position with the gold history.
	EnrichSequence(seq *types.Sequence) (*types.Sequence, error)
	WindowSize() int
}

// HistoryBefore returns the window labels preceding position, oldest
// first; positions before the start are named "<j>init".
func HistoryBefore(labels []types.Label, position, window int) []string {
	return types.HistoryTokens(labels, position, window)
}

// HistoryString joins history tokens into a single feature name.
func HistoryString(history []string) string {
	var b strings.Builder
	for _, token := range history {
		b.WriteString(types.SeqDelim)
		b.WriteString(token)
	}
	return b.String()
}

func enrichSequence(e HistoryEncoder, seq *types.Sequence) (*types.Sequence, error) {
	window := e.WindowSize()
	enriched := seq.Duplicate()
	var gold types.Labels
	if window > 0 {
		gold = make(types.Labels, enriched.Len())
		for i, ex := range enriched.Examples {
			label, exists := ex.GoldLabel()
			if !exists {
				return nil, errors.Wrapf(ErrMissingGoldLabel, "position %d", i)
			}
			gold[i] = label
		}
	}
	for i, ex := range enriched.Examples {
		var err error
		enriched.Examples[i], err = e.Enrich(ex, HistoryBefore(gold, i, window))
		if err != nil {
			return nil, errors.WithMessagef(err, "position %d", i)
		}
	}
	return enriched, nil
}

// ExplicitEncoder adds the history as one feature of a sparse
// representation, valued Weight.
type ExplicitEncoder struct {
	Representation string
	Window         int
	Weight         float64
}

var _ HistoryEncoder = &ExplicitEncoder{}

func NewExplicitEncoder(representation string, window int, weight float64) (*ExplicitEncoder, error) {
	if window < 0 {
		return nil, errors.Wrapf(ErrNegativeWindow, "got %d", window)
	}
	return &ExplicitEncoder{Representation: representation, Window: window, Weight: weight}, nil
}

func (e *ExplicitEncoder) WindowSize() int {
	return e.Window
}

func (e *ExplicitEncoder) Enrich(ex *types.Example, history []string) (*types.Example, error) {
	enriched := ex.Shallow()
	if e.Window == 0 {
		return enriched, nil
	}
	vec, exists := ex.Representation(e.Representation)
	if !exists {
		return nil, errors.Wrapf(ErrMissingRepresentation, "%q", e.Representation)
	}
	sparse, ok := vec.(featurevector.Sparse)
	if !ok {
		return nil, errors.Wrapf(ErrNotSparse, "representation %q is %v", e.Representation, vec.Kind())
	}
	copied := sparse.CopySparse()
	copied[HistoryString(history)] += e.Weight
	enriched.AddRepresentation(e.Representation, copied)
	return enriched, nil
}

func (e *ExplicitEncoder) EnrichSequence(seq *types.Sequence) (*types.Sequence, error) {
	return enrichSequence(e, seq)
}

// KernelEncoder writes the history into TransitionRepresentation; the
// learner's kernel is extended with a linear kernel over it.
type KernelEncoder struct {
	Window int
	Weight float64
}

var _ HistoryEncoder = &KernelEncoder{}

func NewKernelEncoder(window int, weight float64) (*KernelEncoder, error) {
	if window < 0 {
		return nil, errors.Wrapf(ErrNegativeWindow, "got %d", window)
	}
	return &KernelEncoder{Window: window, Weight: weight}, nil
}

func (e *KernelEncoder) WindowSize() int {
	return e.Window
}

func (e *KernelEncoder) Enrich(ex *types.Example, history []string) (*types.Example, error) {
	enriched := ex.Shallow()
	if e.Window > 0 {
		enriched.AddRepresentation(TransitionRepresentation, featurevector.Sparse{HistoryString(history): 1})
	}
	return enriched, nil
}

func (e *KernelEncoder) EnrichSequence(seq *types.Sequence) (*types.Sequence, error) {
	return enrichSequence(e, seq)
}
