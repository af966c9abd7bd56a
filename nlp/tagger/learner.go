package tagger

import (
	"strings"

	"github.com/pkg/errors"

	"yasl/alg/kernel"
	"yasl/alg/search"
	"yasl/nlp/types"
	"yasl/util"
)

var (
	ErrNotKernelMethod = errors.New("classifier is not a kernel method")

	// ErrInvalidLabel marks labels that cannot be told apart once joined
	// into a history string.
	ErrInvalidLabel = errors.New("label contains the history delimiter")
)

// Learner turns a corpus of labeled sequences into a flat corpus of
// history-enriched examples and trains the base classifier on it.
type Learner struct {
	BeamSize              int
	MaxEmissionCandidates int

	base    Classifier
	encoder HistoryEncoder
}

// NewLinearLearner enriches the base learner's sparse representation with
// a history feature of the given weight.
func NewLinearLearner(base LinearMethod, window int, weight float64) (*Learner, error) {
	encoder, err := NewExplicitEncoder(base.Representation(), window, weight)
	if err != nil {
		return nil, err
	}
	return newLearner(base, encoder), nil
}

// NewKernelLearner replaces the base learner's kernel K by the normalized
// combination of K and a linear kernel over the history, weighted 1 and
// weight.
func NewKernelLearner(base KernelMethod, window int, weight float64) (*Learner, error) {
	encoder, err := NewKernelEncoder(window, weight)
	if err != nil {
		return nil, err
	}
	if base.Kernel() == nil {
		return nil, errors.Wrap(ErrNotKernelMethod, "base learner has no kernel")
	}
	if window > 0 {
		combination := &kernel.Combination{}
		combination.Add(1, base.Kernel())
		combination.Add(weight, kernel.NewLinear(TransitionRepresentation))
		combination.NormalizeWeights()
		base.SetKernel(combination)
	}
	return newLearner(base, encoder), nil
}

func newLearner(base Classifier, encoder HistoryEncoder) *Learner {
	return &Learner{
		BeamSize:              search.DefaultBeamSize,
		MaxEmissionCandidates: search.DefaultMaxEmissionCandidates,
		base:                  base,
		encoder:               encoder,
	}
}

func (l *Learner) Encoder() HistoryEncoder {
	return l.encoder
}

// Train learns a model from corpus. The returned model owns the trained
// classifier; the learner continues with a fresh duplicate.
func (l *Learner) Train(corpus types.Corpus) (*Model, error) {
	beam := search.Beam{Size: l.BeamSize, MaxCandidates: l.MaxEmissionCandidates}
	if err := beam.Validate(); err != nil {
		return nil, err
	}
	labels := corpus.Labels()
	for _, label := range labels {
		if strings.Contains(string(label), types.SeqDelim) {
			return nil, errors.Wrapf(ErrInvalidLabel, "%q", label)
		}
	}
	l.base.SetLabels(labels)

	flat := make([]*types.Example, 0, corpus.NumExamples())
	for i, seq := range corpus {
		enriched, err := l.encoder.EnrichSequence(seq)
		if err != nil {
			return nil, errors.WithMessagef(err, "sequence %d", i)
		}
		flat = append(flat, enriched.Examples...)
	}
	util.Logger().Infow("Training", "sequences", len(corpus), "examples", len(flat),
		"labels", len(labels), "window", l.encoder.WindowSize())

	if err := l.base.Train(flat); err != nil {
		return nil, errors.WithMessage(err, "training base classifier")
	}
	trained := l.base
	l.base = trained.Duplicate()
	return newModel(trained, l.encoder, beam), nil
}
