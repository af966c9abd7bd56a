package tagger

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"yasl/alg/search"
	"yasl/nlp/types"
	"yasl/util"
)

// Model pairs a trained classifier with the encoder it was trained with.
// It is built once and never modified.
type Model struct {
	classifier Classifier
	encoder    HistoryEncoder
	beam       search.Beam
}

func newModel(classifier Classifier, encoder HistoryEncoder, beam search.Beam) *Model {
	return &Model{classifier: classifier, encoder: encoder, beam: beam}
}

func (m *Model) Classifier() Classifier {
	return m.classifier
}

func (m *Model) Encoder() HistoryEncoder {
	return m.encoder
}

func (m *Model) Labels() []types.Label {
	return m.classifier.Labels()
}

func (m *Model) Beam() search.Beam {
	return m.beam
}

// WithBeam returns a model sharing classifier and encoder that decodes
// with beam.
func (m *Model) WithBeam(beam search.Beam) (*Model, error) {
	if err := beam.Validate(); err != nil {
		return nil, err
	}
	return newModel(m.classifier, m.encoder, beam), nil
}

// Decode labels seq. Each hypothesis is enriched with its own history.
func (m *Model) Decode(seq *types.Sequence) (*search.Prediction, error) {
	paths, err := m.beam.Search(seq.Len(), &emitter{model: m, seq: seq})
	if err != nil {
		return nil, err
	}
	util.Logger().Debugw("Decoded sequence", "length", seq.Len(), "paths", len(paths))
	return &search.Prediction{Paths: paths}, nil
}

// DecodeAll decodes the corpus with up to workers sequences in flight.
// Predictions of failed sequences are nil; their errors are combined.
func (m *Model) DecodeAll(corpus types.Corpus, workers int) ([]*search.Prediction, error) {
	predictions := make([]*search.Prediction, len(corpus))
	errs := make([]error, len(corpus))
	var g errgroup.Group
	g.SetLimit(util.Max(workers, 1))
	for i, seq := range corpus {
		g.Go(func() error {
			prediction, err := m.Decode(seq)
			if err != nil {
				errs[i] = errors.WithMessagef(err, "sequence %d", i)
				return nil
			}
			predictions[i] = prediction
			return nil
		})
	}
	_ = g.Wait()
	return predictions, multierr.Combine(errs...)
}

type emitter struct {
	model *Model
	seq   *types.Sequence
}

var _ search.Emitter = &emitter{}

func (e *emitter) Emit(p *search.Path, position int) ([]search.Emission, error) {
	history := p.HistoryBefore(position, e.model.encoder.WindowSize())
	enriched, err := e.model.encoder.Enrich(e.seq.Example(position), history)
	if err != nil {
		return nil, err
	}
	scores, err := e.model.classifier.Predict(enriched)
	if err != nil {
		return nil, err
	}
	labels := e.model.classifier.Labels()
	raw := make([]float64, len(labels))
	for i, label := range labels {
		raw[i] = scores[label]
	}
	emissions := make([]search.Emission, len(labels))
	for i, prob := range search.Softmax(raw) {
		emissions[i] = search.Emission{Label: labels[i], Probability: prob}
	}
	return emissions, nil
}

func (e *emitter) Branching() bool {
	return e.model.encoder.WindowSize() > 0
}
