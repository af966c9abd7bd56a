package tagger

import (
	"github.com/pkg/errors"

	"yasl/alg/search"
)

// Serialized is the gob form of a Model. Classifier and Encoder must be
// registered with encoding/gob.
type Serialized struct {
	Classifier            Classifier
	Encoder               HistoryEncoder
	BeamSize              int
	MaxEmissionCandidates int
}

func Serialize(m *Model) *Serialized {
	return &Serialized{
		Classifier:            m.classifier,
		Encoder:               m.encoder,
		BeamSize:              m.beam.Size,
		MaxEmissionCandidates: m.beam.MaxCandidates,
	}
}

func Deserialize(s *Serialized) (*Model, error) {
	if s.Classifier == nil {
		return nil, errors.New("serialized model has no classifier")
	}
	if s.Encoder == nil {
		return nil, errors.New("serialized model has no encoder")
	}
	if _, kernelEncoded := s.Encoder.(*KernelEncoder); kernelEncoded {
		if _, ok := s.Classifier.(KernelMethod); !ok {
			return nil, errors.Wrapf(ErrNotKernelMethod, "kernel encoder with %T", s.Classifier)
		}
	}
	beam := search.Beam{Size: s.BeamSize, MaxCandidates: s.MaxEmissionCandidates}
	if err := beam.Validate(); err != nil {
		return nil, err
	}
	return newModel(s.Classifier, s.Encoder, beam), nil
}
