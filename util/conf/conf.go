package conf

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	EncoderExplicit = "explicit"
	EncoderKernel   = "kernel"

	AlgPerceptron        = "perceptron"
	AlgPassiveAggressive = "pa"
	AlgKernelPerceptron  = "kperceptron"
)

var ErrInvalid = errors.New("invalid configuration")

type Learner struct {
	Algorithm  string  `yaml:"algorithm"`
	Iterations int     `yaml:"iterations"`
	Alpha      float64 `yaml:"alpha"`
	Margin     float64 `yaml:"margin"`
	C          float64 `yaml:"c"`
	Unbiased   bool    `yaml:"unbiased"`
	Averaged   bool    `yaml:"averaged"`
	Seed       uint64  `yaml:"seed"`
	Cache      bool    `yaml:"cache"`

	// CacheSize bounds the kernel cache entries; 0 selects the default.
	CacheSize int `yaml:"cache_size"`
}

// Conf holds every option the train and tag commands recognize. Zero
// values are replaced by Defaults() when read through Read or ReadFile.
type Conf struct {
	Order                 int     `yaml:"order"`
	TransitionWeight      float64 `yaml:"transition_weight"`
	BeamSize              int     `yaml:"beam_size"`
	MaxEmissionCandidates int     `yaml:"max_emission_candidates"`
	Encoder               string  `yaml:"encoder"`
	Representation        string  `yaml:"representation"`
	Learner               Learner `yaml:"learner"`
}

func Defaults() *Conf {
	return &Conf{
		Order:                 1,
		TransitionWeight:      1,
		BeamSize:              20,
		MaxEmissionCandidates: 5,
		Encoder:               EncoderExplicit,
		Representation:        "rep",
		Learner: Learner{
			Algorithm:  AlgPerceptron,
			Iterations: 10,
			Alpha:      1,
			Margin:     1,
			C:          1,
			Averaged:   true,
			Seed:       1,
			Cache:      true,
			CacheSize:  100000,
		},
	}
}

func Read(reader io.Reader) (*Conf, error) {
	c := Defaults()
	dec := yaml.NewDecoder(reader)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decoding configuration")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func ReadFile(filename string) (*Conf, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Read(file)
}

func (c *Conf) Write(writer io.Writer) error {
	enc := yaml.NewEncoder(writer)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

func (c *Conf) Validate() error {
	switch {
	case c.Order < 0:
		return errors.Wrapf(ErrInvalid, "order must be >= 0, got %d", c.Order)
	case c.BeamSize < 1:
		return errors.Wrapf(ErrInvalid, "beam_size must be >= 1, got %d", c.BeamSize)
	case c.MaxEmissionCandidates < 1:
		return errors.Wrapf(ErrInvalid, "max_emission_candidates must be >= 1, got %d", c.MaxEmissionCandidates)
	case c.Representation == "":
		return errors.Wrap(ErrInvalid, "representation must be set")
	case c.Learner.CacheSize < 0:
		return errors.Wrapf(ErrInvalid, "learner.cache_size must be >= 0, got %d", c.Learner.CacheSize)
	case c.Learner.Iterations < 1:
		return errors.Wrapf(ErrInvalid, "learner.iterations must be >= 1, got %d", c.Learner.Iterations)
	}
	switch c.Encoder {
	case EncoderExplicit:
		if c.Learner.Algorithm == AlgKernelPerceptron {
			return errors.Wrap(ErrInvalid, "explicit encoder needs a linear learner")
		}
	case EncoderKernel:
		if c.Learner.Algorithm != AlgKernelPerceptron {
			return errors.Wrapf(ErrInvalid, "kernel encoder needs a kernel learner, got %q", c.Learner.Algorithm)
		}
	default:
		return errors.Wrapf(ErrInvalid, "unknown encoder %q", c.Encoder)
	}
	switch c.Learner.Algorithm {
	case AlgPerceptron, AlgPassiveAggressive, AlgKernelPerceptron:
	default:
		return errors.Wrapf(ErrInvalid, "unknown learner algorithm %q", c.Learner.Algorithm)
	}
	return nil
}
