package app

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/pkg/errors"

	"yasl/alg/kernel"
	"yasl/alg/perceptron"
	"yasl/nlp/format/seqcorpus"
	"yasl/nlp/format/taggedsentence"
	"yasl/nlp/tagger"
	"yasl/nlp/types"
	"yasl/util"
	"yasl/util/conf"
)

func init() {
	gob.Register(&Serialization{})
}

const (
	FormatSequence = "seq"
	FormatTagged   = "tagged"
)

var (
	allOut bool = false

	// processing options
	Order, BeamSize, MaxCandidates int
	TransitionWeight               float64
	Encoder                        string
	ConcurrentBeam                 bool
	Workers                        int

	// file names
	input      string
	output     string
	modelFile  string
	confFile   string
	dumpConf   string
	format     string
	metricAddr string
)

// Serialization is the model file: the tagger model and the configuration
// it was trained with.
type Serialization struct {
	Model *tagger.Serialized
	Conf  *conf.Conf
}

func WriteModel(file string, data *Serialization) error {
	fObj, err := os.Create(file)
	if err != nil {
		return errors.Wrapf(err, "creating model file %s", file)
	}
	defer fObj.Close()
	writer := gob.NewEncoder(fObj)
	if err := writer.Encode(data); err != nil {
		return errors.Wrapf(err, "encoding model to %s", file)
	}
	return fObj.Close()
}

func ReadModel(file string) (*Serialization, error) {
	data := &Serialization{}
	fObj, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "reading model from %s", file)
	}
	defer fObj.Close()
	reader := gob.NewDecoder(fObj)
	if err := reader.Decode(data); err != nil {
		return nil, errors.Wrapf(err, "decoding model from %s", file)
	}
	if data.Model == nil {
		return nil, errors.Errorf("model file %s has no model", file)
	}
	return data, nil
}

func VerifyExists(filename string) bool {
	if !util.Exists(filename) {
		util.Logger().Errorw("File does not exist", "file", filename)
		return false
	}
	return true
}

func VerifyFlags(cmd *commander.Command, required []string) error {
	for _, flagName := range required {
		f := cmd.Flag.Lookup(flagName)
		if f == nil || f.Value.String() == "" {
			return fmt.Errorf("required flag %s not set", flagName)
		}
	}
	return nil
}

// flagsSet returns the names of the flags given on the command line.
func flagsSet(cmd *commander.Command) map[string]bool {
	set := make(map[string]bool)
	cmd.Flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}

func addInputFlags(cmd *commander.Command) {
	cmd.Flag.StringVar(&input, "in", "", "Input corpus (.gz is decompressed)")
	cmd.Flag.StringVar(&format, "format", FormatSequence, "Input format: seq (|BV: vectors) or tagged (word/TAG lines)")
}

func addModelFlags(cmd *commander.Command) {
	cmd.Flag.IntVar(&Order, "order", 1, "History window size")
	cmd.Flag.StringVar(&Encoder, "encoder", conf.EncoderExplicit, "History encoder: explicit or kernel")
	cmd.Flag.IntVar(&BeamSize, "beam", 20, "Beam size")
	cmd.Flag.IntVar(&MaxCandidates, "cand", 5, "Maximum emission candidates per hypothesis")
}

// applyFlags overrides the configuration with the model flags given on the
// command line.
func applyFlags(cmd *commander.Command, c *conf.Conf) error {
	set := flagsSet(cmd)
	if set["order"] {
		c.Order = Order
	}
	if set["encoder"] {
		c.Encoder = Encoder
	}
	if set["beam"] {
		c.BeamSize = BeamSize
	}
	if set["cand"] {
		c.MaxEmissionCandidates = MaxCandidates
	}
	if set["weight"] {
		c.TransitionWeight = TransitionWeight
	}
	return c.Validate()
}

// ReadCorpus reads a labeled or unlabeled corpus in the given format.
// Tagged sentences are returned alongside so output can be written in the
// same format.
func ReadCorpus(filename, corpusFormat string, tagged bool) (types.Corpus, []taggedsentence.Sentence, error) {
	switch corpusFormat {
	case FormatSequence:
		corpus, err := seqcorpus.ReadFile(filename)
		return corpus, nil, err
	case FormatTagged:
		sents, err := taggedsentence.ReadFile(filename, tagged)
		if err != nil {
			return nil, nil, err
		}
		return taggedsentence.Corpus(sents), sents, nil
	default:
		return nil, nil, errors.Errorf("unknown corpus format %q", corpusFormat)
	}
}

// NewLearner builds the base classifier named by the configuration and
// wraps it in the learner for the configured encoder.
func NewLearner(c *conf.Conf) (*tagger.Learner, error) {
	l := c.Learner
	var (
		learner *tagger.Learner
		err     error
	)
	switch l.Algorithm {
	case conf.AlgPerceptron:
		base := perceptron.NewLinearPerceptron(c.Representation, l.Alpha, l.Margin, l.Unbiased, l.Averaged)
		learner, err = tagger.NewLinearLearner(perceptron.NewOneVsAll(base, l.Iterations, l.Seed), c.Order, c.TransitionWeight)
	case conf.AlgPassiveAggressive:
		base := perceptron.NewPassiveAggressive(c.Representation, l.C, l.Unbiased, l.Averaged)
		learner, err = tagger.NewLinearLearner(perceptron.NewOneVsAll(base, l.Iterations, l.Seed), c.Order, c.TransitionWeight)
	case conf.AlgKernelPerceptron:
		base := perceptron.NewKernelPerceptron(kernel.NewLinear(c.Representation), l.Alpha, l.Margin, l.Unbiased, l.Averaged)
		ova := perceptron.NewKernelOneVsAll(base, l.Iterations, l.Seed)
		learner, err = tagger.NewKernelLearner(ova, c.Order, c.TransitionWeight)
		if err == nil && l.Cache {
			ova.SetKernel(kernel.NewCachedSize(ova.Kernel(), l.CacheSize))
		}
	default:
		return nil, errors.Wrapf(conf.ErrInvalid, "unknown learner algorithm %q", l.Algorithm)
	}
	if err != nil {
		return nil, err
	}
	learner.BeamSize = c.BeamSize
	learner.MaxEmissionCandidates = c.MaxEmissionCandidates
	return learner, nil
}

// encoderMismatch reports the stored encoder settings that differ from
// the ones given on the command line.
func encoderMismatch(cmd *commander.Command, e tagger.HistoryEncoder) []interface{} {
	set := flagsSet(cmd)
	var fields []interface{}
	if set["order"] && Order != e.WindowSize() {
		fields = append(fields, "order", Order, "stored order", e.WindowSize())
	}
	if set["encoder"] && Encoder != encoderName(e) {
		fields = append(fields, "encoder", Encoder, "stored encoder", encoderName(e))
	}
	return fields
}

func encoderName(e tagger.HistoryEncoder) string {
	switch e.(type) {
	case *tagger.KernelEncoder:
		return conf.EncoderKernel
	default:
		return conf.EncoderExplicit
	}
}

// LoadModel reads a model file and applies the beam flags. The stored
// encoder always wins over -order and -encoder.
func LoadModel(cmd *commander.Command, file string) (*tagger.Model, *conf.Conf, error) {
	data, err := ReadModel(file)
	if err != nil {
		return nil, nil, err
	}
	m, err := tagger.Deserialize(data.Model)
	if err != nil {
		return nil, nil, errors.WithMessagef(err, "model %s", file)
	}
	if mismatch := encoderMismatch(cmd, m.Encoder()); len(mismatch) > 0 {
		util.Logger().Warnw("Flags differ from the stored encoder, using the stored encoder", mismatch...)
	}
	set := flagsSet(cmd)
	beam := m.Beam()
	if set["beam"] {
		beam.Size = BeamSize
	}
	if set["cand"] {
		beam.MaxCandidates = MaxCandidates
	}
	beam.Concurrent = ConcurrentBeam
	if m, err = m.WithBeam(beam); err != nil {
		return nil, nil, err
	}
	c := data.Conf
	if c == nil {
		c = conf.Defaults()
	}
	return m, c, nil
}
