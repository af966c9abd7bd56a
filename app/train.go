package app

import (
	"os"
	"time"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/pkg/errors"

	"yasl/nlp/tagger"
	"yasl/util"
	"yasl/util/conf"
)

func TrainConfigOut(c *conf.Conf) {
	util.Logger().Infow("Configuration",
		"input", input,
		"format", format,
		"model", modelFile,
		"order", c.Order,
		"encoder", c.Encoder,
		"transition weight", c.TransitionWeight,
		"beam", c.BeamSize,
		"candidates", c.MaxEmissionCandidates,
		"algorithm", c.Learner.Algorithm,
		"iterations", c.Learner.Iterations,
		"averaged", c.Learner.Averaged,
	)
}

// TrainConf reads the configuration file, if any, and applies the model
// flags given on the command line.
func TrainConf(cmd *commander.Command) (*conf.Conf, error) {
	c := conf.Defaults()
	if confFile != "" {
		if !VerifyExists(confFile) {
			return nil, errors.Errorf("configuration file %s not found", confFile)
		}
		var err error
		if c, err = conf.ReadFile(confFile); err != nil {
			return nil, errors.WithMessagef(err, "configuration %s", confFile)
		}
	}
	if err := applyFlags(cmd, c); err != nil {
		return nil, err
	}
	return c, nil
}

func Train(cmd *commander.Command, args []string) error {
	REQUIRED_FLAGS := []string{"in", "model"}
	if err := VerifyFlags(cmd, REQUIRED_FLAGS); err != nil {
		return err
	}
	c, err := TrainConf(cmd)
	if err != nil {
		return err
	}
	TrainConfigOut(c)
	if dumpConf != "" {
		if err := writeConf(dumpConf, c); err != nil {
			return err
		}
	}

	if !VerifyExists(input) {
		return errors.Errorf("input %s not found", input)
	}
	util.Logger().Infow("Reading training corpus", "file", input)
	corpus, _, err := ReadCorpus(input, format, true)
	if err != nil {
		return errors.WithMessagef(err, "reading %s", input)
	}
	util.Logger().Infow("Read training corpus", "sequences", len(corpus), "examples", corpus.NumExamples())

	learner, err := NewLearner(c)
	if err != nil {
		return err
	}
	start := time.Now()
	model, err := learner.Train(corpus)
	if err != nil {
		return err
	}
	util.Logger().Infow("Trained model", "labels", len(model.Labels()), "duration", time.Since(start))
	util.LogMemory()

	if err := WriteModel(modelFile, &Serialization{Model: tagger.Serialize(model), Conf: c}); err != nil {
		return err
	}
	sum, err := util.MD5File(modelFile)
	if err != nil {
		return err
	}
	util.Logger().Infow("Wrote model", "file", modelFile, "md5", sum)
	return nil
}

func writeConf(filename string, c *conf.Conf) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := c.Write(file); err != nil {
		return err
	}
	return file.Close()
}

func TrainCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       Train,
		UsageLine: "train <file options> [arguments]",
		Short:     "train a sequence labeling model",
		Long: `
train a sequence labeling model on a labeled corpus

	$ ./yasl train -in <corpus file> -model <model file> [options]

the learner is configured by a YAML file (-conf); model flags given on the
command line override it.

`,
		Flag: *flag.NewFlagSet("train", flag.ExitOnError),
	}
	addInputFlags(cmd)
	addModelFlags(cmd)
	cmd.Flag.StringVar(&modelFile, "model", "", "Output model file")
	cmd.Flag.StringVar(&confFile, "conf", "", "YAML configuration file")
	cmd.Flag.StringVar(&dumpConf, "writeconf", "", "Write the effective configuration to this file")
	cmd.Flag.Float64Var(&TransitionWeight, "weight", 1, "History feature (or kernel) weight")
	return cmd
}
