package app

import (
	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"yasl/eval"
	"yasl/nlp/types"
	"yasl/util"
)

// evalLabels merges the model labels with the gold labels of the corpus so
// unseen gold labels still count as misses.
func evalLabels(model, gold []types.Label) []types.Label {
	seen := make(map[types.Label]bool, len(model)+len(gold))
	var labels []types.Label
	for _, label := range append(append([]types.Label{}, model...), gold...) {
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}
	types.SortLabels(labels)
	return labels
}

func Eval(cmd *commander.Command, args []string) error {
	REQUIRED_FLAGS := []string{"model", "in"}
	if err := VerifyFlags(cmd, REQUIRED_FLAGS); err != nil {
		return err
	}
	m, d, decodeErr := decodeCorpus(cmd, true)
	if d == nil {
		return decodeErr
	}
	defer d.Close()
	// sequences that failed to decode are skipped and reported after the
	// scores of the others are written
	evaluator := eval.NewSequenceEvaluator(evalLabels(m.Labels(), d.corpus.Labels()))
	if err := evaluator.AddAll(d.corpus, d.predictions); err != nil {
		decodeErr = multierr.Append(decodeErr, errors.WithMessage(err, "evaluating"))
	}
	util.Logger().Infow("Evaluated", "positions", evaluator.Counted, "accuracy", evaluator.Accuracy(),
		"macro F1", evaluator.MacroF1(), "micro F1", evaluator.MicroF1())

	out, err := createOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := evaluator.Report(out); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return decodeErr
}

func EvalCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       Eval,
		UsageLine: "eval <file options> [arguments]",
		Short:     "evaluate a trained model against a labeled corpus",
		Long: `
decode a labeled corpus and report per-label, macro and micro scores of the
best paths

	$ ./yasl eval -model <model file> -in <gold corpus> [options]

`,
		Flag: *flag.NewFlagSet("eval", flag.ExitOnError),
	}
	addDecodeFlags(cmd)
	cmd.Flag.StringVar(&output, "out", "", "Report file (default stdout)")
	return cmd
}
