package eval

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"yasl/alg/search"
	"yasl/nlp/types"
	"yasl/util"
)

var ErrLengthMismatch = errors.New("prediction length differs from sequence length")

// SequenceEvaluator scores best paths position by position. Every position
// counts once for every label: TP when gold and predicted, FN when gold
// only, FP when predicted only, TN otherwise.
type SequenceEvaluator struct {
	Total
	Classes          []*Result
	Correct, Counted int

	labels *util.EnumSet
}

func NewSequenceEvaluator(labels []types.Label) *SequenceEvaluator {
	e := &SequenceEvaluator{
		Classes: make([]*Result, len(labels)),
		labels:  util.NewEnumSet(len(labels)),
	}
	for i, label := range labels {
		e.labels.Add(string(label))
		e.Classes[i] = new(Result)
	}
	return e
}

func (e *SequenceEvaluator) Labels() []types.Label {
	labels := make([]types.Label, e.labels.Len())
	for i := range labels {
		labels[i] = types.Label(e.labels.ValueOf(i))
	}
	return labels
}

// Add scores one sequence against its best path.
func (e *SequenceEvaluator) Add(gold *types.Sequence, best *search.Path) error {
	if best == nil || best.Len() != gold.Len() {
		var got int
		if best != nil {
			got = best.Len()
		}
		return errors.Wrapf(ErrLengthMismatch, "sequence of %d, path of %d", gold.Len(), got)
	}
	sequence := new(Result)
	for i, predicted := range best.Labels() {
		ex := gold.Example(i)
		for j, class := range e.Classes {
			label := types.Label(e.labels.ValueOf(j))
			isGold, isPredicted := ex.IsExampleOf(label), predicted == label
			var r Result
			switch {
			case isGold && isPredicted:
				r.TP = 1
			case isGold:
				r.FN = 1
			case isPredicted:
				r.FP = 1
			default:
				r.TN = 1
			}
			class.add(&r)
			sequence.add(&r)
		}
		e.Counted++
		if ex.IsExampleOf(predicted) {
			e.Correct++
		}
	}
	e.Total.Add(sequence)
	return nil
}

// AddAll scores a corpus; sequences without a prediction are reported in
// the returned error and skipped.
func (e *SequenceEvaluator) AddAll(corpus types.Corpus, predictions []*search.Prediction) error {
	if len(corpus) != len(predictions) {
		return errors.Errorf("%d sequences, %d predictions", len(corpus), len(predictions))
	}
	var err error
	for i, seq := range corpus {
		if predictions[i] == nil {
			err = multierr.Append(err, errors.Errorf("sequence %d has no prediction", i))
			continue
		}
		if addErr := e.Add(seq, predictions[i].BestPath()); addErr != nil {
			err = multierr.Append(err, errors.WithMessagef(addErr, "sequence %d", i))
		}
	}
	return err
}

func (e *SequenceEvaluator) LabelResult(label types.Label) (*Result, bool) {
	i, exists := e.labels.IndexOf(string(label))
	if !exists {
		return nil, false
	}
	return e.Classes[i], true
}

// Accuracy is the share of positions whose predicted label is gold.
func (e *SequenceEvaluator) Accuracy() float64 {
	if e.Counted == 0 {
		return 0
	}
	return float64(e.Correct) / float64(e.Counted)
}

func (e *SequenceEvaluator) macro(measure func(*Result) float64) float64 {
	if len(e.Classes) == 0 {
		return 0
	}
	var sum float64
	for _, class := range e.Classes {
		sum += measure(class)
	}
	return sum / float64(len(e.Classes))
}

func (e *SequenceEvaluator) MacroPrecision() float64 {
	return e.macro((*Result).Precision)
}

func (e *SequenceEvaluator) MacroRecall() float64 {
	return e.macro((*Result).Recall)
}

func (e *SequenceEvaluator) MacroF1() float64 {
	return e.macro((*Result).F1)
}

// MicroF1 is computed from the counts summed over labels.
func (e *SequenceEvaluator) MicroF1() float64 {
	return e.Total.F1()
}

func (e *SequenceEvaluator) Report(writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "label\tTP\tFP\tFN\tprecision\trecall\tF1")
	for i, class := range e.Classes {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.4f\t%.4f\t%.4f\n", e.labels.ValueOf(i),
			class.TP, class.FP, class.FN, class.Precision(), class.Recall(), class.F1())
	}
	fmt.Fprintf(w, "macro\t\t\t\t%.4f\t%.4f\t%.4f\n", e.MacroPrecision(), e.MacroRecall(), e.MacroF1())
	fmt.Fprintf(w, "micro\t%d\t%d\t%d\t%.4f\t%.4f\t%.4f\n", e.TP, e.FP, e.FN, e.Total.Precision(), e.Total.Recall(), e.MicroF1())
	fmt.Fprintf(w, "accuracy\t%.4f\t(%d/%d)\n", e.Accuracy(), e.Correct, e.Counted)
	fmt.Fprintf(w, "exact\t%.4f\t(%d/%d)\n", e.ExactMatch(), e.Exact, e.Population)
	return w.Flush()
}
