package perceptron

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"yasl/alg/kernel"
	"yasl/nlp/tagger"
	"yasl/nlp/types"
	"yasl/util"
)

// OneVsAll trains one binary learner per label, the label's examples being
// positive and all others negative. Training runs Iterations epochs over a
// permutation of the examples drawn from Seed, so runs are reproducible.
type OneVsAll struct {
	Base        Binary
	Iterations  int
	Seed        uint64
	Classes     []types.Label
	Classifiers []Binary
}

var _ tagger.LinearMethod = &OneVsAll{}

func NewOneVsAll(base LinearBinary, iterations int, seed uint64) *OneVsAll {
	return &OneVsAll{Base: base, Iterations: iterations, Seed: seed}
}

func (o *OneVsAll) SetLabels(labels []types.Label) {
	o.Classes = append([]types.Label(nil), labels...)
	o.Classifiers = make([]Binary, len(labels))
	for i := range labels {
		o.Classifiers[i] = o.Base.Copy()
	}
}

func (o *OneVsAll) Labels() []types.Label {
	return o.Classes
}

func (o *OneVsAll) Representation() string {
	if linear, ok := o.Base.(LinearBinary); ok {
		return linear.Representation()
	}
	return ""
}

// epochs returns the visiting order of every epoch.
func (o *OneVsAll) epochs(n int) [][]int {
	iterations := util.Max(o.Iterations, 1)
	random := rand.New(rand.NewSource(o.Seed))
	orders := make([][]int, iterations)
	for epoch := range orders {
		order := util.RangeInt(n)
		random.Shuffle(n, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		orders[epoch] = order
	}
	return orders
}

// Train learns the binary classifiers concurrently, one goroutine per
// label; they share only the read-only examples.
func (o *OneVsAll) Train(examples []*types.Example) error {
	if len(o.Classes) == 0 {
		return ErrNoLabels
	}
	orders := o.epochs(len(examples))
	util.Logger().Infow("Training one-vs-all",
		"labels", len(o.Classes), "examples", len(examples), "epochs", len(orders))

	var g errgroup.Group
	for i, classifier := range o.Classifiers {
		label := o.Classes[i]
		g.Go(func() error {
			for epoch, order := range orders {
				for _, idx := range order {
					ex := examples[idx]
					if err := classifier.Learn(ex, ex.IsExampleOf(label)); err != nil {
						return errors.WithMessagef(err, "label %s epoch %d", label, epoch)
					}
				}
			}
			classifier.Finalize()
			util.Logger().Debugw("Trained binary classifier", "label", label)
			return nil
		})
	}
	return g.Wait()
}

// Predict returns the raw score of every label.
func (o *OneVsAll) Predict(ex *types.Example) (map[types.Label]float64, error) {
	if len(o.Classes) == 0 {
		return nil, ErrNoLabels
	}
	scores := make(map[types.Label]float64, len(o.Classes))
	for i, classifier := range o.Classifiers {
		score, err := classifier.Score(ex)
		if err != nil {
			return nil, errors.WithMessagef(err, "label %s", o.Classes[i])
		}
		scores[o.Classes[i]] = score
	}
	return scores, nil
}

func (o *OneVsAll) duplicate() *OneVsAll {
	dup := &OneVsAll{Base: o.Base.Copy(), Iterations: o.Iterations, Seed: o.Seed}
	if len(o.Classes) > 0 {
		dup.SetLabels(o.Classes)
	}
	return dup
}

func (o *OneVsAll) Duplicate() tagger.Classifier {
	return o.duplicate()
}

func (o *OneVsAll) Reset() {
	for _, classifier := range o.Classifiers {
		classifier.Reset()
	}
}

// KernelOneVsAll is a OneVsAll over kernel learners; setting the kernel
// sets it on every binary learner.
type KernelOneVsAll struct {
	OneVsAll
}

var _ tagger.KernelMethod = &KernelOneVsAll{}

func NewKernelOneVsAll(base KernelBinary, iterations int, seed uint64) *KernelOneVsAll {
	return &KernelOneVsAll{OneVsAll{Base: base, Iterations: iterations, Seed: seed}}
}

func (o *KernelOneVsAll) Kernel() kernel.Kernel {
	if k, ok := o.Base.(KernelBinary); ok {
		return k.Kernel()
	}
	return nil
}

func (o *KernelOneVsAll) SetKernel(k kernel.Kernel) {
	if base, ok := o.Base.(KernelBinary); ok {
		base.SetKernel(k)
	}
	for _, classifier := range o.Classifiers {
		if kc, ok := classifier.(KernelBinary); ok {
			kc.SetKernel(k)
		}
	}
}

func (o *KernelOneVsAll) Duplicate() tagger.Classifier {
	return &KernelOneVsAll{*o.duplicate()}
}
