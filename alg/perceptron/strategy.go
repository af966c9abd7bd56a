package perceptron

import "yasl/alg/featurevector"

// UpdateStrategy turns the weights accumulated during training into the
// weights used for prediction.
type UpdateStrategy interface {
	Weights(w *featurevector.AvgSparse, generations int) featurevector.Sparse
	Value(h *featurevector.HistoryValue, generations int) float64
}

type TrivialStrategy struct{}

var _ UpdateStrategy = TrivialStrategy{}

func (u TrivialStrategy) Weights(w *featurevector.AvgSparse, generations int) featurevector.Sparse {
	return w.Current()
}

func (u TrivialStrategy) Value(h *featurevector.HistoryValue, generations int) float64 {
	return h.Value
}

// AveragedStrategy averages every weight over all generations seen, one
// generation per learned example.
type AveragedStrategy struct{}

var _ UpdateStrategy = AveragedStrategy{}

func (u AveragedStrategy) Weights(w *featurevector.AvgSparse, generations int) featurevector.Sparse {
	return w.Average(generations)
}

func (u AveragedStrategy) Value(h *featurevector.HistoryValue, generations int) float64 {
	if generations <= 0 {
		return h.Value
	}
	return h.IntegratedValue(generations) / float64(generations)
}

func strategyFor(averaged bool) UpdateStrategy {
	if averaged {
		return AveragedStrategy{}
	}
	return TrivialStrategy{}
}
