package featurevector

// HistoryValue is one averaged weight. Total integrates Value over the
// generations seen so far, so averaging never walks the whole vector on
// each update.
type HistoryValue struct {
	Generation   int
	Value, Total float64
}

func (h *HistoryValue) IntegratedValue(generation int) float64 {
	return h.Total + float64(generation-h.Generation)*h.Value
}

func (h *HistoryValue) Add(generation int, amount float64) {
	if h.Generation < generation {
		h.Total += float64(generation-h.Generation) * h.Value
		h.Generation = generation
	}
	h.Value += amount
}

func NewHistoryValue(generation int, value float64) *HistoryValue {
	return &HistoryValue{Generation: generation, Value: value}
}

// AvgSparse keeps current and integrated weights of a sparse model.
type AvgSparse struct {
	Vals map[string]*HistoryValue
}

func NewAvgSparse() *AvgSparse {
	return &AvgSparse{Vals: make(map[string]*HistoryValue)}
}

func (v *AvgSparse) AddScaled(generation int, features Sparse, alpha float64) {
	for key, val := range features {
		if hist, exists := v.Vals[key]; exists {
			hist.Add(generation, alpha*val)
		} else {
			v.Vals[key] = NewHistoryValue(generation, alpha*val)
		}
	}
}

// Current is the non-averaged weight vector.
func (v *AvgSparse) Current() Sparse {
	retval := make(Sparse, len(v.Vals))
	for key, hist := range v.Vals {
		if hist.Value != 0 {
			retval[key] = hist.Value
		}
	}
	return retval
}

// Average is the mean weight vector over generations [0, generation).
func (v *AvgSparse) Average(generation int) Sparse {
	retval := make(Sparse, len(v.Vals))
	if generation <= 0 {
		return v.Current()
	}
	for key, hist := range v.Vals {
		if integrated := hist.IntegratedValue(generation); integrated != 0 {
			retval[key] = integrated / float64(generation)
		}
	}
	return retval
}
