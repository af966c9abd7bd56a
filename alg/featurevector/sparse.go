package featurevector

import (
	"sort"
	"strconv"
	"strings"
)

type Sparse map[string]float64

var _ Vector = Sparse{}

func (v Sparse) Kind() Kind {
	return KindSparse
}

func (v Sparse) Copy() Vector {
	return v.CopySparse()
}

func (v Sparse) CopySparse() Sparse {
	copied := make(Sparse, len(v))
	for k, val := range v {
		copied[k] = val
	}
	return copied
}

func (v Sparse) Add(other Sparse) Sparse {
	retvec := v.CopySparse()
	return retvec.UpdateAdd(other)
}

func (v Sparse) UpdateAdd(other Sparse) Sparse {
	for key, otherVal := range other {
		// v[key] == 0 if v[key] does not exist
		val := v[key] + otherVal
		if val != 0.0 {
			v[key] = val
		} else {
			delete(v, key)
		}
	}
	return v
}

func (v Sparse) UpdateAddScaled(other Vector, alpha float64) Vector {
	otherSparse, ok := other.(Sparse)
	if !ok {
		return v
	}
	for key, otherVal := range otherSparse {
		val := v[key] + alpha*otherVal
		if val != 0.0 {
			v[key] = val
		} else {
			delete(v, key)
		}
	}
	return v
}

func (v Sparse) UpdateScalarDivide(byValue float64) Sparse {
	if byValue == 0.0 {
		panic("Divide by 0")
	}
	for i, val := range v {
		v[i] = val / byValue
	}
	return v
}

func (v Sparse) Dot(other Vector) float64 {
	otherSparse, ok := other.(Sparse)
	if !ok {
		return 0
	}
	// iterate the smaller map
	small, large := v, otherSparse
	if len(large) < len(small) {
		small, large = large, small
	}
	var result float64
	for key, val := range small {
		result += large[key] * val
	}
	return result
}

func (v Sparse) SquaredNorm() float64 {
	var result float64
	for _, val := range v {
		result += val * val
	}
	return result
}

// String is the name:value text form read by ParseSparse, sorted by name.
func (v Sparse) String() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	strs := make([]string, len(keys))
	for i, k := range keys {
		strs[i] = k + ":" + strconv.FormatFloat(v[k], 'g', -1, 64)
	}
	return strings.Join(strs, " ")
}

func NewVectorOfOnes(features []string) Sparse {
	vec := make(Sparse, len(features))
	for _, feature := range features {
		vec[feature] = 1.0
	}
	return vec
}

func NewSparse() Sparse {
	return make(Sparse)
}
