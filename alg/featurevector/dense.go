package featurevector

import (
	"strconv"
	"strings"
)

type Dense []float64

var _ Vector = Dense{}

func (v Dense) Kind() Kind {
	return KindDense
}

func (v Dense) Copy() Vector {
	copied := make(Dense, len(v))
	copy(copied, v)
	return copied
}

// Dot treats missing trailing dimensions as zero.
func (v Dense) Dot(other Vector) float64 {
	otherDense, ok := other.(Dense)
	if !ok {
		return 0
	}
	var result float64
	for i := 0; i < len(v) && i < len(otherDense); i++ {
		result += v[i] * otherDense[i]
	}
	return result
}

func (v Dense) SquaredNorm() float64 {
	var result float64
	for _, val := range v {
		result += val * val
	}
	return result
}

func (v Dense) UpdateAddScaled(other Vector, alpha float64) Vector {
	otherDense, ok := other.(Dense)
	if !ok {
		return v
	}
	if len(otherDense) > len(v) {
		grown := make(Dense, len(otherDense))
		copy(grown, v)
		v = grown
	}
	for i, val := range otherDense {
		v[i] += alpha * val
	}
	return v
}

func (v Dense) String() string {
	strs := make([]string, len(v))
	for i, val := range v {
		strs[i] = strconv.FormatFloat(val, 'g', -1, 64)
	}
	return strings.Join(strs, " ")
}
