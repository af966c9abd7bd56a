package featurevector

import (
	"encoding/gob"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func init() {
	gob.Register(Sparse{})
	gob.Register(Dense{})
}

type Kind byte

const (
	KindSparse Kind = iota
	KindDense
)

func (k Kind) String() string {
	switch k {
	case KindSparse:
		return "sparse"
	case KindDense:
		return "dense"
	}
	return "unknown"
}

// Vector is one named representation of an example.
type Vector interface {
	Kind() Kind
	Copy() Vector
	// Dot is 0 when the kinds differ.
	Dot(other Vector) float64
	SquaredNorm() float64
	// UpdateAddScaled adds alpha*other in place where possible and returns
	// the updated vector, which callers must keep.
	UpdateAddScaled(other Vector, alpha float64) Vector
	String() string
}

var ErrParse = errors.New("malformed vector")

// ParseSparse reads whitespace separated name:value pairs. The value is
// taken after the last colon so feature names may contain colons.
func ParseSparse(s string) (Sparse, error) {
	fields := strings.Fields(s)
	vec := make(Sparse, len(fields))
	for _, field := range fields {
		sep := strings.LastIndexByte(field, ':')
		if sep <= 0 || sep == len(field)-1 {
			return nil, errors.Wrapf(ErrParse, "sparse feature %q", field)
		}
		val, err := strconv.ParseFloat(field[sep+1:], 64)
		if err != nil {
			return nil, errors.Wrapf(ErrParse, "sparse feature %q: %v", field, err)
		}
		vec[field[:sep]] += val
	}
	return vec, nil
}

// ParseDense reads whitespace separated values.
func ParseDense(s string) (Dense, error) {
	fields := strings.Fields(s)
	vec := make(Dense, len(fields))
	for i, field := range fields {
		val, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrParse, "dense value %q at %d: %v", field, i, err)
		}
		vec[i] = val
	}
	return vec, nil
}
