package types

import (
	"bytes"
	"encoding/gob"
	"sort"
	"sync/atomic"

	"yasl/alg/featurevector"
)

// SeqDelim prefixes every history token in a history string.
const SeqDelim = "_"

type Label string

type Labels []Label

func (l Labels) Strings() []string {
	retval := make([]string, len(l))
	for i, label := range l {
		retval[i] = string(label)
	}
	return retval
}

func (l Labels) Contains(label Label) bool {
	for _, cur := range l {
		if cur == label {
			return true
		}
	}
	return false
}

func SortLabels(l []Label) {
	sort.Slice(l, func(i, j int) bool { return l[i] < l[j] })
}

var exampleIDs atomic.Uint64

func NextExampleID() uint64 {
	return exampleIDs.Add(1)
}

// Example is one observation: named representations and optional gold
// labels. IDs are process-unique and key the kernel cache.
type Example struct {
	ID              uint64
	Labels          Labels
	Representations map[string]featurevector.Vector
}

func NewExample(labels ...Label) *Example {
	return &Example{
		ID:              NextExampleID(),
		Labels:          labels,
		Representations: make(map[string]featurevector.Vector),
	}
}

func (e *Example) Representation(name string) (featurevector.Vector, bool) {
	vec, exists := e.Representations[name]
	return vec, exists
}

func (e *Example) AddRepresentation(name string, vec featurevector.Vector) {
	if e.Representations == nil {
		e.Representations = make(map[string]featurevector.Vector)
	}
	e.Representations[name] = vec
}

func (e *Example) IsExampleOf(label Label) bool {
	return e.Labels.Contains(label)
}

// GoldLabel is the first gold label, the one history is built from.
func (e *Example) GoldLabel() (Label, bool) {
	if len(e.Labels) == 0 {
		return "", false
	}
	return e.Labels[0], true
}

// Shallow returns a new example with a new representation map holding the
// same vectors. Replacing an entry of the copy leaves e untouched.
func (e *Example) Shallow() *Example {
	copied := &Example{
		ID:              NextExampleID(),
		Labels:          e.Labels,
		Representations: make(map[string]featurevector.Vector, len(e.Representations)+1),
	}
	for name, vec := range e.Representations {
		copied.Representations[name] = vec
	}
	return copied
}

type exampleGob struct {
	Labels          Labels
	Representations map[string]featurevector.Vector
}

func (e *Example) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(&exampleGob{e.Labels, e.Representations})
	return buf.Bytes(), err
}

// GobDecode assigns a fresh ID; IDs are only unique within one process.
func (e *Example) GobDecode(data []byte) error {
	var decoded exampleGob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&decoded); err != nil {
		return err
	}
	e.ID = NextExampleID()
	e.Labels = decoded.Labels
	e.Representations = decoded.Representations
	if e.Representations == nil {
		e.Representations = make(map[string]featurevector.Vector)
	}
	return nil
}
