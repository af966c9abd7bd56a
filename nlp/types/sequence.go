package types

import "github.com/mohae/deepcopy"

// Sequence is an ordered list of observations sharing one gold labeling.
type Sequence struct {
	Examples []*Example
}

func NewSequence(examples ...*Example) *Sequence {
	return &Sequence{Examples: examples}
}

func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Examples)
}

func (s *Sequence) Example(i int) *Example {
	return s.Examples[i]
}

// GoldLabels has one entry per position, empty where no gold exists.
func (s *Sequence) GoldLabels() []Label {
	retval := make([]Label, len(s.Examples))
	for i, ex := range s.Examples {
		retval[i], _ = ex.GoldLabel()
	}
	return retval
}

// Duplicate is a deep, independently mutable copy. Copied examples get
// fresh IDs.
func (s *Sequence) Duplicate() *Sequence {
	copied := deepcopy.Copy(s).(*Sequence)
	for _, ex := range copied.Examples {
		if ex != nil {
			ex.ID = NextExampleID()
		}
	}
	return copied
}

type Corpus []*Sequence

// Labels is the sorted set of distinct gold labels in the corpus.
func (c Corpus) Labels() []Label {
	seen := make(map[Label]struct{})
	for _, seq := range c {
		for _, ex := range seq.Examples {
			for _, label := range ex.Labels {
				seen[label] = struct{}{}
			}
		}
	}
	retval := make([]Label, 0, len(seen))
	for label := range seen {
		retval = append(retval, label)
	}
	SortLabels(retval)
	return retval
}

func (c Corpus) NumExamples() int {
	var n int
	for _, seq := range c {
		n += seq.Len()
	}
	return n
}
