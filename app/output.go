package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"yasl/alg/search"
	"yasl/nlp/format/seqcorpus"
	"yasl/nlp/format/taggedsentence"
	"yasl/nlp/types"
)

// WriteNBest writes up to n retained paths of every prediction, one line
// per path: rank, score and labels. Sequences are separated by a blank
// line.
func WriteNBest(writer io.Writer, predictions []*search.Prediction, n int) error {
	w := bufio.NewWriter(writer)
	for i, prediction := range predictions {
		if i > 0 {
			if err := w.WriteByte('\n'); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "# sequence %d\n", i); err != nil {
			return err
		}
		for rank, path := range prediction.Paths {
			if rank >= n {
				break
			}
			labels := path.Labels()
			strs := make([]string, len(labels))
			for j, label := range labels {
				strs[j] = string(label)
			}
			if _, err := fmt.Fprintf(w, "%d\t%.6f\t%s\n", rank, path.Score(), strings.Join(strs, " ")); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}

// Relabel replaces the gold labels of every example by the labels of the
// best path.
func Relabel(corpus types.Corpus, predictions []*search.Prediction) error {
	for i, seq := range corpus {
		best := predictions[i].BestPath()
		if best == nil || best.Len() != seq.Len() {
			return errors.Errorf("sequence %d: no complete prediction", i)
		}
		for j, label := range best.Labels() {
			seq.Examples[j].Labels = types.Labels{label}
		}
	}
	return nil
}

// TagSentences returns the sentences tagged by their best paths.
func TagSentences(sents []taggedsentence.Sentence, predictions []*search.Prediction) ([]taggedsentence.Sentence, error) {
	tagged := make([]taggedsentence.Sentence, len(sents))
	for i, sent := range sents {
		best := predictions[i].BestPath()
		if best == nil || best.Len() != len(sent) {
			return nil, errors.Errorf("sentence %d: no complete prediction", i)
		}
		tagged[i] = sent.Tag(best.Labels())
	}
	return tagged, nil
}

// createOutput opens filename for writing, or stdout when it is empty.
func createOutput(filename string) (io.WriteCloser, error) {
	if filename == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(filename)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// WritePredictions writes the decoded corpus in its input format, or the
// n-best lists when nbest is above one.
func WritePredictions(filename, corpusFormat string, corpus types.Corpus, sents []taggedsentence.Sentence, predictions []*search.Prediction, nbest int) error {
	if nbest <= 1 && corpusFormat == FormatSequence && filename != "" {
		if err := Relabel(corpus, predictions); err != nil {
			return err
		}
		return seqcorpus.WriteFile(filename, corpus)
	}
	out, err := createOutput(filename)
	if err != nil {
		return err
	}
	defer out.Close()

	switch {
	case nbest > 1:
		err = WriteNBest(out, predictions, nbest)
	case corpusFormat == FormatTagged:
		var tagged []taggedsentence.Sentence
		if tagged, err = TagSentences(sents, predictions); err == nil {
			err = taggedsentence.Write(out, tagged)
		}
	default:
		if err = Relabel(corpus, predictions); err == nil {
			err = seqcorpus.Write(out, corpus)
		}
	}
	if err != nil {
		return err
	}
	return out.Close()
}
