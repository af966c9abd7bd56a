// Package seqcorpus reads and writes sequence corpora. Every line is one
// example: its gold labels followed by named representations,
//
//	A B |BV:rep| w=the:1 lw=the:1 |EV| |BDV:emb| 0.1 0.2 |EDV|
//
// and sequences are separated by blank lines.
package seqcorpus

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"yasl/alg/featurevector"
	"yasl/nlp/types"
)

const (
	SparseBegin = "|BV:"
	SparseEnd   = "|EV|"
	DenseBegin  = "|BDV:"
	DenseEnd    = "|EDV|"

	maxLineSize = 16 * 1024 * 1024
)

var ErrFormat = errors.New("malformed example")

// ParseExample parses one example line.
func ParseExample(line string) (*types.Example, error) {
	ex := types.NewExample()
	fields := strings.Fields(line)
	for i := 0; i < len(fields); i++ {
		field := fields[i]
		var begin, end string
		switch {
		case strings.HasPrefix(field, DenseBegin):
			begin, end = DenseBegin, DenseEnd
		case strings.HasPrefix(field, SparseBegin):
			begin, end = SparseBegin, SparseEnd
		default:
			if len(ex.Representations) > 0 {
				return nil, errors.Wrapf(ErrFormat, "label %q after representations", field)
			}
			ex.Labels = append(ex.Labels, types.Label(field))
			continue
		}
		if !strings.HasSuffix(field, "|") || len(field) <= len(begin)+1 {
			return nil, errors.Wrapf(ErrFormat, "bad representation header %q", field)
		}
		name := field[len(begin) : len(field)-1]
		j := i + 1
		for j < len(fields) && fields[j] != end {
			j++
		}
		if j == len(fields) {
			return nil, errors.Wrapf(ErrFormat, "representation %q has no %s", name, end)
		}
		body := strings.Join(fields[i+1:j], " ")
		var (
			vec featurevector.Vector
			err error
		)
		if begin == DenseBegin {
			vec, err = featurevector.ParseDense(body)
		} else {
			vec, err = featurevector.ParseSparse(body)
		}
		if err != nil {
			return nil, errors.WithMessagef(err, "representation %q", name)
		}
		if _, exists := ex.Representations[name]; exists {
			return nil, errors.Wrapf(ErrFormat, "duplicate representation %q", name)
		}
		ex.AddRepresentation(name, vec)
		i = j
	}
	return ex, nil
}

// FormatExample is the inverse of ParseExample; representations are
// written sorted by name.
func FormatExample(ex *types.Example) string {
	parts := make([]string, 0, len(ex.Labels)+3*len(ex.Representations))
	parts = append(parts, ex.Labels.Strings()...)
	names := make([]string, 0, len(ex.Representations))
	for name := range ex.Representations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		vec := ex.Representations[name]
		begin, end := SparseBegin, SparseEnd
		if vec.Kind() == featurevector.KindDense {
			begin, end = DenseBegin, DenseEnd
		}
		parts = append(parts, begin+name+"|")
		if body := vec.String(); body != "" {
			parts = append(parts, body)
		}
		parts = append(parts, end)
	}
	return strings.Join(parts, " ")
}

func Read(reader io.Reader) (types.Corpus, error) {
	var (
		corpus  types.Corpus
		current *types.Sequence
	)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if current != nil {
				corpus = append(corpus, current)
				current = nil
			}
			continue
		}
		ex, err := ParseExample(line)
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d", lineNum)
		}
		if current == nil {
			current = types.NewSequence()
		}
		current.Examples = append(current.Examples, ex)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading corpus")
	}
	if current != nil {
		corpus = append(corpus, current)
	}
	return corpus, nil
}

// ReadFile reads filename, gunzipping names ending in ".gz".
func ReadFile(filename string) (types.Corpus, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(filename, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", filename)
		}
		defer gz.Close()
		reader = gz
	}
	return Read(reader)
}

func Write(writer io.Writer, corpus types.Corpus) error {
	w := bufio.NewWriter(writer)
	for i, seq := range corpus {
		if i > 0 {
			if err := w.WriteByte('\n'); err != nil {
				return err
			}
		}
		for _, ex := range seq.Examples {
			if _, err := w.WriteString(FormatExample(ex) + "\n"); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}

// WriteFile writes filename, gzipping names ending in ".gz".
func WriteFile(filename string, corpus types.Corpus) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if !strings.HasSuffix(filename, ".gz") {
		if err := Write(file, corpus); err != nil {
			return err
		}
		return file.Close()
	}
	gz := gzip.NewWriter(file)
	if err := Write(gz, corpus); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return file.Close()
}
