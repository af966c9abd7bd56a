package seqcorpus

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yasl/alg/featurevector"
	"yasl/nlp/types"
)

const testCorpus = `A |BV:rep| w=the:1 lw=the:1 |EV| |BDV:emb| 0.5 -1 |EDV|
B |BV:rep| w=dog:1 |EV|

C D |BV:rep| w=a:b:2 |EV|
`

func TestParseExample(t *testing.T) {
	ex, err := ParseExample("A |BV:rep| w=the:1 lw=the:1 |EV| |BDV:emb| 0.5 -1 |EDV|")
	require.NoError(t, err)
	assert.Equal(t, types.Labels{"A"}, ex.Labels)
	assert.Equal(t, featurevector.Sparse{"w=the": 1, "lw=the": 1}, ex.Representations["rep"])
	assert.Equal(t, featurevector.Dense{0.5, -1}, ex.Representations["emb"])

	unlabeled, err := ParseExample("|BV:rep| |EV|")
	require.NoError(t, err)
	assert.Empty(t, unlabeled.Labels)
	assert.Equal(t, featurevector.Sparse{}, unlabeled.Representations["rep"])
}

func TestParseExampleErrors(t *testing.T) {
	for _, line := range []string{
		"A |BV:rep| w:1",
		"A |BV:| w:1 |EV|",
		"A |BV:rep w:1 |EV|",
		"A |BV:rep| w:1 |EV| B",
		"A |BV:rep| w:1 |EV| |BV:rep| x:1 |EV|",
	} {
		_, err := ParseExample(line)
		require.Error(t, err, line)
		assert.Equal(t, ErrFormat, errors.Cause(err), line)
	}
	_, err := ParseExample("A |BDV:emb| x |EDV|")
	assert.Equal(t, featurevector.ErrParse, errors.Cause(err))
}

func TestRead(t *testing.T) {
	corpus, err := Read(strings.NewReader(testCorpus))
	require.NoError(t, err)
	require.Len(t, corpus, 2)
	assert.Equal(t, 2, corpus[0].Len())
	assert.Equal(t, 1, corpus[1].Len())
	assert.Equal(t, []types.Label{"A", "B", "C", "D"}, corpus.Labels())
	assert.Equal(t, featurevector.Sparse{"w=a:b": 2}, corpus[1].Example(0).Representations["rep"])

	_, err = Read(strings.NewReader("A |BV:rep| w:1 |EV|\nB |BV:rep| w:x |EV|\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	empty, err := Read(strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestWriteRoundTrip(t *testing.T) {
	corpus, err := Read(strings.NewReader(testCorpus))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, corpus))
	back, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, back, len(corpus))
	for i := range corpus {
		require.Equal(t, corpus[i].Len(), back[i].Len())
		for j, ex := range corpus[i].Examples {
			assert.Equal(t, ex.Labels, back[i].Examples[j].Labels)
			assert.Equal(t, ex.Representations, back[i].Examples[j].Representations)
		}
	}
}

func TestFiles(t *testing.T) {
	corpus, err := Read(strings.NewReader(testCorpus))
	require.NoError(t, err)
	dir := t.TempDir()
	for _, name := range []string{"corpus.klp", "corpus.klp.gz"} {
		filename := filepath.Join(dir, name)
		require.NoError(t, WriteFile(filename, corpus))
		back, err := ReadFile(filename)
		require.NoError(t, err, name)
		require.Len(t, back, 2, name)
		assert.Equal(t, corpus[1].Example(0).Representations, back[1].Example(0).Representations, name)
	}
	_, err = ReadFile(filepath.Join(dir, "missing.klp"))
	assert.Error(t, err)
}
