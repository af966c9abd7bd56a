package search

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yasl/nlp/types"
)

// tableEmitter emits by the label of the previous position.
type tableEmitter struct {
	table     map[string][]Emission
	branching bool
	fail      error
}

func (e *tableEmitter) Emit(p *Path, position int) ([]Emission, error) {
	if e.fail != nil {
		return nil, e.fail
	}
	return e.table[p.HistoryBefore(position, 1)[0]], nil
}

func (e *tableEmitter) Branching() bool {
	return e.branching
}

func uniform(labels ...types.Label) []Emission {
	emissions := make([]Emission, len(labels))
	for i, label := range labels {
		emissions[i] = Emission{label, 1 / float64(len(labels))}
	}
	return emissions
}

var testTable = map[string][]Emission{
	"-1init": {{"A", 0.6}, {"B", 0.3}, {"C", 0.1}},
	"A":      {{"A", 0.2}, {"B", 0.7}, {"C", 0.1}},
	"B":      {{"A", 0.5}, {"B", 0.1}, {"C", 0.4}},
	"C":      {{"A", 0.3}, {"B", 0.3}, {"C", 0.4}},
}

func TestPathAppend(t *testing.T) {
	root := NewPath()
	assert.Equal(t, 0, root.Len())
	assert.Equal(t, 0.0, root.Score())

	a := root.Append("A", 0.5)
	ab := a.Append("B", 0.25)
	ac := a.Append("C", 1)

	assert.Equal(t, types.Labels{"A", "B"}, ab.Labels())
	assert.Equal(t, types.Labels{"A", "C"}, ac.Labels())
	assert.Equal(t, types.Labels{"A"}, a.Labels(), "branching leaves the parent untouched")
	assert.InDelta(t, math.Log(0.5)+math.Log(0.25), ab.Score(), 1e-12)
	assert.Equal(t, a.Score(), ac.Score())
	assert.Equal(t, []Emission{{"A", 0.5}, {"B", 0.25}}, ab.Emissions())

	scores := ab.Scores()
	require.Len(t, scores, 2)
	assert.GreaterOrEqual(t, scores[0], scores[1])
}

func TestPathHistoryBefore(t *testing.T) {
	p := NewPath().Append("X", 1).Append("Y", 1).Append("Z", 1)
	for _, test := range []struct {
		position, window int
		want             []string
	}{
		{0, 2, []string{"-2init", "-1init"}},
		{1, 2, []string{"-1init", "X"}},
		{3, 2, []string{"Y", "Z"}},
		{2, 3, []string{"-1init", "X", "Y"}},
		{3, 0, []string{}},
	} {
		got := p.HistoryBefore(test.position, test.window)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("HistoryBefore(%d, %d) (-want +got):\n%s", test.position, test.window, diff)
		}
		assert.Equal(t, types.HistoryTokens(p.Labels(), test.position, test.window), got)
	}
}

func TestSoftmax(t *testing.T) {
	for _, scores := range [][]float64{
		{1, 2, 3},
		{-5, 0, 0.5, 12},
		{1000, 1001, 999},
		{0},
	} {
		probs := Softmax(scores)
		var sum float64
		for i, p := range probs {
			assert.False(t, math.IsNaN(p))
			sum += p
			if i > 0 && scores[i] > scores[i-1] {
				assert.Greater(t, p, probs[i-1])
			}
		}
		assert.InDelta(t, 1, sum, 1e-6)
	}
	assert.Empty(t, Softmax(nil))

	probs := Softmax([]float64{0, math.Log(3)})
	assert.InDelta(t, 0.25, probs[0], 1e-12)
	assert.InDelta(t, 0.75, probs[1], 1e-12)
}

func TestSearchNonBranching(t *testing.T) {
	b := &Beam{Size: 5, MaxCandidates: 3}
	paths, err := b.Search(4, &tableEmitter{table: testTable})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, types.Labels{"A", "B", "A", "B"}, paths[0].Labels())
	assert.InDelta(t, math.Log(0.6)+math.Log(0.7)+math.Log(0.5)+math.Log(0.7), paths[0].Score(), 1e-12)
}

func TestSearchBranching(t *testing.T) {
	b := &Beam{Size: 4, MaxCandidates: 2}
	paths, err := b.Search(3, &tableEmitter{table: testTable, branching: true})
	require.NoError(t, err)
	require.Len(t, paths, 4)
	assert.Equal(t, types.Labels{"A", "B", "A"}, paths[0].Labels())
	for i := 1; i < len(paths); i++ {
		assert.GreaterOrEqual(t, paths[i-1].Score(), paths[i].Score())
	}
	for _, p := range paths {
		assert.Equal(t, 3, p.Len())
		scores := p.Scores()
		for i := 1; i < len(scores); i++ {
			assert.GreaterOrEqual(t, scores[i-1], scores[i])
		}
	}
}

func TestSearchCandidateLimit(t *testing.T) {
	b := &Beam{Size: 100, MaxCandidates: 2}
	paths, err := b.Search(2, &tableEmitter{table: testTable, branching: true})
	require.NoError(t, err)
	assert.Len(t, paths, 4)

	children := make(map[types.Label]int)
	for _, p := range paths {
		children[p.Labels()[0]]++
	}
	for first, n := range children {
		assert.LessOrEqual(t, n, 2, first)
	}
	assert.NotContains(t, children, types.Label("C"))
}

func TestSearchStableTies(t *testing.T) {
	table := map[string][]Emission{"-1init": uniform("X", "Y", "Z")}
	b := &Beam{Size: 3, MaxCandidates: 2}
	paths, err := b.Search(1, &tableEmitter{table: table, branching: true})
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, types.Label("X"), paths[0].Labels()[0])
	assert.Equal(t, types.Label("Y"), paths[1].Labels()[0])
}

func TestSearchDeterministic(t *testing.T) {
	e := &tableEmitter{table: testTable, branching: true}
	first, err := (&Beam{Size: 5, MaxCandidates: 3}).Search(6, e)
	require.NoError(t, err)
	second, err := (&Beam{Size: 5, MaxCandidates: 3}).Search(6, e)
	require.NoError(t, err)
	concurrent, err := (&Beam{Size: 5, MaxCandidates: 3, Concurrent: true}).Search(6, e)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	require.Len(t, concurrent, len(first))
	for i := range first {
		assert.Equal(t, first[i].Labels(), second[i].Labels())
		assert.Equal(t, math.Float64bits(first[i].Score()), math.Float64bits(second[i].Score()))
		assert.Equal(t, first[i].Labels(), concurrent[i].Labels())
		assert.Equal(t, math.Float64bits(first[i].Score()), math.Float64bits(concurrent[i].Score()))
	}
}

func TestSearchEmpty(t *testing.T) {
	paths, err := NewBeam().Search(0, &tableEmitter{table: testTable})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, 0, paths[0].Len())
}

func TestSearchErrors(t *testing.T) {
	_, err := (&Beam{Size: 0, MaxCandidates: 1}).Search(1, &tableEmitter{table: testTable})
	assert.Equal(t, ErrInvalidBeam, errors.Cause(err))
	_, err = (&Beam{Size: 1, MaxCandidates: 0}).Search(1, &tableEmitter{table: testTable})
	assert.Equal(t, ErrInvalidBeam, errors.Cause(err))

	_, err = NewBeam().Search(2, &tableEmitter{table: map[string][]Emission{"-1init": uniform("A")}})
	require.Error(t, err)
	assert.Equal(t, ErrNoEmissions, errors.Cause(err))
	assert.Contains(t, err.Error(), "position 1")

	boom := errors.New("boom")
	_, err = (&Beam{Size: 2, MaxCandidates: 2, Concurrent: true}).Search(3, &tableEmitter{fail: boom})
	assert.Equal(t, boom, errors.Cause(err))
}

func TestPrediction(t *testing.T) {
	empty := &Prediction{}
	assert.Nil(t, empty.BestPath())
	assert.Equal(t, 0, empty.Len())

	best := NewPath().Append("A", 0.9)
	p := &Prediction{Paths: []*Path{best, NewPath().Append("B", 0.1)}}
	assert.Same(t, best, p.BestPath())
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(m))

	b := &Beam{Size: 2, MaxCandidates: 3, Metrics: m}
	_, err := b.Search(2, &tableEmitter{table: testTable, branching: true})
	require.NoError(t, err)

	families, err := registry.Gather()
	require.NoError(t, err)
	counters := make(map[string]float64)
	for _, family := range families {
		if counter := family.GetMetric()[0].GetCounter(); counter != nil {
			counters[family.GetName()] = counter.GetValue()
		}
	}
	assert.Equal(t, map[string]float64{
		"beam_sequences_total": 1,
		"beam_positions_total": 2,
		// 3 at position 0, 2*3 at position 1
		"beam_candidates_total": 9,
		"beam_pruned_total":     5,
	}, counters)

	var nilMetrics *Metrics
	nilMetrics.observeSequence()
}
