package search

import (
	"fmt"
	"math"
	"strings"

	"yasl/nlp/types"
)

// Path is an immutable hypothesis. Appending creates a child node, so
// branches share their common prefix.
type Path struct {
	parent   *Path
	emission Emission
	score    float64
	length   int
}

func NewPath() *Path {
	return &Path{}
}

// Append returns the path extended by one emission; the score grows by
// ln(probability).
func (p *Path) Append(label types.Label, probability float64) *Path {
	return &Path{
		parent:   p,
		emission: Emission{Label: label, Probability: probability},
		score:    p.score + math.Log(probability),
		length:   p.length + 1,
	}
}

func (p *Path) Len() int {
	return p.length
}

// Score is the sum of the log probabilities of all emissions.
func (p *Path) Score() float64 {
	return p.score
}

func (p *Path) Emissions() []Emission {
	emissions := make([]Emission, p.length)
	for node := p; node.length > 0; node = node.parent {
		emissions[node.length-1] = node.emission
	}
	return emissions
}

func (p *Path) Labels() types.Labels {
	labels := make(types.Labels, p.length)
	for node := p; node.length > 0; node = node.parent {
		labels[node.length-1] = node.emission.Label
	}
	return labels
}

// Scores returns the cumulative score after each emission.
func (p *Path) Scores() []float64 {
	scores := make([]float64, p.length)
	for node := p; node.length > 0; node = node.parent {
		scores[node.length-1] = node.score
	}
	return scores
}

// HistoryBefore returns the window labels preceding position in the form
// of types.HistoryTokens. Only the last window nodes are visited;
// position must not exceed Len.
func (p *Path) HistoryBefore(position, window int) []string {
	tokens := make([]string, window)
	node := p
	for node.length > position {
		node = node.parent
	}
	for i := window - 1; i >= 0; i-- {
		j := position - window + i
		if j < 0 {
			tokens[i] = types.InitToken(j)
			continue
		}
		for node.length > j+1 {
			node = node.parent
		}
		tokens[i] = string(node.emission.Label)
	}
	return tokens
}

func (p *Path) String() string {
	parts := make([]string, 0, p.length)
	for _, e := range p.Emissions() {
		parts = append(parts, fmt.Sprintf("%s(%.4f)", e.Label, e.Probability))
	}
	return fmt.Sprintf("[%s] %.6f", strings.Join(parts, " "), p.score)
}

// Softmax maps scores to probabilities. Scores are shifted by their
// maximum before exponentiation.
func Softmax(scores []float64) []float64 {
	probs := make([]float64, len(scores))
	if len(scores) == 0 {
		return probs
	}
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	var sum float64
	for i, s := range scores {
		probs[i] = math.Exp(s - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
