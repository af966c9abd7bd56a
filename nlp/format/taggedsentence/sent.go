// Package taggedsentence reads one sentence per line of space separated
// word/TAG tokens and turns sentences into sequences of word features.
package taggedsentence

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"yasl/alg/featurevector"
	"yasl/nlp/types"
	"yasl/util"
)

const (
	TokenSeparator = " "
	TagSeparator   = "/"

	// Representation receives the word features of every token.
	Representation = "rep"
	// MaxAffix is the longest prefix and suffix feature.
	MaxAffix = 3
)

var ErrUntagged = errors.New("untagged token")

type TaggedToken struct {
	Token, Tag string
}

type Sentence []TaggedToken

func (s Sentence) Tokens() []string {
	tokens := make([]string, len(s))
	for i, tt := range s {
		tokens[i] = tt.Token
	}
	return tokens
}

// ParseSentence splits a line of word/TAG tokens. The tag follows the last
// separator so words may contain "/". When tagged is false the whole token
// is the word.
func ParseSentence(line string, tagged bool) (Sentence, error) {
	tokens := strings.Fields(line)
	sent := make(Sentence, len(tokens))
	for i, token := range tokens {
		if !tagged {
			sent[i] = TaggedToken{Token: token}
			continue
		}
		sep := strings.LastIndex(token, TagSeparator)
		if sep <= 0 || sep == len(token)-1 {
			return nil, errors.Wrapf(ErrUntagged, "%q", token)
		}
		sent[i] = TaggedToken{token[:sep], token[sep+1:]}
	}
	return sent, nil
}

func Read(reader io.Reader, tagged bool) ([]Sentence, error) {
	var sentences []Sentence
	scanner := bufio.NewScanner(reader)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}
		sent, err := ParseSentence(line, tagged)
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d", lineNum)
		}
		sentences = append(sentences, sent)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading sentences")
	}
	return sentences, nil
}

func ReadFile(filename string, tagged bool) ([]Sentence, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Read(file, tagged)
}

// Write outputs sentences in the format Read accepts.
func Write(writer io.Writer, sentences []Sentence) error {
	w := bufio.NewWriter(writer)
	for _, sent := range sentences {
		strs := make([]string, len(sent))
		for i, tt := range sent {
			strs[i] = tt.Token + TagSeparator + tt.Tag
		}
		if _, err := w.WriteString(strings.Join(strs, TokenSeparator) + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Features are the name=value indicators of the token at position i.
func Features(tokens []string, i int) featurevector.Sparse {
	word := tokens[i]
	lower := strings.ToLower(word)
	feats := []string{
		"w=" + word,
		"lw=" + lower,
		"sig=" + util.Signature(word),
	}
	for n := 1; n <= MaxAffix; n++ {
		feats = append(feats,
			"p"+string(rune('0'+n))+"="+util.Prefix(lower, n),
			"s"+string(rune('0'+n))+"="+util.Suffix(lower, n),
		)
	}
	if i > 0 {
		feats = append(feats, "w-1="+strings.ToLower(tokens[i-1]))
	} else {
		feats = append(feats, "bos")
	}
	if i < len(tokens)-1 {
		feats = append(feats, "w+1="+strings.ToLower(tokens[i+1]))
	} else {
		feats = append(feats, "eos")
	}
	return featurevector.NewVectorOfOnes(feats)
}

// Sequence converts a sentence into examples labeled with its tags.
func (s Sentence) Sequence() *types.Sequence {
	tokens := s.Tokens()
	seq := types.NewSequence()
	for i, tt := range s {
		var ex *types.Example
		if tt.Tag != "" {
			ex = types.NewExample(types.Label(tt.Tag))
		} else {
			ex = types.NewExample()
		}
		ex.AddRepresentation(Representation, Features(tokens, i))
		seq.Examples = append(seq.Examples, ex)
	}
	return seq
}

func Corpus(sentences []Sentence) types.Corpus {
	corpus := make(types.Corpus, len(sentences))
	for i, sent := range sentences {
		corpus[i] = sent.Sequence()
	}
	return corpus
}

// Tag returns a copy of s carrying labels.
func (s Sentence) Tag(labels types.Labels) Sentence {
	tagged := make(Sentence, len(s))
	for i, tt := range s {
		tagged[i] = TaggedToken{Token: tt.Token, Tag: string(labels[i])}
	}
	return tagged
}
