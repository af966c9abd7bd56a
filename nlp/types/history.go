package types

import "strconv"

// InitToken names a history position before the start of the sequence;
// offset is the (negative) absolute position.
func InitToken(offset int) string {
	return strconv.Itoa(offset) + "init"
}

// HistoryTokens returns the window labels preceding position, oldest
// first. Positions before the start yield InitToken.
func HistoryTokens(labels Labels, position, window int) []string {
	tokens := make([]string, window)
	for i := range tokens {
		j := position - window + i
		if j < 0 {
			tokens[i] = InitToken(j)
		} else {
			tokens[i] = string(labels[j])
		}
	}
	return tokens
}
