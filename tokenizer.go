package classifier

import "strings"

// Tokenizer is the interface for a text tokenizer
type Tokenizer interface {
	Tokenize(text string) ([]string, error)
}

type whitespaceTokenizer struct{}

// WhitespaceTokenizer splits text on runs of whitespace using strings.Fields.
// Tokens are returned as-is and in order, duplicates included, so the
// caller sees every occurrence.
var WhitespaceTokenizer = whitespaceTokenizer{}

func (t whitespaceTokenizer) Tokenize(text string) ([]string, error) {
	return strings.Fields(text), nil
}
