package classifier

import (
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"
)

// DefaultMinDF keeps every token seen in at least one training document.
const DefaultMinDF = 1

// ErrNotFitted is returned when a vectorizer or classifier is used before Fit.
var ErrNotFitted = errors.New("classifier: not fitted")

// Vocabulary maps a token to its feature index.
type Vocabulary map[string]int

// FeatureVector is a sparse token-count vector over a Vocabulary.
// Indices are ascending and every count is positive.
type FeatureVector struct {
	Dim     int
	Indices []int
	Counts  []int
}

// Count returns the count stored at feature index i.
func (v FeatureVector) Count(i int) int {
	j := sort.SearchInts(v.Indices, i)
	if j < len(v.Indices) && v.Indices[j] == i {
		return v.Counts[j]
	}
	return 0
}

// Dense returns the vector as a slice of length Dim.
func (v FeatureVector) Dense() []int {
	d := make([]int, v.Dim)
	for j, i := range v.Indices {
		d[i] = v.Counts[j]
	}
	return d
}

// CountVectorizer turns documents into token-count vectors over a vocabulary
// learned from a training corpus.
type CountVectorizer struct {
	tokenizer  Tokenizer
	vocabulary Vocabulary

	MinDF   int // minimum number of training documents a token must occur in
	Workers int // transform concurrency, GOMAXPROCS when < 1
}

// NewCountVectorizer returns a CountVectorizer. A minDF below 1 is treated as 1.
func NewCountVectorizer(minDF int, tokenizer Tokenizer) *CountVectorizer {
	if minDF < 1 {
		minDF = DefaultMinDF
	}
	return &CountVectorizer{
		tokenizer: tokenizer,
		MinDF:     minDF,
	}
}

// Vocabulary returns the fitted vocabulary, or nil before Fit.
func (cv *CountVectorizer) Vocabulary() Vocabulary {
	return cv.vocabulary
}

// Fit learns the vocabulary from docs. Tokens are indexed in lexicographic
// order. An empty corpus gives an empty vocabulary.
func (cv *CountVectorizer) Fit(docs []string) (Vocabulary, error) {
	df := make(map[string]int)
	for _, doc := range docs {
		tokens, err := cv.tokenizer.Tokenize(doc)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]bool, len(tokens))
		for _, t := range tokens {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	terms := make([]string, 0, len(df))
	for t, n := range df {
		if n >= cv.MinDF {
			terms = append(terms, t)
		}
	}
	sort.Strings(terms)

	vocab := make(Vocabulary, len(terms))
	for i, t := range terms {
		vocab[t] = i
	}
	cv.vocabulary = vocab
	return vocab, nil
}

// Transform projects docs onto the fitted vocabulary. Tokens that are not in
// the vocabulary are dropped.
func (cv *CountVectorizer) Transform(docs []string) ([]FeatureVector, error) {
	if cv.vocabulary == nil {
		return nil, ErrNotFitted
	}
	out := make([]FeatureVector, len(docs))
	var g errgroup.Group
	g.SetLimit(workerLimit(cv.Workers))
	for i := range docs {
		i := i
		g.Go(func() error {
			v, err := cv.transform(docs[i])
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FitTransform is Fit followed by Transform on the same documents.
func (cv *CountVectorizer) FitTransform(docs []string) ([]FeatureVector, error) {
	if _, err := cv.Fit(docs); err != nil {
		return nil, err
	}
	return cv.Transform(docs)
}

func (cv *CountVectorizer) transform(doc string) (FeatureVector, error) {
	v := FeatureVector{Dim: len(cv.vocabulary)}
	tokens, err := cv.tokenizer.Tokenize(doc)
	if err != nil {
		return v, err
	}
	counts := make(map[int]int, len(tokens))
	for _, t := range tokens {
		if i, ok := cv.vocabulary[t]; ok {
			counts[i]++
		}
	}
	v.Indices = make([]int, 0, len(counts))
	for i := range counts {
		v.Indices = append(v.Indices, i)
	}
	sort.Ints(v.Indices)
	v.Counts = make([]int, len(v.Indices))
	for j, i := range v.Indices {
		v.Counts[j] = counts[i]
	}
	return v, nil
}
