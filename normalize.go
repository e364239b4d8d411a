package classifier

import (
	"regexp"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

var nonLetters = regexp.MustCompile(`[^a-zA-Z]+`)

// Normalize maps raw document text to its cleaned form: every run of
// characters other than ASCII letters becomes a single space, letters are
// lowercased and the result is re-joined with single spaces. Common words
// are kept. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = nonLetters.ReplaceAllString(s, " ")
	// only ASCII letters and spaces are left
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeAll returns Normalize applied to every document, in input order.
// Work is spread over at most workers goroutines (GOMAXPROCS when workers < 1).
func NormalizeAll(docs []string, workers int) []string {
	out := make([]string, len(docs))
	var g errgroup.Group
	g.SetLimit(workerLimit(workers))
	for i := range docs {
		i := i
		g.Go(func() error {
			out[i] = Normalize(docs[i])
			return nil
		})
	}
	// Normalize can't fail; the group only bounds concurrency.
	_ = g.Wait()
	return out
}

func workerLimit(workers int) int {
	if workers < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return workers
}
