package classifier

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	encunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FormatError is returned when a corpus line has no label/text separator.
type FormatError struct {
	Line int // 1-based
	Text string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("classifier: line %d has no label separator: %q", e.Line, e.Text)
}

// Corpus is an ordered collection of labeled documents. Documents[i] has
// label Labels[i].
type Corpus struct {
	Documents []string
	Labels    []string
}

// Len returns the number of documents in the corpus.
func (c *Corpus) Len() int {
	return len(c.Documents)
}

// ReadCorpus parses "<label> <text>" lines from r. Each line is split once,
// on its first whitespace character; the text keeps any further whitespace.
// Empty lines are skipped and a leading byte-order mark is dropped.
func ReadCorpus(r io.Reader) (*Corpus, error) {
	r = transform.NewReader(r, encunicode.BOMOverride(encunicode.UTF8.NewDecoder()))
	br := bufio.NewReader(r)
	c := &Corpus{}
	for n := 1; ; n++ {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("classifier: reading line %d: %w", n, err)
		}
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		if line != "" {
			label, text, ok := splitLine(line)
			if !ok {
				return nil, &FormatError{Line: n, Text: line}
			}
			c.Labels = append(c.Labels, label)
			c.Documents = append(c.Documents, text)
		}
		if err == io.EOF {
			return c, nil
		}
	}
}

// ReadCorpusFile opens path and reads it with ReadCorpus.
func ReadCorpusFile(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := ReadCorpus(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func splitLine(line string) (label, text string, ok bool) {
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i <= 0 {
		return "", "", false
	}
	_, size := utf8.DecodeRuneInString(line[i:])
	return line[:i], line[i+size:], true
}
