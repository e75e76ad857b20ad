// Package search provides a small, deterministic, concurrency-safe in-memory
// matcher for short labeled texts such as skill titles and friend names. It is
// intentionally dependency-free:
//
//   - No logging in the library (callers decide how/what to log)
//   - Unicode-aware tokenization with optional stop-word removal
//   - Immutable, read-only index after construction (safe for concurrent use)
//   - Deterministic scoring and sorting (stable order for ties)
//
// Scoring uses Jaccard similarity between the query token set and each
// entry's token set: score = |Q ∩ E| / |Q ∪ E|.
package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Entry is one searchable item: an opaque id and the text it is matched by.
type Entry struct {
	ID   string
	Text string
}

// Match is a ranked entry with its similarity score.
type Match struct {
	ID    string
	Text  string
	Score float64
}

// Index is the minimal interface implemented by all matchers.
type Index interface {
	TopK(query string, k int) []Match
}

// Option configures index construction.
type Option func(*config)

type config struct {
	stopwords map[string]struct{}
	maxDocs   int
}

func defaultConfig() config {
	return config{stopwords: nil, maxDocs: 0}
}

// WithStopwords removes the given words from every token set.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithMaxDocs caps how many entries are indexed.
func WithMaxDocs(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDocs = n
		}
	}
}

type doc struct {
	id     string
	text   string
	tokens map[string]struct{}
	tLen   int
}

type index struct {
	cfg  config
	docs []doc
}

// NewIndex builds an Index over the given entries. Entries whose text
// tokenizes to nothing are skipped.
func NewIndex(entries []Entry, opts ...Option) Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	docs := make([]doc, 0, len(entries))
	for _, e := range entries {
		t := strings.TrimSpace(normalizeWhitespace(e.Text))
		if t == "" {
			continue
		}
		toks := tokenize(t, cfg.stopwords)
		if len(toks) == 0 {
			continue
		}
		docs = append(docs, doc{id: e.ID, text: t, tokens: toks, tLen: len(toks)})
		if cfg.maxDocs > 0 && len(docs) >= cfg.maxDocs {
			break
		}
	}
	return &index{cfg: cfg, docs: docs}
}

// TopK returns up to k best-matching entries by Jaccard similarity.
func (i *index) TopK(q string, k int) []Match {
	if len(i.docs) == 0 {
		return nil
	}
	if strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 3
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}
	qLen := len(qTokens)

	type scored struct {
		id       string
		text     string
		score    float64
		lenRunes int
	}

	buf := make([]scored, 0, len(i.docs))
	for _, d := range i.docs {
		over := overlap(qTokens, d.tokens)
		if over == 0 {
			continue
		}
		union := float64(qLen + d.tLen - over)
		if union <= 0 {
			continue
		}
		score := float64(over) / union
		buf = append(buf, scored{
			id:       d.id,
			text:     d.text,
			score:    score,
			lenRunes: utf8.RuneCountInString(d.text),
		})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		if buf[a].lenRunes != buf[b].lenRunes {
			return buf[a].lenRunes < buf[b].lenRunes
		}
		return buf[a].text < buf[b].text
	})

	if k > len(buf) {
		k = len(buf)
	}
	out := make([]Match, k)
	for n := 0; n < k; n++ {
		out[n] = Match{ID: buf[n].id, Text: buf[n].text, Score: buf[n].score}
	}
	return out
}

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	s = strings.ToLower(s)
	words := wordRE.FindAllString(s, -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		if stop != nil {
			if _, skip := stop[w]; skip {
				continue
			}
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := 0
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
