// Package similarity scores problem descriptions against each other with
// TF-IDF weighted term vectors and cosine similarity. The vector space is
// fitted per query corpus; nothing is persisted between queries.
package similarity

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

const (
	// Threshold is the exclusive minimum score for a match.
	Threshold = 0.3

	// MaxFeatures caps the vocabulary at the most frequent terms.
	MaxFeatures = 1000
)

var (
	codeFenceRe = regexp.MustCompile("(?s)```.*?```")
	nonWordRe   = regexp.MustCompile(`[^\w\s]`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// Preprocess strips fenced code blocks and punctuation, collapses
// whitespace and lowercases the text.
func Preprocess(text string) string {
	text = codeFenceRe.ReplaceAllString(text, "")
	text = nonWordRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.ToLower(strings.TrimSpace(text))
}

// Terms returns the unigram and bigram terms of text after stop-word
// removal. Tokens shorter than two characters are dropped.
func Terms(text string) []string {
	var tokens []string
	for _, tok := range strings.Fields(Preprocess(text)) {
		if len([]rune(tok)) < 2 || stopWords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	terms := make([]string, 0, 2*len(tokens))
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

// Vector is a sparse, L2-normalized term weight vector.
type Vector map[string]float64

// Dot returns the inner product of two vectors. For normalized vectors
// this is their cosine similarity.
func (v Vector) Dot(o Vector) float64 {
	if len(o) < len(v) {
		v, o = o, v
	}
	var sum float64
	for _, term := range v.terms() {
		sum += v[term] * o[term]
	}
	return sum
}

// terms returns the vector's terms in sorted order so that floating-point
// sums are reproducible.
func (v Vector) terms() []string {
	out := make([]string, 0, len(v))
	for term := range v {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}

// Index is a fitted vocabulary with smoothed inverse document
// frequencies.
type Index struct {
	idf map[string]float64
}

// Fit builds the vocabulary over docs. idf(t) = ln((1+n)/(1+df(t))) + 1.
func Fit(docs []string) *Index {
	df := make(map[string]int)
	tf := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range Terms(doc) {
			tf[term]++
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	vocab := make([]string, 0, len(tf))
	for term := range tf {
		vocab = append(vocab, term)
	}
	if len(vocab) > MaxFeatures {
		sort.Slice(vocab, func(i, j int) bool {
			if tf[vocab[i]] != tf[vocab[j]] {
				return tf[vocab[i]] > tf[vocab[j]]
			}
			return vocab[i] < vocab[j]
		})
		vocab = vocab[:MaxFeatures]
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(vocab))
	for _, term := range vocab {
		idf[term] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return &Index{idf: idf}
}

// Vocabulary returns the number of terms in the index.
func (ix *Index) Vocabulary() int {
	return len(ix.idf)
}

// Vector weights text against the fitted vocabulary. Terms outside the
// vocabulary are ignored. Text with no known terms yields an empty vector.
func (ix *Index) Vector(text string) Vector {
	counts := make(map[string]int)
	for _, term := range Terms(text) {
		if _, ok := ix.idf[term]; ok {
			counts[term]++
		}
	}
	v := make(Vector, len(counts))
	for term, c := range counts {
		v[term] = float64(c) * ix.idf[term]
	}
	var norm float64
	for _, term := range v.terms() {
		norm += v[term] * v[term]
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for term := range v {
		v[term] /= norm
	}
	return v
}

// Score returns the cosine similarity of a and b in this index, clamped
// to [0, 1].
func (ix *Index) Score(a, b string) float64 {
	return clamp(ix.Vector(a).Dot(ix.Vector(b)))
}

func clamp(s float64) float64 {
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}
