// Package tfidf builds TF-IDF document vectors over the article corpus.
//
// The model is rebuilt wholesale whenever the corpus changes; there is no incremental
// update. Every vector has one entry per vocabulary term, aligned with the sorted
// vocabulary.
package tfidf

import (
	"math"

	"github.com/jonathan/news-recommender/internal/textproc"
	"github.com/jonathan/news-recommender/internal/types"
)

// Options controls how article text is turned into terms.
type Options struct {
	// Tokenizer splits text into terms. Nil uses textproc defaults.
	Tokenizer *textproc.Tokenizer
	// StripMarkup removes HTML from content and summary before tokenizing.
	StripMarkup bool
}

// Model is an immutable TF-IDF model over one corpus snapshot.
type Model struct {
	vocabulary []string
	index      map[string]int
	vectors    map[int64][]float64
	documents  int
}

// Build tokenizes every article, derives the sorted vocabulary and computes one
// vector per article keyed by article id.
//
// tf is count/terms-in-document (0 for a document without terms) and idf is
// ln(N/(df+1)). The +1 smoothing makes idf negative for a term present in every
// document, which down-weights ubiquitous terms below zero.
func Build(articles []types.Article, opts Options) *Model {
	tok := opts.Tokenizer
	if tok == nil {
		tok = textproc.NewTokenizer(textproc.DefaultMinTokenLength)
	}

	termCounts := make([]map[string]int, len(articles))
	docTokens := make([][]string, len(articles))
	for i := range articles {
		tokens := tok.Tokens(documentText(&articles[i], opts.StripMarkup))
		docTokens[i] = tokens
		termCounts[i] = textproc.TermFrequency(tokens)
	}

	vocabulary := textproc.BuildVocabulary(docTokens)
	index := make(map[string]int, len(vocabulary))
	for i, term := range vocabulary {
		index[term] = i
	}

	// Counted in a single pass; equal to scanning every document per term.
	docFreq := make(map[string]int, len(vocabulary))
	for _, counts := range termCounts {
		for term := range counts {
			docFreq[term]++
		}
	}

	n := float64(len(articles))
	vectors := make(map[int64][]float64, len(articles))
	for i := range articles {
		vectors[articles[i].ID] = documentVector(termCounts[i], vocabulary, docFreq, n)
	}

	return &Model{
		vocabulary: vocabulary,
		index:      index,
		vectors:    vectors,
		documents:  len(articles),
	}
}

func documentText(a *types.Article, stripMarkup bool) string {
	if !stripMarkup {
		return a.Text()
	}
	return a.Title + " " + textproc.StripMarkup(a.Content) + " " + textproc.StripMarkup(a.Summary)
}

func documentVector(counts map[string]int, vocabulary []string, docFreq map[string]int, n float64) []float64 {
	vector := make([]float64, len(vocabulary))

	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return vector
	}

	for i, term := range vocabulary {
		c := counts[term]
		if c == 0 {
			continue
		}
		tf := float64(c) / float64(total)
		idf := math.Log(n / float64(docFreq[term]+1))
		vector[i] = tf * idf
	}
	return vector
}

// Ready reports whether a model has been built. It is safe on a nil model.
func (m *Model) Ready() bool {
	return m != nil
}

// Vocabulary returns the sorted vocabulary. Callers must not modify it.
func (m *Model) Vocabulary() []string {
	if m == nil {
		return nil
	}
	return m.vocabulary
}

// Dimension is the vocabulary size, which is also every vector's length.
func (m *Model) Dimension() int {
	if m == nil {
		return 0
	}
	return len(m.vocabulary)
}

// Documents is the number of articles the model was built from.
func (m *Model) Documents() int {
	if m == nil {
		return 0
	}
	return m.documents
}

// Vector returns the TF-IDF vector of an article. The second result is false when
// the model is not built or the id is unknown. Callers must not modify the slice.
func (m *Model) Vector(articleID int64) ([]float64, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.vectors[articleID]
	return v, ok
}

// Vectors returns the vectors for the given ids that exist in the model.
func (m *Model) Vectors(articleIDs []int64) map[int64][]float64 {
	out := make(map[int64][]float64, len(articleIDs))
	for _, id := range articleIDs {
		if v, ok := m.Vector(id); ok {
			out[id] = v
		}
	}
	return out
}

// TermIndex returns the vector position of a term.
func (m *Model) TermIndex(term string) (int, bool) {
	if m == nil {
		return 0, false
	}
	i, ok := m.index[term]
	return i, ok
}
