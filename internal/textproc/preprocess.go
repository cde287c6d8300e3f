// Package textproc turns raw article text into normalized tokens for term weighting.
package textproc

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultMinTokenLength is the shortest token kept: tokens of three characters or fewer are dropped.
const DefaultMinTokenLength = 4

var (
	// anything that is not a word character, whitespace or Devanagari becomes a separator
	punctuation = regexp.MustCompile(`[^\w\s\x{0900}-\x{097F}]`)
	// a token survives only if it is made entirely of Latin or Devanagari letters
	letterToken = regexp.MustCompile(`^[a-zA-Z\x{0900}-\x{097F}]+$`)
)

var englishStopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		the a an and or but in on at to for of with by this that is are was were be been
		have has had do does did will would could should it they them their there where when
		what who how why can may might must shall from up out down off over under again
		further then once`) {
		englishStopwords[w] = struct{}{}
	}
}

// IsStopword reports whether w is in the English stopword list.
func IsStopword(w string) bool {
	_, ok := englishStopwords[w]
	return ok
}

// Tokenizer splits text into filtered, lowercased tokens.
type Tokenizer struct {
	// MinLength is the minimum number of characters a token needs to be kept.
	MinLength int
}

// NewTokenizer returns a Tokenizer with the given minimum token length.
// Non-positive values fall back to DefaultMinTokenLength.
func NewTokenizer(minLength int) *Tokenizer {
	if minLength <= 0 {
		minLength = DefaultMinTokenLength
	}
	return &Tokenizer{MinLength: minLength}
}

// Tokens lowercases text, turns punctuation into whitespace and returns the tokens
// that are not stopwords, are long enough and consist only of Latin or Devanagari letters.
func (t *Tokenizer) Tokens(text string) []string {
	cleaned := punctuation.ReplaceAllString(strings.ToLower(text), " ")

	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if IsStopword(f) {
			continue
		}
		if utf8.RuneCountInString(f) < t.MinLength {
			continue
		}
		if !letterToken.MatchString(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

var defaultTokenizer = NewTokenizer(DefaultMinTokenLength)

// Preprocess tokenizes text with the default minimum token length.
func Preprocess(text string) []string {
	return defaultTokenizer.Tokens(text)
}

// TermFrequency counts how often each token occurs.
func TermFrequency(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		freq[tok]++
	}
	return freq
}

// BuildVocabulary returns the sorted set of distinct terms across all documents.
// The sort order fixes each term's vector index.
func BuildVocabulary(documents [][]string) []string {
	seen := make(map[string]struct{})
	for _, doc := range documents {
		for _, term := range doc {
			seen[term] = struct{}{}
		}
	}

	vocab := make([]string, 0, len(seen))
	for term := range seen {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)
	return vocab
}
