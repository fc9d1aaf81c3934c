// Package featurize turns prepared posts into TF-IDF weighted bag of words matrices.
package featurize

import (
	"context"
	"runtime"
	"sort"
	"strings"

	"github.com/hscells/tagpipe/preprocess"
	"golang.org/x/sync/errgroup"
)

// Vector is a sparse row. Indices are strictly increasing.
type Vector struct {
	Indices []int
	Values  []float64
}

// Vectorizer counts the n-grams of a fixed vocabulary.
type Vectorizer struct {
	maxFeatures int
	ngrams      int
	tokeniser   *preprocess.Tokeniser
	cache       TokenCache

	names []string
	index map[string]int
}

// VectorizerMaxFeatures limits the vocabulary to the n most frequent terms.
func VectorizerMaxFeatures(n int) func(*Vectorizer) {
	return func(v *Vectorizer) {
		v.maxFeatures = n
	}
}

// VectorizerNGrams counts every n-gram from unigrams up to n.
func VectorizerNGrams(n int) func(*Vectorizer) {
	return func(v *Vectorizer) {
		v.ngrams = n
	}
}

// VectorizerTokeniser sets the tokeniser.
func VectorizerTokeniser(t *preprocess.Tokeniser) func(*Vectorizer) {
	return func(v *Vectorizer) {
		v.tokeniser = t
	}
}

// VectorizerTokenCache looks tokens up in c before tokenising.
func VectorizerTokenCache(c TokenCache) func(*Vectorizer) {
	return func(v *Vectorizer) {
		v.cache = c
	}
}

// NewVectorizer creates an unfitted vectorizer of unigrams over at most 100 features.
func NewVectorizer(options ...func(*Vectorizer)) *Vectorizer {
	v := &Vectorizer{
		maxFeatures: 100,
		ngrams:      1,
	}
	for _, option := range options {
		option(v)
	}
	if v.tokeniser == nil {
		v.tokeniser = preprocess.NewTokeniser()
	}
	return v
}

// NGrams joins every run of 1 to n consecutive tokens with a space.
func NGrams(tokens []string, n int) []string {
	var grams []string
	for size := 1; size <= n; size++ {
		for i := 0; i+size <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+size], " "))
		}
	}
	return grams
}

func (v *Vectorizer) terms(text string) ([]string, error) {
	if v.cache != nil {
		if tokens, ok := v.cache.Get(text); ok {
			return NGrams(tokens, v.ngrams), nil
		}
	}
	tokens, err := v.tokeniser.Tokenise(text)
	if err != nil {
		return nil, err
	}
	if v.cache != nil {
		if err := v.cache.Set(text, tokens); err != nil {
			return nil, err
		}
	}
	return NGrams(tokens, v.ngrams), nil
}

// Analyse returns the n-grams of each text, tokenising texts concurrently.
func (v *Vectorizer) Analyse(ctx context.Context, texts []string) ([][]string, error) {
	docs := make([][]string, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			terms, err := v.terms(text)
			docs[i] = terms
			return err
		})
	}
	return docs, g.Wait()
}

// Fit builds the vocabulary from the most frequent terms of docs. Terms with equal counts are taken
// in alphabetical order. Feature names are sorted alphabetically.
func (v *Vectorizer) Fit(docs [][]string) {
	counts := make(map[string]int)
	for _, doc := range docs {
		for _, term := range doc {
			counts[term]++
		}
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > v.maxFeatures {
		terms = terms[:v.maxFeatures]
	}
	sort.Strings(terms)

	v.names = terms
	v.index = make(map[string]int, len(terms))
	for i, term := range terms {
		v.index[term] = i
	}
}

// FeatureNames returns the vocabulary, in column order.
func (v *Vectorizer) FeatureNames() []string {
	return v.names
}

// Transform counts the vocabulary terms of each doc. Terms outside the vocabulary are ignored.
func (v *Vectorizer) Transform(docs [][]string) []Vector {
	vectors := make([]Vector, len(docs))
	for i, doc := range docs {
		counts := make(map[int]float64)
		for _, term := range doc {
			if j, ok := v.index[term]; ok {
				counts[j]++
			}
		}
		vec := Vector{
			Indices: make([]int, 0, len(counts)),
			Values:  make([]float64, 0, len(counts)),
		}
		for j := range counts {
			vec.Indices = append(vec.Indices, j)
		}
		sort.Ints(vec.Indices)
		for _, j := range vec.Indices {
			vec.Values = append(vec.Values, counts[j])
		}
		vectors[i] = vec
	}
	return vectors
}
