// Package preprocess handles preprocessing and tokenisation of post text.
package preprocess

import (
	"strings"
	"unicode"

	"github.com/bbalet/stopwords"
	"github.com/hashicorp/golang-lru"
	"github.com/hscells/go-unidecode"
	"github.com/jdkato/prose/v2"
	"github.com/pkg/errors"
	"github.com/reiver/go-porterstemmer"
)

// TextProcessor is applied to text before it is tokenised.
type TextProcessor func(text string) string

// DefaultProcessors transliterate, lowercase and remove stopwords and markup.
var DefaultProcessors = []TextProcessor{Unidecode, Lowercase, StripStopwords}

// Lowercase transforms all capital letters to lowercase.
func Lowercase(text string) string {
	return strings.ToLower(text)
}

// Unidecode transliterates text into ASCII.
func Unidecode(text string) string {
	return unidecode.Unidecode(text)
}

// StripStopwords removes HTML tags and English stopwords.
func StripStopwords(text string) string {
	return stopwords.CleanString(text, "en", true)
}

// Tokeniser splits text into tokens, optionally stemming them.
type Tokeniser struct {
	processors []TextProcessor
	stems      *lru.Cache
}

// TokeniserProcessors replaces the processors applied before tokenisation.
func TokeniserProcessors(processors ...TextProcessor) func(*Tokeniser) {
	return func(t *Tokeniser) {
		t.processors = processors
	}
}

// TokeniserStemming stems tokens, remembering the stems of up to size distinct tokens.
func TokeniserStemming(size int) func(*Tokeniser) {
	return func(t *Tokeniser) {
		// lru.New only fails for a non-positive size.
		if size <= 0 {
			size = 1
		}
		t.stems, _ = lru.New(size)
	}
}

// NewTokeniser creates a tokeniser using the default processors and no stemming.
func NewTokeniser(options ...func(*Tokeniser)) *Tokeniser {
	t := &Tokeniser{processors: DefaultProcessors}
	for _, option := range options {
		option(t)
	}
	return t
}

// Stemming reports whether tokens are stemmed.
func (t *Tokeniser) Stemming() bool {
	return t.stems != nil
}

// Tokenise returns the tokens of text which have at least two word characters (letters, digits or underscores).
func (t *Tokeniser) Tokenise(text string) ([]string, error) {
	for _, p := range t.processors {
		text = p(text)
	}
	doc, err := prose.NewDocument(text, prose.WithTagging(false), prose.WithExtraction(false), prose.WithSegmentation(false))
	if err != nil {
		return nil, errors.Wrap(err, "tokenising")
	}

	var tokens []string
	for _, tok := range doc.Tokens() {
		if !keep(tok.Text) {
			continue
		}
		if t.stems != nil {
			tokens = append(tokens, t.stem(tok.Text))
		} else {
			tokens = append(tokens, tok.Text)
		}
	}
	return tokens, nil
}

func (t *Tokeniser) stem(token string) string {
	if s, ok := t.stems.Get(token); ok {
		return s.(string)
	}
	s := porterstemmer.StemString(token)
	t.stems.Add(token, s)
	return s
}

func keep(token string) bool {
	var n int
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			n++
		}
	}
	return n >= 2
}
