package features

import (
	"regexp"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
	"golang.org/x/text/unicode/norm"
)

// analyzerName is the custom analyzer registered on the tokenizer's mapping:
// unicode word segmentation, lowercasing, English stop-word removal.
// No stemming, so terms stay readable in column diagnostics.
const analyzerName = "tfidf_en"

// minTokenLength drops single-character tokens.
const minTokenLength = 2

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// markdownLinkPattern matches markdown links and images left by HTML conversion.
// Only the link text is kept; targets would otherwise tokenize as "https" and host names.
var markdownLinkPattern = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)

// Tokenizer splits free text into index terms.
type Tokenizer struct {
	mapping *mapping.IndexMappingImpl
}

// NewTokenizer builds a tokenizer backed by a Bleve analysis chain.
func NewTokenizer() (*Tokenizer, error) {
	im := bleve.NewIndexMapping()
	err := im.AddCustomAnalyzer(analyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name, en.StopName},
	})
	if err != nil {
		return nil, err
	}
	return &Tokenizer{mapping: im}, nil
}

// Tokens returns the terms of text in order of appearance.
func (t *Tokenizer) Tokens(text string) ([]string, error) {
	text = cleanText(text)
	if text == "" {
		return nil, nil
	}

	stream, err := t.mapping.AnalyzeText(analyzerName, []byte(text))
	if err != nil {
		return nil, err
	}

	terms := make([]string, 0, len(stream))
	for _, tok := range stream {
		if utf8.RuneCount(tok.Term) < minTokenLength {
			continue
		}
		terms = append(terms, string(tok.Term))
	}
	return terms, nil
}

// cleanText turns a raw synopsis into plain, valid UTF-8 text in NFKC form,
// so ligatures and full-width forms tokenize like ASCII.
func cleanText(s string) string {
	// The segmenter stops at the first invalid byte.
	s = strings.TrimSpace(strings.ToValidUTF8(s, " "))
	if s == "" {
		return ""
	}
	if htmlTagPattern.MatchString(strings.ToLower(s)) {
		if markdown, err := htmltomarkdown.ConvertString(s); err == nil {
			s = markdownLinkPattern.ReplaceAllString(markdown, "$1")
		}
	}
	return norm.NFKC.String(s)
}
