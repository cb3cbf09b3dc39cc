package features

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Vectorizer computes bounded-vocabulary TF-IDF embeddings.
//
// The vocabulary is the MaxFeatures most frequent terms across the corpus
// (ties broken alphabetically), emitted in alphabetical order. Weights are raw
// counts times smoothed idf, ln((1+n)/(1+df))+1, and each row is scaled to
// unit L2 norm. Empty documents produce zero rows.
type Vectorizer struct {
	MaxFeatures int
	tokenizer   *Tokenizer
}

// NewVectorizer creates a vectorizer capped at maxFeatures terms.
func NewVectorizer(tokenizer *Tokenizer, maxFeatures int) *Vectorizer {
	return &Vectorizer{MaxFeatures: maxFeatures, tokenizer: tokenizer}
}

// FitTransform learns the vocabulary of docs and returns it together with one
// embedding row per document, in input order.
func (v *Vectorizer) FitTransform(docs []string) ([]string, [][]float64, error) {
	counts := make([]map[string]int, len(docs))
	docFreq := make(map[string]int)
	totalFreq := make(map[string]int)

	for i, doc := range docs {
		terms, err := v.tokenizer.Tokens(doc)
		if err != nil {
			return nil, nil, fmt.Errorf("tokenize document %d: %w", i, err)
		}
		c := make(map[string]int, len(terms))
		for _, term := range terms {
			c[term]++
			totalFreq[term]++
		}
		for term := range c {
			docFreq[term]++
		}
		counts[i] = c
	}

	vocab := v.selectVocabulary(totalFreq)
	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for j, term := range vocab {
		idf[j] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	rows := make([][]float64, len(docs))
	for i, c := range counts {
		row := make([]float64, len(vocab))
		for j, term := range vocab {
			if tf := c[term]; tf > 0 {
				row[j] = float64(tf) * idf[j]
			}
		}
		if len(row) > 0 {
			if l2 := floats.Norm(row, 2); l2 > 0 {
				floats.Scale(1/l2, row)
			}
		}
		rows[i] = row
	}
	return vocab, rows, nil
}

func (v *Vectorizer) selectVocabulary(totalFreq map[string]int) []string {
	terms := make([]string, 0, len(totalFreq))
	for term := range totalFreq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if totalFreq[terms[i]] != totalFreq[terms[j]] {
			return totalFreq[terms[i]] > totalFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)
	return terms
}
