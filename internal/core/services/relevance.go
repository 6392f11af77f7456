package services

import (
	"strings"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
)

// Relevance acceptance policy: the retrieved set must clear a minimum top
// score, and the question's key terms must actually appear in the top
// passages before the language model is consulted.
const (
	relevanceScoreThreshold = 0.7
	relevanceTopN           = 3
	relevanceTermRatio      = 0.5
	minKeyTermLength        = 3
)

var relevanceStopwords = map[string]struct{}{
	"what": {}, "when": {}, "where": {}, "how": {}, "why": {}, "who": {},
	"the": {}, "and": {}, "for": {}, "that": {}, "this": {},
}

// areResultsRelevant decides whether the retrieved passages are trustworthy
// enough to answer from, versus falling back to a "no data" response
func areResultsRelevant(question string, results []*domain.ScoredPassage) bool {
	if len(results) == 0 {
		return false
	}
	if results[0].Score < relevanceScoreThreshold {
		return false
	}

	terms := keyTerms(question)
	if len(terms) == 0 {
		// No extractable signal from the question: treat as irrelevant
		return false
	}

	top := results
	if len(top) > relevanceTopN {
		top = top[:relevanceTopN]
	}
	var sb strings.Builder
	for _, r := range top {
		sb.WriteString(strings.ToLower(r.Passage.Content))
		sb.WriteString(" ")
	}
	content := sb.String()

	matched := 0
	for _, term := range terms {
		if strings.Contains(content, term) {
			matched++
		}
	}

	return float64(matched)/float64(len(terms)) >= relevanceTermRatio
}

// keyTerms extracts lowercased question words longer than three characters,
// excluding interrogative stopwords
func keyTerms(question string) []string {
	fields := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})

	var terms []string
	for _, f := range fields {
		if len(f) <= minKeyTermLength {
			continue
		}
		if _, stop := relevanceStopwords[f]; stop {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}
