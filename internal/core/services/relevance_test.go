package services

import (
	"testing"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
)

func scored(score float64, content string) *domain.ScoredPassage {
	return &domain.ScoredPassage{
		Passage: &domain.Passage{Content: content},
		Score:   score,
	}
}

func TestAreResultsRelevant_EmptyResults(t *testing.T) {
	if areResultsRelevant("what are the filing fees", nil) {
		t.Error("expected rejection for empty results")
	}
}

func TestAreResultsRelevant_TopScoreBelowThreshold(t *testing.T) {
	results := []*domain.ScoredPassage{
		scored(0.69, "filing fees are twenty five dollars per document"),
	}
	// Rejected regardless of term overlap
	if areResultsRelevant("what are the filing fees", results) {
		t.Error("expected rejection for top score 0.69")
	}
}

func TestAreResultsRelevant_NoTermOverlap(t *testing.T) {
	results := []*domain.ScoredPassage{
		scored(0.95, "completely unrelated text about maritime law"),
	}
	if areResultsRelevant("what are notary requirements", results) {
		t.Error("expected rejection with zero matching key terms")
	}
}

func TestAreResultsRelevant_AllTermsMatch(t *testing.T) {
	results := []*domain.ScoredPassage{
		scored(0.95, "Notary requirements include a state commission and a bond."),
	}
	if !areResultsRelevant("what are notary requirements", results) {
		t.Error("expected acceptance with all key terms matching")
	}
}

func TestAreResultsRelevant_HalfTermsMatch(t *testing.T) {
	results := []*domain.ScoredPassage{
		scored(0.9, "the notary commission process"),
	}
	// Key terms: notary, requirements -> 1 of 2 matches = 50%, accepted
	if !areResultsRelevant("what are notary requirements", results) {
		t.Error("expected acceptance at exactly 50% term match")
	}
}

func TestAreResultsRelevant_OnlyTopThreeConsidered(t *testing.T) {
	results := []*domain.ScoredPassage{
		scored(0.95, "alpha"),
		scored(0.90, "beta"),
		scored(0.85, "gamma"),
		scored(0.80, "notary requirements live down here"),
	}
	if areResultsRelevant("what are notary requirements", results) {
		t.Error("expected rejection when matches exist only below the top 3")
	}
}

func TestAreResultsRelevant_ZeroKeyTerms(t *testing.T) {
	results := []*domain.ScoredPassage{
		scored(0.95, "any content at all"),
	}
	// "what is the" yields no key terms; treated as irrelevant
	if areResultsRelevant("what is the", results) {
		t.Error("expected rejection for a question with zero key terms")
	}
}

func TestKeyTerms(t *testing.T) {
	terms := keyTerms("What are the Notary requirements for this state?")

	want := map[string]bool{"notary": true, "requirements": true, "state": true}
	if len(terms) != len(want) {
		t.Fatalf("expected %d terms, got %v", len(want), terms)
	}
	for _, term := range terms {
		if !want[term] {
			t.Errorf("unexpected term %q", term)
		}
	}
}
