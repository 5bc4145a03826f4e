package services

import (
	"testing"

	"pcaf-advisory-api/pkg/models"
)

func TestScoreExactQuestion(t *testing.T) {
	scorer := NewMatchScorer()
	entry := models.QuestionEntry{
		ID:       "q1",
		Question: "What is my current portfolio data quality score?",
		Answer:   "test",
		BankingContext: map[string]bool{
			"dataQuality": true,
		},
	}

	score := scorer.Score("What is my current portfolio data quality score?", entry)
	if score < 0.99 {
		t.Errorf("Expected near-perfect score for identical query, got %.3f", score)
	}
}

func TestScoreUnrelatedQuery(t *testing.T) {
	scorer := NewMatchScorer()
	entry := models.QuestionEntry{
		ID:       "q1",
		Question: "What are the PCAF data quality options for motor vehicles?",
		Answer:   "test",
	}

	score := scorer.Score("What's the weather like today?", entry)
	if score >= EnhancedMatchThreshold {
		t.Errorf("Expected unrelated query to score below %.1f, got %.3f", EnhancedMatchThreshold, score)
	}
}

func TestScoreMonotonicInMatches(t *testing.T) {
	scorer := NewMatchScorer()
	entry := models.QuestionEntry{
		ID:       "q1",
		Question: "How do I calculate financed emissions for my motor vehicle portfolio?",
		Answer:   "test",
	}

	partial := scorer.Score("calculate emissions", entry)
	fuller := scorer.Score("calculate financed emissions for my motor vehicle portfolio", entry)
	if fuller <= partial {
		t.Errorf("Expected fuller query to score higher: partial=%.3f fuller=%.3f", partial, fuller)
	}
}

func TestFindBestMatchThreshold(t *testing.T) {
	scorer := NewMatchScorer()
	entries := []models.QuestionEntry{
		{ID: "q1", Question: "What are attribution factors?", Answer: "test"},
	}

	if _, found := scorer.FindBestMatch("Tell me a joke", entries, DefaultConfidenceThreshold); found {
		t.Error("Expected no match for unrelated query")
	}
	if _, found := scorer.FindBestMatch("What are attribution factors?", entries, DefaultConfidenceThreshold); !found {
		t.Error("Expected a match for the identical query")
	}
}

func TestFindBestMatchFirstWins(t *testing.T) {
	scorer := NewMatchScorer()
	// Identical questions: the first encountered entry must win ties.
	entries := []models.QuestionEntry{
		{ID: "first", Question: "What are attribution factors?", Answer: "a"},
		{ID: "second", Question: "What are attribution factors?", Answer: "b"},
	}

	match, found := scorer.FindBestMatch("What are attribution factors?", entries, 0.3)
	if !found {
		t.Fatal("Expected a match")
	}
	if match.Question.ID != "first" {
		t.Errorf("Expected first entry to win the tie, got %s", match.Question.ID)
	}
}

func TestConfidenceForScore(t *testing.T) {
	testCases := []struct {
		score    float64
		source   string
		expected models.Confidence
	}{
		{0.85, "base", models.ConfidenceHigh},
		{0.75, "enhanced", models.ConfidenceHigh}, // 0.75 + 0.1 boost
		{0.75, "base", models.ConfidenceMedium},
		{0.65, "base", models.ConfidenceMedium},
		{0.55, "enhanced", models.ConfidenceMedium},
		{0.4, "base", models.ConfidenceLow},
	}

	for _, tc := range testCases {
		result := ConfidenceForScore(tc.score, tc.source)
		if result != tc.expected {
			t.Errorf("ConfidenceForScore(%.2f, %s) = %s, expected %s",
				tc.score, tc.source, result, tc.expected)
		}
	}
}

func TestDecamel(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"dataQuality", "data quality"},
		{"regulatoryCompliance", "regulatory compliance"},
		{"portfolio", "portfolio"},
	}

	for _, tc := range testCases {
		if result := decamel(tc.input); result != tc.expected {
			t.Errorf("decamel(%s) = %q, expected %q", tc.input, result, tc.expected)
		}
	}
}
