package services

import (
	"strings"
	"unicode"

	"pcaf-advisory-api/pkg/models"
)

// Match thresholds. The weighted score is an open-ended heuristic: the three
// components are weighted 0.5/0.3/0.2 but their sum is deliberately not
// clamped to 1.0, so heavily-matching queries can score above the nominal
// high-confidence band.
const (
	EnhancedMatchThreshold     = 0.3
	DefaultConfidenceThreshold = 0.6
	HighConfidenceThreshold    = 0.8
	ExactMatchThreshold        = 0.9
	enhancedDatasetBoost       = 0.1
)

// keyPhrases is the fixed vocabulary of domain phrases used for exact-phrase
// matching.
var keyPhrases = []string{
	"data quality",
	"attribution factor",
	"pcaf score",
	"compliance",
	"portfolio",
	"financed emissions",
	"motor vehicle",
	"loan origination",
	"risk management",
}

// MatchResult is the transient outcome of scoring one entry against a query.
type MatchResult struct {
	Question models.QuestionEntry
	Score    float64
}

// MatchScorer computes relevance between a free-text query and curated
// question entries. It is stateless and safe for concurrent use.
type MatchScorer struct{}

// NewMatchScorer creates a new MatchScorer.
func NewMatchScorer() *MatchScorer {
	return &MatchScorer{}
}

// Score computes the weighted relevance of the query against a single entry.
// Each component only adds weight, so adding matching phrases, keywords or
// context flags to a query never lowers its score.
func (s *MatchScorer) Score(query string, entry models.QuestionEntry) float64 {
	lowerQuery := strings.ToLower(query)
	questionText := strings.ToLower(entry.Question)

	// Exact phrase matching (highest weight).
	entryPhrases := extractKeyPhrases(questionText)
	exactMatches := 0
	for _, phrase := range entryPhrases {
		if strings.Contains(lowerQuery, phrase) {
			exactMatches++
		}
	}

	// Keyword overlap over words longer than 3 characters.
	queryWords := significantWords(lowerQuery)
	questionWords := significantWords(questionText)
	keywordMatches := 0
	for _, word := range queryWords {
		if containsWord(questionWords, word) {
			keywordMatches++
		}
	}

	// Banking context flags, de-camel-cased to spaced words.
	contextMatches := 0
	for flag := range entry.BankingContext {
		if strings.Contains(lowerQuery, decamel(flag)) {
			contextMatches++
		}
	}

	const (
		exactWeight   = 0.5
		keywordWeight = 0.3
		contextWeight = 0.2
	)

	score := float64(exactMatches)/float64(max(len(entryPhrases), 1))*exactWeight +
		float64(keywordMatches)/float64(max(len(queryWords), 1))*keywordWeight +
		float64(contextMatches)/float64(max(len(entry.BankingContext), 1))*contextWeight

	return score
}

// FindBestMatch scores every entry and returns the best one if it clears the
// threshold. Ties are broken by first-encountered order: a later entry has to
// strictly beat the current best to replace it.
func (s *MatchScorer) FindBestMatch(query string, entries []models.QuestionEntry, threshold float64) (MatchResult, bool) {
	var best MatchResult
	for _, entry := range entries {
		score := s.Score(query, entry)
		if score > best.Score {
			best = MatchResult{Question: entry, Score: score}
		}
	}
	if best.Score > threshold {
		return best, true
	}
	return MatchResult{}, false
}

// extractKeyPhrases returns the domain key phrases present in the text.
func extractKeyPhrases(text string) []string {
	var present []string
	for _, phrase := range keyPhrases {
		if strings.Contains(text, phrase) {
			present = append(present, phrase)
		}
	}
	return present
}

// significantWords splits text into words longer than 3 characters.
func significantWords(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	var words []string
	for _, field := range fields {
		if len(field) > 3 {
			words = append(words, field)
		}
	}
	return words
}

func containsWord(words []string, word string) bool {
	for _, w := range words {
		if w == word {
			return true
		}
	}
	return false
}

// decamel turns a camelCase flag name into lowercased spaced words, e.g.
// "regulatoryCompliance" -> "regulatory compliance".
func decamel(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// ConfidenceForScore maps a match score to a discrete confidence band.
// Enhanced-tier matches get a fixed boost before banding, so confidence is a
// pure function of score and dataset source.
func ConfidenceForScore(score float64, datasetSource string) models.Confidence {
	adjusted := score
	if datasetSource == "enhanced" {
		adjusted += enhancedDatasetBoost
	}
	switch {
	case adjusted >= HighConfidenceThreshold:
		return models.ConfidenceHigh
	case adjusted >= DefaultConfidenceThreshold:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
