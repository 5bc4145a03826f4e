package services

import (
	"strings"

	"pcaf-advisory-api/pkg/models"
)

// Intent vocabularies. Portfolio hits are weighted double because a query
// about the caller's own book should win over generic methodology wording.
var (
	methodologyKeywords = []string{"pcaf", "option", "data quality", "wdqs", "attribution", "emission factor", "methodology"}
	calculationKeywords = []string{"calculate", "formula", "compute", "equation", "math", "number"}
	portfolioKeywords   = []string{"my portfolio", "our loans", "current score", "my data", "analyze portfolio"}
	complianceKeywords  = []string{"compliance", "regulatory", "audit", "requirement", "standard"}
)

// QueryClassifier derives a routing profile from a raw query using keyword
// scoring. It is stateless and safe for concurrent use.
type QueryClassifier struct{}

// NewQueryClassifier creates a new QueryClassifier.
func NewQueryClassifier() *QueryClassifier {
	return &QueryClassifier{}
}

// Classify scores the query against the four intent vocabularies and derives
// intent, complexity and live-data requirements.
func (c *QueryClassifier) Classify(query string) models.QueryClassification {
	lowerQuery := strings.ToLower(query)
	words := strings.Fields(lowerQuery)

	var foundKeywords []string
	countHits := func(keywords []string, weight int) int {
		score := 0
		for _, keyword := range keywords {
			if strings.Contains(lowerQuery, keyword) {
				score += weight
				foundKeywords = append(foundKeywords, keyword)
			}
		}
		return score
	}

	methodologyScore := countHits(methodologyKeywords, 1)
	calculationScore := countHits(calculationKeywords, 1)
	portfolioScore := countHits(portfolioKeywords, 2)
	complianceScore := countHits(complianceKeywords, 1)

	// Primary intent, portfolio first, then methodology, calculation,
	// compliance, defaulting to general.
	intent := models.IntentGeneral
	confidence := 0.5
	switch {
	case portfolioScore > 0:
		intent = models.IntentPortfolioAnalysis
		confidence = boundedConfidence(portfolioScore)
	case methodologyScore >= calculationScore && methodologyScore >= complianceScore && methodologyScore > 0:
		intent = models.IntentMethodology
		confidence = boundedConfidence(methodologyScore)
	case calculationScore > 0:
		intent = models.IntentCalculation
		confidence = boundedConfidence(calculationScore)
	case complianceScore > 0:
		intent = models.IntentCompliance
		confidence = boundedConfidence(complianceScore)
	}

	complexity := models.ComplexitySimple
	if len(words) > 15 || len(foundKeywords) > 3 {
		complexity = models.ComplexityComplex
	} else if len(words) > 8 || len(foundKeywords) > 1 {
		complexity = models.ComplexityModerate
	}

	return models.QueryClassification{
		Intent:                intent,
		Complexity:            complexity,
		RequiresLiveData:      portfolioScore > 0 || strings.Contains(lowerQuery, "current") || strings.Contains(lowerQuery, "my"),
		IsPortfolioSpecific:   portfolioScore > 0,
		IsMethodologyQuestion: methodologyScore > 0 && portfolioScore == 0,
		Confidence:            confidence,
		Keywords:              foundKeywords,
	}
}

func boundedConfidence(score int) float64 {
	confidence := 0.6 + float64(score)*0.1
	if confidence > 0.9 {
		return 0.9
	}
	return confidence
}
