package services

import (
	"log"

	"pcaf-advisory-api/pkg/models"
)

// PureDatasetRAGService answers queries exclusively from the curated Q&A
// datasets: no generative calls, only pre-authored answers. The lookup
// cascades enhanced tier -> base tier -> safe fallback, moving to the next
// tier only when the current tier's best score fails the threshold.
type PureDatasetRAGService struct {
	bank      *QuestionBank
	scorer    *MatchScorer
	enhancer  *ContextEnhancer
	threshold float64
}

// NewPureDatasetRAGService wires the service. threshold <= 0 selects the
// default minimum confidence threshold.
func NewPureDatasetRAGService(bank *QuestionBank, scorer *MatchScorer, enhancer *ContextEnhancer, threshold float64) *PureDatasetRAGService {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &PureDatasetRAGService{
		bank:      bank,
		scorer:    scorer,
		enhancer:  enhancer,
		threshold: threshold,
	}
}

// ProcessQuery resolves a query through the tier cascade. It always returns a
// well-formed response with non-empty follow-up questions.
func (s *PureDatasetRAGService) ProcessQuery(req models.RAGRequest) models.RAGResponse {
	role := req.UserRole
	if !role.Valid() {
		role = models.RoleRiskManager
	}

	if match, found := s.scorer.FindBestMatch(req.Query, s.bank.EnhancedEntries(), s.threshold); found {
		log.Printf("[PURE RAG] Enhanced match %s (score %.2f) for query %q", match.Question.ID, match.Score, req.Query)
		return s.formatResponse(match, role, req.PortfolioContext, "enhanced")
	}

	if match, found := s.scorer.FindBestMatch(req.Query, s.bank.BaseEntries(), s.threshold); found {
		log.Printf("[PURE RAG] Base match %s (score %.2f) for query %q", match.Question.ID, match.Score, req.Query)
		return s.formatResponse(match, role, req.PortfolioContext, "base")
	}

	log.Printf("[PURE RAG] No suitable match for query %q", req.Query)
	return s.safeFallbackResponse()
}

func (s *PureDatasetRAGService) formatResponse(match MatchResult, role models.UserRole, pc *models.PortfolioContext, source string) models.RAGResponse {
	entry := match.Question

	// Role-specific answer variants override the default answer.
	answer := entry.Answer
	if variant, ok := entry.RoleAnswers[string(role)]; ok && variant != "" {
		answer = variant
	}

	if pc != nil {
		answer = s.enhancer.Enhance(answer, pc, role)
	}

	sources := entry.Sources
	if len(sources) == 0 {
		if source == "enhanced" {
			sources = []string{"Enhanced PCAF Motor Vehicle Dataset"}
		} else {
			sources = []string{"PCAF Motor Vehicle Dataset"}
		}
	}
	followUps := entry.FollowUp
	if len(followUps) == 0 {
		followUps = defaultFollowUpQuestions
	}

	return models.RAGResponse{
		Response:          answer,
		Confidence:        ConfidenceForScore(match.Score, source),
		Sources:           sources,
		FollowUpQuestions: followUps,
		BankingContext:    entry.BankingContext,
		MatchedQuestionID: entry.ID,
		IsExactMatch:      match.Score > ExactMatchThreshold,
		DatasetSource:     source,
	}
}

func (s *PureDatasetRAGService) safeFallbackResponse() models.RAGResponse {
	text := "**No Exact Match Found**\n\n" +
		"I couldn't find a specific answer to that in my validated PCAF motor vehicle knowledge base.\n\n" +
		"**To get accurate information, please try:**\n\n" +
		"• **Be more specific**: Ask about specific PCAF topics like \"data quality options\" or \"attribution factors\"\n" +
		"• **Use PCAF terminology**: Include terms like \"WDQS\", \"Option 1-5\", or \"motor vehicle emissions\"\n" +
		"• **Focus on motor vehicles**: This system specializes in motor vehicle PCAF methodology only\n\n" +
		"**Common topics I can help with:**\n" +
		"• PCAF data quality options (1-5)\n" +
		"• Weighted Data Quality Score (WDQS) calculations\n" +
		"• Attribution factors and emission calculations\n" +
		"• Portfolio data quality improvement strategies\n" +
		"• Compliance requirements and thresholds"

	return models.RAGResponse{
		Response:   text,
		Confidence: models.ConfidenceLow,
		Sources:    []string{"System Guidance"},
		FollowUpQuestions: []string{
			"What are the PCAF data quality options for motor vehicles?",
			"How do I calculate weighted data quality score?",
			"How can I improve my portfolio data quality?",
		},
		DatasetSource: "none",
	}
}
