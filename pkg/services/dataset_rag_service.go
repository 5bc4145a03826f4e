package services

import (
	"log"

	"pcaf-advisory-api/pkg/models"
)

// DatasetRAGService answers queries from the enhanced Q&A tier with full
// portfolio enhancement and role customization. Unmatched queries get a
// deterministic fallback response instead of an error.
type DatasetRAGService struct {
	bank       *QuestionBank
	scorer     *MatchScorer
	enhancer   *ContextEnhancer
	customizer *RoleCustomizer
}

// NewDatasetRAGService wires the service from its collaborators.
func NewDatasetRAGService(bank *QuestionBank, scorer *MatchScorer, enhancer *ContextEnhancer, customizer *RoleCustomizer) *DatasetRAGService {
	return &DatasetRAGService{
		bank:       bank,
		scorer:     scorer,
		enhancer:   enhancer,
		customizer: customizer,
	}
}

// ProcessQuery runs the match -> enhance -> customize pipeline. It always
// returns a well-formed response.
func (s *DatasetRAGService) ProcessQuery(req models.RAGRequest) models.RAGResponse {
	role := req.UserRole
	if !role.Valid() {
		role = models.RoleLoanOfficer
	}

	match, found := s.scorer.FindBestMatch(req.Query, s.bank.EnhancedEntries(), EnhancedMatchThreshold)
	if !found {
		return s.fallbackResponse(role)
	}

	log.Printf("[DATASET RAG] Matched %s (score %.2f) for query %q", match.Question.ID, match.Score, req.Query)

	answer := s.enhancer.Enhance(match.Question.Answer, req.PortfolioContext, role)
	customization := s.customizer.Customize(match.Question, match.Score, role)

	sources := match.Question.Sources
	if len(sources) == 0 {
		sources = []string{"Enhanced PCAF Motor Vehicle Dataset"}
	}
	followUps := match.Question.FollowUp
	if len(followUps) == 0 {
		followUps = defaultFollowUpQuestions
	}

	return models.RAGResponse{
		Response:          answer,
		Confidence:        ConfidenceForScore(match.Score, "enhanced"),
		Sources:           sources,
		FollowUpQuestions: followUps,
		BankingContext:    match.Question.BankingContext,
		ExecutiveSummary:  customization.ExecutiveSummary,
		ActionItems:       customization.ActionItems,
		MatchedQuestionID: match.Question.ID,
		IsExactMatch:      match.Score > ExactMatchThreshold,
		DatasetSource:     "enhanced",
	}
}

// roleContextPhrases flavors the fallback text per role.
var roleContextPhrases = map[models.UserRole]string{
	models.RoleExecutive:         "strategic business implications",
	models.RoleRiskManager:       "risk management considerations",
	models.RoleComplianceOfficer: "regulatory compliance requirements",
	models.RoleLoanOfficer:       "operational implementation",
}

var defaultFollowUpQuestions = []string{
	"What is my current portfolio data quality score?",
	"How do I calculate attribution factors?",
	"What are PCAF compliance requirements?",
	"How do I integrate PCAF into loan origination?",
}

func (s *DatasetRAGService) fallbackResponse(role models.UserRole) models.RAGResponse {
	focus, ok := roleContextPhrases[role]
	if !ok {
		focus = "banking operations"
	}

	text := "I specialize in motor vehicle PCAF methodology with focus on " + focus + ".\n\n" +
		"**Available Topics:**\n" +
		"• **Portfolio Analysis** - Data quality assessment, risk evaluation\n" +
		"• **Methodology** - PCAF options, calculations, compliance requirements\n" +
		"• **Strategic Advisory** - Competitive positioning, business case development\n" +
		"• **Operational Excellence** - System integration, process optimization\n\n" +
		"Please ask a specific question about motor vehicle PCAF methodology or your portfolio management needs."

	return models.RAGResponse{
		Response:          text,
		Confidence:        models.ConfidenceMedium,
		Sources:           []string{"PCAF Global Standard - Motor Vehicle Asset Class"},
		FollowUpQuestions: defaultFollowUpQuestions,
		BankingContext:    map[string]bool{"generalGuidance": true},
		DatasetSource:     "none",
	}
}
