package models

// UserRole identifies which banking role a response should be tailored for.
type UserRole string

const (
	RoleExecutive         UserRole = "executive"
	RoleRiskManager       UserRole = "risk_manager"
	RoleComplianceOfficer UserRole = "compliance_officer"
	RoleLoanOfficer       UserRole = "loan_officer"
)

// Valid reports whether the role is one of the supported roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleExecutive, RoleRiskManager, RoleComplianceOfficer, RoleLoanOfficer:
		return true
	}
	return false
}

// Confidence is the discretized match quality of a response.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// QuestionEntry is a single curated Q&A pair. Entries are loaded once at
// startup and never mutated afterwards.
type QuestionEntry struct {
	ID             string            `json:"id"`
	Category       string            `json:"category,omitempty"` // set from the category key at load time
	Question       string            `json:"question"`
	Answer         string            `json:"answer"` // may contain {placeholder} tokens
	RoleAnswers    map[string]string `json:"roleSpecificResponses,omitempty"`
	Sources        []string          `json:"sources,omitempty"`
	FollowUp       []string          `json:"followUp,omitempty"`
	BankingContext map[string]bool   `json:"bankingContext,omitempty"`
}

// QACategory groups questions under a topic with a human-readable description.
type QACategory struct {
	Description string          `json:"description"`
	Questions   []QuestionEntry `json:"questions"`
}

// DatasetMetadata describes a dataset file's provenance.
type DatasetMetadata struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`
	AssetClass  string `json:"assetClass,omitempty"`
}

// QADataset is the on-disk shape of a curated Q&A dataset file.
type QADataset struct {
	Metadata   DatasetMetadata       `json:"metadata"`
	Categories map[string]QACategory `json:"categories"`
}

// DataQuality summarizes PCAF data quality for a portfolio snapshot.
// AverageScore is the weighted data quality score (1.0 best, 5.0 worst).
type DataQuality struct {
	AverageScore            float64        `json:"averageScore"`
	Distribution            map[string]int `json:"distribution,omitempty"`
	LoansNeedingImprovement int            `json:"loansNeedingImprovement,omitempty"`
	ComplianceStatus        string         `json:"complianceStatus,omitempty"` // "compliant" or "needs_improvement"
}

// PortfolioContext is a read-only portfolio snapshot supplied per request.
// The core never persists it.
type PortfolioContext struct {
	TotalLoans        int                 `json:"totalLoans"`
	TotalExposure     float64             `json:"totalExposure,omitempty"`
	TotalEmissions    float64             `json:"totalEmissions,omitempty"`
	EmissionIntensity float64             `json:"emissionIntensity,omitempty"`
	DataQuality       *DataQuality        `json:"dataQuality,omitempty"`
	Improvements      map[string][]string `json:"improvements,omitempty"` // tier name -> affected loan IDs
}

// RAGRequest is a query against one of the dataset services.
type RAGRequest struct {
	Query            string            `json:"query" binding:"required"`
	SessionID        string            `json:"session_id,omitempty"`
	PortfolioContext *PortfolioContext `json:"portfolioContext,omitempty"`
	UserRole         UserRole          `json:"userRole,omitempty"`
}

// RAGResponse is the structured answer produced by the dataset services.
// FollowUpQuestions is always non-empty so callers can offer a next action.
type RAGResponse struct {
	Response          string          `json:"response"`
	Confidence        Confidence      `json:"confidence"`
	Sources           []string        `json:"sources"`
	FollowUpQuestions []string        `json:"followUpQuestions"`
	BankingContext    map[string]bool `json:"bankingContext,omitempty"`
	ExecutiveSummary  string          `json:"executiveSummary,omitempty"`
	ActionItems       []string        `json:"actionItems,omitempty"`
	MatchedQuestionID string          `json:"matchedQuestionId,omitempty"`
	IsExactMatch      bool            `json:"isExactMatch"`
	DatasetSource     string          `json:"datasetSource,omitempty"` // "enhanced", "base" or "none"
}

// QueryIntent is the primary topic a query is about.
type QueryIntent string

const (
	IntentMethodology       QueryIntent = "methodology"
	IntentCalculation       QueryIntent = "calculation"
	IntentPortfolioAnalysis QueryIntent = "portfolio_analysis"
	IntentCompliance        QueryIntent = "compliance"
	IntentGeneral           QueryIntent = "general"
)

// QueryComplexity buckets a query by how much work answering it takes.
type QueryComplexity string

const (
	ComplexitySimple   QueryComplexity = "simple"
	ComplexityModerate QueryComplexity = "moderate"
	ComplexityComplex  QueryComplexity = "complex"
)

// QueryClassification is the routing profile computed for a raw query.
type QueryClassification struct {
	Intent                QueryIntent     `json:"intent"`
	Complexity            QueryComplexity `json:"complexity"`
	RequiresLiveData      bool            `json:"requiresLiveData"`
	IsPortfolioSpecific   bool            `json:"isPortfolioSpecific"`
	IsMethodologyQuestion bool            `json:"isMethodologyQuestion"`
	Confidence            float64         `json:"confidence"`
	Keywords              []string        `json:"keywords"`
}

// UnifiedContext carries optional request context for the unified router.
// ConversationHistory and Urgency are forwarded to the advisory backend as-is.
type UnifiedContext struct {
	PortfolioData       *PortfolioContext `json:"portfolioData,omitempty"`
	UserRole            UserRole          `json:"userRole,omitempty"`
	ConversationHistory []string          `json:"conversationHistory,omitempty"`
	Urgency             string            `json:"urgency,omitempty"` // "immediate", "planning" or "research"
}

// UnifiedRAGRequest is a query against the unified router.
type UnifiedRAGRequest struct {
	Query     string          `json:"query" binding:"required"`
	SessionID string          `json:"session_id,omitempty"`
	Context   *UnifiedContext `json:"context,omitempty"`
}

// ResponseMetadata records how a unified response was produced.
type ResponseMetadata struct {
	ProcessingTimeMs int64  `json:"processingTime"`
	SourceUsed       string `json:"sourceUsed"`
	FallbackReason   string `json:"fallbackReason,omitempty"`
}

// UnifiedRAGResponse is the answer produced by the unified router.
// ProcessQuery never surfaces an error; every path ends in one of these.
type UnifiedRAGResponse struct {
	Response          string           `json:"response"`
	Confidence        Confidence       `json:"confidence"`
	Sources           []string         `json:"sources"`
	FollowUpQuestions []string         `json:"followUpQuestions"`
	ResponseType      string           `json:"responseType"` // "dataset", "backend", "vector" or "fallback"
	ProcessingPath    []string         `json:"processingPath"`
	Metadata          ResponseMetadata `json:"metadata"`
}

// ProcessingStats is a snapshot of the unified router's usage counters.
type ProcessingStats struct {
	TotalQueries         int    `json:"totalQueries"`
	DatasetHits          int    `json:"datasetHits"`
	BackendHits          int    `json:"backendHits"`
	VectorHits           int    `json:"vectorHits"`
	FallbackHits         int    `json:"fallbackHits"`
	SuccessRate          string `json:"successRate"`
	PrimarySourceHitRate string `json:"primarySourceHitRate"`
}

// DatasetStats summarizes the loaded question bank.
type DatasetStats struct {
	TotalQuestions    int            `json:"totalQuestions"`
	EnhancedQuestions int            `json:"enhancedQuestions"`
	BaseQuestions     int            `json:"baseQuestions"`
	CategoryStats     map[string]int `json:"categoryStats"`
	Version           string         `json:"version"`
	LastUpdated       string         `json:"lastUpdated"`
}
