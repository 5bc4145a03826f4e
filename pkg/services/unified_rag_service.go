package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"pcaf-advisory-api/pkg/models"
)

// ChatBackend is the remote advisory chat backend as seen by the router.
type ChatBackend interface {
	Chat(ctx context.Context, message, agentType string, reqCtx *models.UnifiedContext) (*ChatResult, error)
}

// VectorSearchBackend is the remote vector-search backend as seen by the
// router.
type VectorSearchBackend interface {
	SearchKnowledgeBase(ctx context.Context, query string, pc *models.PortfolioContext) (*models.RAGResponse, error)
}

// RouterStats holds the router's process-lifetime usage counters. Increments
// are serialized behind a mutex so concurrent requests stay accurate.
type RouterStats struct {
	mu           sync.Mutex
	totalQueries int
	datasetHits  int
	backendHits  int
	vectorHits   int
	fallbackHits int
}

// NewRouterStats creates an empty counter set.
func NewRouterStats() *RouterStats {
	return &RouterStats{}
}

func (s *RouterStats) recordQuery() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalQueries++
}

func (s *RouterStats) recordHit(responseType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch responseType {
	case "dataset":
		s.datasetHits++
	case "backend":
		s.backendHits++
	case "vector":
		s.vectorHits++
	default:
		s.fallbackHits++
	}
}

// Snapshot returns the counters plus derived rates.
func (s *RouterStats) Snapshot() models.ProcessingStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.totalQueries
	if total == 0 {
		total = 1
	}
	successRate := float64(s.totalQueries-s.fallbackHits) / float64(total) * 100
	primaryRate := float64(s.datasetHits+s.backendHits) / float64(total) * 100

	return models.ProcessingStats{
		TotalQueries:         s.totalQueries,
		DatasetHits:          s.datasetHits,
		BackendHits:          s.backendHits,
		VectorHits:           s.vectorHits,
		FallbackHits:         s.fallbackHits,
		SuccessRate:          fmt.Sprintf("%.1f%%", successRate),
		PrimarySourceHitRate: fmt.Sprintf("%.1f%%", primaryRate),
	}
}

// Reset zeroes all counters.
func (s *RouterStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalQueries = 0
	s.datasetHits = 0
	s.backendHits = 0
	s.vectorHits = 0
	s.fallbackHits = 0
}

// UnifiedRAGService routes a query across the dataset services, the advisory
// backend and the vector-search backend, with ordered fallbacks. ProcessQuery
// never returns an error: every path terminates in a well-formed response.
type UnifiedRAGService struct {
	classifier    *QueryClassifier
	pureService   *PureDatasetRAGService
	datasetSvc    *DatasetRAGService
	chatBackend   ChatBackend
	vectorBackend VectorSearchBackend
	stats         *RouterStats
	remoteTimeout time.Duration
}

// NewUnifiedRAGService wires the router. chatBackend and vectorBackend may be
// nil; the corresponding strategies then fail immediately and the router
// falls through to the next path.
func NewUnifiedRAGService(
	classifier *QueryClassifier,
	pureService *PureDatasetRAGService,
	datasetSvc *DatasetRAGService,
	chatBackend ChatBackend,
	vectorBackend VectorSearchBackend,
	stats *RouterStats,
) *UnifiedRAGService {
	if stats == nil {
		stats = NewRouterStats()
	}
	return &UnifiedRAGService{
		classifier:    classifier,
		pureService:   pureService,
		datasetSvc:    datasetSvc,
		chatBackend:   chatBackend,
		vectorBackend: vectorBackend,
		stats:         stats,
		remoteTimeout: 30 * time.Second,
	}
}

// routeStrategy is one candidate way of answering a query. run returns an
// error to hand control to the next strategy; a nil error means the response
// is final.
type routeStrategy struct {
	name string
	run  func(ctx context.Context, path *[]string) (*models.UnifiedRAGResponse, error)
}

// ProcessQuery classifies the query, walks the ordered strategy list for that
// classification, and falls back to a static knowledge-base overview when
// every strategy fails. No retries: a failed remote attempt immediately
// yields to the next path.
func (s *UnifiedRAGService) ProcessQuery(ctx context.Context, req models.UnifiedRAGRequest) models.UnifiedRAGResponse {
	start := time.Now()
	s.stats.recordQuery()

	path := []string{"query_classification"}
	classification := s.classifier.Classify(req.Query)
	log.Printf("[UNIFIED RAG] Query %q classified as intent=%s complexity=%s liveData=%t",
		req.Query, classification.Intent, classification.Complexity, classification.RequiresLiveData)

	routeName, strategies := s.strategiesFor(req, classification)
	path = append(path, routeName)

	for _, strategy := range strategies {
		path = append(path, strategy.name)
		response, err := strategy.run(ctx, &path)
		if err != nil {
			log.Printf("[UNIFIED RAG] Strategy %s failed: %v", strategy.name, err)
			continue
		}
		s.stats.recordHit(response.ResponseType)
		response.ProcessingPath = path
		response.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()
		log.Printf("[UNIFIED RAG] Response type %s, confidence %s", response.ResponseType, response.Confidence)
		return *response
	}

	path = append(path, "final_fallback")
	s.stats.recordHit("fallback")
	response := s.knowledgeBaseOverview()
	response.ProcessingPath = path
	response.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()
	return response
}

// strategiesFor builds the ordered fallback chain for a classification, and
// names the route taken for the processing path.
func (s *UnifiedRAGService) strategiesFor(req models.UnifiedRAGRequest, classification models.QueryClassification) (string, []routeStrategy) {
	backendChat := func(agentType, sourceUsed string) routeStrategy {
		return routeStrategy{
			name: "backend_api_call",
			run: func(ctx context.Context, _ *[]string) (*models.UnifiedRAGResponse, error) {
				if s.chatBackend == nil {
					return nil, fmt.Errorf("advisory backend not configured")
				}
				callCtx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
				defer cancel()
				result, err := s.chatBackend.Chat(callCtx, req.Query, agentType, req.Context)
				if err != nil {
					return nil, err
				}
				sources := result.Sources
				if len(sources) == 0 {
					sources = []string{"Portfolio Analysis Engine"}
				}
				return &models.UnifiedRAGResponse{
					Response:          result.Content,
					Confidence:        models.ConfidenceHigh,
					Sources:           sources,
					FollowUpQuestions: contextualFollowUps(classification.Intent),
					ResponseType:      "backend",
					Metadata:          models.ResponseMetadata{SourceUsed: sourceUsed},
				}, nil
			},
		}
	}

	pureDataset := routeStrategy{
		name: "pure_dataset_search",
		run: func(_ context.Context, _ *[]string) (*models.UnifiedRAGResponse, error) {
			response := s.pureService.ProcessQuery(s.toRAGRequest(req))
			if response.DatasetSource == "none" {
				return nil, fmt.Errorf("no dataset entry cleared the confidence threshold")
			}
			return &models.UnifiedRAGResponse{
				Response:          response.Response,
				Confidence:        response.Confidence,
				Sources:           response.Sources,
				FollowUpQuestions: response.FollowUpQuestions,
				ResponseType:      "dataset",
				Metadata:          models.ResponseMetadata{SourceUsed: "dataset_" + response.DatasetSource},
			}, nil
		},
	}

	enhancedDataset := routeStrategy{
		name: "general_enhanced_dataset",
		run: func(_ context.Context, _ *[]string) (*models.UnifiedRAGResponse, error) {
			response := s.datasetSvc.ProcessQuery(s.toRAGRequest(req))
			if response.Confidence != models.ConfidenceHigh {
				return nil, fmt.Errorf("enhanced dataset confidence %s is below high", response.Confidence)
			}
			return &models.UnifiedRAGResponse{
				Response:          response.Response,
				Confidence:        response.Confidence,
				Sources:           response.Sources,
				FollowUpQuestions: response.FollowUpQuestions,
				ResponseType:      "dataset",
				Metadata:          models.ResponseMetadata{SourceUsed: "enhanced_dataset"},
			}, nil
		},
	}

	vectorSearch := routeStrategy{
		name: "vector_search_api_call",
		run: func(ctx context.Context, _ *[]string) (*models.UnifiedRAGResponse, error) {
			if s.vectorBackend == nil {
				return nil, fmt.Errorf("vector search backend not configured")
			}
			callCtx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
			defer cancel()
			var pc *models.PortfolioContext
			if req.Context != nil {
				pc = req.Context.PortfolioData
			}
			response, err := s.vectorBackend.SearchKnowledgeBase(callCtx, req.Query, pc)
			if err != nil {
				return nil, err
			}
			return &models.UnifiedRAGResponse{
				Response:          response.Response,
				Confidence:        response.Confidence,
				Sources:           response.Sources,
				FollowUpQuestions: response.FollowUpQuestions,
				ResponseType:      "vector",
				Metadata:          models.ResponseMetadata{SourceUsed: "vector_search_api"},
			}, nil
		},
	}

	switch {
	// Portfolio-specific queries need live data: advisory backend first,
	// methodology dataset as fallback.
	case classification.IsPortfolioSpecific && classification.RequiresLiveData:
		return "portfolio_analysis", []routeStrategy{backendChat("advisory", "backend_api"), pureDataset, vectorSearch}

	// Methodology questions come from the curated dataset; the vector
	// search backend covers misses.
	case classification.IsMethodologyQuestion:
		return "methodology_dataset", []routeStrategy{pureDataset, vectorSearch}

	// Non-trivial calculations go to the backend's calculation mode.
	case classification.Intent == models.IntentCalculation && classification.Complexity != models.ComplexitySimple:
		return "calculation_backend", []routeStrategy{backendChat("calculation", "backend_calculation"), pureDataset, vectorSearch}

	// General queries: enhanced dataset only when it is highly confident,
	// then vector search.
	default:
		return "general_query", []routeStrategy{enhancedDataset, vectorSearch}
	}
}

func (s *UnifiedRAGService) toRAGRequest(req models.UnifiedRAGRequest) models.RAGRequest {
	ragReq := models.RAGRequest{
		Query:     req.Query,
		SessionID: req.SessionID,
	}
	if req.Context != nil {
		ragReq.PortfolioContext = req.Context.PortfolioData
		ragReq.UserRole = req.Context.UserRole
	}
	return ragReq
}

// knowledgeBaseOverview is the static terminal fallback used when every
// routing path has failed.
func (s *UnifiedRAGService) knowledgeBaseOverview() models.UnifiedRAGResponse {
	text := "**PCAF Motor Vehicle Knowledge Base**\n\n" +
		"I have access to comprehensive PCAF methodology covering:\n\n" +
		"• **Data Quality Options** - PCAF Options 1-5 for motor vehicles\n" +
		"• **Calculations** - Attribution factors, financed emissions, WDQS\n" +
		"• **Compliance** - Regulatory requirements and reporting standards\n" +
		"• **Implementation** - Best practices and system integration\n\n" +
		"**Try asking specific questions like:**\n" +
		"• \"What are the PCAF data quality options?\"\n" +
		"• \"How do I calculate attribution factors?\"\n" +
		"• \"What is the WDQS compliance threshold?\"\n" +
		"• \"How do I improve from Option 4 to Option 3?\""

	return models.UnifiedRAGResponse{
		Response:   text,
		Confidence: models.ConfidenceMedium,
		Sources:    []string{"PCAF Global Standard", "Motor Vehicle Methodology"},
		FollowUpQuestions: []string{
			"What are the PCAF data quality options for motor vehicles?",
			"How do I calculate weighted data quality score?",
			"What are attribution factors in PCAF?",
			"How can I improve my portfolio data quality?",
		},
		ResponseType: "fallback",
		Metadata: models.ResponseMetadata{
			SourceUsed:     "static_fallback",
			FallbackReason: "All primary sources unavailable",
		},
	}
}

// contextualFollowUps suggests next questions per intent.
func contextualFollowUps(intent models.QueryIntent) []string {
	switch intent {
	case models.IntentMethodology:
		return []string{
			"What are the PCAF data quality options?",
			"How do I calculate attribution factors?",
			"What is the WDQS compliance threshold?",
		}
	case models.IntentCalculation:
		return []string{
			"Can you show me a step-by-step example?",
			"What data do I need for this calculation?",
			"How do I validate the results?",
		}
	case models.IntentPortfolioAnalysis:
		return []string{
			"Which loans should I prioritize for improvement?",
			"What's my current compliance status?",
			"How can I reduce my portfolio emissions?",
		}
	case models.IntentCompliance:
		return []string{
			"What documentation do I need for audit?",
			"What are the regulatory deadlines?",
			"How do I prepare for examination?",
		}
	default:
		return []string{
			"Can you provide more specific guidance?",
			"What are the implementation steps?",
			"How does this relate to PCAF standards?",
		}
	}
}

// GetProcessingStats returns a snapshot of the usage counters.
func (s *UnifiedRAGService) GetProcessingStats() models.ProcessingStats {
	return s.stats.Snapshot()
}

// ResetStats zeroes the usage counters.
func (s *UnifiedRAGService) ResetStats() {
	s.stats.Reset()
}
