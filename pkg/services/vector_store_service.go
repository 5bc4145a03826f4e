package services

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"strings"
	"time"

	"pcaf-advisory-api/pkg/models"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

const (
	knowledgeBaseCollection = "pcaf_knowledge_base"
	// Hashed term vectors, not model embeddings: the vector path is a
	// fallback and must not depend on the advisory backend being up.
	knowledgeBaseVectorSize = uint64(256)
)

// VectorStoreService manages the Qdrant-backed PCAF knowledge base. It is the
// vector-search fallback backend of the unified router.
type VectorStoreService struct {
	pointsClient      qdrant.PointsClient
	collectionsClient qdrant.CollectionsClient
	enhancer          *ContextEnhancer
}

// NewVectorStoreService connects to Qdrant and ensures the knowledge-base
// collection exists. An API key switches the connection to TLS (cloud mode).
func NewVectorStoreService(qdrantURL, qdrantAPIKey string, enhancer *ContextEnhancer) (*VectorStoreService, error) {
	var dialOpts []grpc.DialOption

	if qdrantAPIKey != "" {
		log.Println("Connecting to Qdrant over TLS (cloud mode)...")
		creds := credentials.NewTLS(&tls.Config{})
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(creds))

		authInterceptor := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			ctx = metadata.AppendToOutgoingContext(ctx, "api-key", qdrantAPIKey)
			return invoker(ctx, method, req, reply, cc, opts...)
		}
		dialOpts = append(dialOpts, grpc.WithUnaryInterceptor(authInterceptor))
	} else {
		log.Println("Connecting to local Qdrant (plaintext)...")
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(qdrantURL, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant gRPC client: %w", err)
	}

	service := &VectorStoreService{
		pointsClient:      qdrant.NewPointsClient(conn),
		collectionsClient: qdrant.NewCollectionsClient(conn),
		enhancer:          enhancer,
	}

	if err := service.ensureCollection(context.Background()); err != nil {
		return nil, err
	}
	return service, nil
}

// ensureCollection waits for Qdrant to be ready and creates the knowledge
// base collection if it does not exist yet.
func (s *VectorStoreService) ensureCollection(ctx context.Context) error {
	const maxRetries = 10
	retryInterval := 2 * time.Second

	var collectionExists bool
	var listErr error

	log.Println("Waiting for Qdrant to become ready...")
	for i := 0; i < maxRetries; i++ {
		listCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		res, err := s.collectionsClient.List(listCtx, &qdrant.ListCollectionsRequest{})
		cancel()
		listErr = err
		if err == nil {
			for _, collection := range res.GetCollections() {
				if collection.GetName() == knowledgeBaseCollection {
					collectionExists = true
					break
				}
			}
			break
		}
		log.Printf("Qdrant readiness check failed (attempt %d/%d), retrying in %v...", i+1, maxRetries, retryInterval)
		time.Sleep(retryInterval)
	}
	if listErr != nil {
		return fmt.Errorf("failed to list Qdrant collections after retries: %w", listErr)
	}

	if collectionExists {
		log.Printf("Collection %q already exists", knowledgeBaseCollection)
		return nil
	}

	log.Printf("Creating collection %q...", knowledgeBaseCollection)
	createCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := s.collectionsClient.Create(createCtx, &qdrant.CreateCollection{
		CollectionName: knowledgeBaseCollection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     knowledgeBaseVectorSize,
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create Qdrant collection: %w", err)
	}
	return nil
}

// SeedQuestionBank upserts every question bank entry into the knowledge base.
// Point IDs are derived from entry IDs, so reseeding is idempotent.
func (s *VectorStoreService) SeedQuestionBank(ctx context.Context, bank *QuestionBank) error {
	entries := append([]models.QuestionEntry{}, bank.EnhancedEntries()...)
	entries = append(entries, bank.BaseEntries()...)

	points := make([]*qdrant.PointStruct, 0, len(entries))
	for _, entry := range entries {
		payload := map[string]*qdrant.Value{
			"question_id": stringValue(entry.ID),
			"category":    stringValue(entry.Category),
			"question":    stringValue(entry.Question),
			"answer":      stringValue(entry.Answer),
		}
		if raw, err := json.Marshal(entry.Sources); err == nil {
			payload["sources"] = stringValue(string(raw))
		}
		if raw, err := json.Marshal(entry.FollowUp); err == nil {
			payload["follow_up"] = stringValue(string(raw))
		}

		pointID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(entry.ID)).String()
		points = append(points, &qdrant.PointStruct{
			Id: &qdrant.PointId{
				PointIdOptions: &qdrant.PointId_Uuid{Uuid: pointID},
			},
			Vectors: &qdrant.Vectors{
				VectorsOptions: &qdrant.Vectors_Vector{
					Vector: &qdrant.Vector{
						Data: embedText(entry.Question + " " + entry.Answer),
					},
				},
			},
			Payload: payload,
		})
	}

	waitUpsert := true
	_, err := s.pointsClient.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: knowledgeBaseCollection,
		Points:         points,
		Wait:           &waitUpsert,
	})
	if err != nil {
		return fmt.Errorf("failed to seed knowledge base: %w", err)
	}

	log.Printf("Seeded %d knowledge base documents into %q", len(points), knowledgeBaseCollection)
	return nil
}

// SearchKnowledgeBase retrieves the closest knowledge base document for the
// query and shapes it into a RAG response. Placeholders in the stored answer
// are resolved against the supplied portfolio snapshot.
func (s *VectorStoreService) SearchKnowledgeBase(ctx context.Context, query string, pc *models.PortfolioContext) (*models.RAGResponse, error) {
	withPayload := true
	searchResult, err := s.pointsClient.Search(ctx, &qdrant.SearchPoints{
		CollectionName: knowledgeBaseCollection,
		Vector:         embedText(query),
		Limit:          3,
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: withPayload}},
	})
	if err != nil {
		return nil, fmt.Errorf("knowledge base search failed: %w", err)
	}

	results := searchResult.GetResult()
	if len(results) == 0 {
		return nil, fmt.Errorf("knowledge base returned no results for %q", query)
	}

	best := results[0]
	payload := best.GetPayload()

	answer := getStringFromPayload(payload, "answer")
	if answer == "" {
		return nil, fmt.Errorf("knowledge base result has no answer payload")
	}
	if pc != nil {
		answer = s.enhancer.ResolvePlaceholders(answer, pc)
	}

	sources := decodeStringList(getStringFromPayload(payload, "sources"))
	if len(sources) == 0 {
		sources = []string{"PCAF Knowledge Base"}
	}
	followUps := decodeStringList(getStringFromPayload(payload, "follow_up"))
	if len(followUps) == 0 {
		followUps = defaultFollowUpQuestions
	}

	score := float64(best.GetScore())
	confidence := models.ConfidenceLow
	if score >= 0.8 {
		confidence = models.ConfidenceHigh
	} else if score >= 0.6 {
		confidence = models.ConfidenceMedium
	}

	log.Printf("Knowledge base hit %s (similarity %.2f) for query %q",
		getStringFromPayload(payload, "question_id"), score, query)

	return &models.RAGResponse{
		Response:          answer,
		Confidence:        confidence,
		Sources:           sources,
		FollowUpQuestions: followUps,
		MatchedQuestionID: getStringFromPayload(payload, "question_id"),
		DatasetSource:     "enhanced",
	}, nil
}

// embedText builds a deterministic hashed term vector for the text. Terms are
// hashed into a fixed number of buckets and the vector is L2-normalized, so
// cosine similarity approximates term overlap.
func embedText(text string) []float32 {
	vector := make([]float32, knowledgeBaseVectorSize)
	for _, word := range significantWords(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vector[h.Sum32()%uint32(knowledgeBaseVectorSize)]++
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}
	return vector
}

func stringValue(s string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
}

func getStringFromPayload(payload map[string]*qdrant.Value, key string) string {
	if val, ok := payload[key]; ok && val != nil {
		return val.GetStringValue()
	}
	return ""
}

func decodeStringList(raw string) []string {
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	return list
}
