package handlers

import (
	"log"
	"net/http"

	"pcaf-advisory-api/pkg/models"
	"pcaf-advisory-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RAGHandler serves the query endpoints backed by the unified router and
// the dataset services.
type RAGHandler struct {
	unifiedService *services.UnifiedRAGService
	datasetService *services.DatasetRAGService
	pureService    *services.PureDatasetRAGService
}

// NewRAGHandler creates a new RAGHandler.
func NewRAGHandler(
	unifiedService *services.UnifiedRAGService,
	datasetService *services.DatasetRAGService,
	pureService *services.PureDatasetRAGService,
) *RAGHandler {
	return &RAGHandler{
		unifiedService: unifiedService,
		datasetService: datasetService,
		pureService:    pureService,
	}
}

// ProcessUnifiedQuery routes a query through the unified router.
func (h *RAGHandler) ProcessUnifiedQuery(c *gin.Context) {
	var req models.UnifiedRAGRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request format: " + err.Error(),
		})
		return
	}

	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	response := h.unifiedService.ProcessQuery(c.Request.Context(), req)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": req.SessionID,
		"data":       response,
	})
}

// ProcessDatasetQuery answers from the curated dataset only, with the
// strict confidence cascade. Never reaches any remote backend.
func (h *RAGHandler) ProcessDatasetQuery(c *gin.Context) {
	var req models.RAGRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request format: " + err.Error(),
		})
		return
	}

	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	if req.UserRole != "" && !req.UserRole.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Unknown user role: " + string(req.UserRole),
		})
		return
	}

	response := h.pureService.ProcessQuery(req)
	log.Printf("[DATASET] Query answered from %s source with confidence %s", response.DatasetSource, response.Confidence)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": req.SessionID,
		"data":       response,
	})
}

// ProcessEnhancedQuery answers from the enhanced dataset with role
// customization and the lower match threshold.
func (h *RAGHandler) ProcessEnhancedQuery(c *gin.Context) {
	var req models.RAGRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request format: " + err.Error(),
		})
		return
	}

	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	if req.UserRole != "" && !req.UserRole.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Unknown user role: " + string(req.UserRole),
		})
		return
	}

	response := h.datasetService.ProcessQuery(req)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": req.SessionID,
		"data":       response,
	})
}

// GetProcessingStats returns the unified router's usage counters.
func (h *RAGHandler) GetProcessingStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.unifiedService.GetProcessingStats(),
	})
}

// ResetProcessingStats zeroes the unified router's usage counters.
func (h *RAGHandler) ResetProcessingStats(c *gin.Context) {
	h.unifiedService.ResetStats()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Processing stats reset",
	})
}
