package handlers

import (
	"net/http"

	"pcaf-advisory-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// DatasetHandler exposes read-only views over the loaded question bank.
type DatasetHandler struct {
	bank *services.QuestionBank
}

// NewDatasetHandler creates a new DatasetHandler.
func NewDatasetHandler(bank *services.QuestionBank) *DatasetHandler {
	return &DatasetHandler{bank: bank}
}

// GetStats returns dataset counts and category distribution.
func (h *DatasetHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.bank.Stats(),
	})
}

// GetQuestionByID returns a single question entry.
func (h *DatasetHandler) GetQuestionByID(c *gin.Context) {
	id := c.Param("id")
	entry, ok := h.bank.EntryByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Question not found: " + id,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entry,
	})
}

// GetQuestionsByCategory returns all entries whose category contains the
// given fragment, enhanced dataset first.
func (h *DatasetHandler) GetQuestionsByCategory(c *gin.Context) {
	category := c.Param("category")
	entries := h.bank.EntriesByCategory(category)
	if len(entries) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "No questions found for category: " + category,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(entries),
		"data":    entries,
	})
}
