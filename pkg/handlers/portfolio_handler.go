package handlers

import (
	"log"
	"net/http"

	"pcaf-advisory-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// PortfolioHandler serves loan book ingestion.
type PortfolioHandler struct {
	fileService *services.PortfolioFileService
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(fileService *services.PortfolioFileService) *PortfolioHandler {
	return &PortfolioHandler{fileService: fileService}
}

// AnalyzeFile parses an uploaded loan book (.xlsx or .csv) and returns the
// derived portfolio context. Clients pass the portfolio back in subsequent
// query requests; nothing is persisted server-side.
func (h *PortfolioHandler) AnalyzeFile(c *gin.Context) {
	c.Request.ParseMultipartForm(10 << 20) // 10MB limit

	file, fileHeader, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Failed to read uploaded file",
		})
		return
	}
	defer file.Close()

	analysis, err := h.fileService.AnalyzeLoanBook(file, fileHeader.Filename)
	if err != nil {
		log.Printf("[PORTFOLIO] Analysis of %s failed: %v", fileHeader.Filename, err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    analysis,
	})
}
