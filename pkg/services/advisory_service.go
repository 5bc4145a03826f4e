package services

import (
	"context"

	config "pcaf-advisory-api/configs"
	"pcaf-advisory-api/pkg/advisory"
	"pcaf-advisory-api/pkg/models"
)

// ChatResult is the advisory backend's answer reduced to what the router needs.
type ChatResult struct {
	Content string
	Sources []string
}

// AdvisoryService wraps the advisory backend client with the configured
// persona and typed portfolio context.
type AdvisoryService struct {
	client *advisory.Client
	prompt *config.AdvisoryPromptConfig
}

// NewAdvisoryService creates a new AdvisoryService. prompt may be nil, in
// which case the backend's server-side persona is used.
func NewAdvisoryService(client *advisory.Client, prompt *config.AdvisoryPromptConfig) *AdvisoryService {
	return &AdvisoryService{
		client: client,
		prompt: prompt,
	}
}

// backendContext is the context payload forwarded to the advisory backend.
type backendContext struct {
	SystemContext string                   `json:"system_context,omitempty"`
	Portfolio     *models.PortfolioContext `json:"portfolio,omitempty"`
	History       []string                 `json:"history,omitempty"`
	Urgency       string                   `json:"urgency,omitempty"`
}

// Chat sends the query to the advisory backend. agentType selects the
// backend mode ("advisory" or "calculation").
func (s *AdvisoryService) Chat(ctx context.Context, message, agentType string, reqCtx *models.UnifiedContext) (*ChatResult, error) {
	payload := backendContext{}
	if s.prompt != nil {
		payload.SystemContext = s.prompt.BuildSystemContext()
	}
	if reqCtx != nil {
		payload.Portfolio = reqCtx.PortfolioData
		payload.History = reqCtx.ConversationHistory
		payload.Urgency = reqCtx.Urgency
	}

	resp, err := s.client.Chat(ctx, message, agentType, payload)
	if err != nil {
		return nil, err
	}

	sources := make([]string, 0, len(resp.Sources))
	for _, src := range resp.Sources {
		sources = append(sources, src.Title)
	}
	return &ChatResult{Content: resp.ResponseText, Sources: sources}, nil
}
