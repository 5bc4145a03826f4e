package advisory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestChatSuccess(t *testing.T) {
	var gotRequest ChatRequest
	var gotAPIKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("Expected path /api/chat, got %s", r.URL.Path)
		}
		gotAPIKey = r.Header.Get("X-API-KEY")
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ChatResponse{
			ResponseText: "Your portfolio WDQS is 2.9.",
			Sources:      []Source{{Title: "Portfolio Engine"}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	resp, err := client.Chat(context.Background(), "analyze my portfolio", "advisory", map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("Chat() returned error: %v", err)
	}

	if resp.ResponseText != "Your portfolio WDQS is 2.9." {
		t.Errorf("Unexpected response text: %s", resp.ResponseText)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Title != "Portfolio Engine" {
		t.Errorf("Unexpected sources: %+v", resp.Sources)
	}
	if gotRequest.Message != "analyze my portfolio" {
		t.Errorf("Unexpected message sent: %s", gotRequest.Message)
	}
	if gotRequest.AgentType != "advisory" {
		t.Errorf("Unexpected agent type sent: %s", gotRequest.AgentType)
	}
	if gotAPIKey != "secret" {
		t.Errorf("Expected X-API-KEY header to be set, got %q", gotAPIKey)
	}
}

func TestChatEmptyEndpoint(t *testing.T) {
	client := NewClient("", "")
	if _, err := client.Chat(context.Background(), "hello", "advisory", nil); err == nil {
		t.Fatal("Expected error for unconfigured endpoint")
	}
}

func TestChatEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(ChatResponse{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	if _, err := client.Chat(context.Background(), "hello", "advisory", nil); err == nil {
		t.Fatal("Expected error for empty backend response")
	}
}

func TestChatErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error": {"code": "upstream", "message": "model unavailable"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.Chat(context.Background(), "hello", "advisory", nil)
	if err == nil {
		t.Fatal("Expected error for 502 response")
	}
	if got := err.Error(); !strings.Contains(got, "model unavailable") {
		t.Errorf("Expected backend error message surfaced, got: %s", got)
	}
}

func TestChatCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(ChatResponse{ResponseText: "late"})
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL, "")
	if _, err := client.Chat(ctx, "hello", "advisory", nil); err == nil {
		t.Fatal("Expected error for cancelled context")
	}
}
