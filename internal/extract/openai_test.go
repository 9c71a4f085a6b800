package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chatCompletionResponse(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
	})
	return string(body)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOpenAIClient(OpenAIConfig{
		APIKey:  "sk-test",
		BaseURL: server.URL + "/v1",
		Model:   "gpt-4o-mini",
	})
}

func TestExtractCard_ParsesStructuredOutput(t *testing.T) {
	card := `{"who":"Maria","where":"conference","when":"last week","why":null,"how":"in person"}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		// The request must pin the model and the strict schema format.
		if req["model"] != "gpt-4o-mini" {
			t.Errorf("model = %v", req["model"])
		}
		if req["response_format"] == nil {
			t.Error("expected response_format in request")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletionResponse(card)))
	})

	got, err := client.ExtractCard(context.Background(), "Met Maria at the conference last week in person")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if got.Who != "Maria" {
		t.Errorf("who = %q, want Maria", got.Who)
	}
	if got.Where == nil || *got.Where != "conference" {
		t.Errorf("where = %v, want conference", got.Where)
	}
	if got.Why != nil {
		t.Errorf("why = %v, want nil", *got.Why)
	}
	if got.How == nil || *got.How != "in person" {
		t.Errorf("how = %v, want in person", got.How)
	}
}

func TestExtractCard_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom"}}`))
	})

	if _, err := client.ExtractCard(context.Background(), "some text"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestExtractCard_NonConformingContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletionResponse("not json at all")))
	})

	if _, err := client.ExtractCard(context.Background(), "some text"); err == nil {
		t.Fatal("expected error for non-JSON content, got nil")
	}
}
