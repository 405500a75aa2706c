package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tariff-backend/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient("test-key", "test-model")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client.apiURL = srv.URL
	return client
}

func chatCompletion(content string) string {
	payload := map[string]any{
		"id":    "chatcmpl-1",
		"model": "test-model",
		"choices": []any{
			map[string]any{"message": map[string]any{"role": "assistant", "content": content}},
		},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func TestNewClientRequiresConfig(t *testing.T) {
	if _, err := NewClient("", "test-model"); err == nil {
		t.Errorf("expected error for missing api key")
	}
	if _, err := NewClient("test-key", ""); err == nil {
		t.Errorf("expected error for missing model")
	}
}

func TestClientGenerateReturnsContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Errorf("structured output not requested: %+v", req.ResponseFormat)
		}
		if req.Temperature == nil || *req.Temperature != 0 {
			t.Errorf("temperature not pinned to 0: %+v", req.Temperature)
		}
		w.Write([]byte(chatCompletion(`{"currency":"GBP"}`)))
	})

	raw, err := client.Generate(context.Background(), llm.GenerateRequest{Prompt: "compare", StructuredOutput: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(raw) != `{"currency":"GBP"}` {
		t.Errorf("raw = %s", raw)
	}
}

func TestClientGenerateErrorClasses(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    llm.ErrorClass
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			want: llm.ErrorAuth,
		},
		{
			name: "forbidden",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
			want: llm.ErrorAuth,
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			want: llm.ErrorQuota,
		},
		{
			name: "unparsable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>gateway error</html>"))
			},
			want: llm.ErrorMalformed,
		},
		{
			name: "missing choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"id":"chatcmpl-1","choices":[]}`))
			},
			want: llm.ErrorMalformed,
		},
		{
			name: "empty content",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(chatCompletion("  ")))
			},
			want: llm.ErrorMalformed,
		},
		{
			name: "quota api error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
			},
			want: llm.ErrorQuota,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"id":"chatcmpl-1"}`))
			},
			want: llm.ErrorGeneric,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, tc.handler)
			_, err := client.Generate(context.Background(), llm.GenerateRequest{Prompt: "compare"})
			if err == nil {
				t.Fatalf("expected error")
			}
			var llmErr *llm.Error
			if !errors.As(err, &llmErr) {
				t.Fatalf("expected *llm.Error, got %v", err)
			}
			if llmErr.Class != tc.want {
				t.Errorf("Class = %q, want %q", llmErr.Class, tc.want)
			}
		})
	}
}
