package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"tariff-backend/internal/llm"
	"tariff-backend/internal/shared/telemetry"
)

const defaultAPIURL = "https://api.openai.com/v1/chat/completions"

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	apiURL     string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		apiURL: defaultAPIURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float32        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate sends one chat-completion call and returns the raw model output.
// Failures are classified into the llm error taxonomy.
func (c *Client) Generate(ctx context.Context, req llm.GenerateRequest) (json.RawMessage, error) {
	temp := float32(0)
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: req.Prompt},
		},
		Temperature: &temp,
	}
	if req.StructuredOutput {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, llm.NewError(llm.ErrorGeneric, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, llm.NewError(llm.ErrorGeneric, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, llm.NewError(llm.ErrorTimeout, fmt.Errorf("openai request timeout: %w", err))
		}
		return nil, llm.NewError(llm.ErrorGeneric, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, llm.NewError(llm.ErrorGeneric, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, llm.NewError(llm.ErrorAuth, fmt.Errorf("openai http status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, llm.NewError(llm.ErrorQuota, fmt.Errorf("openai http status %d", resp.StatusCode))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, llm.NewError(llm.ErrorMalformed, fmt.Errorf("openai response parse: %w", err))
	}
	if parsed.Error != nil {
		class := classifyAPIError(parsed.Error.Type)
		return nil, llm.NewError(class, fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, llm.NewError(llm.ErrorGeneric, fmt.Errorf("openai http status %d", resp.StatusCode))
	}
	if len(parsed.Choices) == 0 {
		return nil, llm.NewError(llm.ErrorMalformed, fmt.Errorf("openai response missing choices"))
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return nil, llm.NewError(llm.ErrorMalformed, fmt.Errorf("openai response empty content"))
	}
	logUsage(c.model, &parsed)
	return json.RawMessage(content), nil
}

func classifyAPIError(apiType string) llm.ErrorClass {
	switch strings.ToLower(apiType) {
	case "invalid_api_key", "authentication_error", "invalid_request_error":
		return llm.ErrorAuth
	case "insufficient_quota", "rate_limit_error", "rate_limit_exceeded":
		return llm.ErrorQuota
	default:
		return llm.ErrorGeneric
	}
}

func logUsage(model string, resp *chatResponse) {
	fields := map[string]any{"model": model}
	if resp.Usage != nil {
		fields["prompt_tokens"] = resp.Usage.PromptTokens
		fields["completion_tokens"] = resp.Usage.CompletionTokens
		fields["total_tokens"] = resp.Usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

var _ llm.Client = (*Client)(nil)
