package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to a local OpenAI-compatible chat-completions endpoint.
type Client struct {
	BaseURL     string
	HTTPClient  *http.Client
	MaxRetries  int
	Temperature float64
	MaxTokens   int
}

// New builds a Client with the given base URL and timeout. MaxRetries,
// Temperature, and MaxTokens take the spec's defaults (3, 0.1, 1000) and
// can be overridden on the returned value.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:     baseURL,
		HTTPClient:  &http.Client{Timeout: timeout},
		MaxRetries:  3,
		Temperature: 0.1,
		MaxTokens:   1000,
	}
}

// Label calls the model with the given system/user prompts and returns the
// raw assistant content. The retry loop covers the whole request+parse+
// validate cycle, not just the HTTP call: a response that fails to parse or
// fails schema validation is exactly as retryable as a transport error, so
// it runs back through the same loop rather than propagating straight up.
// Unlike the teacher's client, retries here have no backoff: the spec calls
// for immediate retry, not exponential delay (see DESIGN.md).
func (c *Client) Label(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	req := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}

	var lastErr error
	for attempt := 0; attempt < c.MaxRetries; attempt++ {
		content, err := c.doChatCompletion(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}
		out, err := ParseLabel(content)
		if err != nil {
			lastErr = err
			continue
		}
		if err := ValidateLabel(out); err != nil {
			lastErr = err
			continue
		}
		return content, nil
	}
	return "", fmt.Errorf("llm: all retries exhausted: %w", lastErr)
}

func (c *Client) doChatCompletion(ctx context.Context, req chatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm: no choices in response")
	}
	return parsed.Choices[0].Message.Content, nil
}

// ParseLabel strips a leading/trailing markdown code fence (optionally
// prefixed with "json") and whitespace, then decodes the remaining JSON
// into a LabelOutput.
func ParseLabel(content string) (LabelOutput, error) {
	cleaned := stripCodeFence(content)

	var out LabelOutput
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return LabelOutput{}, fmt.Errorf("llm: parse label response: %w", err)
	}
	return out, nil
}

func stripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	s = strings.Trim(s, "`")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "json") {
		s = strings.TrimPrefix(s, "json")
	}
	return strings.TrimSpace(s)
}

// ValidateVocabulary rewrites an out-of-vocabulary doc_type to "other" and
// prepends an explanatory note, so the planner never observes a type
// outside the configured taxonomy. This is a hard rule, not a heuristic.
func ValidateVocabulary(out LabelOutput, docTypes []string) LabelOutput {
	if contains(docTypes, out.DocType) {
		return out
	}
	original := out.DocType
	out.DocType = "other"
	out.Why = fmt.Sprintf("[Auto-corrected from '%s'] %s", original, out.Why)
	return out
}

func contains(list []string, target string) bool {
	for _, v := range list {
		if v == target {
			return true
		}
	}
	return false
}

// ProbeModels queries /v1/models and reports whether every model name in
// required is present, used as a pre-flight check before a labeling run
// begins.
func (c *Client) ProbeModels(ctx context.Context, required []string) (bool, []string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/models", nil)
	if err != nil {
		return false, nil, fmt.Errorf("llm: build models request: %w", err)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return false, nil, fmt.Errorf("llm: models request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil, fmt.Errorf("llm: models endpoint status %d", resp.StatusCode)
	}

	var parsed modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, nil, fmt.Errorf("llm: decode models response: %w", err)
	}

	loaded := make(map[string]bool, len(parsed.Data))
	for _, m := range parsed.Data {
		loaded[m.ID] = true
	}

	var missing []string
	for _, req := range required {
		if !loaded[req] {
			missing = append(missing, req)
		}
	}
	return len(missing) == 0, missing, nil
}
