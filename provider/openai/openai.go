package openai_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultAPIURL = "https://api.openai.com/v1/chat/completions"

// Client implements chat completions against the OpenAI API.
type Client struct {
	apiKey      string
	apiURL      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client

	costPer1KInput  float64
	costPer1KOutput float64
}

// Message represents a message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// request represents a request to the OpenAI API
type request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// response represents a response from the OpenAI API
type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
}

// NewClient creates a new OpenAI client.
func NewClient(apiKey, baseURL, model string, temperature float64, maxTokens int, timeout time.Duration, costPer1KInput, costPer1KOutput float64) *Client {
	if baseURL == "" {
		baseURL = defaultAPIURL
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:          apiKey,
		apiURL:          baseURL,
		model:           model,
		temperature:     temperature,
		maxTokens:       maxTokens,
		httpClient:      &http.Client{Timeout: timeout},
		costPer1KInput:  costPer1KInput,
		costPer1KOutput: costPer1KOutput,
	}
}

// Generate produces a completion for the prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	text, _, _, err := c.GenerateWithTokens(ctx, prompt)
	return text, err
}

// GenerateWithTokens produces a completion and reports token usage.
func (c *Client) GenerateWithTokens(ctx context.Context, prompt string) (string, int64, int64, error) {
	messages := []Message{{Role: "user", Content: prompt}}
	return c.sendRequest(ctx, messages)
}

// CalculateCost converts token usage into a dollar estimate using the
// configured per-1K rates.
func (c *Client) CalculateCost(inputTokens, outputTokens int64) float64 {
	return float64(inputTokens)/1000.0*c.costPer1KInput + float64(outputTokens)/1000.0*c.costPer1KOutput
}

// sendRequest sends a request to the OpenAI API
func (c *Client) sendRequest(ctx context.Context, messages []Message) (string, int64, int64, error) {
	requestBody := request{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, 0, fmt.Errorf("API returned status: %d", resp.StatusCode)
	}

	var openaiResp response
	if err := json.NewDecoder(resp.Body).Decode(&openaiResp); err != nil {
		return "", 0, 0, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(openaiResp.Choices) == 0 {
		return "", 0, 0, fmt.Errorf("no choices in response")
	}

	return openaiResp.Choices[0].Message.Content, openaiResp.Usage.PromptTokens, openaiResp.Usage.CompletionTokens, nil
}
