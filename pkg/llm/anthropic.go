package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const anthropicVersion = "2023-06-01"

type anthropicRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// anthropicSpec speaks the Anthropic messages API: x-api-key plus version
// header instead of bearer auth, reply at content[0].text.
var anthropicSpec = vendorSpec{
	defaultModel: "claude-3-5-haiku-latest",
	endpoint: func(cfg Config, _ string, _ string) string {
		return cfg.AnthropicBaseURL + "/v1/messages"
	},
	headers: func(req *http.Request, apiKey string) {
		req.Header.Set("x-api-key", apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)
	},
	body: func(model, message string, temperature float32, maxTokens int) (interface{}, error) {
		return anthropicRequest{
			Model:       model,
			Temperature: temperature,
			MaxTokens:   maxTokens,
			Messages:    []Message{{Role: RoleUser, Content: message}},
		}, nil
	},
	parse: func(data []byte) (string, error) {
		var resp anthropicResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return "", fmt.Errorf("parse anthropic response: %w", err)
		}

		if len(resp.Content) == 0 || resp.Content[0].Text == "" {
			return "", ErrEmptyReply
		}

		return resp.Content[0].Text, nil
	},
}
