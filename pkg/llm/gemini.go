package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float32 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// geminiSpec speaks the Gemini generateContent API. The key travels in the
// request URL query string, not in a header, so it must never be logged as
// part of the endpoint.
var geminiSpec = vendorSpec{
	defaultModel: "gemini-1.5-flash",
	endpoint: func(cfg Config, model, apiKey string) string {
		return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", cfg.GeminiBaseURL, model, url.QueryEscape(apiKey))
	},
	headers: func(_ *http.Request, _ string) {},
	body: func(_, message string, temperature float32, maxTokens int) (interface{}, error) {
		req := geminiRequest{
			Contents: []geminiContent{
				{Role: RoleUser, Parts: []geminiPart{{Text: message}}},
			},
		}
		req.GenerationConfig.Temperature = temperature
		req.GenerationConfig.MaxOutputTokens = maxTokens
		return req, nil
	},
	parse: func(data []byte) (string, error) {
		var resp geminiResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return "", fmt.Errorf("parse gemini response: %w", err)
		}

		if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 || resp.Candidates[0].Content.Parts[0].Text == "" {
			return "", ErrEmptyReply
		}

		return resp.Candidates[0].Content.Parts[0].Text, nil
	},
}
