package llm

import (
	"encoding/json"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// openAISpec speaks the OpenAI chat completions wire format: bearer auth,
// messages array, reply at choices[0].message.content. The request and
// response shapes come straight from the go-openai SDK types.
var openAISpec = vendorSpec{
	defaultModel: "gpt-4o-mini",
	endpoint: func(cfg Config, _ string, _ string) string {
		return cfg.OpenAIBaseURL + "/chat/completions"
	},
	headers: func(req *http.Request, apiKey string) {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	},
	body:  chatCompletionBody,
	parse: parseChatCompletion,
}

func chatCompletionBody(model, message string, temperature float32, maxTokens int) (interface{}, error) {
	return openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	}, nil
}

func parseChatCompletion(data []byte) (string, error) {
	var resp openai.ChatCompletionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("parse chat completion response: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyReply
	}

	return resp.Choices[0].Message.Content, nil
}
