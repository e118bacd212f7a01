package llm

import "net/http"

// deepSeekSpec reuses the OpenAI-compatible body and response shapes against
// the DeepSeek endpoint and model namespace.
var deepSeekSpec = vendorSpec{
	defaultModel: "deepseek-chat",
	endpoint: func(cfg Config, _ string, _ string) string {
		return cfg.DeepSeekBaseURL + "/chat/completions"
	},
	headers: func(req *http.Request, apiKey string) {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	},
	body:  chatCompletionBody,
	parse: parseChatCompletion,
}
