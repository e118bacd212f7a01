// Package llm unifies four incompatible model vendor HTTP APIs behind one
// "send a user message, get back text" entry point.
package llm

import (
	"errors"
	"fmt"
	"strings"
)

// Vendor identifies one of the supported model providers.
type Vendor string

const (
	// VendorOpenAI targets the OpenAI chat completions API.
	VendorOpenAI Vendor = "openai"
	// VendorAnthropic targets the Anthropic messages API.
	VendorAnthropic Vendor = "anthropic"
	// VendorGemini targets the Google Gemini generateContent API.
	VendorGemini Vendor = "gemini"
	// VendorDeepSeek targets the DeepSeek chat completions API.
	VendorDeepSeek Vendor = "deepseek"
)

// ErrUnknownVendor indicates a vendor tag outside the supported set. This is
// a configuration error, not a runtime condition to recover from.
var ErrUnknownVendor = errors.New("unknown model vendor")

// ParseVendor validates a vendor tag carried in a job payload.
func ParseVendor(tag string) (Vendor, error) {
	switch Vendor(strings.ToLower(strings.TrimSpace(tag))) {
	case VendorOpenAI:
		return VendorOpenAI, nil
	case VendorAnthropic:
		return VendorAnthropic, nil
	case VendorGemini:
		return VendorGemini, nil
	case VendorDeepSeek:
		return VendorDeepSeek, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVendor, tag)
	}
}

// Message is one turn of a conversation handed to Send.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation roles understood by every vendor.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	// DefaultTemperature is applied when the caller does not override it.
	DefaultTemperature float32 = 0.2
	// DefaultMaxTokens bounds the reply length when not overridden.
	DefaultMaxTokens = 4000
)

// Options tunes a single Send call. Zero values fall back to the client's
// configured defaults.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

func lastUserMessage(messages []Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser && strings.TrimSpace(messages[i].Content) != "" {
			return messages[i].Content, true
		}
	}
	return "", false
}
