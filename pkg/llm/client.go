package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	llmDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "examforge",
		Subsystem: "llm",
		Name:      "request_duration_seconds",
		Help:      "Duration of model vendor requests",
	}, []string{"vendor"})

	llmFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "examforge",
		Subsystem: "llm",
		Name:      "request_failures_total",
		Help:      "Number of failed model vendor requests",
	}, []string{"vendor", "reason"})
)

// ErrEmptyReply indicates the vendor answered but carried no usable text.
var ErrEmptyReply = errors.New("vendor returned no reply text")

// vendorSpec is the closed set of per-vendor behaviours: how to address the
// API, how to authenticate, how to shape the body, and where the reply text
// lives in the response.
type vendorSpec struct {
	defaultModel string
	endpoint     func(cfg Config, model, apiKey string) string
	headers      func(req *http.Request, apiKey string)
	body         func(model, message string, temperature float32, maxTokens int) (interface{}, error)
	parse        func(data []byte) (string, error)
}

var vendors = map[Vendor]vendorSpec{
	VendorOpenAI:    openAISpec,
	VendorAnthropic: anthropicSpec,
	VendorGemini:    geminiSpec,
	VendorDeepSeek:  deepSeekSpec,
}

// Config carries externally injected vendor endpoints and call defaults.
type Config struct {
	OpenAIBaseURL    string
	AnthropicBaseURL string
	GeminiBaseURL    string
	DeepSeekBaseURL  string
	Temperature      float32
	MaxTokens        int
	Timeout          time.Duration
	Logger           zerolog.Logger
}

func (c Config) baseURL(vendor Vendor) string {
	switch vendor {
	case VendorOpenAI:
		return c.OpenAIBaseURL
	case VendorAnthropic:
		return c.AnthropicBaseURL
	case VendorGemini:
		return c.GeminiBaseURL
	case VendorDeepSeek:
		return c.DeepSeekBaseURL
	}
	return ""
}

// Client sends single-message conversations to any supported vendor.
type Client struct {
	http   *http.Client
	cfg    Config
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewClient builds a client with a bounded per-request timeout. An unbounded
// vendor call is a defect, so a missing timeout falls back to 60 seconds.
func NewClient(cfg Config) *Client {
	if cfg.OpenAIBaseURL == "" {
		cfg.OpenAIBaseURL = "https://api.openai.com/v1"
	}
	if cfg.AnthropicBaseURL == "" {
		cfg.AnthropicBaseURL = "https://api.anthropic.com"
	}
	if cfg.GeminiBaseURL == "" {
		cfg.GeminiBaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.DeepSeekBaseURL == "" {
		cfg.DeepSeekBaseURL = "https://api.deepseek.com/v1"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &Client{
		http:   &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		tracer: otel.Tracer("github.com/examforge/examforge-api/pkg/llm"),
		logger: logger.With().Str("component", "llm_client").Logger(),
	}
}

// Send delivers the last user-authored message of the conversation to the
// tagged vendor and returns the reply text. Transport failures, non-2xx
// statuses, and malformed bodies all surface as errors; callers never need
// to branch on vendor identity after selection.
func (c *Client) Send(parent context.Context, vendor Vendor, apiKey string, messages []Message, opts *Options) (string, error) {
	spec, ok := vendors[vendor]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVendor, vendor)
	}

	message, ok := lastUserMessage(messages)
	if !ok {
		return "", fmt.Errorf("no user message to send")
	}

	model := spec.defaultModel
	temperature := c.cfg.Temperature
	maxTokens := c.cfg.MaxTokens
	if opts != nil {
		if opts.Model != "" {
			model = opts.Model
		}
		if opts.Temperature != 0 {
			temperature = opts.Temperature
		}
		if opts.MaxTokens != 0 {
			maxTokens = opts.MaxTokens
		}
	}

	ctx, span := c.tracer.Start(parent, "llm.send", trace.WithAttributes(
		attribute.String("llm.vendor", string(vendor)),
		attribute.String("llm.model", model),
	))
	defer span.End()

	payload, err := spec.body(model, message, temperature, maxTokens)
	if err != nil {
		return "", c.fail(span, vendor, "build_body", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", c.fail(span, vendor, "marshal", fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, spec.endpoint(c.cfg, model, apiKey), bytes.NewReader(body))
	if err != nil {
		return "", c.fail(span, vendor, "build_request", redactError(err))
	}
	req.Header.Set("Content-Type", "application/json")
	spec.headers(req, apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	llmDuration.WithLabelValues(string(vendor)).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", c.fail(span, vendor, "transport", fmt.Errorf("%s request: %w", vendor, redactError(err)))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.fail(span, vendor, "read_body", fmt.Errorf("read %s response: %w", vendor, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("%s returned status %d: %s", vendor, resp.StatusCode, truncate(string(data), 256))
		return "", c.fail(span, vendor, "status", err)
	}

	text, err := spec.parse(data)
	if err != nil {
		return "", c.fail(span, vendor, "parse", err)
	}

	span.SetAttributes(attribute.Int("llm.reply_length", len(text)))
	return text, nil
}

func (c *Client) fail(span trace.Span, vendor Vendor, reason string, err error) error {
	llmFailures.WithLabelValues(string(vendor), reason).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
	c.logger.Warn().Err(err).Str("vendor", string(vendor)).Str("reason", reason).Msg("vendor request failed")
	return err
}

// redactError strips the query string from any wrapped *url.Error before the
// error is logged or returned. The Gemini key travels in the URL query, and a
// transport failure embeds the full request URL in its message.
func redactError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}

	redacted := urlErr.URL
	if u, parseErr := url.Parse(urlErr.URL); parseErr == nil {
		u.RawQuery = ""
		u.Fragment = ""
		redacted = u.String()
	} else if i := strings.Index(redacted, "?"); i >= 0 {
		redacted = redacted[:i]
	}

	return &url.Error{Op: urlErr.Op, URL: redacted, Err: urlErr.Err}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
