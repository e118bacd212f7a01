package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/examforge/examforge-api/internal/middleware"
)

// ResultReporter delivers a finished aggregate score back to the primary
// service's internal callback endpoint.
type ResultReporter interface {
	Report(ctx context.Context, attemptID uint, score int) error
}

type resultReporter struct {
	http           *http.Client
	primaryBaseURL string
	internalAPIKey string
	logger         zerolog.Logger
}

// NewResultReporter constructs the callback client.
func NewResultReporter(primaryBaseURL, internalAPIKey string, timeout time.Duration, logger zerolog.Logger) ResultReporter {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &resultReporter{
		http:           &http.Client{Timeout: timeout},
		primaryBaseURL: primaryBaseURL,
		internalAPIKey: internalAPIKey,
		logger:         logger.With().Str("component", "result_reporter").Logger(),
	}
}

// Report performs the callback. The body is empty; the attempt id and score
// travel in the path and the shared secret in the x-api-key header.
func (r *resultReporter) Report(ctx context.Context, attemptID uint, score int) error {
	url := fmt.Sprintf("%s/internal/ai-grading/complete/%d/%d", r.primaryBaseURL, attemptID, score)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("build callback request: %w", err)
	}
	req.Header.Set("x-api-key", r.internalAPIKey)
	if correlationID := middleware.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set(middleware.CorrelationHeader, correlationID)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("post callback: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}

	r.logger.Info().Uint("attempt_id", attemptID).Int("score", score).Msg("grading callback delivered")
	return nil
}
