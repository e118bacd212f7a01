package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examforge/examforge-api/internal/dto"
	"github.com/examforge/examforge-api/internal/middleware"
	"github.com/examforge/examforge-api/internal/repository"
	"github.com/examforge/examforge-api/internal/vault"
)

var dispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "examforge",
	Subsystem: "grading",
	Name:      "dispatch_total",
	Help:      "Grading dispatch outcomes by result",
}, []string{"result"})

// InflightLockKey names the Redis key guarding one attempt's grading job.
func InflightLockKey(attemptID uint) string {
	return fmt.Sprintf("ai-grading:inflight:%d", attemptID)
}

// GradingDispatcher hands completed attempts to the grading service without
// ever blocking the caller. Dispatch is at-most-once and best-effort; a
// failed hand-off leaves the attempt ungraded and is visible only in logs.
type GradingDispatcher interface {
	Dispatch(attemptID uint)
	Close()
}

// DispatcherConfig bundles the dispatcher's tunables.
type DispatcherConfig struct {
	GraderBaseURL  string
	InternalAPIKey string
	Workers        int
	QueueSize      int
	LockTTL        time.Duration
	RequestTimeout time.Duration
}

type gradingDispatcher struct {
	attempts    repository.AttemptRepository
	eligibility EligibilityService
	vault       *vault.Vault
	redis       *redis.Client
	http        *http.Client
	cfg         DispatcherConfig
	logger      zerolog.Logger

	jobs      chan uint
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewGradingDispatcher starts the bounded worker pool that performs the
// asynchronous hand-off to the grading service.
func NewGradingDispatcher(attempts repository.AttemptRepository, eligibility EligibilityService, keyVault *vault.Vault, redisClient *redis.Client, cfg DispatcherConfig, logger zerolog.Logger) GradingDispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}

	d := &gradingDispatcher{
		attempts:    attempts,
		eligibility: eligibility,
		vault:       keyVault,
		redis:       redisClient,
		http:        &http.Client{Timeout: cfg.RequestTimeout},
		cfg:         cfg,
		logger:      logger.With().Str("component", "grading_dispatcher").Logger(),
		jobs:        make(chan uint, cfg.QueueSize),
	}

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	return d
}

// Dispatch enqueues the attempt and returns immediately. A full queue drops
// the job rather than blocking the request path that completed the attempt.
func (d *gradingDispatcher) Dispatch(attemptID uint) {
	select {
	case d.jobs <- attemptID:
	default:
		dispatchTotal.WithLabelValues("queue_full").Inc()
		d.logger.Warn().Uint("attempt_id", attemptID).Msg("dispatch queue full, grading job dropped")
	}
}

// Close drains the queue and stops the workers.
func (d *gradingDispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.jobs)
	})
	d.wg.Wait()
}

func (d *gradingDispatcher) worker() {
	defer d.wg.Done()
	for attemptID := range d.jobs {
		// The originating HTTP request has long returned; the job carries
		// its own lifetime and a fresh correlation id for the hand-off chain.
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.RequestTimeout+5*time.Second)
		ctx = middleware.ContextWithCorrelation(ctx, uuid.NewString())
		d.process(ctx, attemptID)
		cancel()
	}
}

func (d *gradingDispatcher) process(ctx context.Context, attemptID uint) {
	attempt, err := d.attempts.GetByID(ctx, attemptID)
	if err != nil {
		dispatchTotal.WithLabelValues("load_failed").Inc()
		d.logger.Error().Err(err).Uint("attempt_id", attemptID).Msg("failed to load attempt for dispatch")
		return
	}

	eligibility, ok, err := d.eligibility.Resolve(ctx, attempt)
	if err != nil {
		dispatchTotal.WithLabelValues("resolve_failed").Inc()
		d.logger.Error().Err(err).Uint("attempt_id", attemptID).Msg("eligibility resolution failed")
		return
	}
	if !ok {
		dispatchTotal.WithLabelValues("not_eligible").Inc()
		return
	}

	if !d.acquireLock(ctx, attemptID) {
		dispatchTotal.WithLabelValues("already_inflight").Inc()
		d.logger.Info().Uint("attempt_id", attemptID).Msg("grading job already in flight, skipping")
		return
	}

	apiKey, err := d.vault.Decrypt(eligibility.Credential.EncryptedKey)
	if err != nil {
		dispatchTotal.WithLabelValues("decrypt_failed").Inc()
		d.logger.Error().Err(err).
			Uint("attempt_id", attemptID).
			Uint("credential_id", eligibility.Credential.ID).
			Msg("credential decryption failed")
		d.releaseLock(ctx, attemptID)
		return
	}

	request := dto.GradeRequest{
		AttemptID:     attemptID,
		APIKey:        apiKey,
		AIServiceName: eligibility.Credential.Provider,
		PromptID:      &eligibility.PromptID,
	}

	if err := d.post(ctx, request); err != nil {
		dispatchTotal.WithLabelValues("post_failed").Inc()
		d.logger.Error().Err(err).Uint("attempt_id", attemptID).Msg("grading dispatch failed")
		d.releaseLock(ctx, attemptID)
		return
	}

	dispatchTotal.WithLabelValues("dispatched").Inc()
	d.logger.Info().
		Uint("attempt_id", attemptID).
		Str("provider", eligibility.Credential.Provider).
		Msg("grading job dispatched")
}

func (d *gradingDispatcher) post(ctx context.Context, request dto.GradeRequest) error {
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshal grade request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.GraderBaseURL+"/ai/grade", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build grade request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", d.cfg.InternalAPIKey)
	if correlationID := middleware.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set(middleware.CorrelationHeader, correlationID)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return fmt.Errorf("post grade request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("grading service returned status %d", resp.StatusCode)
	}

	return nil
}

// acquireLock guarantees at most one outstanding grading job per attempt.
// The TTL bounds how long a crashed grader can keep an attempt locked.
func (d *gradingDispatcher) acquireLock(ctx context.Context, attemptID uint) bool {
	if d.redis == nil {
		return true
	}

	ok, err := d.redis.SetNX(ctx, InflightLockKey(attemptID), "1", d.cfg.LockTTL).Result()
	if err != nil {
		d.logger.Warn().Err(err).Uint("attempt_id", attemptID).Msg("in-flight lock check failed, proceeding")
		return true
	}
	return ok
}

func (d *gradingDispatcher) releaseLock(ctx context.Context, attemptID uint) {
	if d.redis == nil {
		return
	}
	if err := d.redis.Del(ctx, InflightLockKey(attemptID)).Err(); err != nil {
		d.logger.Warn().Err(err).Uint("attempt_id", attemptID).Msg("failed to release in-flight lock")
	}
}
