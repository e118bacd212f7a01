package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/examforge/examforge-api/internal/dto"
	"github.com/examforge/examforge-api/internal/models"
	"github.com/examforge/examforge-api/internal/vault"
)

const dispatchVaultKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

type stubEligibility struct {
	eligibility Eligibility
	eligible    bool
	err         error
}

func (s *stubEligibility) Resolve(ctx context.Context, attempt models.Attempt) (Eligibility, bool, error) {
	return s.eligibility, s.eligible, s.err
}

type capturedGrade struct {
	mu       sync.Mutex
	requests []dto.GradeRequest
	apiKeys  []string
}

func (c *capturedGrade) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request dto.GradeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		c.mu.Lock()
		c.requests = append(c.requests, request)
		c.apiKeys = append(c.apiKeys, r.Header.Get("x-api-key"))
		c.mu.Unlock()

		w.WriteHeader(http.StatusOK)
	}
}

func (c *capturedGrade) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

func newDispatchFixture(t *testing.T, eligibility *stubEligibility) (*capturedGrade, GradingDispatcher, *stubAttemptRepo, *miniredis.Miniredis) {
	t.Helper()

	keyVault, err := vault.New(dispatchVaultKey)
	require.NoError(t, err)

	if eligibility.eligible {
		blob, err := keyVault.Encrypt("sk-plaintext-key-material")
		require.NoError(t, err)
		eligibility.eligibility.Credential.EncryptedKey = blob
	}

	mr := miniredis.RunT(t)
	redisClient := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	captured := &capturedGrade{}
	server := httptest.NewServer(captured.handler(t))
	t.Cleanup(server.Close)

	attempts := &stubAttemptRepo{attempt: models.Attempt{ID: 1, TestID: 7, StudentID: 3, Completed: true}}
	dispatcher := NewGradingDispatcher(attempts, eligibility, keyVault, redisClient, DispatcherConfig{
		GraderBaseURL:  server.URL,
		InternalAPIKey: "internal-secret",
		Workers:        1,
		QueueSize:      8,
	}, zerolog.Nop())

	return captured, dispatcher, attempts, mr
}

func TestDispatchEligibleAttempt(t *testing.T) {
	promptID := uint(4)
	eligibility := &stubEligibility{
		eligible: true,
		eligibility: Eligibility{
			Credential: models.Credential{ID: 9, Provider: "openai", Active: true},
			PromptID:   promptID,
		},
	}
	captured, dispatcher, _, mr := newDispatchFixture(t, eligibility)

	dispatcher.Dispatch(1)
	dispatcher.Close()

	require.Equal(t, 1, captured.count())
	request := captured.requests[0]
	require.Equal(t, uint(1), request.AttemptID)
	require.Equal(t, "sk-plaintext-key-material", request.APIKey)
	require.Equal(t, "openai", request.AIServiceName)
	require.NotNil(t, request.PromptID)
	require.Equal(t, promptID, *request.PromptID)
	require.Equal(t, "internal-secret", captured.apiKeys[0])

	// Lock stays held until the grading callback commits the score.
	require.True(t, mr.Exists(InflightLockKey(1)))
}

func TestDispatchIneligibleAttempt(t *testing.T) {
	captured, dispatcher, _, mr := newDispatchFixture(t, &stubEligibility{eligible: false})

	dispatcher.Dispatch(1)
	dispatcher.Close()

	require.Zero(t, captured.count())
	require.False(t, mr.Exists(InflightLockKey(1)))
}

func TestDispatchSkipsWhenLockHeld(t *testing.T) {
	eligibility := &stubEligibility{
		eligible: true,
		eligibility: Eligibility{
			Credential: models.Credential{ID: 9, Provider: "openai", Active: true},
			PromptID:   models.DefaultPromptID,
		},
	}
	captured, dispatcher, _, mr := newDispatchFixture(t, eligibility)

	require.NoError(t, mr.Set(InflightLockKey(1), "1"))

	dispatcher.Dispatch(1)
	dispatcher.Close()

	require.Zero(t, captured.count())
}

func TestDispatchReleasesLockOnHandOffFailure(t *testing.T) {
	keyVault, err := vault.New(dispatchVaultKey)
	require.NoError(t, err)
	blob, err := keyVault.Encrypt("sk-plaintext-key-material")
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	redisClient := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	attempts := &stubAttemptRepo{attempt: models.Attempt{ID: 1, TestID: 7, StudentID: 3, Completed: true}}
	eligibility := &stubEligibility{
		eligible: true,
		eligibility: Eligibility{
			Credential: models.Credential{ID: 9, Provider: "openai", Active: true, EncryptedKey: blob},
			PromptID:   models.DefaultPromptID,
		},
	}
	dispatcher := NewGradingDispatcher(attempts, eligibility, keyVault, redisClient, DispatcherConfig{
		GraderBaseURL:  server.URL,
		InternalAPIKey: "internal-secret",
		Workers:        1,
		QueueSize:      8,
	}, zerolog.Nop())

	dispatcher.Dispatch(1)
	dispatcher.Close()

	require.False(t, mr.Exists(InflightLockKey(1)))
}
