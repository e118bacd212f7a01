package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/examforge/examforge-api/internal/dto"
	"github.com/examforge/examforge-api/internal/handler"
	"github.com/examforge/examforge-api/internal/service"
)

type mockAttemptService struct {
	attempt   dto.AttemptResponse
	completed []uint
	err       error
}

func (m *mockAttemptService) Get(_ context.Context, id uint) (dto.AttemptResponse, error) {
	if m.err != nil {
		return dto.AttemptResponse{}, m.err
	}
	return m.attempt, nil
}

func (m *mockAttemptService) Complete(_ context.Context, id uint) (dto.AttemptResponse, error) {
	if m.err != nil {
		return dto.AttemptResponse{}, m.err
	}
	m.completed = append(m.completed, id)
	response := m.attempt
	response.Completed = true
	return response, nil
}

func newAttemptApp(svc service.AttemptService) *fiber.App {
	app := fiber.New()
	logger := zerolog.New(io.Discard)
	handler.NewAttemptHandler(svc, logger).Register(app.Group("/api/v1/attempts"))
	return app
}

func TestAttemptCompleteRespondsImmediately(t *testing.T) {
	endedAt := time.Now()
	svc := &mockAttemptService{attempt: dto.AttemptResponse{ID: 1, TestID: 7, StudentID: 3, EndedAt: &endedAt}}
	app := newAttemptApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/attempts/1/complete", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, []uint{1}, svc.completed)

	var envelope struct {
		Success bool                `json:"success"`
		Data    dto.AttemptResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	require.True(t, envelope.Data.Completed)
	// The grading hand-off is asynchronous; no score exists yet.
	require.Nil(t, envelope.Data.Score)
}

func TestAttemptGetNotFound(t *testing.T) {
	svc := &mockAttemptService{err: service.ErrAttemptNotFound}
	app := newAttemptApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/attempts/404", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAttemptBadID(t *testing.T) {
	app := newAttemptApp(&mockAttemptService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/attempts/abc", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
