package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/examforge/examforge-api/internal/models"
)

type recordingDispatcher struct {
	dispatched []uint
	closed     bool
}

func (d *recordingDispatcher) Dispatch(attemptID uint) {
	d.dispatched = append(d.dispatched, attemptID)
}

func (d *recordingDispatcher) Close() {
	d.closed = true
}

func TestCompleteMarksAndDispatches(t *testing.T) {
	attempts := &stubAttemptRepo{attempt: models.Attempt{ID: 1, TestID: 7, StudentID: 3}}
	dispatcher := &recordingDispatcher{}

	svc := NewAttemptService(attempts, dispatcher, zerolog.Nop())
	response, err := svc.Complete(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, response.Completed)
	require.NotNil(t, response.EndedAt)
	require.Equal(t, []uint{1}, attempts.completed)
	require.Equal(t, []uint{1}, dispatcher.dispatched)
}

func TestCompleteAlreadyCompletedStillDispatches(t *testing.T) {
	attempts := &stubAttemptRepo{attempt: models.Attempt{ID: 1, TestID: 7, StudentID: 3, Completed: true}}
	dispatcher := &recordingDispatcher{}

	svc := NewAttemptService(attempts, dispatcher, zerolog.Nop())
	response, err := svc.Complete(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, response.Completed)
	require.Empty(t, attempts.completed)
	require.Equal(t, []uint{1}, dispatcher.dispatched)
}

func TestCompleteUnknownAttempt(t *testing.T) {
	svc := NewAttemptService(&stubAttemptRepo{}, &recordingDispatcher{}, zerolog.Nop())

	_, err := svc.Complete(context.Background(), 404)
	require.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestGetMapsSubmissions(t *testing.T) {
	score := 8
	attempts := &stubAttemptRepo{attempt: models.Attempt{
		ID:        1,
		TestID:    7,
		StudentID: 3,
		Submissions: []models.Submission{
			{ID: 11, QuestionID: 21, AnswerText: "answer", Score: &score, GradedByAI: true},
		},
	}}

	svc := NewAttemptService(attempts, &recordingDispatcher{}, zerolog.Nop())
	response, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, response.Submissions, 1)
	require.Equal(t, uint(21), response.Submissions[0].QuestionID)
	require.NotNil(t, response.Submissions[0].Score)
	require.Equal(t, 8, *response.Submissions[0].Score)
	require.True(t, response.Submissions[0].GradedByAI)
}
