package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/examforge/examforge-api/internal/dto"
	"github.com/examforge/examforge-api/internal/models"
)

type recordingAssignmentRepo struct {
	stored   map[[2]uint]models.AIAssignment
	upserted int
}

func newRecordingAssignmentRepo() *recordingAssignmentRepo {
	return &recordingAssignmentRepo{stored: map[[2]uint]models.AIAssignment{}}
}

func (r *recordingAssignmentRepo) GetByTestAndGroup(ctx context.Context, testID, groupID uint) (models.AIAssignment, error) {
	assignment, ok := r.stored[[2]uint{testID, groupID}]
	if !ok {
		return models.AIAssignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (r *recordingAssignmentRepo) ListEnabledForGroups(ctx context.Context, testID uint, groupIDs []uint) ([]models.AIAssignment, error) {
	return nil, errors.New("not implemented")
}

func (r *recordingAssignmentRepo) Upsert(ctx context.Context, assignment *models.AIAssignment) error {
	r.upserted++
	key := [2]uint{assignment.TestID, assignment.GroupID}
	if existing, ok := r.stored[key]; ok {
		assignment.ID = existing.ID
	} else {
		assignment.ID = uint(len(r.stored) + 1)
	}
	r.stored[key] = *assignment
	return nil
}

func newAssignmentTestService(t *testing.T) (AIAssignmentService, *recordingAssignmentRepo, *stubCredentialRepo, *stubPromptRepo) {
	t.Helper()
	assignments := newRecordingAssignmentRepo()
	credentials := newStubCredentialRepo()
	prompts := newStubPromptRepo()
	svc := NewAIAssignmentService(assignments, credentials, prompts, validator.New(), zerolog.Nop())
	return svc, assignments, credentials, prompts
}

func TestAssignmentUpsertRequiresCredentialWhenEnabled(t *testing.T) {
	svc, _, _, _ := newAssignmentTestService(t)

	_, err := svc.Upsert(context.Background(), dto.AIAssignmentUpsertRequest{
		TestID:              7,
		GroupID:             2,
		AIEvaluationEnabled: true,
	})
	require.ErrorIs(t, err, ErrCredentialRequired)
}

func TestAssignmentUpsertRejectsInactiveCredential(t *testing.T) {
	svc, _, credentials, _ := newAssignmentTestService(t)
	credentials.stored[9] = models.Credential{ID: 9, Provider: "openai", Active: false}

	credentialID := uint(9)
	_, err := svc.Upsert(context.Background(), dto.AIAssignmentUpsertRequest{
		TestID:              7,
		GroupID:             2,
		CredentialID:        &credentialID,
		AIEvaluationEnabled: true,
	})
	require.ErrorIs(t, err, ErrCredentialInactive)
}

func TestAssignmentUpsertRejectsMissingCredential(t *testing.T) {
	svc, _, _, _ := newAssignmentTestService(t)

	credentialID := uint(404)
	_, err := svc.Upsert(context.Background(), dto.AIAssignmentUpsertRequest{
		TestID:              7,
		GroupID:             2,
		CredentialID:        &credentialID,
		AIEvaluationEnabled: true,
	})
	require.ErrorIs(t, err, ErrCredentialNotFound)
}

func TestAssignmentUpsertRejectsMissingPrompt(t *testing.T) {
	svc, _, credentials, _ := newAssignmentTestService(t)
	credentials.stored[9] = models.Credential{ID: 9, Provider: "openai", Active: true}

	credentialID := uint(9)
	promptID := uint(404)
	_, err := svc.Upsert(context.Background(), dto.AIAssignmentUpsertRequest{
		TestID:              7,
		GroupID:             2,
		CredentialID:        &credentialID,
		PromptID:            &promptID,
		AIEvaluationEnabled: true,
	})
	require.ErrorIs(t, err, ErrPromptNotFound)
}

func TestAssignmentUpsertIsIdempotentPerPair(t *testing.T) {
	svc, assignments, credentials, _ := newAssignmentTestService(t)
	credentials.stored[9] = models.Credential{ID: 9, Provider: "openai", Active: true}

	credentialID := uint(9)
	request := dto.AIAssignmentUpsertRequest{
		TestID:              7,
		GroupID:             2,
		CredentialID:        &credentialID,
		AIEvaluationEnabled: true,
	}

	first, err := svc.Upsert(context.Background(), request)
	require.NoError(t, err)
	second, err := svc.Upsert(context.Background(), request)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Len(t, assignments.stored, 1)
	require.Equal(t, 2, assignments.upserted)
}

func TestAssignmentUpsertAllowsDisablingWithoutCredential(t *testing.T) {
	svc, assignments, _, _ := newAssignmentTestService(t)

	response, err := svc.Upsert(context.Background(), dto.AIAssignmentUpsertRequest{
		TestID:  7,
		GroupID: 2,
	})
	require.NoError(t, err)
	require.False(t, response.AIEvaluationEnabled)
	require.Len(t, assignments.stored, 1)
}
