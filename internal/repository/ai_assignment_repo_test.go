package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examforge/examforge-api/internal/models"
)

func seedCredential(t *testing.T, repo CredentialRepository, label string) uint {
	t.Helper()
	credential := models.Credential{Label: label, Provider: "openai", EncryptedKey: []byte("blob"), Active: true}
	require.NoError(t, repo.Create(context.Background(), &credential))
	return credential.ID
}

func TestUpsertKeepsOneRowPerPair(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAIAssignmentRepository(db)
	credentials := NewCredentialRepository(db)
	credentialID := seedCredential(t, credentials, "first")

	first := models.AIAssignment{TestID: 7, GroupID: 2, CredentialID: &credentialID, AIEvaluationEnabled: true}
	require.NoError(t, repo.Upsert(context.Background(), &first))

	second := models.AIAssignment{TestID: 7, GroupID: 2, AIEvaluationEnabled: false}
	require.NoError(t, repo.Upsert(context.Background(), &second))
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.AIAssignment{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	loaded, err := repo.GetByTestAndGroup(context.Background(), 7, 2)
	require.NoError(t, err)
	require.False(t, loaded.AIEvaluationEnabled)
}

func TestListEnabledForGroupsOrdersByGroupID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAIAssignmentRepository(db)
	credentials := NewCredentialRepository(db)

	highCred := seedCredential(t, credentials, "high group")
	lowCred := seedCredential(t, credentials, "low group")
	offCred := seedCredential(t, credentials, "disabled")

	high := models.AIAssignment{TestID: 7, GroupID: 5, CredentialID: &highCred, AIEvaluationEnabled: true}
	low := models.AIAssignment{TestID: 7, GroupID: 2, CredentialID: &lowCred, AIEvaluationEnabled: true}
	off := models.AIAssignment{TestID: 7, GroupID: 3, CredentialID: &offCred, AIEvaluationEnabled: false}
	require.NoError(t, repo.Upsert(context.Background(), &high))
	require.NoError(t, repo.Upsert(context.Background(), &low))
	require.NoError(t, repo.Upsert(context.Background(), &off))

	assignments, err := repo.ListEnabledForGroups(context.Background(), 7, []uint{2, 3, 5})
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	require.Equal(t, uint(2), assignments[0].GroupID)
	require.Equal(t, uint(5), assignments[1].GroupID)
	require.NotNil(t, assignments[0].Credential)
	require.Equal(t, "low group", assignments[0].Credential.Label)
}

func TestListEnabledForGroupsEmptyInput(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAIAssignmentRepository(db)

	assignments, err := repo.ListEnabledForGroups(context.Background(), 7, nil)
	require.NoError(t, err)
	require.Empty(t, assignments)
}
