package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examforge/examforge-api/internal/models"
)

func TestListGroupIDsForStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGroupRepository(db)

	student := models.Student{Name: "Alice", Email: "alice@example.com"}
	other := models.Student{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, db.Create(&student).Error)
	require.NoError(t, db.Create(&other).Error)

	groupA := models.Group{Name: "class A"}
	groupB := models.Group{Name: "class B"}
	require.NoError(t, db.Create(&groupA).Error)
	require.NoError(t, db.Create(&groupB).Error)

	memberships := []models.GroupMember{
		{GroupID: groupB.ID, StudentID: student.ID},
		{GroupID: groupA.ID, StudentID: student.ID},
		{GroupID: groupA.ID, StudentID: other.ID},
	}
	require.NoError(t, db.Create(&memberships).Error)

	groupIDs, err := repo.ListGroupIDsForStudent(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, []uint{groupA.ID, groupB.ID}, groupIDs)

	empty, err := repo.ListGroupIDsForStudent(context.Background(), 999)
	require.NoError(t, err)
	require.Empty(t, empty)
}
