package main

import (
	"context"
	"strings"
	"testing"

	"policyportal/models"
	"policyportal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportProfiles(t *testing.T) {
	db := testutil.DB(t)
	existing := testutil.SeedProfile(t, db, models.RoleCarer, "old@example.com", "Old Name")
	newID := uuid.New()

	input := strings.Join([]string{
		"id,email,full_name,role",
		newID.String() + ",New.Admin@Example.com,New Admin,admin",
		existing.ID.String() + ",old@example.com,Renamed,carer",
		"not-a-uuid,bad@example.com,Bad,carer",
		uuid.NewString() + ",manager@example.com,Manager,manager",
	}, "\n")

	counts, err := importProfiles(context.Background(), db, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, importCounts{inserted: 1, updated: 1, skipped: 2}, counts)

	admin, err := db.GetProfile(context.Background(), newID)
	require.NoError(t, err)
	assert.Equal(t, "new.admin@example.com", admin.Email)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	renamed, err := db.GetProfile(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", renamed.DisplayName())
}

func TestImportProfilesRequiresColumns(t *testing.T) {
	db := testutil.DB(t)
	_, err := importProfiles(context.Background(), db, strings.NewReader("email,role\na@example.com,carer\n"))
	require.Error(t, err)
}
