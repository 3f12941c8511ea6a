//go:build integration

package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-similarity/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, PoolConfig{URL: dsn, MaxConns: 4})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	return db
}

func cleanupCompany(t *testing.T, db *DB, companyID uuid.UUID) {
	t.Helper()
	_, _ = db.pool.Exec(context.Background(), "DELETE FROM companies WHERE id = $1", companyID)
}

func TestIntegration_LoadReferenceAndCandidates(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	companyID := uuid.New()
	require.NoError(t, db.UpsertCompany(ctx, companyID, "Integration Corp", &types.CompanyInfo{
		Industries:  []string{"Software"},
		CompanySize: "51-200",
	}))
	defer cleanupCompany(t, db, companyID)

	region := "it-" + uuid.NewString()[:8]
	now := time.Now().UTC().Truncate(time.Second)
	past := now.Add(-time.Hour)
	salary := 120000.0

	ref := types.JobRecord{
		ID: uuid.New(), CompanyID: companyID, Title: "Backend Engineer", Region: region,
		Skills: []string{"Go"}, JobType: types.JobTypeFullTime, SalaryMin: &salary,
		CreatedAt: now.Add(-48 * time.Hour),
	}
	newer := types.JobRecord{ID: uuid.New(), CompanyID: companyID, Title: "Go Developer", Region: region, CreatedAt: now.Add(-time.Hour)}
	older := types.JobRecord{ID: uuid.New(), CompanyID: companyID, Title: "SRE", Region: region, CreatedAt: now.Add(-24 * time.Hour)}
	closed := types.JobRecord{ID: uuid.New(), CompanyID: companyID, Title: "Closed", Region: region, Status: types.JobStatusClosed, CreatedAt: now}
	expired := types.JobRecord{ID: uuid.New(), CompanyID: companyID, Title: "Expired", Region: region, ExpiresAt: &past, CreatedAt: now}
	elsewhere := types.JobRecord{ID: uuid.New(), CompanyID: companyID, Title: "Elsewhere", Region: region + "-x", CreatedAt: now}

	for _, job := range []types.JobRecord{ref, newer, older, closed, expired, elsewhere} {
		require.NoError(t, db.UpsertJob(ctx, &job))
	}

	t.Run("load reference", func(t *testing.T) {
		got, err := db.LoadReference(ctx, ref.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Backend Engineer", got.Title)
		assert.Equal(t, types.JobTypeFullTime, got.JobType)
		assert.Equal(t, "Integration Corp", got.CompanyName)
		require.NotNil(t, got.Company)
		assert.Equal(t, "51-200", got.Company.CompanySize)
		require.NotNil(t, got.SalaryMin)
		assert.Equal(t, salary, *got.SalaryMin)
	})

	t.Run("missing reference", func(t *testing.T) {
		got, err := db.LoadReference(ctx, uuid.New())
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("list candidates", func(t *testing.T) {
		got, err := db.ListCandidates(ctx, &ref, 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, newer.ID, got[0].ID)
		assert.Equal(t, older.ID, got[1].ID)

		got, err = db.ListCandidates(ctx, &ref, 1)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}
