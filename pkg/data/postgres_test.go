package data

import (
	"context"
	"testing"

	"github.com/mchmarny/kinfeat/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("kinfeat"),
		tcpostgres.WithUsername("kinfeat"),
		tcpostgres.WithPassword("kinfeat"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.True(t, IsPostgres(dsn))

	require.NoError(t, Init(dsn))
	require.NoError(t, Init(dsn))

	db, err := GetDB(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	assert.Equal(t, "SELECT $1, $2", bind(db, "SELECT ?, ?"))

	version, _, err := SchemaVersion(db)
	require.NoError(t, err)
	assert.Greater(t, version, uint(0))

	res := testResult(t, pipeline.Options{})
	run, err := SaveRun(db, "train.csv", pipeline.Options{}, res)
	require.NoError(t, err)

	list, err := ListRuns(db, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, run.ID, list[0].ID)

	features, err := GetFeatures(db, run.ID, 100)
	require.NoError(t, err)
	assert.Len(t, features, res.Table.Len())

	sizes, err := GetSizeSummary(db, run.ID)
	require.NoError(t, err)
	assert.Len(t, sizes, 2)

	require.NoError(t, DeleteRun(db, run.ID))
	_, err = GetRun(db, run.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
