package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mchmarny/kinfeat/pkg/passenger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRunFiles(t *testing.T) {
	list, err := RunFiles(context.Background(), []string{trainFile, testFile}, readOpts, Options{})
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, trainFile, list[0].Input)
	assert.Equal(t, 14, list[0].Result.Summary.Rows)

	assert.Equal(t, testFile, list[1].Input)
	assert.Equal(t, 3, list[1].Result.Summary.Rows)
	assert.Equal(t, 0, list[1].Result.Summary.Labeled)
	for _, r := range list[1].Result.Table.Rows {
		assert.Equal(t, 0.5, *r.FamilyRate)
	}
}

func TestRunFiles_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := RunFiles(ctx, nil, readOpts, Options{})
	assert.Error(t, err)

	_, err = RunFiles(ctx, []string{trainFile, filepath.Join(t.TempDir(), "missing.csv")}, readOpts, Options{})
	assert.Error(t, err)

	_, err = RunFiles(ctx, []string{trainFile}, passenger.ReadOptions{}, Options{})
	assert.ErrorIs(t, err, passenger.ErrDataContract)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = RunFiles(canceled, []string{trainFile, testFile}, readOpts, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
