package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mchmarny/kinfeat/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var (
	trainFile = filepath.Join("..", "pipeline", "testdata", "train.csv")
	testFile  = filepath.Join("..", "pipeline", "testdata", "test.csv")
)

// runApp runs the CLI against an isolated home dir and store.
func runApp(t *testing.T, dsn string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf

	argv := append([]string{appName, "--db", dsn}, args...)
	return &buf, app.Run(context.Background(), argv)
}

func processTrain(t *testing.T, dsn string) *processReport {
	t.Helper()
	out := filepath.Join(t.TempDir(), "train.features.csv")

	buf, err := runApp(t, dsn, "process", "--input", trainFile, "--output", out, "--store")
	require.NoError(t, err)

	var reports []*processReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &reports))
	require.Len(t, reports, 1)
	assert.FileExists(t, out)
	return reports[0]
}

func TestProcess_Store(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")

	rep := processTrain(t, dsn)
	require.NotEmpty(t, rep.RunID)
	require.NotNil(t, rep.Summary)
	assert.Equal(t, 14, rep.Summary.Rows)
	assert.Equal(t, 13, rep.Summary.Labeled)
	assert.Equal(t, 7, rep.Summary.Families)

	buf, err := runApp(t, dsn, "query", "runs")
	require.NoError(t, err)
	var runs []*data.Run
	require.NoError(t, json.Unmarshal(buf.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, rep.RunID, runs[0].ID)
	assert.Equal(t, "train.csv", runs[0].Source)

	buf, err = runApp(t, dsn, "query", "features", "--run", rep.RunID, "--limit", "5")
	require.NoError(t, err)
	var features []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &features))
	assert.Len(t, features, 5)

	buf, err = runApp(t, dsn, "query", "sizes", "--run", rep.RunID)
	require.NoError(t, err)
	var sizes []*data.SizeSummary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &sizes))
	require.Len(t, sizes, 2)
	assert.Equal(t, 1, sizes[0].Size)
	assert.Equal(t, 2, sizes[1].Size)

	png := filepath.Join(t.TempDir(), "sizes.png")
	_, err = runApp(t, dsn, "chart", "--run", rep.RunID, "--out", png)
	require.NoError(t, err)
	assert.FileExists(t, png)
}

func TestProcess_ManyInputs(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")
	dir := filepath.Join(t.TempDir(), "out")

	buf, err := runApp(t, dsn, "process", "-i", trainFile, "-i", testFile, "-o", dir)
	require.NoError(t, err)

	var reports []*processReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, trainFile, reports[0].Input)
	assert.Equal(t, testFile, reports[1].Input)

	assert.FileExists(t, filepath.Join(dir, "train"+featureFileSuffix))
	assert.FileExists(t, filepath.Join(dir, "test"+featureFileSuffix))
}

func TestProcess_MissingInput(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")
	_, err := runApp(t, dsn, "process", "--input", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestQuery_UnknownRun(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")
	_, err := runApp(t, dsn, "query", "run", "--run", "nope")
	assert.ErrorIs(t, err, data.ErrNotFound)
}

func TestQuery_YAML(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")
	rep := processTrain(t, dsn)

	buf, err := runApp(t, dsn, "--format", "yaml", "query", "families", "--run", rep.RunID, "--live")
	require.NoError(t, err)

	var families []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &families))
	assert.Len(t, families, 7)
}

func TestUnsupportedFormat(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")
	_, err := runApp(t, dsn, "--format", "xml", "query", "runs")
	assert.Error(t, err)
}

func TestQuery_Delete(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")
	rep := processTrain(t, dsn)

	_, err := runApp(t, dsn, "query", "delete", "--run", rep.RunID)
	require.NoError(t, err)

	_, err = runApp(t, dsn, "query", "run", "--run", rep.RunID)
	assert.ErrorIs(t, err, data.ErrNotFound)
}

func TestReset(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")
	processTrain(t, dsn)

	_, err := runApp(t, dsn, "reset", "--yes")
	require.NoError(t, err)

	buf, err := runApp(t, dsn, "query", "runs")
	require.NoError(t, err)
	var runs []*data.Run
	require.NoError(t, json.Unmarshal(buf.Bytes(), &runs))
	assert.Empty(t, runs)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "out.csv", outputPath("out.csv", "in/train.csv", false))
	assert.Equal(t, filepath.Join("out", "train.features.csv"), outputPath("out", "in/train.csv", true))
}

func TestGitHubTokenFile(t *testing.T) {
	dir := t.TempDir()

	_, err := getGitHubTokenFile(dir)
	assert.Error(t, err)

	require.NoError(t, saveGitHubTokenFile(dir, "abc123\n"))
	token, err := getGitHubTokenFile(dir)
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}
