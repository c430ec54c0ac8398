package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mchmarny/kinfeat/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	dir := t.TempDir()

	c1, err := ReadOrCreate(dir)
	require.NoError(t, err)
	require.NotNil(t, c1)
	assert.Equal(t, getDefaultConfig(), c1)

	c1.Simplified = true
	c1.FamilyFiller = pipeline.FillerTicket
	c1.Titles = []string{"Mr", "Mrs", "Miss", "Master", "Dr", "Rare"}

	err = Save(dir, c1)
	assert.NoError(t, err)

	c2, err := ReadOrCreate(dir)
	assert.NoError(t, err)
	assert.Equal(t, c1, c2)

	o := c2.Options()
	assert.True(t, o.Simplified)
	assert.Equal(t, pipeline.FillerTicket, o.FamilyFiller)
	assert.Len(t, o.Titles, 6)
}

func TestReadOrCreate_NestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	_, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.FileExists(t, Path(dir))
}

func TestRead_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("use_fare: true\n"), 0600))

	c, err := Read(path)
	require.NoError(t, err)
	assert.True(t, c.UseFare)
	assert.Equal(t, pipeline.FillerDefault, c.FamilyFiller)
	assert.Equal(t, "S", c.ImputeEmbarked)
}

func TestRead_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("titles: [unclosed\n"), 0600))

	_, err := Read(path)
	assert.Error(t, err)

	_, err = Read(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSave_Errors(t *testing.T) {
	assert.Error(t, Save("", &Config{}))
	assert.Error(t, Save(t.TempDir(), nil))
	_, err := ReadOrCreate("")
	assert.Error(t, err)
}

func TestGetOrCreateHomeDir_Empty(t *testing.T) {
	_, _, err := GetOrCreateHomeDir("")
	assert.Error(t, err)
}
