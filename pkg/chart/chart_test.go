package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mchmarny/kinfeat/pkg/data"
	"github.com/mchmarny/kinfeat/pkg/passenger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func testSizes() []*data.SizeSummary {
	return []*data.SizeSummary{
		{Size: 1, Passengers: 8, Survived: 5, Died: 2, SurvivalRate: passenger.Ptr(5.0 / 7.0), MeanFamilyRate: 0.6},
		{Size: 2, Passengers: 6, Survived: 3, Died: 3, SurvivalRate: passenger.Ptr(0.5), MeanFamilyRate: 0.5},
		{Size: 5, Passengers: 5, MeanFamilyRate: 0.5},
	}
}

func TestNew_Empty(t *testing.T) {
	_, err := New("empty", nil)
	assert.Error(t, err)
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sizes.png")
	require.NoError(t, Save(path, "train.csv", testSizes()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, "train.csv", testSizes()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}
