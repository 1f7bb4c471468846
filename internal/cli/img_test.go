package cli

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeometry(t *testing.T) {
	tests := []struct {
		name       string
		geometry   string
		wantWidth  int
		wantHeight int
		wantErr    bool
	}{
		{"valid", "800x600", 800, 600, false},
		{"small", "1x1", 1, 1, false},
		{"zero_width", "0x600", 0, 0, true},
		{"negative", "-1x600", 0, 0, true},
		{"garbage", "axb", 0, 0, true},
		{"missing_height", "800", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			width, height, err := parseGeometry(tt.geometry)

			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantWidth, width)
			assert.Equal(t, tt.wantHeight, height)
		})
	}
}

func TestOutputName(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC)

	assert.Equal(t, "processed_20240601_123045.png", outputName("png", now))
	assert.Equal(t, "processed_20240601_123045.jpg", outputName("jpeg", now))
	assert.Equal(t, "processed_20240601_123045.jpg", outputName("webp", now))
}

func TestImgCommand(t *testing.T) {
	dir := t.TempDir()

	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}

	input := filepath.Join(dir, "in.png")

	f, err := os.Create(input)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	outDir := filepath.Join(dir, "out")

	cmd := NewImgCommand()

	var buf bytes.Buffer

	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--resize", "4x4", "--grayscale", "--out", outDir, input})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "Loaded: ")
	assert.Contains(t, buf.String(), "Resized: 4x4")

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "processed_")
}

func TestImgCommand_UnknownFilter(t *testing.T) {
	dir := t.TempDir()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	input := filepath.Join(dir, "in.png")

	f, err := os.Create(input)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	cmd := NewImgCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--filter", "vignette", input})

	require.ErrorContains(t, cmd.Execute(), "unknown filter")
}
