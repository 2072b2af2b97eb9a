package cmd

import (
	"encoding/json"
	"image"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/symscan/internal/pipeline"
	"github.com/MeKo-Tech/symscan/internal/testutil"
	"github.com/MeKo-Tech/symscan/internal/utils"
)

func whiteImage(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func writeQRFile(t *testing.T, payload string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "symbol.png")
	require.NoError(t, utils.SavePNG(testutil.GenerateQR(t, payload, 200), path))
	return path
}

func TestImageCommandNoArgs(t *testing.T) {
	_, err := executeCommand(t, "image")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
}

func TestImageCommandUnsupportedFile(t *testing.T) {
	_, err := executeCommand(t, "image", "notes.txt", "--zbar=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image format")
}

func TestImageCommandInvalidFormat(t *testing.T) {
	path := writeQRFile(t, "X")
	_, err := executeCommand(t, "image", path, "--format", "xml", "--zbar=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestImageCommandScansFile(t *testing.T) {
	path := writeQRFile(t, "CLI-HELLO")

	out, err := executeCommand(t, "image", path, "--format", "text", "--family", "qr", "--zbar=false")
	require.NoError(t, err)
	assert.Contains(t, out, "qr: CLI-HELLO")
}

func TestImageCommandJSONOutput(t *testing.T) {
	path := writeQRFile(t, "CLI-JSON")

	out, err := executeCommand(t, "image", path, "--format", "json", "--family", "qr", "--zbar=false")
	require.NoError(t, err)

	var res pipeline.DecodeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "CLI-JSON", res.Text)
	assert.Equal(t, "zxing", res.Engine)
}

func TestImageCommandNotFound(t *testing.T) {
	blank := filepath.Join(t.TempDir(), "blank.png")
	require.NoError(t, utils.SavePNG(whiteImage(200, 200), blank))

	out, err := executeCommand(t, "image", blank, "--format", "text", "--family", "qr", "--zbar=false")
	require.ErrorIs(t, err, pipeline.ErrNotFound)
	assert.Contains(t, out, "no symbol found")
}

func TestImageCommandWritesOverlay(t *testing.T) {
	path := writeQRFile(t, "CLI-OVERLAY")
	overlayDir := t.TempDir()

	out, err := executeCommand(t, "image", path, "--format", "text",
		"--family", "qr", "--zbar=false", "--overlay-dir", overlayDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved overlay:")

	_, _, err = utils.LoadImage(filepath.Join(overlayDir, "symbol_overlay.png"))
	assert.NoError(t, err)
}

func TestImageCommandFlagsRegistered(t *testing.T) {
	cmd := GetImageCommand()
	for _, name := range []string{
		"format", "output", "family", "policy", "plan",
		"timeout", "workers", "try-harder", "zbar", "zbar-binary", "overlay-dir",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
