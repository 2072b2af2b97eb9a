package engine

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseZBarOutput(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 60)
	out := "QR-CODE:hello world\nCODE-128:ABC123\n\nEAN-13:4006381333931\n"

	hits := parseZBarOutput(out, bounds)
	require.Len(t, hits, 3)

	assert.Equal(t, FamilyQR, hits[0].Family)
	assert.Equal(t, []byte("hello world"), hits[0].Payload)
	// No geometry from the tool: the polygon is the full frame.
	assert.InDelta(t, 6000, hits[0].Area(), 1e-9)

	assert.Equal(t, FamilyLinear, hits[1].Family)
	assert.Equal(t, []byte("ABC123"), hits[1].Payload)

	assert.Equal(t, FamilyLinear, hits[2].Family)
}

func TestParseZBarOutputPayloadWithColons(t *testing.T) {
	hits := parseZBarOutput("QR-CODE:https://example.com:8080/path\n", image.Rect(0, 0, 10, 10))
	require.Len(t, hits, 1)
	assert.Equal(t, []byte("https://example.com:8080/path"), hits[0].Payload)
}

func TestParseZBarOutputEmpty(t *testing.T) {
	assert.Empty(t, parseZBarOutput("", image.Rect(0, 0, 10, 10)))
	assert.Empty(t, parseZBarOutput("\n\n", image.Rect(0, 0, 10, 10)))
	// Lines without a separator are skipped.
	assert.Empty(t, parseZBarOutput("garbage line\n", image.Rect(0, 0, 10, 10)))
}

func TestFamilyFromZBarSymbology(t *testing.T) {
	tests := []struct {
		sym  string
		want Family
	}{
		{"QR-CODE", FamilyQR},
		{"qrcode", FamilyQR},
		{"MAXICODE", FamilyMaxiCode},
		{"PDF417", FamilyPDF417},
		{"DATAMATRIX", FamilyDataMatrix},
		{"AZTEC", FamilyAztec},
		{"CODE-128", FamilyLinear},
		{"EAN-13", FamilyLinear},
		{"I2/5", FamilyLinear},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, familyFromZBarSymbology(tt.sym), tt.sym)
	}
}

func TestZBarUnavailableBinaryIsEngineError(t *testing.T) {
	eng := NewZBar(ZBarConfig{Binary: "/nonexistent/zbarimg-binary"})
	img := image.NewGray(image.Rect(0, 0, 10, 10))

	_, err := eng.Attempt(context.Background(), img)
	require.Error(t, err)

	var engErr *Error
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, "zbar", engErr.Engine)

	// Provisioning failure persists across attempts.
	_, err2 := eng.Attempt(context.Background(), img)
	assert.Error(t, err2)
}

func TestZBarDefaults(t *testing.T) {
	eng := NewZBar(ZBarConfig{})
	assert.Equal(t, "zbar", eng.Name())
	assert.Contains(t, eng.Families(), FamilyMaxiCode)
	assert.Contains(t, eng.Families(), FamilyLinear)
}
