package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/symscan/internal/engine"
	"github.com/MeKo-Tech/symscan/internal/utils"
	"github.com/MeKo-Tech/symscan/internal/variant"
)

func TestNormalizeMapsPolygonToOriginalFrame(t *testing.T) {
	hit := engine.RawHit{
		Payload: []byte("payload"),
		Family:  engine.FamilyQR,
		Polygon: []utils.Point{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 100}, {X: 0, Y: 100}},
	}
	// A 2x upscaled variant carries the inverse scale back to the original.
	v := variant.Variant{
		Label:   variant.LabelResize,
		Mapping: variant.Mapping{ScaleX: 0.5, ScaleY: 0.5},
	}

	res := Normalize(hit, v, "zxing")
	assert.Equal(t, engine.FamilyQR, res.Family)
	assert.Equal(t, "payload", res.Text)
	assert.False(t, res.Binary)
	assert.Equal(t, variant.LabelResize, res.Variant)
	assert.Equal(t, "zxing", res.Engine)

	box := res.Box()
	assert.InDelta(t, 100, box.MaxX, 1e-9)
	assert.InDelta(t, 50, box.MaxY, 1e-9)
}

func TestNormalizeCopiesPayload(t *testing.T) {
	raw := []byte("mutable")
	hit := engine.RawHit{Payload: raw, Family: engine.FamilyLinear}
	v := variant.Variant{Label: variant.LabelIdentity, Mapping: variant.IdentityMapping()}

	res := Normalize(hit, v, "zbar")
	raw[0] = 'X'
	assert.Equal(t, []byte("mutable"), res.Payload)
}

func TestDecodePayloadUTF8(t *testing.T) {
	text, binary := decodePayload([]byte("héllo ✓"))
	assert.False(t, binary)
	assert.Equal(t, "héllo ✓", text)
}

func TestDecodePayloadLatin1Fallback(t *testing.T) {
	// 0xE9 is 'é' in ISO 8859-1 but invalid standalone UTF-8.
	payload := []byte{'c', 'a', 'f', 0xE9}
	text, binary := decodePayload(payload)
	require.False(t, binary)
	assert.Equal(t, "café", text)
}

func TestDecodePayloadBinary(t *testing.T) {
	payload := []byte{0x00, 0x01, 0xFF, 0xFE}
	text, binary := decodePayload(payload)
	assert.True(t, binary)
	assert.Empty(t, text)
}

func TestDecodePayloadEmptyIsText(t *testing.T) {
	text, binary := decodePayload(nil)
	assert.False(t, binary)
	assert.Empty(t, text)
}
