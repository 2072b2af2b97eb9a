package pipeline

import (
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/MeKo-Tech/symscan/internal/engine"
	"github.com/MeKo-Tech/symscan/internal/utils"
	"github.com/MeKo-Tech/symscan/internal/variant"
)

// DecodeResult is the normalized output of one detection call. Its
// polygon is expressed in original-image coordinates regardless of which
// variant produced the winning hit.
type DecodeResult struct {
	Family  engine.Family `json:"family" yaml:"family"`
	Text    string        `json:"text,omitempty" yaml:"text,omitempty"`
	Payload []byte        `json:"payload" yaml:"payload"`
	Binary  bool          `json:"binary" yaml:"binary"`
	Polygon []utils.Point `json:"polygon" yaml:"polygon"`
	Variant string        `json:"variant" yaml:"variant"`
	Engine  string        `json:"engine" yaml:"engine"`
	Elapsed time.Duration `json:"elapsed_ns" yaml:"elapsed_ns"`
}

// Box returns the axis-aligned bounds of the result polygon.
func (r *DecodeResult) Box() utils.Box { return utils.PolygonBounds(r.Polygon) }

// Normalize maps a raw hit from its variant's coordinate frame into the
// original image frame and decodes the payload to text where possible.
// Payload bytes are retained whole in every case.
func Normalize(hit engine.RawHit, v variant.Variant, engineName string) *DecodeResult {
	res := &DecodeResult{
		Family:  hit.Family,
		Payload: append([]byte(nil), hit.Payload...),
		Polygon: v.Mapping.ToOriginal(hit.Polygon),
		Variant: v.Label,
		Engine:  engineName,
	}
	res.Text, res.Binary = decodePayload(res.Payload)
	return res
}

// decodePayload attempts UTF-8 first, then ISO 8859-1 for byte streams
// that look textual (ZXing's historical default charset). Anything else
// is flagged binary; the raw bytes stay untouched either way.
func decodePayload(payload []byte) (text string, binary bool) {
	if utf8.Valid(payload) {
		return string(payload), false
	}
	if looksLatin1(payload) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(payload)
		if err == nil {
			return string(decoded), false
		}
	}
	return "", true
}

func looksLatin1(payload []byte) bool {
	for _, b := range payload {
		if b >= 0xA0 || b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		if b < 0x20 || b == 0x7F || !unicode.IsPrint(rune(b)) {
			return false
		}
	}
	return true
}
