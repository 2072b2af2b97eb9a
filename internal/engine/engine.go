// Package engine defines the decode engine capability and its concrete
// implementations. An engine attempts to decode optical symbols from a
// single image; zero hits is the normal "not found" outcome, an error is
// an engine failure the orchestrator isolates from other engines.
package engine

import (
	"context"
	"fmt"
	"image"

	"github.com/MeKo-Tech/symscan/internal/utils"
)

// Family identifies a class of optical code with distinct structural
// encoding rules.
type Family string

const (
	FamilyUnknown    Family = ""
	FamilyQR         Family = "qr"
	FamilyAztec      Family = "aztec"
	FamilyDataMatrix Family = "datamatrix"
	FamilyMaxiCode   Family = "maxicode"
	FamilyPDF417     Family = "pdf417"
	FamilyLinear     Family = "linear"
)

// Families lists all supported symbol families.
var Families = []Family{
	FamilyQR,
	FamilyAztec,
	FamilyDataMatrix,
	FamilyMaxiCode,
	FamilyPDF417,
	FamilyLinear,
}

// IsKnownFamily reports whether f names a supported symbol family.
func IsKnownFamily(f Family) bool {
	for _, k := range Families {
		if k == f {
			return true
		}
	}
	return false
}

// RawHit is an engine's untranslated decode result. Its polygon is
// expressed in the coordinate space of the image the engine was given,
// which may be a transformed variant of the original.
type RawHit struct {
	Payload []byte
	Family  Family
	Polygon []utils.Point
}

// Area returns the bounding-polygon area of the hit. Hits with fewer than
// three points fall back to the polygon's axis-aligned bounds.
func (h RawHit) Area() float64 {
	if a := utils.PolygonArea(h.Polygon); a > 0 {
		return a
	}
	return utils.PolygonBounds(h.Polygon).Area()
}

// Engine is the decode capability. Implementations must be safe for
// concurrent Attempt calls and must never panic across the boundary:
// any underlying failure is returned as an error.
type Engine interface {
	// Name identifies the engine in diagnostics and results.
	Name() string

	// Families returns the symbol families this engine is specialized for.
	Families() []Family

	// Attempt decodes symbols from img. An empty slice with a nil error
	// means no symbol was found; a non-nil error means the engine itself
	// failed to execute.
	Attempt(ctx context.Context, img image.Image) ([]RawHit, error)
}

// Error wraps a failure of a specific engine so the orchestrator can
// continue with remaining (variant, engine) pairs and still report the
// most informative cause on total exhaustion.
type Error struct {
	Engine string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("engine %s: %v", e.Engine, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Covers reports whether eng is specialized for family. FamilyUnknown
// matches any engine.
func Covers(eng Engine, family Family) bool {
	if family == FamilyUnknown {
		return true
	}
	for _, f := range eng.Families() {
		if f == family {
			return true
		}
	}
	return false
}
