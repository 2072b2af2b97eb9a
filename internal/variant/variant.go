package variant

import (
	"image"

	"github.com/MeKo-Tech/symscan/internal/utils"
)

// Transform labels form a fixed vocabulary. Plans reference transforms by
// label so trial order is explicit configuration, not control flow.
const (
	LabelIdentity          = "identity"
	LabelGrayscale         = "grayscale"
	LabelAdaptiveThreshold = "adaptive-threshold"
	LabelOtsuThreshold     = "otsu-threshold"
	LabelBlurThreshold     = "blur-threshold"
	LabelSharpen           = "sharpen"
	LabelContrast          = "contrast"
	LabelResize            = "resize"
	LabelInvert            = "invert"
	LabelMorphDilate       = "morph-dilate"
	LabelMorphErode        = "morph-erode"
)

// Labels lists the full transform vocabulary in canonical order.
var Labels = []string{
	LabelIdentity,
	LabelGrayscale,
	LabelAdaptiveThreshold,
	LabelOtsuThreshold,
	LabelBlurThreshold,
	LabelSharpen,
	LabelContrast,
	LabelResize,
	LabelInvert,
	LabelMorphDilate,
	LabelMorphErode,
}

// IsKnownLabel reports whether label names a transform in the vocabulary.
func IsKnownLabel(label string) bool {
	for _, l := range Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Mapping converts coordinates in a variant's frame back to the original
// image frame. Photometric transforms use the identity mapping; resize
// records the inverse scale.
type Mapping struct {
	ScaleX float64
	ScaleY float64
}

// IdentityMapping maps variant coordinates to themselves.
func IdentityMapping() Mapping { return Mapping{ScaleX: 1, ScaleY: 1} }

// ToOriginal maps a polygon from variant coordinates to original-image
// coordinates.
func (m Mapping) ToOriginal(pts []utils.Point) []utils.Point {
	return utils.ScalePoints(pts, m.ScaleX, m.ScaleY)
}

// Variant is one deterministically transformed rendering of the source
// image, tagged with its transform label and coordinate mapping.
type Variant struct {
	Image   image.Image
	Label   string
	Mapping Mapping
}
