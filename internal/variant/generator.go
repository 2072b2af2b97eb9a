package variant

import (
	"image"
	"log/slog"
)

// Plan is an ordered list of transform labels defining trial priority.
// Identity should come first: it is the cheapest variant and the most
// likely to decode on a clean capture.
type Plan []string

// DefaultPlan returns the standard plan used when no family-specific plan
// is configured.
func DefaultPlan() Plan {
	return Plan{
		LabelIdentity,
		LabelGrayscale,
		LabelAdaptiveThreshold,
		LabelOtsuThreshold,
		LabelBlurThreshold,
		LabelSharpen,
		LabelContrast,
	}
}

// ExtendedPlan returns the default plan extended with the geometric and
// morphological transforms used for hard-to-read symbologies.
func ExtendedPlan() Plan {
	return append(DefaultPlan(),
		LabelResize,
		LabelInvert,
		LabelMorphDilate,
		LabelMorphErode,
	)
}

// MinimalPlan returns the plan for clean linear barcode captures.
func MinimalPlan() Plan {
	return Plan{LabelIdentity, LabelGrayscale}
}

// Validate reports the first unknown label in the plan, if any.
func (p Plan) Validate() (string, bool) {
	for _, label := range p {
		if !IsKnownLabel(label) {
			return label, false
		}
	}
	return "", true
}

// Generate produces the ordered variant sequence for an image. Transforms
// that cannot be applied (unknown label, degenerate output) are skipped,
// never raised; the sequence is deterministic for a given image and plan.
func Generate(img image.Image, plan Plan) []Variant {
	if img == nil {
		return nil
	}
	variants := make([]Variant, 0, len(plan))
	for _, label := range plan {
		fn, ok := transforms[label]
		if !ok {
			slog.Warn("skipping unknown transform label", "label", label)
			continue
		}
		out, mapping, err := fn(img)
		if err != nil || out == nil {
			slog.Debug("transform not applicable, variant omitted", "label", label, "error", err)
			continue
		}
		variants = append(variants, Variant{Image: out, Label: label, Mapping: mapping})
	}
	return variants
}
