package variant

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/symscan/internal/utils"
)

// gradientImage builds a deterministic test image with enough tonal
// range that every photometric transform produces distinct output.
func gradientImage(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x*255/w + y*255/h) / 2)})
		}
	}
	return img
}

func TestGenerateDeterministic(t *testing.T) {
	img := gradientImage(120, 80)
	plan := DefaultPlan()

	first := Generate(img, plan)
	second := Generate(img, plan)
	require.Equal(t, len(first), len(second))

	for i := range first {
		assert.Equal(t, first[i].Label, second[i].Label)
		assert.Equal(t, first[i].Mapping, second[i].Mapping)
		require.Equal(t, first[i].Image.Bounds(), second[i].Image.Bounds())

		// Spot-check pixel equality between the two runs.
		b := first[i].Image.Bounds()
		for _, p := range []image.Point{b.Min, {X: b.Max.X - 1, Y: b.Max.Y - 1}, {X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}} {
			assert.Equal(t, first[i].Image.At(p.X, p.Y), second[i].Image.At(p.X, p.Y),
				"variant %s differs at %v between runs", first[i].Label, p)
		}
	}
}

func TestGeneratePreservesPlanOrder(t *testing.T) {
	img := gradientImage(60, 60)
	variants := Generate(img, DefaultPlan())
	require.Len(t, variants, len(DefaultPlan()))

	for i, label := range DefaultPlan() {
		assert.Equal(t, label, variants[i].Label)
	}
}

func TestGenerateSkipsUnknownLabel(t *testing.T) {
	img := gradientImage(40, 40)
	plan := Plan{LabelIdentity, "swirl", LabelGrayscale}

	variants := Generate(img, plan)
	require.Len(t, variants, 2)
	assert.Equal(t, LabelIdentity, variants[0].Label)
	assert.Equal(t, LabelGrayscale, variants[1].Label)
}

func TestGenerateNilImage(t *testing.T) {
	assert.Nil(t, Generate(nil, DefaultPlan()))
}

func TestGenerateIdentityIsSourceImage(t *testing.T) {
	img := gradientImage(32, 32)
	variants := Generate(img, Plan{LabelIdentity})
	require.Len(t, variants, 1)
	assert.Same(t, img, variants[0].Image)
	assert.Equal(t, IdentityMapping(), variants[0].Mapping)
}

func TestResizeMappingRecoversOriginalCoordinates(t *testing.T) {
	img := gradientImage(100, 50)
	variants := Generate(img, Plan{LabelResize})
	require.Len(t, variants, 1)

	v := variants[0]
	assert.Equal(t, 200, v.Image.Bounds().Dx())
	assert.Equal(t, 100, v.Image.Bounds().Dy())

	// A polygon in the upscaled frame maps back to original coordinates.
	mapped := v.Mapping.ToOriginal([]utils.Point{{X: 200, Y: 100}, {X: 0, Y: 0}, {X: 100, Y: 50}})
	assert.InDelta(t, 100, mapped[0].X, 1e-9)
	assert.InDelta(t, 50, mapped[0].Y, 1e-9)
	assert.InDelta(t, 0, mapped[1].X, 1e-9)
	assert.InDelta(t, 50, mapped[2].X, 1e-9)
	assert.InDelta(t, 25, mapped[2].Y, 1e-9)
}

func TestPlanValidate(t *testing.T) {
	tests := []struct {
		name      string
		plan      Plan
		ok        bool
		badLabel  string
	}{
		{"default plan", DefaultPlan(), true, ""},
		{"extended plan", ExtendedPlan(), true, ""},
		{"minimal plan", MinimalPlan(), true, ""},
		{"empty plan", Plan{}, true, ""},
		{"unknown label", Plan{LabelIdentity, "fisheye"}, false, "fisheye"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, ok := tt.plan.Validate()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.badLabel, label)
		})
	}
}

func TestIsKnownLabel(t *testing.T) {
	for _, label := range Labels {
		assert.True(t, IsKnownLabel(label), label)
	}
	assert.False(t, IsKnownLabel("rotate-90"))
	assert.False(t, IsKnownLabel(""))
}
