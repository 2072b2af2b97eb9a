package utils

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBoxOrdersCoordinates(t *testing.T) {
	b := NewBox(10, 20, 2, 4)
	assert.Equal(t, Box{MinX: 2, MinY: 4, MaxX: 10, MaxY: 20}, b)
	assert.InDelta(t, 8, b.Width(), 1e-9)
	assert.InDelta(t, 16, b.Height(), 1e-9)
	assert.InDelta(t, 128, b.Area(), 1e-9)
}

func TestIntersectionOverUnion(t *testing.T) {
	tests := []struct {
		name string
		a, b Box
		want float64
	}{
		{"identical", NewBox(0, 0, 10, 10), NewBox(0, 0, 10, 10), 1.0},
		{"disjoint", NewBox(0, 0, 5, 5), NewBox(10, 10, 20, 20), 0.0},
		{"touching edges", NewBox(0, 0, 5, 5), NewBox(5, 0, 10, 5), 0.0},
		{"half overlap", NewBox(0, 0, 10, 10), NewBox(5, 0, 15, 10), 1.0 / 3.0},
		{"degenerate", Box{}, NewBox(0, 0, 10, 10), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, IntersectionOverUnion(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.want, IntersectionOverUnion(tt.b, tt.a), 1e-9)
		})
	}
}

func TestBoxToRectClamps(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)
	r := NewBox(-5.5, 10.2, 120, 50.7).ToRect(bounds)
	assert.Equal(t, image.Rect(0, 10, 100, 51), r)
}

func TestPolygonArea(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	assert.InDelta(t, 100, PolygonArea(square), 1e-9)

	triangle := []Point{{0, 0}, {10, 0}, {0, 10}}
	assert.InDelta(t, 50, PolygonArea(triangle), 1e-9)

	// Winding direction does not change the magnitude.
	reversed := []Point{{0, 10}, {10, 10}, {10, 0}, {0, 0}}
	assert.InDelta(t, 100, PolygonArea(reversed), 1e-9)

	assert.Zero(t, PolygonArea(nil))
	assert.Zero(t, PolygonArea([]Point{{0, 0}, {1, 1}}))
}

func TestPolygonBounds(t *testing.T) {
	pts := []Point{{3, 7}, {-1, 2}, {8, 5}}
	b := PolygonBounds(pts)
	assert.Equal(t, Box{MinX: -1, MinY: 2, MaxX: 8, MaxY: 7}, b)
	assert.Equal(t, Box{}, PolygonBounds(nil))
}

func TestRectPolygonRoundTrip(t *testing.T) {
	r := image.Rect(2, 3, 12, 9)
	poly := RectPolygon(r)
	assert.Len(t, poly, 4)
	assert.InDelta(t, float64(r.Dx()*r.Dy()), PolygonArea(poly), 1e-9)
	assert.Equal(t, Box{MinX: 2, MinY: 3, MaxX: 12, MaxY: 9}, PolygonBounds(poly))
}

func TestScalePoints(t *testing.T) {
	pts := []Point{{2, 4}, {6, 8}}
	scaled := ScalePoints(pts, 0.5, 0.25)
	assert.Equal(t, []Point{{1, 1}, {3, 2}}, scaled)
	// Input slice untouched.
	assert.Equal(t, Point{2, 4}, pts[0])
}
