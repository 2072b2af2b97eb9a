package utils

import (
	"image"
	"image/color"
	"math"
)

// DrawLine draws a line between two points using simple DDA stepping.
func DrawLine(dst *image.RGBA, a, b Point, c color.Color, thickness int) {
	if dst == nil || thickness <= 0 {
		return
	}
	dx := b.X - a.X
	dy := b.Y - a.Y
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps == 0 {
		setThick(dst, int(a.X), int(a.Y), c, thickness)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		setThick(dst, int(a.X+dx*t+0.5), int(a.Y+dy*t+0.5), c, thickness)
	}
}

// DrawRect draws the outline of a rectangle.
func DrawRect(dst *image.RGBA, r image.Rectangle, c color.Color, thickness int) {
	pts := RectPolygon(r)
	DrawPolygon(dst, pts, c, thickness)
}

// DrawPolygon draws a closed polygon outline.
func DrawPolygon(dst *image.RGBA, pts []Point, c color.Color, thickness int) {
	if dst == nil || len(pts) < 2 {
		return
	}
	for i := range pts {
		DrawLine(dst, pts[i], pts[(i+1)%len(pts)], c, thickness)
	}
}

func setThick(dst *image.RGBA, x, y int, c color.Color, thickness int) {
	half := thickness / 2
	b := dst.Bounds()
	for oy := -half; oy <= half; oy++ {
		for ox := -half; ox <= half; ox++ {
			px, py := x+ox, y+oy
			if px >= b.Min.X && px < b.Max.X && py >= b.Min.Y && py < b.Max.Y {
				dst.Set(px, py, c)
			}
		}
	}
}
