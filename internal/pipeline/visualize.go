package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/MeKo-Tech/symscan/internal/utils"
)

// RenderOverlay draws the result's bounding polygon and a family/engine
// label over an RGBA copy of the original image. This is the annotation
// collaborator: it consumes a DecodeResult, it never participates in the
// scan itself.
func RenderOverlay(img image.Image, res *DecodeResult, polyColor color.Color) *image.RGBA {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	if res == nil || len(res.Polygon) < 2 {
		return dst
	}

	utils.DrawPolygon(dst, res.Polygon, polyColor, 2)

	box := res.Box()
	label := fmt.Sprintf("%s/%s", res.Family, res.Engine)
	drawLabel(dst, label, int(box.MinX), int(box.MinY)-4, polyColor)
	return dst
}

func drawLabel(dst *image.RGBA, text string, x, y int, c color.Color) {
	if y < basicfont.Face7x13.Metrics().Ascent.Ceil() {
		y = basicfont.Face7x13.Metrics().Ascent.Ceil()
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
