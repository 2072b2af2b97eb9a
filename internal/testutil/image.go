// Package testutil provides synthetic symbol images and assertion
// helpers for pipeline tests.
package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	gozxing "github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/symscan/internal/utils"
)

// GenerateQR encodes payload into a QR image of roughly size x size
// pixels (quiet zone included).
func GenerateQR(t *testing.T, payload string, size int) image.Image {
	t.Helper()

	writer := qrcode.NewQRCodeWriter()
	matrix, err := writer.Encode(payload, gozxing.BarcodeFormat_QR_CODE, size, size, nil)
	require.NoError(t, err, "failed to encode QR payload %q", payload)
	return matrix
}

// GenerateCode128 encodes payload into a Code 128 linear barcode image.
func GenerateCode128(t *testing.T, payload string, width, height int) image.Image {
	t.Helper()

	writer := oned.NewCode128Writer()
	matrix, err := writer.Encode(payload, gozxing.BarcodeFormat_CODE_128, width, height, nil)
	require.NoError(t, err, "failed to encode Code 128 payload %q", payload)
	return matrix
}

// SymbolBounds returns the tight bounding box of dark pixels, i.e. the
// symbol extent excluding the quiet zone. Used as IoU ground truth.
func SymbolBounds(img image.Image) utils.Box {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if (r+g+bl)/3 < 0x4000 {
				if x < minX {
					minX = x
				}
				if y < minY {
					minY = y
				}
				if x > maxX {
					maxX = x
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	if maxX < minX || maxY < minY {
		return utils.Box{}
	}
	return utils.NewBox(float64(minX), float64(minY), float64(maxX+1), float64(maxY+1))
}

// LowContrast compresses an image's dynamic range around mid-gray so a
// global binarization threshold no longer separates modules cleanly.
func LowContrast(img image.Image, spread uint8) image.Image {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	mid := 128
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			v := int((r + g + bl) / 3 >> 8)
			scaled := mid + (v-mid)*int(spread)/255
			out.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: uint8(scaled)})
		}
	}
	return out
}

// OnWhiteCanvas pastes an image onto a larger white canvas at the given
// offset, returning the canvas. Used to place a symbol off-center.
func OnWhiteCanvas(img image.Image, canvasW, canvasH, offX, offY int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, canvasW, canvasH))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	b := img.Bounds()
	draw.Draw(dst, image.Rect(offX, offY, offX+b.Dx(), offY+b.Dy()), img, b.Min, draw.Over)
	return dst
}
