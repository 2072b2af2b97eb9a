package variant

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// Transform parameters are fixed so variant sequences are reproducible.
// Values mirror the capture-hardened defaults this pipeline was tuned with:
// a large adaptive window with a small bias, a 5x5 Gaussian, a 3x3 sharpen
// kernel, 2x cubic upscaling and a 3x3 morphology kernel.
const (
	adaptiveBlockSize = 91
	adaptiveBias      = 11
	blurSigma         = 1.1 // ~5x5 Gaussian support
	contrastPercent   = 40
	resizeFactor      = 2.0
	morphKernelSize   = 3
)

var sharpenKernel = [9]float64{
	-1, -1, -1,
	-1, 9, -1,
	-1, -1, -1,
}

// transformFunc applies one transform, returning the variant image and its
// coordinate mapping. A transform that cannot be applied returns an error
// and is skipped by the generator.
type transformFunc func(img image.Image) (image.Image, Mapping, error)

var transforms = map[string]transformFunc{
	LabelIdentity:          transformIdentity,
	LabelGrayscale:         transformGrayscale,
	LabelAdaptiveThreshold: transformAdaptiveThreshold,
	LabelOtsuThreshold:     transformOtsuThreshold,
	LabelBlurThreshold:     transformBlurThreshold,
	LabelSharpen:           transformSharpen,
	LabelContrast:          transformContrast,
	LabelResize:            transformResize,
	LabelInvert:            transformInvert,
	LabelMorphDilate:       transformMorphDilate,
	LabelMorphErode:        transformMorphErode,
}

func transformIdentity(img image.Image) (image.Image, Mapping, error) {
	return img, IdentityMapping(), nil
}

func transformGrayscale(img image.Image) (image.Image, Mapping, error) {
	return ToGray(img), IdentityMapping(), nil
}

func transformAdaptiveThreshold(img image.Image) (image.Image, Mapping, error) {
	gray := ToGray(img)
	return AdaptiveThreshold(gray, adaptiveBlockSize, adaptiveBias), IdentityMapping(), nil
}

func transformOtsuThreshold(img image.Image) (image.Image, Mapping, error) {
	gray := ToGray(img)
	return BinaryThreshold(gray, OtsuLevel(gray)), IdentityMapping(), nil
}

// transformBlurThreshold is a single composite vocabulary entry: Gaussian
// blur followed by Otsu thresholding of the blurred image.
func transformBlurThreshold(img image.Image) (image.Image, Mapping, error) {
	blurred := ToGray(imaging.Blur(img, blurSigma))
	return BinaryThreshold(blurred, OtsuLevel(blurred)), IdentityMapping(), nil
}

func transformSharpen(img image.Image) (image.Image, Mapping, error) {
	gray := ToGray(img)
	return Convolve3x3(gray, sharpenKernel), IdentityMapping(), nil
}

func transformContrast(img image.Image) (image.Image, Mapping, error) {
	return imaging.AdjustContrast(img, contrastPercent), IdentityMapping(), nil
}

func transformResize(img image.Image) (image.Image, Mapping, error) {
	b := img.Bounds()
	w := int(float64(b.Dx()) * resizeFactor)
	h := int(float64(b.Dy()) * resizeFactor)
	if w <= 0 || h <= 0 {
		return nil, Mapping{}, errors.New("resize produces zero-area image")
	}
	resized := imaging.Resize(img, w, h, imaging.CatmullRom)
	// Inverse mapping recovers original coordinates from the upscaled frame.
	return resized, Mapping{
		ScaleX: float64(b.Dx()) / float64(w),
		ScaleY: float64(b.Dy()) / float64(h),
	}, nil
}

func transformInvert(img image.Image) (image.Image, Mapping, error) {
	return imaging.Invert(ToGray(img)), IdentityMapping(), nil
}

func transformMorphDilate(img image.Image) (image.Image, Mapping, error) {
	return Dilate(ToGray(img), morphKernelSize), IdentityMapping(), nil
}

func transformMorphErode(img image.Image) (image.Image, Mapping, error) {
	return Erode(ToGray(img), morphKernelSize), IdentityMapping(), nil
}

// ToGray converts any image to a single-channel *image.Gray. Gray inputs
// are returned as-is.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x-b.Min.X, y-b.Min.Y, img.At(x, y))
		}
	}
	return gray
}
