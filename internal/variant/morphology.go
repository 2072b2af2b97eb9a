package variant

import "image"

// Dilate expands bright regions of a grayscale image with a square kernel.
func Dilate(gray *image.Gray, kernelSize int) *image.Gray {
	return morph(gray, kernelSize, func(a, b uint8) bool { return a > b })
}

// Erode shrinks bright regions of a grayscale image with a square kernel.
func Erode(gray *image.Gray, kernelSize int) *image.Gray {
	return morph(gray, kernelSize, func(a, b uint8) bool { return a < b })
}

func morph(gray *image.Gray, kernelSize int, better func(a, b uint8) bool) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if kernelSize <= 1 {
		copy(out.Pix, gray.Pix)
		return out
	}
	half := kernelSize / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			best := gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y
			for ky := -half; ky <= half; ky++ {
				for kx := -half; kx <= half; kx++ {
					nx, ny := x+kx, y+ky
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					v := gray.GrayAt(b.Min.X+nx, b.Min.Y+ny).Y
					if better(v, best) {
						best = v
					}
				}
			}
			out.Pix[y*out.Stride+x] = best
		}
	}
	return out
}

// Convolve3x3 applies a 3x3 kernel to a grayscale image with clamped
// borders and clamped output range.
func Convolve3x3(gray *image.Gray, kernel [9]float64) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					nx := clamp(x+kx, 0, w-1)
					ny := clamp(y+ky, 0, h-1)
					acc += kernel[(ky+1)*3+kx+1] * float64(gray.GrayAt(b.Min.X+nx, b.Min.Y+ny).Y)
				}
			}
			out.Pix[y*out.Stride+x] = uint8(clamp(int(acc+0.5), 0, 255))
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
