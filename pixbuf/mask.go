package pixbuf

import "image"

// ThresholdMode selects how Threshold rewrites each pixel.
type ThresholdMode int

const (
	// ThresholdToZero keeps values strictly above the threshold, zeroing the rest.
	ThresholdToZero ThresholdMode = iota
	// ThresholdToZeroInv zeroes values strictly above the threshold, keeping the rest.
	ThresholdToZeroInv
	// ThresholdBinary maps values strictly above the threshold to maxval, the rest to zero.
	ThresholdBinary
)

// Threshold applies a single threshold pass to a grayscale image and returns
// the result as a new image. thresh may be outside 0..255 so that exact-value
// masks can be built for boundary luminosities.
func Threshold(img *image.Gray, thresh int, maxval uint8, mode ThresholdMode) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			v := img.GrayAt(b.Min.X+x, b.Min.Y+y).Y
			var o uint8
			switch mode {
			case ThresholdToZero:
				if int(v) > thresh {
					o = v
				}
			case ThresholdToZeroInv:
				if int(v) <= thresh {
					o = v
				}
			case ThresholdBinary:
				if int(v) > thresh {
					o = maxval
				}
			}
			out.Pix[y*out.Stride+x] = o
		}
	}
	return out
}

// MakeMask builds a binary mask selecting exactly the pixels whose value
// equals luminosity: two paired to-zero passes trim everything below and
// above the target value, then a binary pass snaps the survivors to maxval.
func MakeMask(img *image.Gray, luminosity uint8, maxval uint8) *image.Gray {
	m := Threshold(img, int(luminosity)-1, maxval, ThresholdToZero)
	m = Threshold(m, int(luminosity), maxval, ThresholdToZeroInv)
	return Threshold(m, 0, maxval, ThresholdBinary)
}

// ApplyMask ANDs each color channel of img with the mask, zeroing the color
// of every pixel the mask does not select. Alpha is left untouched; callers
// promote the result with Opaque when a layer should read as solid content.
// The two images must be the same size.
func ApplyMask(img *image.NRGBA, mask *image.Gray) *image.NRGBA {
	out := clone(img)
	b := out.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			m := mask.GrayAt(mask.Bounds().Min.X+x, mask.Bounds().Min.Y+y).Y
			o := out.PixOffset(b.Min.X+x, b.Min.Y+y)
			out.Pix[o] &= m
			out.Pix[o+1] &= m
			out.Pix[o+2] &= m
		}
	}
	return out
}
