// Package pixbuf provides the raster primitives the compositing pipeline is
// built on: exact-value crop/paste/mask operations over NRGBA buffers.
//
// Every image entering the pipeline goes through Ingest exactly once, which
// normalizes it to a non-premultiplied, fully opaque *image.NRGBA anchored at
// (0,0). All other functions in this package assume that normalization and
// never blend: pixels are copied or zeroed, never mixed.
package pixbuf

import (
	"errors"
	"image"
	"image/color"
)

// ErrMalformedGeometry is returned when a crop region does not fit inside the
// source buffer. Paste, by contrast, always clips silently.
var ErrMalformedGeometry = errors.New("pixbuf: region outside image bounds")

// New creates a fully transparent buffer of the given size.
func New(w, h int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, w, h))
}

// NewOpaque creates an opaque black buffer of the given size. Used for the
// blank placeholder sheets that stand in for an absent head or body part.
func NewOpaque(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

// Normalize converts any decoded image into the pipeline's canonical form:
// an *image.NRGBA with Min at (0,0) and every alpha forced to 255. Source
// sheets carry layer information in their color channels only, so whatever
// alpha the file format supplied is discarded here, once, at the boundary.
func Normalize(src image.Image) *image.NRGBA {
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			c.A = 0xff
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}

// Crop returns a copy of the w×h region of src whose top-left corner is at
// origin. The region must lie entirely within src; a region that does not is
// ErrMalformedGeometry, never a silent truncation.
func Crop(src *image.NRGBA, origin, size image.Point) (*image.NRGBA, error) {
	r := image.Rect(origin.X, origin.Y, origin.X+size.X, origin.Y+size.Y)
	if !r.In(src.Bounds()) {
		return nil, ErrMalformedGeometry
	}
	out := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	for y := 0; y < size.Y; y++ {
		srcOff := src.PixOffset(origin.X, origin.Y+y)
		copy(out.Pix[y*out.Stride:y*out.Stride+size.X*4], src.Pix[srcOff:srcOff+size.X*4])
	}
	return out, nil
}

// Paste copies src onto dst at pos, in place. A source pixel is copied only
// if its alpha is non-zero, and the whole pixel is copied verbatim, alpha
// included; there is no blending. Destination writes that fall outside dst
// are dropped so partial frames compose without bounds checks.
func Paste(dst, src *image.NRGBA, pos image.Point) {
	sb := src.Bounds()
	db := dst.Bounds()
	for y := 0; y < sb.Dy(); y++ {
		dy := pos.Y + y
		if dy < db.Min.Y || dy >= db.Max.Y {
			continue
		}
		for x := 0; x < sb.Dx(); x++ {
			dx := pos.X + x
			if dx < db.Min.X || dx >= db.Max.X {
				continue
			}
			so := src.PixOffset(sb.Min.X+x, sb.Min.Y+y)
			if src.Pix[so+3] == 0 {
				continue
			}
			do := dst.PixOffset(dx, dy)
			copy(dst.Pix[do:do+4], src.Pix[so:so+4])
		}
	}
}

// ReplaceColor returns a copy of img with every pixel exactly equal to from
// rewritten to to. Comparison covers all four channels.
func ReplaceColor(img *image.NRGBA, from, to color.NRGBA) *image.NRGBA {
	out := clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i] == from.R && out.Pix[i+1] == from.G && out.Pix[i+2] == from.B && out.Pix[i+3] == from.A {
			out.Pix[i] = to.R
			out.Pix[i+1] = to.G
			out.Pix[i+2] = to.B
			out.Pix[i+3] = to.A
		}
	}
	return out
}

// ReplaceBackground rewrites every pixel matching the top-left pixel's color.
func ReplaceBackground(img *image.NRGBA, to color.NRGBA) *image.NRGBA {
	b := img.Bounds()
	return ReplaceColor(img, img.NRGBAAt(b.Min.X, b.Min.Y), to)
}

// ToGrayscale converts img to single-channel luminance using the standard
// integer 299/587/114 weights. Mask keys are compared for exact equality
// downstream, so this is the one and only luma formula in the pipeline.
func ToGrayscale(img *image.NRGBA) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			o := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			r := int(img.Pix[o])
			g := int(img.Pix[o+1])
			bl := int(img.Pix[o+2])
			out.Pix[y*out.Stride+x] = uint8((299*r + 587*g + 114*bl + 500) / 1000)
		}
	}
	return out
}

// GrayToNRGBA replicates a single-channel image across R, G and B with full
// alpha, producing the opaque grayscale rendition used for the master sheet's
// trailing block.
func GrayToNRGBA(img *image.Gray) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			v := img.GrayAt(b.Min.X+x, b.Min.Y+y).Y
			o := out.PixOffset(x, y)
			out.Pix[o] = v
			out.Pix[o+1] = v
			out.Pix[o+2] = v
			out.Pix[o+3] = 0xff
		}
	}
	return out
}

// UniqueValues returns the distinct channel values present in img, ascending.
func UniqueValues(img *image.Gray) []uint8 {
	var seen [256]bool
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()]
		for _, v := range row {
			seen[v] = true
		}
	}
	out := make([]uint8, 0, 16)
	for v := 0; v < 256; v++ {
		if seen[v] {
			out = append(out, uint8(v))
		}
	}
	return out
}

// Opaque returns a copy of img with every alpha forced to 255.
func Opaque(img *image.NRGBA) *image.NRGBA {
	out := clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

func clone(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	return out
}
