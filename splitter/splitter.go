// Package splitter turns a dual-panel sprite sheet into its luminosity-keyed
// layers. A dual-panel sheet is twice as wide as the art it carries: the left
// half is the colored sprite, the right half is a grayscale mask in which
// each distinct luminosity marks one equipment or hair layer.
package splitter

import (
	"fmt"
	"image"
	"image/color"

	"chosenoffset.com/spriteforge/pixbuf"
)

// Luminosities that never form a layer: 0 is the empty background, 255 is
// the mask's explicit "ignore" sentinel.
var ignored = map[uint8]bool{0: true, 255: true}

// LayerMap maps a mask luminosity to that layer's isolated, opaque image.
// Every layer has the dimensions of the sheet's color pane.
type LayerMap map[uint8]*image.NRGBA

// Split decomposes a dual-panel sheet into a LayerMap. Pure white in the
// mask pane is rewritten to near-white first: 255 sits in the ignore set,
// so a genuine bright layer authored as pure white would otherwise vanish.
func Split(sheet *image.NRGBA) (LayerMap, error) {
	b := sheet.Bounds()
	if b.Dx()%2 != 0 {
		return nil, fmt.Errorf("splitter: dual-panel sheet has odd width %d: %w", b.Dx(), pixbuf.ErrMalformedGeometry)
	}
	w := b.Dx() / 2
	h := b.Dy()

	colorPane, err := pixbuf.Crop(sheet, image.Pt(0, 0), image.Pt(w, h))
	if err != nil {
		return nil, err
	}
	maskPane, err := pixbuf.Crop(sheet, image.Pt(w, 0), image.Pt(w, h))
	if err != nil {
		return nil, err
	}

	maskPane = pixbuf.ReplaceColor(maskPane,
		color.NRGBA{255, 255, 255, 255},
		color.NRGBA{252, 252, 252, 255})
	gray := pixbuf.ToGrayscale(maskPane)

	out := LayerMap{}
	for _, v := range pixbuf.UniqueValues(gray) {
		if ignored[v] {
			continue
		}
		mask := pixbuf.MakeMask(gray, v, 255)
		out[v] = pixbuf.Opaque(pixbuf.ApplyMask(colorPane, mask))
	}
	return out, nil
}

// Keys returns the union of the layer keys of the given maps in ascending
// luminosity order, or descending when reverse is set. Compositing walks
// this slice to stack layers deterministically.
func Keys(reverse bool, maps ...LayerMap) []uint8 {
	var seen [256]bool
	for _, m := range maps {
		for k := range m {
			seen[k] = true
		}
	}
	out := make([]uint8, 0, 8)
	if reverse {
		for v := 255; v >= 0; v-- {
			if seen[v] {
				out = append(out, uint8(v))
			}
		}
		return out
	}
	for v := 0; v < 256; v++ {
		if seen[v] {
			out = append(out, uint8(v))
		}
	}
	return out
}

// PunchAlpha rewrites exact opaque black to fully transparent in every
// layer, returning a new map. Split produces layers whose masked-out area
// is opaque black; alpha-mode composites want that area see-through.
func PunchAlpha(layers LayerMap) LayerMap {
	out := make(LayerMap, len(layers))
	for k, v := range layers {
		out[k] = pixbuf.ReplaceColor(v, color.NRGBA{0, 0, 0, 255}, color.NRGBA{0, 0, 0, 0})
	}
	return out
}
