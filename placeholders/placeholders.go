// Package placeholders generates synthetic dual-panel head and body sheets
// so the pipeline can be exercised without ripped game assets. Each sheet
// carries every color block and motion state, with a mask pane keyed by the
// same layer values a real rip would use.
package placeholders

import (
	"image"
	"image/color"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"

	"chosenoffset.com/spriteforge/pixbuf"
	"chosenoffset.com/spriteforge/spritecfg"
)

// Layer keys painted into the mask pane, back to front.
const (
	KeyOutline uint8 = 40
	KeyFill    uint8 = 120
	KeyTrim    uint8 = 200
)

// variantHues maps block index to the hue of that faction's palette,
// matching the purple, green, red, blue variant order.
var variantHues = []float64{280, 130, 5, 225}

// layerColor derives one layer's color from the variant hue. Layers share a
// hue and differ in lightness, the way real faction palettes do.
func layerColor(hue, lightness float64) color.NRGBA {
	r, g, b := colorful.Hsl(hue, 0.55, lightness).RGB255()
	return color.NRGBA{r, g, b, 255}
}

// sheet is a dual-panel canvas under construction. Every set paints the
// color pane and its mask-pane twin together.
type sheet struct {
	img  *image.NRGBA
	pane int
}

func newSheet(paneWidth, height int) *sheet {
	return &sheet{img: pixbuf.NewOpaque(2*paneWidth, height), pane: paneWidth}
}

func (s *sheet) set(x, y int, c color.NRGBA, key uint8) {
	s.img.SetNRGBA(x, y, c)
	s.img.SetNRGBA(s.pane+x, y, color.NRGBA{key, key, key, 255})
}

// fillRect paints a filled rectangle on one layer.
func (s *sheet) fillRect(x0, y0, x1, y1 int, c color.NRGBA, key uint8) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			s.set(x, y, c, key)
		}
	}
}

// outlineRect paints a one-pixel rectangle border on one layer.
func (s *sheet) outlineRect(x0, y0, x1, y1 int, c color.NRGBA, key uint8) {
	for x := x0; x < x1; x++ {
		s.set(x, y0, c, key)
		s.set(x, y1-1, c, key)
	}
	for y := y0; y < y1; y++ {
		s.set(x0, y, c, key)
		s.set(x1-1, y, c, key)
	}
}

// lean is the horizontal shift that distinguishes the three motion states.
func lean(st spritecfg.State) int {
	switch st {
	case spritecfg.StateLeft:
		return -2
	case spritecfg.StateRight:
		return 2
	}
	return 0
}

// drawBodyFrame paints one figure torso into a frame cell at (fx, fy).
func drawBodyFrame(s *sheet, fx, fy, frame int, st spritecfg.State, hue float64) {
	bob := frame % 2
	dx := lean(st)
	x0, y0 := fx+8+dx, fy+10+bob
	x1, y1 := fx+24+dx, fy+30

	s.fillRect(x0, y0, x1, y1, layerColor(hue, 0.50), KeyFill)
	s.outlineRect(x0, y0, x1, y1, layerColor(hue, 0.25), KeyOutline)
	// Belt.
	s.fillRect(x0+2, fy+20, x1-2, fy+22, layerColor(hue, 0.75), KeyTrim)
}

// drawHeadFrame paints one figure head into a frame cell. size scales the
// drawing between the large and small head conventions.
func drawHeadFrame(s *sheet, fx, fy, frame int, st spritecfg.State, hue float64, size int) {
	bob := frame % 2
	dx := lean(st) * size / 32
	x0, y0 := fx+size/5+dx, fy+size/8+bob
	x1, y1 := fx+size-size/5+dx, fy+size-size/8

	s.fillRect(x0, y0, x1, y1, layerColor(hue, 0.50), KeyFill)
	s.outlineRect(x0, y0, x1, y1, layerColor(hue, 0.25), KeyOutline)
	// Eyes.
	eyeY := y0 + size/4
	s.fillRect(x0+size/4, eyeY, x0+size/4+1, eyeY+1, layerColor(hue, 0.75), KeyTrim)
	s.fillRect(x1-size/4-1, eyeY, x1-size/4, eyeY+1, layerColor(hue, 0.75), KeyTrim)
}

// BodySheet builds a dual-panel body sheet covering every variant block of
// the geometry.
func BodySheet(g spritecfg.Geometry, variants []spritecfg.Variant) *image.NRGBA {
	maxBlock := 0
	for _, v := range variants {
		if v.Block > maxBlock {
			maxBlock = v.Block
		}
	}
	s := newSheet(g.BodyRegion.X/2, g.BodyBlock*maxBlock+g.BodyRegion.Y)

	for _, v := range variants {
		hue := variantHues[v.Block%len(variantHues)]
		top := g.BodyBlock * v.Block
		for _, st := range spritecfg.States {
			o := g.Body.Origin(st)
			for n := 0; n < spritecfg.FrameCount; n++ {
				drawBodyFrame(s, o.X+n*g.Body.FrameSize.X, top+o.Y, n, st, hue)
			}
		}
	}
	return s.img
}

// HeadSheet builds a dual-panel head sheet with both the large and small
// head bands populated for every variant block.
func HeadSheet(g spritecfg.Geometry, variants []spritecfg.Variant) *image.NRGBA {
	maxBlock := 0
	for _, v := range variants {
		if v.Block > maxBlock {
			maxBlock = v.Block
		}
	}
	s := newSheet(g.HeadRegion.X/2, g.HeadBlock*maxBlock+g.HeadRegion.Y)

	for _, v := range variants {
		hue := variantHues[v.Block%len(variantHues)]
		top := g.HeadBlock * v.Block
		for _, size := range []spritecfg.HeadSize{spritecfg.SizeLarge, spritecfg.SizeSmall} {
			part := g.Head(size)
			for _, st := range spritecfg.States {
				o := part.Origin(st)
				for n := 0; n < spritecfg.FrameCount; n++ {
					drawHeadFrame(s, o.X+n*part.FrameSize.X, top+o.Y, n, st, hue, part.FrameSize.X)
				}
			}
		}
	}
	return s.img
}

// GenerateAndSave writes sample head and body sheets under root and
// rebuilds the part registries so the samples are immediately usable.
func GenerateAndSave(root string) error {
	g := spritecfg.DefaultGeometry()
	variants := spritecfg.DefaultVariants()

	if err := pixbuf.SavePNG(filepath.Join(root, spritecfg.HeadDir, "sample.png"), HeadSheet(g, variants)); err != nil {
		return err
	}
	if err := pixbuf.SavePNG(filepath.Join(root, spritecfg.BodyDir, "sample.png"), BodySheet(g, variants)); err != nil {
		return err
	}
	return spritecfg.WriteRegistries(root)
}
