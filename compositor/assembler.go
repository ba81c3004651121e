package compositor

import (
	"fmt"
	"image"

	"chosenoffset.com/spriteforge/pixbuf"
	"chosenoffset.com/spriteforge/spritecfg"
)

// AssembleState lays one layer's four animation frames for one motion state
// into a color-region-sized block. Frames land on the state's row; an
// offset's positive Y moves content upward, and content nudged past a row
// boundary stays in the block rather than being clipped, which is how
// operators expect tall sprites to bleed.
//
// The returned block is always ColorRegion sized (4 frame cells wide)
// regardless of the offset and order tables.
func AssembleState(
	g spritecfg.Geometry,
	layer *image.NRGBA,
	st spritecfg.State,
	part spritecfg.PartGeometry,
	offs spritecfg.FrameOffsets,
	order spritecfg.FrameOrder,
	baseDX int,
) (*image.NRGBA, error) {
	region := g.ColorRegion()
	out := pixbuf.New(region.X, region.Y)

	slotW := g.SlotWidth()
	rowY := int(st) * g.StateStrip.Y
	origin := part.Origin(st)

	for n := 0; n < spritecfg.FrameCount; n++ {
		src := image.Pt(origin.X+part.FrameSize.X*order[n], origin.Y)
		frame, err := pixbuf.Crop(layer, src, part.FrameSize)
		if err != nil {
			return nil, fmt.Errorf("assemble %s frame %d (source column %d): %w", st, n, order[n], err)
		}
		pos := image.Pt(baseDX+offs[n].X+slotW*n, rowY-offs[n].Y)
		pixbuf.Paste(out, frame, pos)
	}
	return out, nil
}
