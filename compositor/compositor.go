// Package compositor assembles finished master spritesheets from dual-panel
// head and body sources: it splits each part into luminosity layers, lays
// out per-state animation strips, merges the parts in layer order, and tiles
// one block per color variant plus a derived grayscale block.
package compositor

import (
	"errors"
	"image"
	"image/color"
	"os"

	"chosenoffset.com/spriteforge/pixbuf"
	"chosenoffset.com/spriteforge/splitter"
	"chosenoffset.com/spriteforge/spritecfg"
)

// Options tune one composite call.
type Options struct {
	// HeadFirst pastes the head before the body within each layer key, so
	// the body ends up on top. False swaps the two.
	HeadFirst bool
	// ReverseLayers flips the layer stacking order globally. It composes
	// with a class's own reverse flag: both set cancels out.
	ReverseLayers bool
	// Alpha punches exact opaque black to transparency, producing a sheet
	// with a see-through background.
	Alpha bool
	// IdleOnly emits only the idle strip per variant.
	IdleOnly bool
}

// DefaultOptions matches what the game importer expects: head pasted first
// and a transparent background.
func DefaultOptions() Options {
	return Options{HeadFirst: true, Alpha: true}
}

// Compositor composites sprites against one immutable configuration.
type Compositor struct {
	cfg *spritecfg.Config
}

// New returns a Compositor over cfg. The configuration is treated as
// read-only for the lifetime of the Compositor.
func New(cfg *spritecfg.Config) *Compositor {
	return &Compositor{cfg: cfg}
}

// stateBlocks holds one part's assembled frame blocks: per state, per layer.
type stateBlocks map[spritecfg.State]map[uint8]*image.NRGBA

// Composite builds the master sheet for the given head and body keys. Either
// key may be empty, in which case that part contributes nothing; a non-empty
// key that resolves to no file is a NotFoundError. offset shifts the crop
// window on both raw sheets, for rips with non-standard margins.
//
// Composite is a pure function of its inputs and the configuration; it
// keeps no state between calls.
func (c *Compositor) Composite(headKey, bodyKey string, offset image.Point, opts Options) (*image.NRGBA, error) {
	g := c.cfg.Geometry

	maxBlock := 0
	for _, v := range c.cfg.Variants {
		if v.Block > maxBlock {
			maxBlock = v.Block
		}
	}

	headImg, err := c.loadPart("head", headKey, c.cfg.HeadPath, g.HeadRegion, g.HeadBlock, maxBlock, offset)
	if err != nil {
		return nil, err
	}
	bodyImg, err := c.loadPart("body", bodyKey, c.cfg.BodyPath, g.BodyRegion, g.BodyBlock, maxBlock, offset)
	if err != nil {
		return nil, err
	}

	// One class entry drives both parts' tables; the body sheet names the
	// class, with the head key as fallback for body-less composites.
	class := bodyKey
	if class == "" {
		class = headKey
	}
	headParams := c.cfg.HeadParams(class)
	bodyParams := c.cfg.BodyParams(class)

	states := spritecfg.States
	stripH := g.ColorRegion().Y
	if opts.IdleOnly {
		states = states[:1]
		stripH = g.StateStrip.Y
	}

	master := pixbuf.New(g.StateStrip.X, stripH*(len(c.cfg.Variants)+1))

	headPart := g.Head(headParams.Size)
	headInset := 0
	if headParams.Size == spritecfg.SizeSmall {
		headInset = g.SmallHeadInset
	}

	for i, v := range c.cfg.Variants {
		headLayers, err := splitLayers(headImg, image.Pt(offset.X, offset.Y+g.HeadBlock*v.Block), g.HeadRegion, opts.Alpha)
		if err != nil {
			return nil, err
		}
		bodyLayers, err := splitLayers(bodyImg, image.Pt(offset.X, offset.Y+g.BodyBlock*v.Block), g.BodyRegion, opts.Alpha)
		if err != nil {
			return nil, err
		}

		headBlocks, err := assemblePart(g, headLayers, headPart, headParams, headInset, states)
		if err != nil {
			return nil, err
		}
		bodyBlocks, err := assemblePart(g, bodyLayers, g.Body, bodyParams, 0, states)
		if err != nil {
			return nil, err
		}

		merged := pixbuf.New(g.ColorRegion().X, g.ColorRegion().Y)
		reverse := headParams.Reverse != opts.ReverseLayers
		for _, st := range states {
			mergeLayers(merged, headBlocks[st], bodyBlocks[st], reverse, opts.HeadFirst)
		}

		strip := merged
		if opts.IdleOnly {
			if strip, err = pixbuf.Crop(merged, image.Pt(0, 0), image.Pt(g.StateStrip.X, stripH)); err != nil {
				return nil, err
			}
		}
		pixbuf.Paste(master, strip, image.Pt(0, i*stripH))

		// The first-listed variant is the reference; its grayscale twin
		// becomes the sheet's single trailing block.
		if i == 0 {
			gray := pixbuf.GrayToNRGBA(pixbuf.ToGrayscale(strip))
			if opts.Alpha {
				gray = pixbuf.ReplaceColor(gray, color.NRGBA{0, 0, 0, 255}, color.NRGBA{0, 0, 0, 0})
			}
			pixbuf.Paste(master, gray, image.Pt(0, len(c.cfg.Variants)*stripH))
		}
	}

	return master, nil
}

// loadPart resolves and ingests one part sheet. An empty key yields an
// opaque black placeholder sized to cover every variant block, which splits
// to zero layers and therefore composites as nothing.
func (c *Compositor) loadPart(
	kind, key string,
	lookup func(string) (string, bool),
	region image.Point,
	block, maxBlock int,
	offset image.Point,
) (*image.NRGBA, error) {
	if key == "" {
		w := offset.X + region.X
		h := offset.Y + block*maxBlock + region.Y
		return pixbuf.NewOpaque(w, h), nil
	}
	path, ok := lookup(key)
	if !ok {
		return nil, &NotFoundError{Part: kind, Key: key}
	}
	img, err := pixbuf.Ingest(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Part: kind, Key: key, Path: path}
		}
		return nil, &DecodeError{Part: kind, Path: path, Err: err}
	}
	return img, nil
}

// splitLayers crops one variant's dual-panel region and splits it into
// layers, punching the background when alpha mode is on.
func splitLayers(sheet *image.NRGBA, at, region image.Point, alpha bool) (splitter.LayerMap, error) {
	panel, err := pixbuf.Crop(sheet, at, region)
	if err != nil {
		return nil, err
	}
	layers, err := splitter.Split(panel)
	if err != nil {
		return nil, err
	}
	if alpha {
		layers = splitter.PunchAlpha(layers)
	}
	return layers, nil
}

// assemblePart builds every layer's frame block for every requested state.
func assemblePart(
	g spritecfg.Geometry,
	layers splitter.LayerMap,
	part spritecfg.PartGeometry,
	params spritecfg.ClassParams,
	baseDX int,
	states []spritecfg.State,
) (stateBlocks, error) {
	out := make(stateBlocks, len(states))
	for _, st := range states {
		offs := params.OffsetsFor(st)
		order := params.OrderFor(st)
		out[st] = make(map[uint8]*image.NRGBA, len(layers))
		for k, layer := range layers {
			block, err := AssembleState(g, layer, st, part, offs, order, baseDX)
			if err != nil {
				return nil, err
			}
			out[st][k] = block
		}
	}
	return out, nil
}

// mergeLayers stacks head and body blocks for one state onto dst in
// luminosity order. A key present on only one side is pasted alone; that is
// the normal case, not an error.
func mergeLayers(dst *image.NRGBA, head, body map[uint8]*image.NRGBA, reverse, headFirst bool) {
	keys := splitter.Keys(reverse, splitter.LayerMap(head), splitter.LayerMap(body))
	for _, k := range keys {
		first, second := head[k], body[k]
		if !headFirst {
			first, second = second, first
		}
		if first != nil {
			pixbuf.Paste(dst, first, image.Pt(0, 0))
		}
		if second != nil {
			pixbuf.Paste(dst, second, image.Pt(0, 0))
		}
	}
}
