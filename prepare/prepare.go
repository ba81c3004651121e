// Package prepare turns raw game rips into the normalized dual-panel
// intermediate sheets the compositor consumes. A rect table maps each sheet
// key to twelve crop windows, one per color block and motion state; the
// crops are stacked into a fixed-width sheet with one row per window.
package prepare

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"chosenoffset.com/spriteforge/pixbuf"
	"chosenoffset.com/spriteforge/spritecfg"
)

const (
	// DefaultKey is the table entry used for sheets with no key of their
	// own. Rips from the same game usually share one layout.
	DefaultKey = "?::default"

	// SheetWidth is the width of every intermediate sheet.
	SheetWidth = 256

	// BodyRowHeight and HeadRowHeight are the per-window row strides of
	// the two intermediate sheet kinds.
	BodyRowHeight = 32
	HeadRowHeight = 64

	blockCount = 4
)

// Rect is one crop window as {x, y, w, h}, matching the table's JSON shape.
type Rect [4]int

// BlockRects holds one sheet's crop windows: block index ("0" through "3")
// to state name to window.
type BlockRects map[string]map[string]Rect

// Table maps sheet keys to their crop windows.
type Table map[string]BlockRects

// LoadTable reads and validates a rect table. Every entry must carry all
// four blocks with all three states.
func LoadTable(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rect table: %w", err)
	}
	var t Table
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parsing rect table %s: %w", path, err)
	}
	for key, blocks := range t {
		for b := 0; b < blockCount; b++ {
			states, ok := blocks[strconv.Itoa(b)]
			if !ok {
				return nil, fmt.Errorf("rect table entry %q: missing block %d", key, b)
			}
			for _, st := range spritecfg.States {
				if _, ok := states[st.String()]; !ok {
					return nil, fmt.Errorf("rect table entry %q: block %d missing state %q", key, b, st)
				}
			}
		}
	}
	return t, nil
}

// Rects resolves the windows for one sheet key, falling back to the
// default entry.
func (t Table) Rects(key string) (BlockRects, error) {
	if r, ok := t[key]; ok {
		return r, nil
	}
	if r, ok := t[DefaultKey]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("rect table has no entry for %q and no default", key)
}

// ProcessSheet crops the twelve windows out of a raw sheet and stacks them
// into one intermediate sheet, blocks outermost and states in idle, left,
// right order. The background is opaque black so unpainted rows read as
// empty to the splitter.
func ProcessSheet(raw *image.NRGBA, rects BlockRects, rowHeight int) (*image.NRGBA, error) {
	out := pixbuf.NewOpaque(SheetWidth, blockCount*len(spritecfg.States)*rowHeight)
	row := 0
	for b := 0; b < blockCount; b++ {
		states := rects[strconv.Itoa(b)]
		for _, st := range spritecfg.States {
			r := states[st.String()]
			cell, err := pixbuf.Crop(raw, image.Pt(r[0], r[1]), image.Pt(r[2], r[3]))
			if err != nil {
				return nil, fmt.Errorf("block %d state %s: %w", b, st, err)
			}
			pixbuf.Paste(out, cell, image.Pt(0, row*rowHeight))
			row++
		}
	}
	return out, nil
}

// ProcessFile prepares one raw sheet file. The sheet's key is its base name
// without extension.
func ProcessFile(path string, t Table, rowHeight int) (*image.NRGBA, error) {
	key := sheetKey(path)
	rects, err := t.Rects(key)
	if err != nil {
		return nil, err
	}
	raw, err := pixbuf.Ingest(path)
	if err != nil {
		return nil, err
	}
	img, err := ProcessSheet(raw, rects, rowHeight)
	if err != nil {
		return nil, fmt.Errorf("preparing %s: %w", path, err)
	}
	return img, nil
}

// ListSheets returns the raw sheet files under dir, sorted. Every format
// the ingester decodes is picked up; older extractors rip to BMP.
func ListSheets(dir string) ([]string, error) {
	var paths []string
	for _, pat := range []string{"*.png", "*.bmp", "*.jpg", "*.jpeg"} {
		matched, err := filepath.Glob(filepath.Join(dir, pat))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matched...)
	}
	sort.Strings(paths)
	return paths, nil
}

func sheetKey(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
