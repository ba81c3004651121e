// Package spritecfg holds the read-only configuration tables that drive the
// compositing pipeline: part path registries, per-class frame offset and
// ordering tables, source sheet geometry, and the color variant list.
//
// Lookups never fail on unknown keys; they return documented defaults so a
// sparse configuration composes the same sprite a fully spelled-out one
// would.
package spritecfg

import (
	"fmt"
	"image"
	"path/filepath"
)

// FrameCount is the fixed number of animation cells per motion state.
const FrameCount = 4

// State is one of the three motion poses on a sheet.
type State int

const (
	StateIdle State = iota
	StateLeft
	StateRight
)

// States lists all states in their fixed vertical stacking order.
var States = []State{StateIdle, StateLeft, StateRight}

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLeft:
		return "left"
	case StateRight:
		return "right"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ParseState maps a table key to its State.
func ParseState(name string) (State, error) {
	switch name {
	case "idle":
		return StateIdle, nil
	case "left":
		return StateLeft, nil
	case "right":
		return StateRight, nil
	}
	return 0, fmt.Errorf("spritecfg: unknown state %q", name)
}

// HeadSize selects between the two head frame conventions.
type HeadSize int

const (
	SizeLarge HeadSize = iota
	SizeSmall
)

func (s HeadSize) String() string {
	if s == SizeSmall {
		return "small"
	}
	return "large"
}

// FrameOffsets is one state's per-frame pixel nudges. Positive Y moves the
// frame's content upward in the assembled output.
type FrameOffsets [FrameCount]image.Point

// FrameOrder selects which source frame column feeds each output slot.
type FrameOrder [FrameCount]int

// IdentityOrder is the default frame order.
var IdentityOrder = FrameOrder{0, 1, 2, 3}

// ClassParams is one character class's compositing parameters. The zero
// value is the documented default: large head, natural layer order, zero
// offsets, identity frame order.
type ClassParams struct {
	Size    HeadSize
	Reverse bool
	Offsets map[State]FrameOffsets
	Order   map[State]FrameOrder
}

// OffsetsFor returns the state's offsets, defaulting to all-zero.
func (p ClassParams) OffsetsFor(st State) FrameOffsets {
	if v, ok := p.Offsets[st]; ok {
		return v
	}
	return FrameOffsets{}
}

// OrderFor returns the state's frame order, defaulting to identity.
func (p ClassParams) OrderFor(st State) FrameOrder {
	if v, ok := p.Order[st]; ok {
		return v
	}
	return IdentityOrder
}

// PartEntry is one registered head or body sheet.
type PartEntry struct {
	Path []string `json:"path"` // path segments under the input root
	Name string   `json:"name"` // human-readable character or class name
}

// PartGeometry describes where one body part's frames sit on a normalized
// intermediate sheet: the frame cell size and each state's row origin.
type PartGeometry struct {
	FrameSize image.Point
	Origins   [3]image.Point // indexed by State
}

// Origin returns the state's frame row origin.
func (g PartGeometry) Origin(st State) image.Point {
	return g.Origins[st]
}

// Geometry is the full fixed pixel layout of the source and output sheets.
type Geometry struct {
	StateStrip image.Point // one state's 4-frame output strip
	HeadRegion image.Point // dual-panel head block size
	BodyRegion image.Point // dual-panel body block size
	HeadBlock  int         // vertical stride between head color blocks
	BodyBlock  int         // vertical stride between body color blocks
	Body       PartGeometry
	HeadLarge  PartGeometry
	HeadSmall  PartGeometry

	// SmallHeadInset centers the narrower small-head frame inside the
	// standard frame cell.
	SmallHeadInset int
}

// ColorRegion is one color variant's full output block: three state strips
// stacked vertically.
func (g Geometry) ColorRegion() image.Point {
	return image.Pt(g.StateStrip.X, g.StateStrip.Y*len(States))
}

// SlotWidth is the width of one output frame cell.
func (g Geometry) SlotWidth() int {
	return g.StateStrip.X / FrameCount
}

// Head returns the geometry for the given head size.
func (g Geometry) Head(size HeadSize) PartGeometry {
	if size == SizeSmall {
		return g.HeadSmall
	}
	return g.HeadLarge
}

// DefaultGeometry is the layout every known sheet rip follows.
func DefaultGeometry() Geometry {
	return Geometry{
		StateStrip: image.Pt(128, 32),
		HeadRegion: image.Pt(256, 192),
		BodyRegion: image.Pt(256, 96),
		HeadBlock:  192,
		BodyBlock:  96,
		Body: PartGeometry{
			FrameSize: image.Pt(32, 32),
			Origins:   [3]image.Point{image.Pt(0, 0), image.Pt(0, 32), image.Pt(0, 64)},
		},
		HeadLarge: PartGeometry{
			FrameSize: image.Pt(32, 32),
			Origins:   [3]image.Point{image.Pt(0, 0), image.Pt(0, 64), image.Pt(0, 128)},
		},
		HeadSmall: PartGeometry{
			FrameSize: image.Pt(16, 16),
			Origins:   [3]image.Point{image.Pt(0, 32), image.Pt(0, 96), image.Pt(0, 160)},
		},
		SmallHeadInset: 8,
	}
}

// Variant is one palette-swap block on the raw source sheets.
type Variant struct {
	Name  string `json:"name"`
	Block int    `json:"block"` // vertical block index on the raw sheet
}

// DefaultVariants is the fixed faction palette order. The first entry is
// the reference variant the grayscale block derives from.
func DefaultVariants() []Variant {
	return []Variant{
		{Name: "purple", Block: 0},
		{Name: "green", Block: 1},
		{Name: "red", Block: 2},
		{Name: "blue", Block: 3},
	}
}

// Config is the complete, immutable configuration for one pipeline run.
type Config struct {
	Root        string // input root directory part paths resolve against
	HeadPaths   map[string]PartEntry
	BodyPaths   map[string]PartEntry
	HeadClasses map[string]ClassParams
	BodyClasses map[string]ClassParams
	Geometry    Geometry
	Variants    []Variant
}

// NewConfig returns a Config with default geometry and variants and empty
// tables, suitable for programmatic population.
func NewConfig(root string) *Config {
	return &Config{
		Root:        root,
		HeadPaths:   map[string]PartEntry{},
		BodyPaths:   map[string]PartEntry{},
		HeadClasses: map[string]ClassParams{},
		BodyClasses: map[string]ClassParams{},
		Geometry:    DefaultGeometry(),
		Variants:    DefaultVariants(),
	}
}

// HeadPath resolves a head key to its sheet file path.
func (c *Config) HeadPath(key string) (string, bool) {
	e, ok := c.HeadPaths[key]
	if !ok {
		return "", false
	}
	return filepath.Join(append([]string{c.Root}, e.Path...)...), true
}

// BodyPath resolves a body key to its sheet file path.
func (c *Config) BodyPath(key string) (string, bool) {
	e, ok := c.BodyPaths[key]
	if !ok {
		return "", false
	}
	return filepath.Join(append([]string{c.Root}, e.Path...)...), true
}

// HeadParams returns the head compositing parameters registered for a
// class, or the zero defaults when the class has no entry.
func (c *Config) HeadParams(class string) ClassParams {
	return c.HeadClasses[class]
}

// BodyParams returns the body compositing parameters registered for a
// class, or the zero defaults when the class has no entry.
func (c *Config) BodyParams(class string) ClassParams {
	return c.BodyClasses[class]
}
