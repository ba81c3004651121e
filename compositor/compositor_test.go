package compositor

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"chosenoffset.com/spriteforge/pixbuf"
	"chosenoffset.com/spriteforge/spritecfg"
)

// mark is one painted pixel on a synthetic dual-panel sheet: color-pane
// content plus its mask-pane layer value.
type mark struct {
	x, y int
	c    color.NRGBA
	m    uint8
}

// writeSheet writes a dual-panel sheet (pane width w, height h) to path.
func writeSheet(t *testing.T, path string, w, h int, marks []mark) {
	t.Helper()
	sheet := pixbuf.NewOpaque(2*w, h)
	for _, mk := range marks {
		sheet.SetNRGBA(mk.x, mk.y, mk.c)
		sheet.SetNRGBA(w+mk.x, mk.y, color.NRGBA{mk.m, mk.m, mk.m, 255})
	}
	if err := pixbuf.SavePNG(path, sheet); err != nil {
		t.Fatal(err)
	}
}

// testConfig builds a single-variant configuration over a temp input root.
func testConfig(t *testing.T) *spritecfg.Config {
	t.Helper()
	root := t.TempDir()
	for _, d := range []string{"head", "body"} {
		if err := os.MkdirAll(filepath.Join(root, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
	cfg := spritecfg.NewConfig(root)
	cfg.Variants = []spritecfg.Variant{{Name: "purple", Block: 0}}
	return cfg
}

func registerHead(t *testing.T, cfg *spritecfg.Config, key string, marks []mark) {
	t.Helper()
	cfg.HeadPaths[key] = spritecfg.PartEntry{Path: []string{"head", key + ".png"}}
	writeSheet(t, filepath.Join(cfg.Root, "head", key+".png"), 128, 192, marks)
}

func registerBody(t *testing.T, cfg *spritecfg.Config, key string, marks []mark) {
	t.Helper()
	cfg.BodyPaths[key] = spritecfg.PartEntry{Path: []string{"body", key + ".png"}}
	writeSheet(t, filepath.Join(cfg.Root, "body", key+".png"), 128, 96, marks)
}

var (
	bodyColor = color.NRGBA{200, 100, 50, 255}
	headColor = color.NRGBA{60, 160, 220, 255}
)

// bodyMarks paints one pixel in every idle frame cell on layer 10.
func bodyMarks() []mark {
	out := make([]mark, 0, 4)
	for n := 0; n < 4; n++ {
		out = append(out, mark{x: n*32 + 5, y: 10, c: bodyColor, m: 10})
	}
	return out
}

func TestCompositeIdleOnlyDimensions(t *testing.T) {
	cfg := testConfig(t)
	registerBody(t, cfg, "soldier", bodyMarks())

	img, err := New(cfg).Composite("", "soldier", image.Point{}, Options{HeadFirst: true, Alpha: true, IdleOnly: true})
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	// One reference block plus one grayscale block, never three.
	if got := img.Bounds().Dy(); got != 2*32 {
		t.Errorf("Idle-only master height = %d, want 64", got)
	}
	if got := img.Bounds().Dx(); got != 128 {
		t.Errorf("Master width = %d, want 128", got)
	}
	if c := img.NRGBAAt(5, 10); c != bodyColor {
		t.Errorf("Frame 0 content = %v, want %v", c, bodyColor)
	}
}

func TestCompositeFullLayout(t *testing.T) {
	cfg := testConfig(t)
	marks := bodyMarks()
	// Left and right bands carry their own content.
	marks = append(marks,
		mark{x: 5, y: 32 + 10, c: bodyColor, m: 10},
		mark{x: 5, y: 64 + 10, c: bodyColor, m: 10},
	)
	registerBody(t, cfg, "soldier", marks)

	img, err := New(cfg).Composite("", "soldier", image.Point{}, DefaultOptions())
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	if got := img.Bounds().Dy(); got != 2*96 {
		t.Errorf("Full master height = %d, want 192", got)
	}
	// Idle, left and right rows of the color block.
	for _, y := range []int{10, 32 + 10, 64 + 10} {
		if c := img.NRGBAAt(5, y); c != bodyColor {
			t.Errorf("Content missing at (5,%d): %v", y, c)
		}
	}
}

func TestCompositeGrayscaleTrailingBlock(t *testing.T) {
	cfg := testConfig(t)
	registerBody(t, cfg, "soldier", bodyMarks())

	img, err := New(cfg).Composite("", "soldier", image.Point{}, DefaultOptions())
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}

	grayTop := 96 // single variant: block 0 is reference, block 1 grayscale
	for y := 0; y < 96; y++ {
		for x := 0; x < 128; x++ {
			ref := img.NRGBAAt(x, y)
			gr := img.NRGBAAt(x, grayTop+y)
			if ref.A == 0 {
				if gr.A != 0 {
					t.Fatalf("Gray block opaque at (%d,%d) where reference is transparent", x, y)
				}
				continue
			}
			if gr.R != gr.G || gr.G != gr.B {
				t.Fatalf("Gray block not monochrome at (%d,%d): %v", x, y, gr)
			}
		}
	}
	// The marked pixel's luma must survive.
	if c := img.NRGBAAt(5, grayTop+10); c.A == 0 || c.R == 0 {
		t.Errorf("Gray twin of content pixel = %v", c)
	}
}

func TestCompositeEmptyHeadEqualsBlankHead(t *testing.T) {
	cfg := testConfig(t)
	registerBody(t, cfg, "soldier", bodyMarks())
	registerHead(t, cfg, "blank", nil) // valid sheet, zero layers

	c := New(cfg)
	withEmpty, err := c.Composite("", "soldier", image.Point{}, DefaultOptions())
	if err != nil {
		t.Fatalf("Composite with empty head failed: %v", err)
	}
	withBlank, err := c.Composite("blank", "soldier", image.Point{}, DefaultOptions())
	if err != nil {
		t.Fatalf("Composite with blank head failed: %v", err)
	}

	if withEmpty.Bounds() != withBlank.Bounds() {
		t.Fatalf("Bounds differ: %v vs %v", withEmpty.Bounds(), withBlank.Bounds())
	}
	for i := range withEmpty.Pix {
		if withEmpty.Pix[i] != withBlank.Pix[i] {
			t.Fatal("Empty-head and blank-head composites differ")
		}
	}
}

func TestCompositeHeadFirstControlsOverlap(t *testing.T) {
	cfg := testConfig(t)
	// Head and body both paint layer 10 at the same output position, and
	// each paints a private pixel as well.
	registerHead(t, cfg, "knight", []mark{
		{x: 5, y: 10, c: headColor, m: 10},
		{x: 9, y: 4, c: headColor, m: 10},
	})
	registerBody(t, cfg, "soldier", []mark{
		{x: 5, y: 10, c: bodyColor, m: 10},
		{x: 20, y: 12, c: bodyColor, m: 10},
	})

	c := New(cfg)
	headFirst, err := c.Composite("knight", "soldier", image.Point{}, Options{HeadFirst: true, Alpha: true})
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	bodyFirst, err := c.Composite("knight", "soldier", image.Point{}, Options{HeadFirst: false, Alpha: true})
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}

	// Overlap: whichever part pastes second wins.
	if got := headFirst.NRGBAAt(5, 10); got != bodyColor {
		t.Errorf("headfirst overlap = %v, want body on top", got)
	}
	if got := bodyFirst.NRGBAAt(5, 10); got != headColor {
		t.Errorf("bodyfirst overlap = %v, want head on top", got)
	}
	// Non-overlapping content is identical either way.
	for _, p := range []image.Point{{9, 4}, {20, 12}} {
		a, b := headFirst.NRGBAAt(p.X, p.Y), bodyFirst.NRGBAAt(p.X, p.Y)
		if a != b {
			t.Errorf("Non-overlapping pixel %v differs: %v vs %v", p, a, b)
		}
	}
}

func TestCompositeReverseComposesWithClassFlag(t *testing.T) {
	baseline := map[bool]color.NRGBA{}
	for _, classReverse := range []bool{false, true} {
		for _, globalReverse := range []bool{false, true} {
			cfg := testConfig(t)
			// Head layer 20 and body layer 10 collide at one pixel. In
			// ascending order the head (higher key) lands on top.
			registerHead(t, cfg, "knight", []mark{{x: 5, y: 10, c: headColor, m: 20}})
			registerBody(t, cfg, "soldier", []mark{{x: 5, y: 10, c: bodyColor, m: 10}})
			if classReverse {
				cfg.HeadClasses["soldier"] = spritecfg.ClassParams{Reverse: true}
			}

			img, err := New(cfg).Composite("knight", "soldier", image.Point{},
				Options{HeadFirst: true, Alpha: true, ReverseLayers: globalReverse})
			if err != nil {
				t.Fatalf("Composite failed: %v", err)
			}
			got := img.NRGBAAt(5, 10)

			want := headColor // ascending: layer 20 on top
			if classReverse != globalReverse {
				want = bodyColor // reversed: layer 10 on top
			}
			if got != want {
				t.Errorf("classReverse=%v globalReverse=%v: top pixel = %v, want %v",
					classReverse, globalReverse, got, want)
			}
			baseline[classReverse != globalReverse] = got
		}
	}
	// The two XOR classes must produce the two distinct outcomes.
	if baseline[false] == baseline[true] {
		t.Error("Reverse flag had no observable effect")
	}
}

func TestCompositeSecondVariantBlock(t *testing.T) {
	cfg := testConfig(t)
	cfg.Variants = []spritecfg.Variant{{Name: "purple", Block: 0}, {Name: "green", Block: 1}}

	// Two stacked color blocks on the body sheet: block 1 painted green.
	green := color.NRGBA{30, 180, 60, 255}
	sheet := pixbuf.NewOpaque(256, 192)
	sheet.SetNRGBA(5, 10, bodyColor)
	sheet.SetNRGBA(128+5, 10, color.NRGBA{10, 10, 10, 255})
	sheet.SetNRGBA(5, 96+10, green)
	sheet.SetNRGBA(128+5, 96+10, color.NRGBA{10, 10, 10, 255})
	cfg.BodyPaths["soldier"] = spritecfg.PartEntry{Path: []string{"body", "soldier.png"}}
	if err := pixbuf.SavePNG(filepath.Join(cfg.Root, "body", "soldier.png"), sheet); err != nil {
		t.Fatal(err)
	}

	img, err := New(cfg).Composite("", "soldier", image.Point{}, DefaultOptions())
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	if got := img.Bounds().Dy(); got != 3*96 {
		t.Errorf("Two-variant master height = %d, want 288", got)
	}
	if c := img.NRGBAAt(5, 10); c != bodyColor {
		t.Errorf("Variant 0 content = %v", c)
	}
	if c := img.NRGBAAt(5, 96+10); c != green {
		t.Errorf("Variant 1 content = %v, want %v", c, green)
	}
}

func TestCompositeErrors(t *testing.T) {
	cfg := testConfig(t)
	registerBody(t, cfg, "soldier", bodyMarks())
	c := New(cfg)

	// Unregistered key.
	_, err := c.Composite("ghost", "soldier", image.Point{}, DefaultOptions())
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Part != "head" || nf.Key != "ghost" {
		t.Errorf("Expected head NotFoundError, got %v", err)
	}

	// Registered key whose file is gone.
	cfg.HeadPaths["lost"] = spritecfg.PartEntry{Path: []string{"head", "lost.png"}}
	_, err = c.Composite("lost", "soldier", image.Point{}, DefaultOptions())
	if !errors.As(err, &nf) || nf.Path == "" {
		t.Errorf("Expected NotFoundError with path, got %v", err)
	}

	// File that is not an image.
	badPath := filepath.Join(cfg.Root, "head", "bad.png")
	if err := os.WriteFile(badPath, []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.HeadPaths["bad"] = spritecfg.PartEntry{Path: []string{"head", "bad.png"}}
	_, err = c.Composite("bad", "soldier", image.Point{}, DefaultOptions())
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Errorf("Expected DecodeError, got %v", err)
	}
}

func TestCompositeSmallHeadInset(t *testing.T) {
	cfg := testConfig(t)
	// Small-head idle band starts at y=32; frame cells are 16px wide.
	registerHead(t, cfg, "rider", []mark{{x: 5, y: 32 + 6, c: headColor, m: 30}})
	registerBody(t, cfg, "cavalier", nil)
	cfg.HeadClasses["cavalier"] = spritecfg.ClassParams{Size: spritecfg.SizeSmall}

	img, err := New(cfg).Composite("rider", "cavalier", image.Point{}, DefaultOptions())
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	if c := img.NRGBAAt(8+5, 6); c != headColor {
		t.Errorf("Small head content = %v at inset position, want %v", c, headColor)
	}
	if c := img.NRGBAAt(5, 6); c.A != 0 {
		t.Errorf("Content found at uninset position: %v", c)
	}
}
