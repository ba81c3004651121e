package main

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/cheggaaa/pb"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chosenoffset.com/spriteforge/compositor"
	"chosenoffset.com/spriteforge/pixbuf"
	"chosenoffset.com/spriteforge/placeholders"
	"chosenoffset.com/spriteforge/prepare"
	"chosenoffset.com/spriteforge/spritecfg"
)

const desc = `Composites layered character spritesheets from dual-panel head and body
sources: splits each part into luminosity-keyed layers, assembles the idle,
left and right animation strips, merges head over body in layer order, and
tiles one block per color variant plus a grayscale block.`

type Globals struct {
	Root    string `short:"r" default:"inputs" help:"Input root holding registries and part sheets."`
	Out     string `short:"o" default:"outputs" help:"Output directory."`
	Verbose bool   `short:"v" help:"Enable debug logging."`
}

type compositeCmd struct {
	Head    string `arg:"" optional:"" help:"Head sheet key. Empty composites a body alone."`
	Body    string `arg:"" optional:"" help:"Body sheet key. Empty composites a head alone."`
	Name    string `short:"n" help:"Output file name. Defaults to <head>_<body>.png."`
	OffsetX int    `help:"Horizontal crop offset into the raw sheets."`
	OffsetY int    `help:"Vertical crop offset into the raw sheets."`
	Reverse bool   `help:"Flip the layer stacking order."`
	NoAlpha bool   `help:"Keep the opaque black background instead of punching it out."`

	idleOnly bool
}

type idleCmd struct {
	compositeCmd
}

type batchCmd struct {
	Manifest string `arg:"" type:"existingfile" help:"JSON manifest of head/body pairs."`
	Reverse  bool   `help:"Flip the layer stacking order."`
	NoAlpha  bool   `help:"Keep the opaque black background."`
}

type prepareCmd struct {
	RawHead string `default:"inputs/raw_head" help:"Directory of raw head rips."`
	RawBody string `default:"inputs/raw_body" help:"Directory of raw body rips."`
}

type genCmd struct{}

var cli struct {
	Globals

	Composite compositeCmd `cmd:"" help:"Composite one head/body pair into a master sheet."`
	Idle      idleCmd      `cmd:"" help:"Composite only the idle strips."`
	Batch     batchCmd     `cmd:"" help:"Composite every pair listed in a JSON manifest."`
	Prepare   prepareCmd   `cmd:"" help:"Crop raw rips into normalized intermediate sheets."`
	Gen       genCmd       `cmd:"" help:"Generate placeholder sample sheets and registries."`
}

func main() {
	ctx := kong.Parse(
		&cli,
		kong.Name("spriteforge"),
		kong.Description(desc),
	)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cli.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := ctx.Run(&cli.Globals); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func (c *compositeCmd) options() compositor.Options {
	return compositor.Options{
		HeadFirst:     true,
		ReverseLayers: c.Reverse,
		Alpha:         !c.NoAlpha,
		IdleOnly:      c.idleOnly,
	}
}

func (c *compositeCmd) outName() string {
	if c.Name != "" {
		return c.Name
	}
	name := c.Head + "_" + c.Body
	if c.Head == "" {
		name = c.Body
	} else if c.Body == "" {
		name = c.Head
	}
	return name + ".png"
}

func (c *compositeCmd) Run(g *Globals) error {
	if c.Head == "" && c.Body == "" {
		return fmt.Errorf("at least one of head and body is required")
	}
	cfg, err := spritecfg.Load(g.Root)
	if err != nil {
		return err
	}

	img, err := compositor.New(cfg).Composite(c.Head, c.Body, image.Pt(c.OffsetX, c.OffsetY), c.options())
	if err != nil {
		return err
	}

	out := filepath.Join(g.Out, c.outName())
	if err := pixbuf.SavePNG(out, img); err != nil {
		return err
	}
	log.Info().Str("head", c.Head).Str("body", c.Body).Str("file", out).Msg("composited")
	return nil
}

func (c *idleCmd) Run(g *Globals) error {
	c.idleOnly = true
	return c.compositeCmd.Run(g)
}

// manifestEntry is one line of a batch manifest.
type manifestEntry struct {
	Head string `json:"head"`
	Body string `json:"body"`
	Name string `json:"name,omitempty"`
}

func (c *batchCmd) Run(g *Globals) error {
	raw, err := os.ReadFile(c.Manifest)
	if err != nil {
		return err
	}
	var entries []manifestEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("parsing manifest %s: %w", c.Manifest, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("manifest %s is empty", c.Manifest)
	}

	cfg, err := spritecfg.Load(g.Root)
	if err != nil {
		return err
	}
	comp := compositor.New(cfg)
	opts := compositor.Options{HeadFirst: true, ReverseLayers: c.Reverse, Alpha: !c.NoAlpha}

	bar := pb.New(len(entries)).Prefix("Compositing ")
	bar.Start()

	failed := 0
	for i, e := range entries {
		bar.Set(i + 1)

		img, err := comp.Composite(e.Head, e.Body, image.Point{}, opts)
		if err != nil {
			failed++
			log.Error().Err(err).Str("head", e.Head).Str("body", e.Body).Msg("skipping pair")
			continue
		}
		named := compositeCmd{Head: e.Head, Body: e.Body, Name: e.Name}
		out := filepath.Join(g.Out, named.outName())
		if err := pixbuf.SavePNG(out, img); err != nil {
			failed++
			log.Error().Err(err).Str("file", out).Msg("skipping pair")
			continue
		}
		log.Debug().Str("file", out).Msg("composited")
	}
	bar.Finish()

	log.Info().Int("total", len(entries)).Int("failed", failed).Msg("batch complete")
	return nil
}

func (c *prepareCmd) Run(g *Globals) error {
	kinds := []struct {
		raw, table, out string
		rowHeight       int
	}{
		{c.RawBody, ".raw_body.json", spritecfg.BodyDir, prepare.BodyRowHeight},
		{c.RawHead, ".raw_head.json", spritecfg.HeadDir, prepare.HeadRowHeight},
	}

	for _, k := range kinds {
		table, err := prepare.LoadTable(filepath.Join(g.Root, k.table))
		if err != nil {
			return err
		}
		sheets, err := prepare.ListSheets(k.raw)
		if err != nil {
			return err
		}
		for _, src := range sheets {
			img, err := prepare.ProcessFile(src, table, k.rowHeight)
			if err != nil {
				return err
			}
			base := filepath.Base(src)
			base = base[:len(base)-len(filepath.Ext(base))] + ".png"
			out := filepath.Join(g.Root, k.out, base)
			if err := pixbuf.SavePNG(out, img); err != nil {
				return err
			}
			log.Info().Str("raw", src).Str("file", out).Msg("prepared")
		}
	}

	return spritecfg.WriteRegistries(g.Root)
}

func (c *genCmd) Run(g *Globals) error {
	if err := placeholders.GenerateAndSave(g.Root); err != nil {
		return err
	}
	log.Info().Str("root", g.Root).Msg("sample sheets generated")
	return nil
}
