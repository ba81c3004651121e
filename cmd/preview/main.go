// Command preview plays back one animation strip of a composited master
// sheet, cycling its four frames at a fixed rate.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"chosenoffset.com/spriteforge/spritecfg"
)

type Game struct {
	sheet    *ebiten.Image
	geometry spritecfg.Geometry
	state    spritecfg.State
	variant  int
	scale    int
	holdFor  int

	tick int
}

func (g *Game) Update() error {
	g.tick++
	return nil
}

func (g *Game) frame() int {
	return (g.tick / g.holdFor) % spritecfg.FrameCount
}

// frameRect locates the current frame's slot on the master sheet.
func (g *Game) frameRect() image.Rectangle {
	slotW := g.geometry.SlotWidth()
	x := g.frame() * slotW
	y := g.variant*g.geometry.ColorRegion().Y + int(g.state)*g.geometry.StateStrip.Y
	return image.Rect(x, y, x+slotW, y+g.geometry.StateStrip.Y)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{40, 40, 45, 255})

	frame := g.sheet.SubImage(g.frameRect()).(*ebiten.Image)

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(frame, opts)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.geometry.SlotWidth() * g.scale, g.geometry.StateStrip.Y * g.scale
}

func loadSheet(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

func main() {
	sheetPath := flag.String("sheet", "", "Composited master sheet to play")
	stateName := flag.String("state", "idle", "Motion state (idle, left, right)")
	variant := flag.Int("variant", 0, "Color variant block index")
	scale := flag.Int("scale", 8, "Integer display scale")
	hold := flag.Int("hold", 12, "Ticks to hold each frame")
	flag.Parse()

	if *sheetPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	st, err := spritecfg.ParseState(*stateName)
	if err != nil {
		log.Fatalf("Bad state: %v", err)
	}

	sheet, err := loadSheet(*sheetPath)
	if err != nil {
		log.Fatalf("Failed to load sheet: %v", err)
	}

	g := spritecfg.DefaultGeometry()
	wantH := *variant*g.ColorRegion().Y + (int(st)+1)*g.StateStrip.Y
	if sheet.Bounds().Dy() < wantH {
		log.Fatalf("Sheet is %dpx tall, too short for variant %d state %s",
			sheet.Bounds().Dy(), *variant, st)
	}
	if *hold < 1 {
		*hold = 1
	}

	game := &Game{
		sheet:    ebiten.NewImageFromImage(sheet),
		geometry: g,
		state:    st,
		variant:  *variant,
		scale:    *scale,
		holdFor:  *hold,
	}

	ebiten.SetWindowSize(game.Layout(0, 0))
	ebiten.SetWindowTitle(fmt.Sprintf("spriteforge preview [%s]", st))

	log.Printf("Playing %s: variant %d, state %s", *sheetPath, *variant, st)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
