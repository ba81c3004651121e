package pixbuf

import (
	"fmt"
	"image"
	_ "image/jpeg" // sheet rips occasionally arrive re-saved as JPEG
	"image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp" // raw rips from older extractors are BMP
)

// Ingest decodes the image at path and normalizes it into the pipeline's
// canonical opaque NRGBA form. PNG, BMP and JPEG sources are recognized.
func Ingest(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return Normalize(img), nil
}

// SavePNG writes img as a PNG, creating the destination directory if needed.
// PNG keeps the punched alpha channel lossless, which the downstream game
// importer depends on.
func SavePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
