package spritecfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
)

// Configuration file names under the input root.
const (
	FileHeadRegistry = "head.json"
	FileBodyRegistry = "body.json"
	FileHeadOffsets  = "head_offsets.json"
	FileBodyOffsets  = "body_offsets.json"
	FileSource       = "source.json"
)

// classParamsJSON is the on-disk shape of one class's entry:
//
//	{
//	  "size": "small",
//	  "reverse": true,
//	  "offset": {"idle": [[0,2],[0,2],[0,2],[0,2]], ...},
//	  "order":  {"left": [1,2,3,0], ...}
//	}
type classParamsJSON struct {
	Size    string              `json:"size"`
	Reverse bool                `json:"reverse"`
	Offset  map[string][][2]int `json:"offset"`
	Order   map[string][]int    `json:"order"`
}

type partGeometryJSON struct {
	Size  [2]int            `json:"size"`
	Where map[string][2]int `json:"where"`
}

type sourceJSON struct {
	StateStrip *[2]int `json:"state_strip"`
	Head       struct {
		Large  *partGeometryJSON `json:"large"`
		Small  *partGeometryJSON `json:"small"`
		Region *[2]int           `json:"region"`
		Block  *int              `json:"block"`
	} `json:"head"`
	Body struct {
		Frames *partGeometryJSON `json:"frames"`
		Region *[2]int           `json:"region"`
		Block  *int              `json:"block"`
	} `json:"body"`
	Colors []Variant `json:"colors"`
}

// Load reads the configuration tables under root. The part registries are
// required; offset tables and the source geometry file are optional and
// silently fall back to defaults, entry by entry.
func Load(root string) (*Config, error) {
	cfg := NewConfig(root)

	var err error
	if cfg.HeadPaths, err = loadRegistry(filepath.Join(root, FileHeadRegistry)); err != nil {
		return nil, err
	}
	if cfg.BodyPaths, err = loadRegistry(filepath.Join(root, FileBodyRegistry)); err != nil {
		return nil, err
	}
	if cfg.HeadClasses, err = loadClassTable(filepath.Join(root, FileHeadOffsets)); err != nil {
		return nil, err
	}
	if cfg.BodyClasses, err = loadClassTable(filepath.Join(root, FileBodyOffsets)); err != nil {
		return nil, err
	}
	if err = applySource(cfg, filepath.Join(root, FileSource)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadRegistry(path string) (map[string]PartEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read part registry %s: %w", path, err)
	}
	var out map[string]PartEntry
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse part registry %s: %w", path, err)
	}
	for key, e := range out {
		if len(e.Path) == 0 {
			return nil, fmt.Errorf("part registry %s: entry %q has no path", path, key)
		}
	}
	return out, nil
}

func loadClassTable(path string) (map[string]ClassParams, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]ClassParams{}, nil // defaults for every class
	}
	if err != nil {
		return nil, fmt.Errorf("read offset table %s: %w", path, err)
	}

	var raw map[string]classParamsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse offset table %s: %w", path, err)
	}

	out := make(map[string]ClassParams, len(raw))
	for class, e := range raw {
		p := ClassParams{Reverse: e.Reverse}
		if e.Size == "small" {
			p.Size = SizeSmall
		}
		if len(e.Offset) > 0 {
			p.Offsets = make(map[State]FrameOffsets, len(e.Offset))
			for name, pairs := range e.Offset {
				st, err := ParseState(name)
				if err != nil {
					return nil, fmt.Errorf("offset table %s, class %q: %w", path, class, err)
				}
				if len(pairs) != FrameCount {
					return nil, fmt.Errorf("offset table %s, class %q, state %s: want %d offsets, got %d",
						path, class, st, FrameCount, len(pairs))
				}
				var offs FrameOffsets
				for i, pr := range pairs {
					offs[i] = image.Pt(pr[0], pr[1])
				}
				p.Offsets[st] = offs
			}
		}
		if len(e.Order) > 0 {
			p.Order = make(map[State]FrameOrder, len(e.Order))
			for name, idx := range e.Order {
				st, err := ParseState(name)
				if err != nil {
					return nil, fmt.Errorf("offset table %s, class %q: %w", path, class, err)
				}
				if len(idx) != FrameCount {
					return nil, fmt.Errorf("offset table %s, class %q, state %s: want %d order entries, got %d",
						path, class, st, FrameCount, len(idx))
				}
				var ord FrameOrder
				for i, n := range idx {
					if n < 0 || n >= FrameCount {
						return nil, fmt.Errorf("offset table %s, class %q, state %s: frame index %d out of range",
							path, class, st, n)
					}
					ord[i] = n
				}
				p.Order[st] = ord
			}
		}
		out[class] = p
	}
	return out, nil
}

func applySource(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil // defaults
	}
	if err != nil {
		return fmt.Errorf("read source geometry %s: %w", path, err)
	}

	var raw sourceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse source geometry %s: %w", path, err)
	}

	g := &cfg.Geometry
	if raw.StateStrip != nil {
		g.StateStrip = image.Pt(raw.StateStrip[0], raw.StateStrip[1])
	}
	if raw.Head.Region != nil {
		g.HeadRegion = image.Pt(raw.Head.Region[0], raw.Head.Region[1])
	}
	if raw.Head.Block != nil {
		g.HeadBlock = *raw.Head.Block
	}
	if raw.Body.Region != nil {
		g.BodyRegion = image.Pt(raw.Body.Region[0], raw.Body.Region[1])
	}
	if raw.Body.Block != nil {
		g.BodyBlock = *raw.Body.Block
	}
	for _, pg := range []struct {
		src *partGeometryJSON
		dst *PartGeometry
	}{
		{raw.Head.Large, &g.HeadLarge},
		{raw.Head.Small, &g.HeadSmall},
		{raw.Body.Frames, &g.Body},
	} {
		if pg.src == nil {
			continue
		}
		pg.dst.FrameSize = image.Pt(pg.src.Size[0], pg.src.Size[1])
		for name, at := range pg.src.Where {
			st, err := ParseState(name)
			if err != nil {
				return fmt.Errorf("source geometry %s: %w", path, err)
			}
			pg.dst.Origins[st] = image.Pt(at[0], at[1])
		}
	}
	if len(raw.Colors) > 0 {
		cfg.Variants = raw.Colors
	}
	return nil
}
