package spritecfg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Subdirectories under the input root holding intermediate part sheets.
const (
	HeadDir = "head"
	BodyDir = "body"
)

// WriteRegistries scans the head/ and body/ subdirectories of root for PNG
// sheets and rewrites head.json and body.json to match, deriving display
// names from the file names ("dark-mage-f" -> "Dark Mage (F)").
func WriteRegistries(root string) error {
	if err := writeRegistry(root, HeadDir, FileHeadRegistry); err != nil {
		return err
	}
	return writeRegistry(root, BodyDir, FileBodyRegistry)
}

func writeRegistry(root, sub, outName string) error {
	pattern := filepath.Join(root, sub, "*.png")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("scan %s: %w", pattern, err)
	}
	sort.Strings(matches)

	entries := make(map[string]PartEntry, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		key := strings.TrimSuffix(base, filepath.Ext(base))
		entries[key] = PartEntry{
			Path: []string{sub, base},
			Name: displayName(key),
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", outName, err)
	}
	outPath := filepath.Join(root, outName)
	if err := os.WriteFile(outPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	return nil
}

// displayName prettifies a sheet key: hyphenated words are capitalized and
// single-letter suffixes (gender markers) become parenthesized tags.
func displayName(key string) string {
	parts := strings.Split(key, "-")
	for i, p := range parts {
		switch {
		case len(p) == 1:
			parts[i] = "(" + strings.ToUpper(p) + ")"
		case len(p) == 2:
			// Keep short particles as-is.
		default:
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
