// internal/text/loader.go
package text

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// loadSize is the pixel size faces are rasterised at. Advances are scaled
// to the computed font size, so it only sets the precision.
const loadSize = 64

// DirLoader resolves families to TrueType or OpenType files in dir. A
// family matches a file whose base name equals it ignoring case, spaces
// and dashes, so "DejaVu Sans" loads DejaVuSans.ttf.
func DirLoader(dir string) FontLoader {
	return func(ctx context.Context, family string) (Shaper, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to list font directory: %w", err)
		}
		want := fontKey(family)
		for _, e := range entries {
			ext := filepath.Ext(e.Name())
			if e.IsDir() || !isFontFile(ext) || fontKey(strings.TrimSuffix(e.Name(), ext)) != want {
				continue
			}
			return loadFace(filepath.Join(dir, e.Name()))
		}
		return nil, fmt.Errorf("%w: %q in %s", ErrFontNotFound, family, dir)
	}
}

func isFontFile(ext string) bool {
	switch strings.ToLower(ext) {
	case ".ttf", ".otf":
		return true
	}
	return false
}

func fontKey(name string) string {
	return strings.ToLower(strings.NewReplacer(" ", "", "-", "", "_", "").Replace(name))
}

func loadFace(path string) (Shaper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", filepath.Base(path), err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: loadSize, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, fmt.Errorf("failed to create face for %s: %w", filepath.Base(path), err)
	}
	return NewFaceShaper(face, false), nil
}
