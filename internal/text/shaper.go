// internal/text/shaper.go
package text

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/text/language"
)

// ErrUnsupportedScript is returned by a Shaper that has no glyphs for a word.
var ErrUnsupportedScript = errors.New("script not supported by font")

// FontMetrics are the vertical metrics of a font in design units.
type FontMetrics struct {
	UnitsPerEm int32
	Ascender   int32
	// Descender is the distance below the baseline, positive.
	Descender int32
	LineGap   int32
}

// Scale converts design units to px at fontSize.
func (m FontMetrics) Scale(fontSize float32) float32 {
	if m.UnitsPerEm == 0 {
		return 0
	}
	return fontSize / float32(m.UnitsPerEm)
}

// Glyph is one shaped glyph. Cluster is the byte offset of the grapheme
// cluster it renders.
type Glyph struct {
	Index   uint32
	Advance int32
	Cluster uint32
}

// ShapedWord is the shaping result of one word.
type ShapedWord struct {
	Glyphs []Glyph
	// Advance is the visual width in design units.
	Advance int32
	Script  language.Script
}

// Shaper turns words into glyphs for one font.
type Shaper interface {
	Metrics() FontMetrics
	Shape(word string, lang language.Tag) (ShapedWord, error)
}

// FaceShaper shapes with a golang.org/x/image font.Face. Design units are
// the face's 26.6 fixed-point pixels, so UnitsPerEm is the face height.
type FaceShaper struct {
	face font.Face
	// cellWidths scales advances by the terminal cell width of each rune,
	// which suits fixed-width faces such as basicfont.
	cellWidths bool
}

// NewFaceShaper wraps face.
func NewFaceShaper(face font.Face, cellWidths bool) *FaceShaper {
	return &FaceShaper{face: face, cellWidths: cellWidths}
}

// DefaultShaper measures with the built-in 7x13 bitmap face.
func DefaultShaper() *FaceShaper {
	return NewFaceShaper(basicfont.Face7x13, true)
}

func (s *FaceShaper) Metrics() FontMetrics {
	m := s.face.Metrics()
	return FontMetrics{
		UnitsPerEm: int32(m.Height),
		Ascender:   int32(m.Ascent),
		Descender:  int32(m.Descent),
	}
}

func (s *FaceShaper) Shape(word string, lang language.Tag) (ShapedWord, error) {
	out := ShapedWord{Script: EstimateScript(word)}
	g := uniseg.NewGraphemes(word)
	for g.Next() {
		runes := g.Runes()
		from, _ := g.Positions()
		r := runes[0]
		adv, ok := s.face.GlyphAdvance(r)
		if !ok {
			return ShapedWord{}, fmt.Errorf("%w: %U", ErrUnsupportedScript, r)
		}
		advance := int32(adv)
		if s.cellWidths {
			advance *= int32(runewidth.StringWidth(g.Str()))
		}
		out.Glyphs = append(out.Glyphs, Glyph{Index: uint32(r), Advance: advance, Cluster: uint32(from)})
		out.Advance += advance
	}
	return out, nil
}

// fallbackShape measures a word with half an em per terminal cell. It is
// used when the real shaper fails.
func fallbackShape(word string, m FontMetrics) ShapedWord {
	out := ShapedWord{Script: EstimateScript(word)}
	half := m.UnitsPerEm / 2
	g := uniseg.NewGraphemes(word)
	for g.Next() {
		from, _ := g.Positions()
		advance := half * int32(max(1, runewidth.StringWidth(g.Str())))
		out.Glyphs = append(out.Glyphs, Glyph{Index: uint32(g.Runes()[0]), Advance: advance, Cluster: uint32(from)})
		out.Advance += advance
	}
	return out
}

var scriptTables = []struct {
	code  string
	table *unicode.RangeTable
}{
	{"Latn", unicode.Latin},
	{"Grek", unicode.Greek},
	{"Cyrl", unicode.Cyrillic},
	{"Arab", unicode.Arabic},
	{"Hebr", unicode.Hebrew},
	{"Deva", unicode.Devanagari},
	{"Thai", unicode.Thai},
	{"Hang", unicode.Hangul},
	{"Hira", unicode.Hiragana},
	{"Kana", unicode.Katakana},
	{"Hani", unicode.Han},
}

var scriptCommon = language.MustParseScript("Zyyy")

// EstimateScript returns the script covering most code points of word, or
// Zyyy when none of the known scripts match.
func EstimateScript(word string) language.Script {
	counts := make([]int, len(scriptTables))
	for _, r := range word {
		for i, st := range scriptTables {
			if unicode.Is(st.table, r) {
				counts[i]++
				break
			}
		}
	}
	best := -1
	for i, c := range counts {
		if c > 0 && (best < 0 || c > counts[best]) {
			best = i
		}
	}
	if best < 0 {
		return scriptCommon
	}
	return language.MustParseScript(scriptTables[best].code)
}

// languageFor picks the shaping language: the explicit tag, or one derived
// from the script.
func languageFor(lang language.Tag, script language.Script) language.Tag {
	if lang != language.Und || script == scriptCommon {
		return lang
	}
	tag, err := language.Compose(language.Und, script)
	if err != nil {
		return lang
	}
	return tag
}
