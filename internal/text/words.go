// internal/text/words.go
package text

import (
	"golang.org/x/text/unicode/norm"
)

// WordKind classifies one entry produced by SplitWords.
type WordKind uint8

const (
	WordText WordKind = iota
	WordSpace
	WordTab
	WordReturn
)

func (k WordKind) String() string {
	switch k {
	case WordSpace:
		return "Space"
	case WordTab:
		return "Tab"
	case WordReturn:
		return "Return"
	}
	return "Word"
}

// Word is a byte range of the normalised text.
type Word struct {
	Kind       WordKind
	Start, End int
}

// Words is the split form of one text run.
type Words struct {
	// Text is the NFC-normalised source. Word ranges index into it.
	Text  string
	Items []Word
}

// Slice returns the text of item i.
func (w *Words) Slice(i int) string {
	it := w.Items[i]
	return w.Text[it.Start:it.End]
}

// Returns counts the forced line breaks.
func (w *Words) Returns() int {
	n := 0
	for _, it := range w.Items {
		if it.Kind == WordReturn {
			n++
		}
	}
	return n
}

// SplitWords normalises s to NFC and scans it into maximal non-whitespace
// runs, single spaces, single tabs and line breaks. "\r\n" is one break.
func SplitWords(s string) *Words {
	text := norm.NFC.String(s)
	words := &Words{Text: text}

	start := -1
	flush := func(end int) {
		if start >= 0 {
			words.Items = append(words.Items, Word{Kind: WordText, Start: start, End: end})
			start = -1
		}
	}

	for i := 0; i < len(text); {
		switch c := text[i]; c {
		case ' ':
			flush(i)
			words.Items = append(words.Items, Word{Kind: WordSpace, Start: i, End: i + 1})
			i++
		case '\t':
			flush(i)
			words.Items = append(words.Items, Word{Kind: WordTab, Start: i, End: i + 1})
			i++
		case '\n':
			flush(i)
			words.Items = append(words.Items, Word{Kind: WordReturn, Start: i, End: i + 1})
			i++
		case '\r':
			flush(i)
			end := i + 1
			if end < len(text) && text[end] == '\n' {
				end++
			}
			words.Items = append(words.Items, Word{Kind: WordReturn, Start: i, End: end})
			i = end
		default:
			if start < 0 {
				start = i
			}
			i++
		}
	}
	flush(len(text))
	return words
}
