// internal/text/shape.go
package text

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

// ShapedWords is the shaping result of a Words value. Entries are parallel
// to Words.Items; non-text entries are empty.
type ShapedWords struct {
	Words        []ShapedWord
	Metrics      FontMetrics
	SpaceAdvance int32
	// Fallbacks counts words measured with fallback metrics.
	Fallbacks int
}

// ShapeOptions controls ShapeWords.
type ShapeOptions struct {
	Lang    language.Tag
	Workers int
	Logger  *zap.Logger
}

// ShapeWords shapes every text entry of words. Up to opts.Workers words are
// shaped concurrently. A word the shaper rejects is measured with fallback
// metrics; only context cancellation is returned as an error.
func ShapeWords(ctx context.Context, words *Words, shaper Shaper, opts ShapeOptions) (*ShapedWords, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := shaper.Metrics()
	out := &ShapedWords{
		Words:   make([]ShapedWord, len(words.Items)),
		Metrics: metrics,
	}
	if space, err := shaper.Shape(" ", opts.Lang); err == nil {
		out.SpaceAdvance = space.Advance
	} else {
		out.SpaceAdvance = metrics.UnitsPerEm / 4
	}

	fallback := make([]bool, len(words.Items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Workers))
	for i, it := range words.Items {
		if it.Kind != WordText {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			word := words.Slice(i)
			lang := languageFor(opts.Lang, EstimateScript(word))
			shaped, err := shaper.Shape(word, lang)
			if err != nil {
				if !errors.Is(err, ErrUnsupportedScript) {
					logger.Debug("Shaper failed, measuring with fallback metrics", zap.String("word", word), zap.Error(err))
				}
				shaped = fallbackShape(word, metrics)
				fallback[i] = true
			}
			out.Words[i] = shaped
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, f := range fallback {
		if f {
			out.Fallbacks++
		}
	}
	if out.Fallbacks > 0 {
		logger.Warn("Words measured with fallback metrics", zap.Int("count", out.Fallbacks))
	}
	return out, nil
}
