// internal/text/cache.go
package text

import (
	"context"
	"errors"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/xkilldash9x/boxkit/internal/css"
)

// ErrFontNotFound is returned by a FontLoader that has no face for a family.
var ErrFontNotFound = errors.New("font not found")

// FontLoader resolves one family name to a shaper.
type FontLoader func(ctx context.Context, family string) (Shaper, error)

// FontCache maps font-family lists to shapers. It is shared between styled
// DOMs; loads of the same family are collapsed into one call.
type FontCache struct {
	mu       sync.RWMutex
	families map[uint64]Shaper
	names    map[uint64]Shaper

	group    singleflight.Group
	loader   FontLoader
	fallback Shaper
	logger   *zap.Logger
}

// NewFontCache creates a cache. A nil loader resolves every family to the
// fallback shaper.
func NewFontCache(loader FontLoader, fallback Shaper, logger *zap.Logger) *FontCache {
	if fallback == nil {
		fallback = DefaultShaper()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FontCache{
		families: make(map[uint64]Shaper),
		names:    make(map[uint64]Shaper),
		loader:   loader,
		fallback: fallback,
		logger:   logger.Named("fonts"),
	}
}

// Lookup returns the shaper for the first loadable family in the list,
// falling back to the default face.
func (c *FontCache) Lookup(ctx context.Context, family css.FontFamily) Shaper {
	key := family.Hash()
	c.mu.RLock()
	s, ok := c.families[key]
	c.mu.RUnlock()
	if ok {
		return s
	}

	s = c.resolve(ctx, family)
	c.mu.Lock()
	c.families[key] = s
	c.mu.Unlock()
	return s
}

func (c *FontCache) resolve(ctx context.Context, family css.FontFamily) Shaper {
	if c.loader == nil {
		return c.fallback
	}
	for _, name := range family.Names {
		s, err := c.load(ctx, name)
		if err == nil {
			return s
		}
		c.logger.Warn("Font load failed, trying next family",
			zap.String("family", name), zap.Error(err))
	}
	c.logger.Warn("No family in list could be loaded, using fallback font",
		zap.Stringer("families", family))
	return c.fallback
}

func (c *FontCache) load(ctx context.Context, name string) (Shaper, error) {
	key := xxhash.Sum64String(name)
	c.mu.RLock()
	s, ok := c.names[key]
	c.mu.RUnlock()
	if ok {
		return s, nil
	}

	v, err, _ := c.group.Do(name, func() (interface{}, error) {
		s, err := c.loader(ctx, name)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.names[key] = s
		c.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Shaper), nil
}

// Len returns the number of cached family lists.
func (c *FontCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.families)
}
