// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/boxkit/internal/config"
	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/layout"
	"github.com/xkilldash9x/boxkit/internal/text"
)

// eventQueueSize bounds the events waiting for the frame loop.
const eventQueueSize = 256

type windowEvent struct {
	id WindowId
	ev Event
}

// Option configures an App.
type Option func(*App)

// WithFontLoader resolves font families; without one every family uses
// the built-in face.
func WithFontLoader(loader text.FontLoader) Option {
	return func(a *App) { a.loader = loader }
}

// WithClock replaces time.Now for scroll animations.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// App is the application data, its layout callback and the open windows.
// Windows are driven by Run; Post is the only method meant to be called
// from other goroutines while Run is active.
type App struct {
	cfg    config.Interface
	data   dom.RefAny
	layout LayoutCallback
	logger *zap.Logger

	loader text.FontLoader
	fonts  *text.FontCache
	solver *layout.Solver
	now    func() time.Time

	mu      sync.Mutex
	windows map[WindowId]*Window
	order   []WindowId

	events chan windowEvent
}

// New creates an application. The layout callback is called with data
// every time a window refreshes its DOM.
func New(cfg config.Interface, data dom.RefAny, layoutFn LayoutCallback, logger *zap.Logger, opts ...Option) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		cfg:     cfg,
		data:    data,
		layout:  layoutFn,
		logger:  logger.Named("app"),
		now:     time.Now,
		windows: make(map[WindowId]*Window),
		events:  make(chan windowEvent, eventQueueSize),
	}
	for _, opt := range opts {
		opt(a)
	}
	// The font cache is shared by every window of the app.
	a.fonts = text.NewFontCache(a.loader, nil, logger)
	a.solver = layout.NewSolver(
		layout.WithFontCache(a.fonts),
		layout.WithShapingWorkers(cfg.Layout().ShapingWorkers),
		layout.WithLogger(logger))
	return a
}

// CreateWindow opens a window and renders its first frame.
func (a *App) CreateWindow(ctx context.Context, opts WindowCreateOptions) (*Window, error) {
	w, err := newWindow(a, opts)
	if err != nil {
		return nil, err
	}
	if err := w.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("initial render of window %q: %w", opts.Title, err)
	}

	a.mu.Lock()
	a.windows[w.id] = w
	a.order = append(a.order, w.id)
	a.mu.Unlock()

	a.logger.Info("Window created.",
		zap.String("window_id", string(w.id)),
		zap.String("title", opts.Title),
		zap.Stringer("size", opts.Size))
	return w, nil
}

// Window returns an open window.
func (a *App) Window(id WindowId) (*Window, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	w, ok := a.windows[id]
	return w, ok
}

// Windows returns the open windows in creation order.
func (a *App) Windows() []*Window {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Window, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.windows[id])
	}
	return out
}

func (a *App) closeWindow(id WindowId) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.windows, id)
	for i, v := range a.order {
		if v == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

// Post queues an event for a window. It blocks while the queue is full.
func (a *App) Post(ctx context.Context, id WindowId, ev Event) error {
	select {
	case a.events <- windowEvent{id: id, ev: ev}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives the windows until ctx is cancelled or the last window
// closes. The loop sleeps until an event arrives unless a scroll
// animation is running, and frames are paced to app.max_fps.
func (a *App) Run(ctx context.Context) error {
	fps := a.cfg.App().MaxFPS
	limiter := rate.NewLimiter(rate.Limit(fps), 1)
	a.logger.Info("Frame loop started.", zap.Int("max_fps", fps), zap.Int("windows", len(a.Windows())))
	defer a.logger.Info("Frame loop stopped.")

	for len(a.Windows()) > 0 {
		if !a.animating() {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-a.events:
				if err := a.deliver(ctx, ev); err != nil {
					return a.stopErr(ctx, err)
				}
			}
		}
		if err := limiter.Wait(ctx); err != nil {
			a.logger.Debug("Frame pacing interrupted.", zap.Error(err))
			return nil
		}
		if err := a.drain(ctx); err != nil {
			return a.stopErr(ctx, err)
		}
		if err := a.frame(ctx); err != nil {
			return a.stopErr(ctx, err)
		}
	}
	return nil
}

// stopErr hides errors that only report the cancellation of ctx.
func (a *App) stopErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (a *App) animating() bool {
	for _, w := range a.Windows() {
		if w.scroll.Animating() {
			return true
		}
	}
	return false
}

// drain delivers every queued event without blocking.
func (a *App) drain(ctx context.Context) error {
	for {
		select {
		case ev := <-a.events:
			if err := a.deliver(ctx, ev); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// frame advances the animations of every window.
func (a *App) frame(ctx context.Context) error {
	now := a.now()
	for _, w := range a.Windows() {
		if err := w.Tick(ctx, now); err != nil {
			return fmt.Errorf("frame of window %s: %w", w.id, err)
		}
	}
	return nil
}

func (a *App) deliver(ctx context.Context, we windowEvent) error {
	w, ok := a.Window(we.id)
	if !ok {
		a.logger.Warn("Dropping event for unknown window.",
			zap.String("window_id", string(we.id)),
			zap.Stringer("event", we.ev.Kind))
		return nil
	}

	var update dom.Update
	if we.ev.Kind == dom.EventWindowClose {
		update = w.dispatch(dom.EventWindowClose, nil)
		a.closeWindow(w.id)
		a.logger.Info("Window closed.", zap.String("window_id", string(w.id)))
	} else {
		var err error
		if update, err = w.HandleEvent(ctx, we.ev); err != nil {
			return fmt.Errorf("event %s in window %s: %w", we.ev.Kind, w.id, err)
		}
	}

	if update == dom.UpdateRefreshDomAllWindows {
		return a.RefreshAll(ctx, w.id)
	}
	return nil
}

// RefreshAll rebuilds the DOM of every open window except skip.
func (a *App) RefreshAll(ctx context.Context, skip WindowId) error {
	for _, w := range a.Windows() {
		if w.id == skip {
			continue
		}
		if err := w.Refresh(ctx); err != nil {
			return fmt.Errorf("refresh window %s: %w", w.id, err)
		}
	}
	return nil
}
