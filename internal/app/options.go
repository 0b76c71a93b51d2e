// internal/app/options.go
package app

import (
	"fmt"

	"github.com/xkilldash9x/boxkit/internal/config"
	"github.com/xkilldash9x/boxkit/internal/css/parser"
	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
)

// Theme is the colour scheme a window asks the layout callback for.
type Theme uint8

const (
	ThemeLight Theme = iota
	ThemeDark
)

func (t Theme) String() string {
	if t == ThemeDark {
		return "dark"
	}
	return "light"
}

// ParseTheme reads the config spelling of a theme.
func ParseTheme(s string) (Theme, error) {
	switch s {
	case "", "light":
		return ThemeLight, nil
	case "dark":
		return ThemeDark, nil
	}
	return ThemeLight, fmt.Errorf("unknown theme %q", s)
}

// Decorations selects the window chrome.
type Decorations uint8

const (
	DecorationsNormal Decorations = iota
	DecorationsNoTitle
	DecorationsNoControls
	DecorationsNone
)

var decorationNames = []string{"normal", "no-title", "no-controls", "none"}

func (d Decorations) String() string {
	if int(d) < len(decorationNames) {
		return decorationNames[d]
	}
	return "unknown"
}

// ParseDecorations reads the config spelling of a decoration mode.
func ParseDecorations(s string) (Decorations, error) {
	if s == "" {
		return DecorationsNormal, nil
	}
	for i, name := range decorationNames {
		if name == s {
			return Decorations(i), nil
		}
	}
	return DecorationsNormal, fmt.Errorf("unknown decorations %q", s)
}

// LayoutInfo is what the layout callback knows about the window it builds
// a DOM for.
type LayoutInfo struct {
	WindowSize geom.LogicalSize
	Theme      Theme
}

// LayoutCallback turns the application data into the root DOM of a window.
type LayoutCallback func(data dom.RefAny, info LayoutInfo) *dom.Dom

// WindowCreateOptions describes a window before it opens.
type WindowCreateOptions struct {
	Title       string
	Size        geom.LogicalSize
	Theme       Theme
	Decorations Decorations
	// HiDPIFactor is the device pixel ratio. Zero takes
	// layout.hidpi_factor from the configuration.
	HiDPIFactor float32
	// CSS is the author stylesheet applied to the root DOM.
	CSS string
	// Stylesheet is an already parsed author stylesheet. It takes
	// precedence over CSS.
	Stylesheet *parser.Stylesheet
}

// WindowOptionsFromConfig fills the options from the window section of the
// configuration. Unknown theme or decoration names are reported.
func WindowOptionsFromConfig(cfg config.WindowConfig) (WindowCreateOptions, error) {
	theme, err := ParseTheme(cfg.Theme)
	if err != nil {
		return WindowCreateOptions{}, err
	}
	deco, err := ParseDecorations(cfg.Decorations)
	if err != nil {
		return WindowCreateOptions{}, err
	}
	return WindowCreateOptions{
		Title:       cfg.Title,
		Size:        geom.LogicalSize{Width: cfg.Width, Height: cfg.Height},
		Theme:       theme,
		Decorations: deco,
	}, nil
}
