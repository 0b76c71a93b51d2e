// cmd/document.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/boxkit/internal/app"
	"github.com/xkilldash9x/boxkit/internal/config"
	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
	"github.com/xkilldash9x/boxkit/internal/observability"
	"github.com/xkilldash9x/boxkit/internal/text"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// loadDocument parses an HTML or XML file. "-" reads HTML from stdin.
func loadDocument(cmd *cobra.Command, path string) (*dom.Document, error) {
	r, name := cmd.InOrStdin(), "stdin"
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open document: %w", err)
		}
		defer f.Close()
		r, name = f, path
	}

	doc, err := parseDocument(r, name)
	if err != nil {
		return nil, err
	}
	logger := observability.Component("cli")
	for _, d := range doc.Diagnostics {
		logger.Warn("Dropped stylesheet entry.", zap.String("document", name), zap.Stringer("diagnostic", d))
	}
	return doc, nil
}

func parseDocument(r io.Reader, name string) (*dom.Document, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xml", ".xhtml":
		return dom.FromXML(r)
	}
	return dom.FromHTML(r)
}

// openWindow renders doc in a headless window sized by the layout
// viewport of cfg.
func openWindow(ctx context.Context, cfg *config.Config, doc *dom.Document, fontDir string) (*app.Window, error) {
	var opts []app.Option
	if fontDir != "" {
		dir, err := filepath.Abs(fontDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve font directory: %w", err)
		}
		opts = append(opts, app.WithFontLoader(text.DirLoader(dir)))
	}

	a := app.New(cfg, dom.NewRefAny(doc), func(data dom.RefAny, _ app.LayoutInfo) *dom.Dom {
		d, _ := dom.Downcast[*dom.Document](data)
		return d.Dom
	}, observability.GetLogger(), opts...)

	wopts, err := app.WindowOptionsFromConfig(cfg.App().Window)
	if err != nil {
		return nil, fmt.Errorf("invalid window configuration: %w", err)
	}
	wopts.Size = geom.LogicalSize{Width: cfg.Layout().ViewportWidth, Height: cfg.Layout().ViewportHeight}
	wopts.Stylesheet = doc.Stylesheet
	return a.CreateWindow(ctx, wopts)
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
