// cmd/render.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
	"github.com/xkilldash9x/boxkit/internal/layout"
	"github.com/xkilldash9x/boxkit/internal/observability"
)

// boxJSON is one box of the layout dump.
type boxJSON struct {
	Node     string           `json:"node"`
	Tag      string           `json:"tag,omitempty"`
	Type     string           `json:"type"`
	Box      geom.LogicalRect `json:"box"`
	Children []boxJSON        `json:"children,omitempty"`
}

func layoutJSON(n *layout.LayoutNode, d *dom.CompactDom) boxJSON {
	out := boxJSON{Node: n.Node.String(), Type: n.BoxType.String(), Box: n.Dimensions.BorderBox()}
	if !n.IsAnonymous() {
		out.Tag = d.Node(n.Node).TagName()
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, layoutJSON(c, d))
	}
	return out
}

func addViewportFlags(cmd *cobra.Command) {
	cmd.Flags().Float32("width", 0, "Viewport width in px (overrides layout.viewport_width)")
	cmd.Flags().Float32("height", 0, "Viewport height in px (overrides layout.viewport_height)")
	cmd.Flags().Float32("font-size", 0, "Default font size in px (overrides layout.default_font_size)")
	cmd.Flags().String("font-family", "", "Root font-family list (overrides layout.default_font_family)")
	cmd.Flags().Float32("hidpi", 0, "Device pixel ratio (overrides layout.hidpi_factor)")
	cmd.Flags().Int("workers", 0, "Concurrent text shaping workers (overrides layout.shaping_workers)")
	cmd.Flags().String("font-dir", "", "Directory of .ttf/.otf files to resolve font families from")
	cmd.Flags().Bool("json", false, "Write JSON instead of text")
}

// newRenderCmd creates the `render` command.
func newRenderCmd() *cobra.Command {
	var dump string
	cmd := &cobra.Command{
		Use:   "render <file|->",
		Short: "Styles and lays out a document and prints the result",
		Long: `Render parses an HTML or XML document, applies its <style> elements and
the user agent stylesheet, lays it out in the configured viewport and prints
the styled tree, the box tree or the display list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch dump {
			case "style", "layout", "display":
			default:
				return fmt.Errorf("unknown dump %q, want style, layout or display", dump)
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON && dump == "style" {
				return fmt.Errorf("the style dump has no JSON form")
			}

			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			doc, err := loadDocument(cmd, args[0])
			if err != nil {
				return err
			}
			fontDir, _ := cmd.Flags().GetString("font-dir")
			w, err := openWindow(ctx, cfg, doc, fontDir)
			if err != nil {
				return err
			}

			styled, _ := w.StyledDom(dom.RootDomId)
			tree, _ := w.LayoutTree(dom.RootDomId)
			list, _ := w.DisplayList(dom.RootDomId)
			observability.Component("cli").Info("Rendered document",
				zap.String("document", args[0]),
				zap.Int("nodes", styled.Len()),
				zap.Int("boxes", tree.Len()),
				zap.Int("display_items", len(list.Items)))

			out := cmd.OutOrStdout()
			switch {
			case dump == "style":
				_, err = fmt.Fprint(out, styled.Dump())
			case dump == "layout" && asJSON:
				err = writeJSON(out, layoutJSON(tree.Root, styled.Dom))
			case dump == "layout":
				_, err = fmt.Fprint(out, tree.Dump())
			case asJSON:
				err = writeJSON(out, list)
			default:
				for i, it := range list.Items {
					if _, err = fmt.Fprintf(out, "%4d %s\n", i, it.Kind()); err != nil {
						break
					}
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&dump, "dump", "layout", "What to print: style, layout or display")
	addViewportFlags(cmd)
	return cmd
}
