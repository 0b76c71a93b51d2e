// cmd/hittest.go
package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/boxkit/internal/app"
	"github.com/xkilldash9x/boxkit/internal/geom"
	"github.com/xkilldash9x/boxkit/internal/hittest"
)

type hitJSON struct {
	Dom   uint32               `json:"dom"`
	Node  uint32               `json:"node"`
	Tag   string               `json:"tag"`
	Local geom.LogicalPosition `json:"local"`
	Z     int                  `json:"z"`
}

func describeHits(w *app.Window, hits []hittest.Hit) []hitJSON {
	out := make([]hitJSON, 0, len(hits))
	for _, h := range hits {
		tag := ""
		if s, ok := w.StyledDom(h.Node.Dom); ok {
			tag = s.Node(h.Node.Node).TagName()
		}
		out = append(out, hitJSON{
			Dom:   uint32(h.Node.Dom),
			Node:  uint32(h.Node.Node),
			Tag:   tag,
			Local: h.Local,
			Z:     h.ZOrder,
		})
	}
	return out
}

func parseCoord(s, name string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s coordinate %q: %w", name, s, err)
	}
	return float32(v), nil
}

// newHitTestCmd creates the `hittest` command.
func newHitTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hittest <file|-> <x> <y>",
		Short: "Lists the nodes under a point, front to back",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := parseCoord(args[1], "x")
			if err != nil {
				return err
			}
			y, err := parseCoord(args[2], "y")
			if err != nil {
				return err
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

			var hits []hitJSON
			if physical, _ := cmd.Flags().GetBool("physical"); physical {
				hits = describeHits(w, w.HitTestPhysical(geom.PhysicalPosition{X: x, Y: y}))
			} else {
				hits = describeHits(w, w.HitTest(geom.LogicalPosition{X: x, Y: y}))
			}
			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(out, hits)
			}
			if len(hits) == 0 {
				_, err := fmt.Fprintln(out, "no hit")
				return err
			}
			for _, h := range hits {
				if _, err := fmt.Fprintf(out, "%d:%d %s local=(%g, %g)\n", h.Dom, h.Node, h.Tag, h.Local.X, h.Local.Y); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("physical", false, "Read x and y as device pixels, scaled by the HiDPI factor")
	addViewportFlags(cmd)
	return cmd
}
