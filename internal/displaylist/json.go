// internal/displaylist/json.go
package displaylist

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/boxkit/internal/geom"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type taggedItem struct {
	Kind string `json:"kind"`
	Item Item   `json:"item"`
}

type listJSON struct {
	Viewport    geom.LogicalRect `json:"viewport"`
	HiDPIFactor float32          `json:"hidpi_factor"`
	Items       []taggedItem     `json:"items"`
}

// MarshalJSON dumps the list with each item tagged by its kind.
func (d *DisplayList) MarshalJSON() ([]byte, error) {
	out := listJSON{Viewport: d.Viewport, HiDPIFactor: d.HiDPIFactor, Items: make([]taggedItem, len(d.Items))}
	for i, it := range d.Items {
		out.Items[i] = taggedItem{Kind: it.Kind().String(), Item: it}
	}
	return json.Marshal(out)
}
