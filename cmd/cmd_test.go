// cmd/cmd_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><head><style>
body { margin: 0; }
#a { height: 10px; }
#b { height: 20px; background-color: red; }
</style></head><body><div id="a"></div><div id="b">hi</div></body></html>`

// execute runs a fresh command tree in an empty working directory.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "boxkit-cmd")
	if err != nil {
		panic(err)
	}
	// Keep a stray ./.boxkit.yaml from leaking into the tests.
	if err := os.Chdir(dir); err != nil {
		panic(err)
	}
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "--version")
	require.NoError(t, err)
	assert.Equal(t, "boxkit version "+Version+"\n", out)

	out, err = execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "boxkit "+Version+" ("))
}

func TestRender(t *testing.T) {
	html := writeFile(t, "page.html", page)

	t.Run("layout tree", func(t *testing.T) {
		out, err := execute(t, "", "render", html, "--width", "200", "--height", "100")
		require.NoError(t, err)
		assert.Contains(t, out, "block 200x30@(0, 0)")
		assert.Contains(t, out, "block 200x10@(0, 0)")
		assert.Contains(t, out, "block 200x20@(0, 10)")
	})

	t.Run("layout json", func(t *testing.T) {
		out, err := execute(t, "", "render", html, "--width", "200", "--json")
		require.NoError(t, err)
		var root boxJSON
		require.NoError(t, json.Unmarshal([]byte(out), &root))
		assert.Equal(t, "body", root.Tag)
		require.Len(t, root.Children, 2)
		assert.Equal(t, "div", root.Children[1].Tag)
		assert.Equal(t, float32(200), root.Children[1].Box.Size.Width)
		assert.Equal(t, float32(10), root.Children[1].Box.Origin.Y)
	})

	t.Run("style tree", func(t *testing.T) {
		out, err := execute(t, "", "render", html, "--dump", "style")
		require.NoError(t, err)
		assert.Contains(t, out, "div#a")
		assert.Contains(t, out, `"hi"`)
	})

	t.Run("display list", func(t *testing.T) {
		out, err := execute(t, "", "render", html, "--dump", "display")
		require.NoError(t, err)
		assert.NotEmpty(t, strings.TrimSpace(out))

		out, err = execute(t, "", "render", html, "--dump", "display", "--json")
		require.NoError(t, err)
		var list struct {
			Items []struct {
				Kind string `json:"kind"`
			} `json:"items"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &list))
		assert.NotEmpty(t, list.Items)
	})

	t.Run("stdin", func(t *testing.T) {
		out, err := execute(t, page, "render", "-", "--width", "300")
		require.NoError(t, err)
		assert.Contains(t, out, "block 300x10@(0, 0)")
	})

	t.Run("xml document", func(t *testing.T) {
		xml := writeFile(t, "page.xml", `<app><style>body { margin: 0; } #a { height: 5px; }</style><div id="a"/></app>`)
		out, err := execute(t, "", "render", xml, "--width", "200")
		require.NoError(t, err)
		assert.Contains(t, out, "block 200x5@(0, 0)")
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
			want string
		}{
			{name: "unknown dump", args: []string{"render", html, "--dump", "paint"}, want: "unknown dump"},
			{name: "style has no json", args: []string{"render", html, "--dump", "style", "--json"}, want: "no JSON form"},
			{name: "missing file", args: []string{"render", filepath.Join(t.TempDir(), "nope.html")}, want: "failed to open document"},
			{name: "missing argument", args: []string{"render"}, want: "accepts 1 arg"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := execute(t, "", tt.args...)
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.want)
			})
		}
	})
}

func TestHitTest(t *testing.T) {
	html := writeFile(t, "page.html", page)

	t.Run("json hits front to back", func(t *testing.T) {
		out, err := execute(t, "", "hittest", html, "5", "15", "--width", "200", "--json")
		require.NoError(t, err)
		var hits []hitJSON
		require.NoError(t, json.Unmarshal([]byte(out), &hits))
		require.Len(t, hits, 2)
		assert.Equal(t, "div", hits[0].Tag)
		assert.Equal(t, uint32(2), hits[0].Node)
		assert.Equal(t, float32(5), hits[0].Local.X)
		assert.Equal(t, float32(5), hits[0].Local.Y)
		assert.Equal(t, "body", hits[1].Tag)
		assert.Greater(t, hits[0].Z, hits[1].Z)
	})

	t.Run("text output", func(t *testing.T) {
		out, err := execute(t, "", "hittest", html, "5", "5")
		require.NoError(t, err)
		assert.Contains(t, out, "0:1 div local=(5, 5)")

		out, err = execute(t, "", "hittest", html, "5", "500")
		require.NoError(t, err)
		assert.Equal(t, "no hit\n", out)
	})

	t.Run("physical coordinates are scaled", func(t *testing.T) {
		out, err := execute(t, "", "hittest", html, "10", "30", "--width", "200", "--hidpi", "2", "--physical", "--json")
		require.NoError(t, err)
		var hits []hitJSON
		require.NoError(t, json.Unmarshal([]byte(out), &hits))
		require.NotEmpty(t, hits)
		assert.Equal(t, uint32(2), hits[0].Node)
		assert.Equal(t, float32(5), hits[0].Local.X)
		assert.Equal(t, float32(5), hits[0].Local.Y)
	})

	t.Run("invalid coordinate", func(t *testing.T) {
		_, err := execute(t, "", "hittest", html, "left", "5")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid x coordinate")
	})
}

func TestConfiguration(t *testing.T) {
	html := writeFile(t, "page.html", page)

	t.Run("config file", func(t *testing.T) {
		cfg := writeFile(t, "boxkit.yaml", "layout:\n  viewport_width: 320\n")
		out, err := execute(t, "", "render", html, "--config", cfg)
		require.NoError(t, err)
		assert.Contains(t, out, "block 320x10@(0, 0)")
	})

	t.Run("flags override the config file", func(t *testing.T) {
		cfg := writeFile(t, "boxkit.yaml", "layout:\n  viewport_width: 320\n")
		out, err := execute(t, "", "render", html, "--config", cfg, "--width", "240")
		require.NoError(t, err)
		assert.Contains(t, out, "block 240x10@(0, 0)")
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("BOXKIT_LAYOUT_VIEWPORT_WIDTH", "360")
		out, err := execute(t, "", "render", html)
		require.NoError(t, err)
		assert.Contains(t, out, "block 360x10@(0, 0)")
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		cfg := writeFile(t, "boxkit.yaml", "app:\n  max_fps: 0\n")
		_, err := execute(t, "", "render", html, "--config", cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load or validate config")
	})

	t.Run("unreadable config file", func(t *testing.T) {
		_, err := execute(t, "", "render", html, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize configuration")
	})
}
