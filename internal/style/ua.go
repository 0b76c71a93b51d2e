// internal/style/ua.go
package style

import (
	"sync"

	"github.com/xkilldash9x/boxkit/internal/css/parser"
)

// DefaultUserAgentCSS is the built-in stylesheet applied beneath author rules.
// Tag names are the element names reported by dom.NodeData.TagName.
const DefaultUserAgentCSS = `
body, div, p, html, main, header, footer, section, article, aside, nav,
ul, ol, dl, dt, dd, pre, blockquote, hr, form, h1, h2, h3, h4, h5, h6,
iframe, gltexture {
    display: block;
}

body {
    margin: 8px;
}

p { margin: 1em 0; }
h1 { font-size: 2em; font-weight: bold; margin: 0.67em 0; }
h2 { font-size: 1.5em; font-weight: bold; margin: 0.83em 0; }
h3 { font-size: 1.17em; font-weight: bold; margin: 1em 0; }
h4 { font-weight: bold; margin: 1.33em 0; }
h5 { font-size: 0.83em; font-weight: bold; margin: 1.67em 0; }
h6 { font-size: 0.67em; font-weight: bold; margin: 2.33em 0; }
pre { white-space: pre; font-family: monospace; margin: 1em 0; }
strong, b { font-weight: bolder; }
em, i { font-style: italic; }
u { text-decoration: underline; }

ul, ol { padding-left: 40px; margin: 1em 0; }
li { display: list-item; }

table { display: table; }
caption { display: table-caption; text-align: center; }
thead { display: table-header-group; }
tbody { display: table-row-group; }
tfoot { display: table-footer-group; }
tr { display: table-row; }
colgroup { display: table-column-group; }
col { display: table-column; }
td, th { display: table-cell; padding: 1px; }
th { font-weight: bold; text-align: center; }

img { display: inline-block; }
input, button, textarea, select {
    display: inline-block;
    box-sizing: border-box;
    margin: 2px 0;
    padding: 1px 2px;
    border-width: 1px;
    border-style: solid;
    border-color: #767676;
}
button { padding: 1px 6px; text-align: center; }

a {
    color: #0000EE;
    text-decoration: underline;
    cursor: pointer;
}
`

var (
	uaOnce  sync.Once
	uaSheet *parser.Stylesheet
)

// UserAgentStylesheet returns the parsed UA sheet. It is parsed once and
// shared by every styled DOM.
func UserAgentStylesheet() *parser.Stylesheet {
	uaOnce.Do(func() {
		uaSheet = parser.MustParseStylesheet(DefaultUserAgentCSS)
	})
	return uaSheet
}
