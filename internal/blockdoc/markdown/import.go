package markdown

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/aisa-it/blockdoc/internal/blockdoc/editor"
	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/edtypes"
	"github.com/aisa-it/blockdoc/internal/blockdoc/schema"
)

// Import разбирает Markdown в блоки. Ошибки разбора не возвращаются:
// нечитаемый ввод становится абзацем с исходным текстом.
func (c *Codec) Import(md string) []edtypes.Block {
	if md == "" {
		return nil
	}

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(md), &buf); err != nil {
		c.log.Warn("Parse markdown, keeping literal text", "err", fmt.Errorf("%w: %w", schema.ErrMarkupParse, err))
		literal := strings.ReplaceAll(html.EscapeString(md), "\n", "<br>")
		return editor.ParseHTMLString("<p>"+literal+"</p>", c.r, c.opts.Parse)
	}

	return editor.ParseHTML(&buf, c.r, c.opts.Parse)
}
