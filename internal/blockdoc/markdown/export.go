package markdown

import (
	"bytes"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/marker"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/edtypes"
	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/projector"
	policy "github.com/aisa-it/blockdoc/internal/blockdoc/redactor-policy"
	"github.com/aisa-it/blockdoc/internal/blockdoc/schema"
)

// Handler выводит узел HTML в Markdown. RenderTryNext передает узел
// следующему обработчику.
type Handler func(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus

// Атрибут заглушки checkbox задачи.
const attrTask = "data-task"

// Export преобразует блоки в Markdown. Результат заканчивается пустой строкой,
// пустой документ дает пустую строку.
func (c *Codec) Export(blocks []edtypes.Block) string {
	markup := projector.Render(blocks, c.r, projector.Options{Logger: c.log})
	markup = policy.FlattenInlineTypes(markup, func(name string) bool {
		_, ok := c.opts.Handlers[name]
		return ok
	})

	markup, err := c.cleanup(markup)
	if err != nil {
		c.log.Warn("Cleanup markup for markdown", "err", err)
	}

	md, err := c.conv.ConvertString(markup)
	if err != nil {
		c.log.Warn("Convert markup to markdown, using plain text", "err", err)
		md = policy.PlainText(markup)
	}

	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	return md + "\n\n"
}

// cleanup убирает оформление без представления в Markdown: подчеркивание
// разворачивается в текст, checkbox задач заменяется заглушкой.
func (c *Codec) cleanup(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return markup, err
	}

	doc.Find("u").Each(func(_ int, s *goquery.Selection) {
		if s.Contents().Length() == 0 {
			s.Remove()
			return
		}
		s.Contents().Unwrap()
	})

	doc.Find(`input[type="checkbox"]`).Each(func(_ int, s *goquery.Selection) {
		if !c.enabled(ExtTaskList) {
			s.Remove()
			return
		}
		if _, checked := s.Attr("checked"); checked {
			s.ReplaceWithHtml(`<span ` + attrTask + `="x">[x]</span>`)
		} else {
			s.ReplaceWithHtml(`<span ` + attrTask + `=" ">[ ]</span>`)
		}
	})

	return doc.Find("body").Html()
}

func (c *Codec) registerHandlers(conv *converter.Converter) {
	blockHandlers := make(map[string]Handler)
	inlineHandlers := make(map[string]Handler)
	for name, h := range c.opts.Handlers {
		switch {
		case c.isType(schema.KindBlock, name):
			blockHandlers[name] = h
		case c.isType(schema.KindInline, name):
			inlineHandlers[name] = h
		default:
			tagType := converter.TagTypeInline
			if dom.NameIsBlockNode(name) {
				tagType = converter.TagTypeBlock
			}
			conv.Register.RendererFor(name, tagType, wrap(h), converter.PriorityEarly-10)
		}
	}

	conv.Register.RendererFor("div", converter.TagTypeBlock, func(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
		typ, ok := dom.GetAttribute(n, projector.AttrBlockType)
		if !ok {
			return converter.RenderTryNext
		}
		if h, ok := blockHandlers[typ]; ok {
			return h(ctx, w, n)
		}
		return converter.RenderTryNext
	}, converter.PriorityEarly)

	conv.Register.RendererFor("span", converter.TagTypeInline, func(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
		if typ, ok := dom.GetAttribute(n, projector.AttrInlineType); ok {
			if h, ok := inlineHandlers[typ]; ok {
				return h(ctx, w, n)
			}
			return converter.RenderTryNext
		}
		if task, ok := dom.GetAttribute(n, attrTask); ok {
			w.WriteString("[" + task + "] ")
			return converter.RenderSuccess
		}
		if _, ok := dom.GetAttribute(n, projector.AttrStyleType); ok {
			return renderRaw(ctx, w, n)
		}
		return converter.RenderTryNext
	}, converter.PriorityEarly)

	if c.enabled(ExtAutolink) {
		conv.Register.RendererFor("a", converter.TagTypeInline, renderAutolink, converter.PriorityEarly)
	}
	if c.enabled(ExtTable) {
		conv.Register.RendererFor("table", converter.TagTypeBlock, renderTable, converter.PriorityEarly)
	}
}

func (c *Codec) isType(kind schema.Kind, name string) bool {
	_, err := c.r.Resolve(name, kind)
	return err == nil
}

func wrap(h Handler) func(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	return func(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
		return h(ctx, w, n)
	}
}

// renderRaw выводит теги узла как встроенный HTML, содержимое - как Markdown.
// Текст внутри тегов разбирается парсером Markdown, поэтому экранируется.
func renderRaw(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	w.WriteString("<" + n.Data)
	for _, a := range n.Attr {
		w.WriteString(" " + a.Key + `="` + html.EscapeString(a.Val) + `"`)
	}
	w.WriteString(">")
	ctx.RenderChildNodes(ctx, w, n)
	w.WriteString("</" + n.Data + ">")
	return converter.RenderSuccess
}

// renderAutolink выводит ссылку, текст которой совпадает с адресом, литералом GFM.
func renderAutolink(_ converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	href := dom.GetAttributeOr(n, "href", "")
	if href == "" || dom.CollectText(n) != href {
		return converter.RenderTryNext
	}
	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		return converter.RenderTryNext
	}
	w.WriteString(href)
	return converter.RenderSuccess
}

// renderTable выводит таблицу GFM: первая строка - заголовок.
func renderTable(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	var rows [][]string
	for _, tr := range dom.FindAllNodes(n, func(node *html.Node) bool {
		return dom.NodeName(node) == "tr"
	}) {
		var cells []string
		for _, cell := range dom.AllChildElements(tr) {
			if name := dom.NodeName(cell); name != "td" && name != "th" {
				continue
			}
			var buf bytes.Buffer
			ctx.RenderChildNodes(ctx, &buf, cell)
			cells = append(cells, tableCell(buf.String()))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return converter.RenderSuccess
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if width == 0 {
		return converter.RenderSuccess
	}

	w.WriteString("\n\n")
	writeRow(w, rows[0], width)
	sep := make([]string, width)
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(w, sep, width)
	for _, row := range rows[1:] {
		writeRow(w, row, width)
	}
	w.WriteString("\n")
	return converter.RenderSuccess
}

func tableCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	// Метка экранирования перед '|' иначе превратится во второй обратный слеш.
	s = strings.ReplaceAll(s, string(marker.BytesMarkerEscaping)+"|", "|")
	return strings.ReplaceAll(s, "|", `\|`)
}

func writeRow(w converter.Writer, cells []string, width int) {
	w.WriteString("|")
	for i := range width {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		w.WriteString(" " + cell + " |")
	}
	w.WriteString("\n")
}
