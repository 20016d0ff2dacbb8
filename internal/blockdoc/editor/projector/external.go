package projector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/edtypes"
	"github.com/aisa-it/blockdoc/internal/blockdoc/schema"
	"golang.org/x/net/html"
)

// listTag возвращает тег списка для элементов списка.
func listTag(blockType string) (string, bool) {
	switch blockType {
	case schema.BulletListItem, schema.CheckListItem:
		return "ul", true
	case schema.NumberedListItem:
		return "ol", true
	}
	return "", false
}

// externalBlocks выводит блоки внешнего режима. Соседние элементы списка
// одного типа собираются в один ul/ol.
func (p *projector) externalBlocks(blocks []edtypes.Block) []*html.Node {
	var nodes []*html.Node
	for i := 0; i < len(blocks); {
		b := blocks[i]
		tag, isList := listTag(b.Type)
		if _, custom := p.opts.BlockRenderers[b.Type]; isList && !custom {
			list := element(tag)
			for ; i < len(blocks) && blocks[i].Type == b.Type; i++ {
				list.AppendChild(p.listItem(blocks[i]))
			}
			nodes = append(nodes, list)
			continue
		}
		nodes = append(nodes, p.externalBlock(b)...)
		i++
	}
	return nodes
}

// listItem: вложенные блоки выводятся внутри li, вложенные списки становятся вложенными ul/ol.
func (p *projector) listItem(b edtypes.Block) *html.Node {
	li := element("li")
	if b.Type == schema.CheckListItem {
		input := element("input", attr("type", "checkbox"), attr("disabled", ""))
		if p.propValue(b, "checked") == true {
			input.Attr = append(input.Attr, attr("checked", ""))
		}
		li.AppendChild(input)
	}
	appendAll(li, p.externalInline(b.Content))
	appendAll(li, p.externalBlocks(b.Children))
	return li
}

func (p *projector) externalBlock(b edtypes.Block) []*html.Node {
	var el *html.Node

	spec, err := p.r.Block(b.Type)
	switch {
	case p.opts.BlockRenderers[b.Type] != nil:
		el = p.opts.BlockRenderers[b.Type](b, p.externalInline(b.Content))
	case err != nil:
		p.log.Warn("Unsupported conversion, using generic container",
			"type", b.Type, "id", b.ID, "err", fmt.Errorf("%w: %w", schema.ErrUnsupportedConversion, err))
		el = p.genericBlock(b, nil)
	case spec.External != "":
		el = appendAll(element(spec.External), p.externalInline(b.Content))
	default:
		el = p.builtinBlock(b, spec)
	}
	if el == nil {
		el = p.genericBlock(b, nil)
	}

	nodes := []*html.Node{el}
	if len(b.Children) > 0 {
		group := element("div", attr(AttrNodeType, NodeBlockGroup))
		nodes = append(nodes, appendAll(group, p.externalBlocks(b.Children)))
	}
	return nodes
}

func (p *projector) builtinBlock(b edtypes.Block, spec schema.BlockSpec) *html.Node {
	switch b.Type {
	case schema.Paragraph:
		return appendAll(element("p"), p.externalInline(b.Content))

	case schema.Heading:
		level, _ := p.propValue(b, "level").(int)
		if level < 1 || level > 6 {
			level = 1
		}
		return appendAll(element("h"+strconv.Itoa(level)), p.externalInline(b.Content))

	case schema.CodeBlock:
		code := element("code")
		if lang, _ := p.propValue(b, "language").(string); lang != "" {
			code.Attr = append(code.Attr, attr("class", "language-"+lang))
		}
		code.AppendChild(textNode(b.PlainText()))
		pre := element("pre")
		pre.AppendChild(code)
		return pre

	case schema.Image:
		img := element("img",
			attr("src", spec.Props["url"].Format(p.propValue(b, "url"))),
			attr("alt", spec.Props["caption"].Format(p.propValue(b, "caption"))),
		)
		if w, ok := spec.Props["previewWidth"]; ok {
			img.Attr = append(img.Attr, attr("width", w.Format(p.propValue(b, "previewWidth"))))
		}
		para := element("p")
		para.AppendChild(img)
		return para

	case schema.Table:
		return p.externalTable(b.Table)
	}

	p.log.Debug("Unsupported conversion, using generic container", "type", b.Type, "id", b.ID)
	return p.genericBlock(b, &spec)
}

// genericBlock - div[data-block-type] с inline-содержимым и, для известных типов, свойствами.
func (p *projector) genericBlock(b edtypes.Block, spec *schema.BlockSpec) *html.Node {
	div := element("div", attr(AttrBlockType, b.Type))
	if spec != nil {
		div.Attr = append(div.Attr, propAttrs(spec.Props, b.Props)...)
	}
	appendAll(div, p.externalInline(b.Content))
	if b.Table != nil {
		div.AppendChild(p.externalTable(b.Table))
	}
	return div
}

// propValue возвращает значение свойства, приведенное к домену схемы.
func (p *projector) propValue(b edtypes.Block, name string) any {
	spec, err := p.r.Block(b.Type)
	if err != nil {
		return b.Props[name]
	}
	ps, ok := spec.Props[name]
	if !ok {
		return b.Props[name]
	}
	v, _ := ps.Parse(b.Props[name])
	return v
}

// externalTable: первая строка - заголовок таблицы.
func (p *projector) externalTable(table *edtypes.TableContent) *html.Node {
	t := element("table")
	if table == nil || len(table.Rows) == 0 {
		return t
	}

	thead := element("thead")
	tr := element("tr")
	for _, cell := range table.Rows[0].Cells {
		tr.AppendChild(appendAll(element("th"), p.externalInline(cell)))
	}
	thead.AppendChild(tr)
	t.AppendChild(thead)

	if len(table.Rows) > 1 {
		tbody := element("tbody")
		for _, row := range table.Rows[1:] {
			tr := element("tr")
			for _, cell := range row.Cells {
				tr.AppendChild(appendAll(element("td"), p.externalInline(cell)))
			}
			tbody.AppendChild(tr)
		}
		t.AppendChild(tbody)
	}
	return t
}

func (p *projector) externalInline(content []edtypes.InlineContent) []*html.Node {
	var nodes []*html.Node
	for _, c := range content {
		switch {
		case c.IsText():
			nodes = append(nodes, p.externalText(c)...)
		case c.Type == edtypes.InlineLink:
			a := element("a", attr("href", c.Href))
			for _, run := range c.Content {
				appendAll(a, p.externalText(run))
			}
			nodes = append(nodes, a)
		default:
			span := element("span", attr(AttrInlineType, c.Type))
			if spec, err := p.r.Inline(c.Type); err == nil {
				span.Attr = append(span.Attr, propAttrs(spec.Props, c.Props)...)
			} else {
				p.log.Debug("Unknown inline content type", "type", c.Type)
				span.Attr = append(span.Attr, rawPropAttrs(c.Props)...)
			}
			for _, run := range c.Content {
				appendAll(span, p.externalText(run))
			}
			nodes = append(nodes, span)
		}
	}
	return nodes
}

// externalText выводит текстовый фрагмент: канонический тег на стиль
// (strong, em, ...), span[data-style-type] для стилей без тега, br на перевод строки.
func (p *projector) externalText(run edtypes.InlineContent) []*html.Node {
	var text []*html.Node
	for i, line := range strings.Split(run.PlainText(), "\n") {
		if i > 0 {
			text = append(text, element("br"))
		}
		if line != "" {
			text = append(text, textNode(line))
		}
	}

	var root, inner *html.Node
	for _, name := range activeStyles(run.Styles) {
		el := p.styleElement(name, run.Styles[name])
		if root == nil {
			root = el
		} else {
			inner.AppendChild(el)
		}
		inner = el
	}
	if root == nil {
		return text
	}
	appendAll(inner, text)
	return []*html.Node{root}
}

func (p *projector) styleElement(name string, value any) *html.Node {
	spec, err := p.r.Style(name)
	if fn := p.opts.StyleRenderers[name]; fn != nil {
		if err != nil {
			spec = schema.StyleSpec{Name: name, Value: schema.PropString}
		}
		if el := fn(spec, value); el != nil {
			return el
		}
	}
	if err == nil && spec.Tag != "" {
		return element(spec.Tag)
	}
	if err != nil {
		p.log.Debug("Unknown style", "style", name)
	}
	span := element("span", attr(AttrStyleType, name))
	if s, ok := value.(string); ok {
		span.Attr = append(span.Attr, attr(AttrValue, s))
	}
	return span
}
