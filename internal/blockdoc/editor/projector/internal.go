package projector

import (
	"maps"
	"slices"

	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/edtypes"
	"github.com/aisa-it/blockdoc/internal/blockdoc/schema"
	"golang.org/x/net/html"
)

func (p *projector) internalGroup(blocks []edtypes.Block) *html.Node {
	group := element("div", attr(AttrNodeType, NodeBlockGroup))
	for _, b := range blocks {
		group.AppendChild(p.internalBlock(b))
	}
	return group
}

// internalBlock выводит блок без потерь. Блоки неизвестных типов выводятся
// как есть, решение о замене принимает разбирающая сторона.
func (p *projector) internalBlock(b edtypes.Block) *html.Node {
	container := element("div",
		attr(AttrNodeType, NodeBlockContainer),
		attr(AttrBlockID, b.ID),
		attr(AttrBlockType, b.Type),
	)

	spec, err := p.r.Block(b.Type)
	if err != nil {
		p.log.Debug("Unknown block type in internal markup", "type", b.Type, "id", b.ID)
		container.Attr = append(container.Attr, rawPropAttrs(b.Props)...)
		if len(b.Content) > 0 {
			container.AppendChild(appendAll(element("div", attr(AttrNodeType, NodeInlineContent)), p.internalInline(b.Content)))
		}
		if b.Table != nil {
			container.AppendChild(p.internalTable(b.Table))
		}
	} else {
		container.Attr = append(container.Attr, propAttrs(spec.Props, b.Props)...)
		switch spec.Content {
		case schema.ContentInline:
			container.AppendChild(appendAll(element("div", attr(AttrNodeType, NodeInlineContent)), p.internalInline(b.Content)))
		case schema.ContentTable:
			container.AppendChild(p.internalTable(b.Table))
		}
	}

	if len(b.Children) > 0 {
		container.AppendChild(p.internalGroup(b.Children))
	}
	return container
}

func propAttrs(ps schema.PropSchema, props edtypes.Props) []html.Attribute {
	attrs := make([]html.Attribute, 0, len(ps))
	for _, name := range ps.Names() {
		spec := ps[name]
		v, _ := spec.Parse(props[name])
		attrs = append(attrs, attr(PropAttr(name), spec.Format(v)))
	}
	return attrs
}

func rawPropAttrs(props edtypes.Props) []html.Attribute {
	names := slices.Sorted(maps.Keys(props))
	attrs := make([]html.Attribute, 0, len(names))
	for _, name := range names {
		attrs = append(attrs, attr(PropAttr(name), formatValue(props[name])))
	}
	return attrs
}

func (p *projector) internalTable(table *edtypes.TableContent) *html.Node {
	wrap := element("div", attr(AttrNodeType, NodeTableContent))
	t := element("table")
	tbody := element("tbody")
	if table != nil {
		for _, row := range table.Rows {
			tr := element("tr")
			for _, cell := range row.Cells {
				tr.AppendChild(appendAll(element("td"), p.internalInline(cell)))
			}
			tbody.AppendChild(tr)
		}
	}
	t.AppendChild(tbody)
	wrap.AppendChild(t)
	return wrap
}

func (p *projector) internalInline(content []edtypes.InlineContent) []*html.Node {
	var nodes []*html.Node
	for _, c := range content {
		switch {
		case c.IsText():
			nodes = append(nodes, p.internalText(c))
		case c.Type == edtypes.InlineLink:
			a := element("a", attr("href", c.Href))
			for _, run := range c.Content {
				a.AppendChild(p.internalText(run))
			}
			nodes = append(nodes, a)
		default:
			span := element("span", attr(AttrInlineType, c.Type))
			if spec, err := p.r.Inline(c.Type); err == nil {
				span.Attr = append(span.Attr, propAttrs(spec.Props, c.Props)...)
			} else {
				span.Attr = append(span.Attr, rawPropAttrs(c.Props)...)
			}
			for _, run := range c.Content {
				span.AppendChild(p.internalText(run))
			}
			nodes = append(nodes, span)
		}
	}
	return nodes
}

// internalText оборачивает текст в span на каждый стиль, внешний - первый по имени.
func (p *projector) internalText(run edtypes.InlineContent) *html.Node {
	var root, inner *html.Node
	for _, name := range activeStyles(run.Styles) {
		span := element("span", attr(AttrStyleType, name))
		if v, ok := run.Styles[name].(string); ok {
			span.Attr = append(span.Attr, attr(AttrValue, v))
		}
		if root == nil {
			root = span
		} else {
			inner.AppendChild(span)
		}
		inner = span
	}
	text := textNode(run.PlainText())
	if root == nil {
		return text
	}
	inner.AppendChild(text)
	return root
}
