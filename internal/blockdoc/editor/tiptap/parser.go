package tiptap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/edtypes"
	"github.com/aisa-it/blockdoc/internal/blockdoc/schema"
)

// FallbackFunc решает, чем заменить blockContainer, который не удалось разобрать.
// false - узел отбрасывается.
type FallbackFunc func(container NativeNode, err error) (edtypes.Block, bool)

// ParseJSON парсит JSON контент TipTap редактора в дерево узлов.
func ParseJSON(r io.Reader) (*TipTapNode, error) {
	var doc TipTapNode
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	if doc.Type == "" {
		return nil, errors.New("tiptap: node without type at document root")
	}
	return &doc, nil
}

// Option настраивает разбор узлов.
type Option func(*decoder)

// WithLogger задает логгер для поглощенных проблем разбора. По умолчанию slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *decoder) {
		if l != nil {
			d.log = l
		}
	}
}

func newDecoder(r *schema.Registry, fallback FallbackFunc, opts []Option) *decoder {
	d := &decoder{r: r, fallback: fallback, log: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NodeToBlock восстанавливает блок из узла blockContainer (или узла типа блока без обертки).
// Свойства разбираются PropSpec.Parse и никогда не дают ошибку.
// Неизвестный тип узла или марки дает ErrSchemaMismatch, замену выбирает вызывающий.
func NodeToBlock(node NativeNode, r *schema.Registry, opts ...Option) (edtypes.Block, error) {
	return newDecoder(r, nil, opts).block(node)
}

// DocToBlocks разбирает документ (doc или blockGroup). Узлы, которые не удалось
// разобрать, передаются в fallback (nil - отбрасываются) на любой глубине.
// Возвращаемая ошибка перечисляет все поглощенные проблемы.
func DocToBlocks(doc NativeNode, r *schema.Registry, fallback FallbackFunc, opts ...Option) ([]edtypes.Block, error) {
	if fallback == nil {
		fallback = func(NativeNode, error) (edtypes.Block, bool) { return edtypes.Block{}, false }
	}
	d := newDecoder(r, fallback, opts)

	var blocks []edtypes.Block
	switch doc.NodeType() {
	case NodeBlockGroup:
		blocks, _ = d.group(doc)
	case NodeDoc:
		for _, g := range doc.NodeChildren() {
			if g.NodeType() != NodeBlockGroup {
				d.errs = append(d.errs, &schema.MismatchError{Kind: schema.KindBlock, Name: g.NodeType()})
				continue
			}
			res, _ := d.group(g)
			blocks = append(blocks, res...)
		}
	default:
		return nil, fmt.Errorf("%w: unexpected root node %q", schema.ErrMarkupParse, doc.NodeType())
	}
	return blocks, errors.Join(d.errs...)
}

type decoder struct {
	r *schema.Registry
	// nil - строгий режим: первая ошибка прерывает разбор
	fallback FallbackFunc
	errs     []error
	log      *slog.Logger
}

func (d *decoder) block(node NativeNode) (edtypes.Block, error) {
	var b edtypes.Block
	content := node
	var group NativeNode
	if node.NodeType() == NodeBlockContainer {
		b.ID = getAttrString(node.NodeAttrs(), attrID)
		content = contentNode(node)
		group = childOfType(node, NodeBlockGroup)
	}
	if content == nil {
		return edtypes.Block{}, fmt.Errorf("block %q: %w: empty block container", b.ID, schema.ErrSchemaMismatch)
	}

	spec, err := d.r.Block(content.NodeType())
	if err != nil {
		return edtypes.Block{}, err
	}
	b.Type = spec.Name
	b.Props = d.parseProps(spec.Props, content.NodeAttrs())

	switch spec.Content {
	case schema.ContentInline:
		b.Content, err = d.inline(content.NodeChildren())
	case schema.ContentTable:
		b.Table, err = d.table(content)
	}
	if err != nil {
		return edtypes.Block{}, fmt.Errorf("block %q: %w", b.ID, err)
	}

	if group != nil && len(group.NodeChildren()) > 0 {
		if !spec.AllowsChildren() {
			return edtypes.Block{}, fmt.Errorf("block %q of type %q: %w: children on non-container", b.ID, b.Type, schema.ErrSchemaMismatch)
		}
		b.Children, err = d.group(group)
		if err != nil {
			return edtypes.Block{}, err
		}
	}
	return b, nil
}

func (d *decoder) group(group NativeNode) ([]edtypes.Block, error) {
	children := group.NodeChildren()
	if len(children) == 0 {
		return nil, nil
	}
	res := make([]edtypes.Block, 0, len(children))
	for _, c := range children {
		b, err := d.block(c)
		if err == nil {
			res = append(res, b)
			continue
		}
		if d.fallback == nil {
			return nil, err
		}

		d.errs = append(d.errs, err)
		fb, ok := d.fallback(c, err)
		if !ok {
			continue
		}
		if c.NodeType() == NodeBlockContainer {
			if inner := childOfType(c, NodeBlockGroup); inner != nil {
				if spec, err := d.r.Block(fb.Type); err == nil && spec.AllowsChildren() {
					fb.Children, _ = d.group(inner)
				}
			}
		}
		res = append(res, fb)
	}
	return res, nil
}

// inline собирает inline-содержимое: соседние текстовые узлы с одинаковой
// ссылкой объединяются в одну ссылку, одинаковые наборы марок - в один фрагмент.
func (d *decoder) inline(nodes []NativeNode) ([]edtypes.InlineContent, error) {
	var res []edtypes.InlineContent
	lastHref := ""
	for _, n := range nodes {
		if n.NodeType() == NodeText {
			styles, href, err := d.marks(n.NodeMarks())
			if err != nil {
				return nil, err
			}
			run := edtypes.Text(n.NodeText(), styles)
			switch {
			case href == "":
				res = append(res, run)
			case href == lastHref:
				last := &res[len(res)-1]
				last.Content = append(last.Content, run)
			default:
				if _, err := d.r.Inline(edtypes.InlineLink); err != nil {
					return nil, err
				}
				res = append(res, edtypes.Link(href, run))
			}
			lastHref = href
			continue
		}

		lastHref = ""
		spec, err := d.r.Inline(n.NodeType())
		if err != nil {
			return nil, err
		}
		item := edtypes.InlineContent{Type: spec.Name, Props: d.parseProps(spec.Props, n.NodeAttrs())}
		for _, c := range n.NodeChildren() {
			styles, _, err := d.marks(c.NodeMarks())
			if err != nil {
				return nil, err
			}
			item.Content = append(item.Content, edtypes.Text(c.NodeText(), styles))
		}
		item.Content = edtypes.MergeText(item.Content)
		res = append(res, item)
	}
	return edtypes.MergeText(res), nil
}

func (d *decoder) marks(marks []NativeMark) (edtypes.Styles, string, error) {
	var styles edtypes.Styles
	href := ""
	for _, m := range marks {
		if m.MarkType() == MarkLink {
			href = getAttrString(m.MarkAttrs(), attrHref)
			continue
		}
		spec, err := d.r.Style(m.MarkType())
		if err != nil {
			return nil, "", err
		}
		if styles == nil {
			styles = make(edtypes.Styles)
		}
		if spec.Value == schema.PropString {
			s := getAttrString(m.MarkAttrs(), attrStringValue)
			if s == "" {
				continue
			}
			styles[spec.Name] = s
		} else {
			styles[spec.Name] = true
		}
	}
	if len(styles) == 0 {
		styles = nil
	}
	return styles, href, nil
}

func (d *decoder) table(node NativeNode) (*edtypes.TableContent, error) {
	rows := node.NodeChildren()
	if len(rows) == 0 {
		return nil, nil
	}
	table := &edtypes.TableContent{Rows: make([]edtypes.TableRow, 0, len(rows))}
	for _, row := range rows {
		if row.NodeType() != NodeTableRow {
			return nil, &schema.MismatchError{Kind: schema.KindBlock, Name: row.NodeType()}
		}
		cells := make([][]edtypes.InlineContent, 0, len(row.NodeChildren()))
		for _, cell := range row.NodeChildren() {
			var nodes []NativeNode
			for _, c := range cell.NodeChildren() {
				if c.NodeType() == NodeTableParagraph {
					nodes = append(nodes, c.NodeChildren()...)
				} else {
					nodes = append(nodes, c)
				}
			}
			content, err := d.inline(nodes)
			if err != nil {
				return nil, err
			}
			cells = append(cells, content)
		}
		table.Rows = append(table.Rows, edtypes.TableRow{Cells: cells})
	}
	return table, nil
}

func (d *decoder) parseProps(ps schema.PropSchema, attrs map[string]any) edtypes.Props {
	props := make(edtypes.Props, len(ps))
	for name, spec := range ps {
		v, err := spec.Parse(attrs[name])
		if err != nil {
			d.log.Debug("Prop value out of domain, using default", "prop", name, "value", attrs[name])
		}
		props[name] = v
	}
	if len(props) == 0 {
		return nil
	}
	return props
}
