package tiptap

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/edtypes"
	"github.com/aisa-it/blockdoc/internal/blockdoc/schema"
)

// Serialize сериализует дерево узлов в TipTap JSON.
func Serialize(doc *TipTapNode) ([]byte, error) {
	if doc == nil {
		doc = emptyDoc()
	}
	return json.Marshal(doc)
}

func emptyDoc() *TipTapNode {
	return &TipTapNode{
		Type:    NodeDoc,
		Content: []TipTapNode{{Type: NodeBlockGroup}},
	}
}

// BlocksToDoc строит корневой узел doc из списка блоков.
// Блоки, которые не удалось преобразовать, пропускаются, ошибки возвращаются вместе.
func BlocksToDoc(blocks []edtypes.Block, r *schema.Registry) (*TipTapNode, error) {
	group, errs := blocksToGroup(blocks, r, false)
	doc := &TipTapNode{Type: NodeDoc, Content: []TipTapNode{*group}}
	return doc, errors.Join(errs...)
}

// BlockToNode преобразует блок в узел blockContainer.
// Блок неизвестного типа, неизвестный стиль или inline-тип дают ошибку ErrSchemaMismatch.
func BlockToNode(b edtypes.Block, r *schema.Registry) (*TipTapNode, error) {
	spec, err := r.Block(b.Type)
	if err != nil {
		return nil, err
	}

	node := &TipTapNode{
		Type: b.Type,
		// свойства пишутся в каноническом виде, значения вне домена заменяются значением по умолчанию
		Attrs: serializeProps(spec.Props, b.Props),
	}

	switch spec.Content {
	case schema.ContentInline:
		node.Content, err = serializeInline(b.Content, r)
	case schema.ContentTable:
		node.Content, err = serializeTable(b.Table, r)
	}
	if err != nil {
		return nil, fmt.Errorf("block %q: %w", b.ID, err)
	}

	container := &TipTapNode{
		Type:    NodeBlockContainer,
		Attrs:   map[string]interface{}{attrID: b.ID},
		Content: []TipTapNode{*node},
	}

	if len(b.Children) > 0 {
		if !spec.AllowsChildren() {
			return nil, fmt.Errorf("block %q of type %q: %w: children on non-container", b.ID, b.Type, schema.ErrSchemaMismatch)
		}
		group, errs := blocksToGroup(b.Children, r, true)
		if len(errs) > 0 {
			return nil, errs[0]
		}
		container.Content = append(container.Content, *group)
	}

	return container, nil
}

func blocksToGroup(blocks []edtypes.Block, r *schema.Registry, strict bool) (*TipTapNode, []error) {
	group := &TipTapNode{Type: NodeBlockGroup}
	var errs []error
	for _, b := range blocks {
		node, err := BlockToNode(b, r)
		if err != nil {
			errs = append(errs, err)
			if strict {
				return nil, errs
			}
			continue
		}
		group.Content = append(group.Content, *node)
	}
	return group, errs
}

func serializeProps(ps schema.PropSchema, props edtypes.Props) map[string]interface{} {
	if len(ps) == 0 {
		return nil
	}
	attrs := make(map[string]interface{}, len(ps))
	for _, name := range ps.Names() {
		v, _ := ps[name].Parse(props[name])
		attrs[name] = v
	}
	return attrs
}

// serializeInline преобразует inline-содержимое в текстовые узлы с марками.
// Пользовательские inline-типы становятся отдельными узлами.
func serializeInline(content []edtypes.InlineContent, r *schema.Registry) ([]TipTapNode, error) {
	var nodes []TipTapNode
	for _, c := range content {
		switch {
		case c.IsText():
			node, err := serializeText(c.Text, c.Styles, "", r)
			if err != nil {
				return nil, err
			}
			if node != nil {
				nodes = append(nodes, *node)
			}
		case c.Type == edtypes.InlineLink:
			if _, err := r.Inline(c.Type); err != nil {
				return nil, err
			}
			for _, run := range c.Content {
				node, err := serializeText(run.PlainText(), run.Styles, c.Href, r)
				if err != nil {
					return nil, err
				}
				if node != nil {
					nodes = append(nodes, *node)
				}
			}
		default:
			spec, err := r.Inline(c.Type)
			if err != nil {
				return nil, err
			}
			node := TipTapNode{Type: c.Type, Attrs: serializeProps(spec.Props, c.Props)}
			for _, run := range c.Content {
				text, err := serializeText(run.PlainText(), run.Styles, "", r)
				if err != nil {
					return nil, err
				}
				if text != nil {
					node.Content = append(node.Content, *text)
				}
			}
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// serializeText создает текстовый узел: одна марка на стиль в порядке имен стилей,
// марка ссылки последней.
func serializeText(text string, styles edtypes.Styles, href string, r *schema.Registry) (*TipTapNode, error) {
	if text == "" {
		return nil, nil
	}
	node := &TipTapNode{Type: NodeText, Text: text}
	for _, name := range styles.Keys() {
		spec, err := r.Style(name)
		if err != nil {
			return nil, err
		}
		mark := TipTapMark{Type: name}
		if spec.Value == schema.PropString {
			s, ok := styles[name].(string)
			if !ok || s == "" {
				continue
			}
			mark.Attrs = map[string]interface{}{attrStringValue: s}
		} else if b, ok := styles[name].(bool); ok && !b {
			continue
		}
		node.Marks = append(node.Marks, mark)
	}
	if href != "" {
		node.Marks = append(node.Marks, TipTapMark{
			Type:  MarkLink,
			Attrs: map[string]interface{}{attrHref: href},
		})
	}
	return node, nil
}

// serializeTable: tableRow > tableCell > tableParagraph > text.
func serializeTable(table *edtypes.TableContent, r *schema.Registry) ([]TipTapNode, error) {
	if table == nil {
		return nil, nil
	}
	rows := make([]TipTapNode, 0, len(table.Rows))
	for _, row := range table.Rows {
		rowNode := TipTapNode{Type: NodeTableRow, Content: make([]TipTapNode, 0, len(row.Cells))}
		for _, cell := range row.Cells {
			content, err := serializeInline(cell, r)
			if err != nil {
				return nil, err
			}
			rowNode.Content = append(rowNode.Content, TipTapNode{
				Type:    NodeTableCell,
				Content: []TipTapNode{{Type: NodeTableParagraph, Content: content}},
			})
		}
		rows = append(rows, rowNode)
	}
	return rows, nil
}
