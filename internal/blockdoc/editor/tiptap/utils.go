package tiptap

import (
	"strings"

	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/edtypes"
	"github.com/aisa-it/blockdoc/internal/blockdoc/schema"
)

// getAttrString безопасно извлекает строковый атрибут из map.
func getAttrString(attrs map[string]any, key string) string {
	if attrs == nil {
		return ""
	}
	str, _ := attrs[key].(string)
	return str
}

// childOfType возвращает первый дочерний узел указанного типа.
func childOfType(node NativeNode, typ string) NativeNode {
	for _, c := range node.NodeChildren() {
		if c.NodeType() == typ {
			return c
		}
	}
	return nil
}

// contentNode возвращает узел типа блока внутри blockContainer.
func contentNode(container NativeNode) NativeNode {
	for _, c := range container.NodeChildren() {
		if c.NodeType() != NodeBlockGroup {
			return c
		}
	}
	return nil
}

// TextContent возвращает текст всех текстовых узлов поддерева.
func TextContent(node NativeNode) string {
	if node == nil {
		return ""
	}
	if node.NodeType() == NodeText {
		return node.NodeText()
	}
	var sb strings.Builder
	for _, c := range node.NodeChildren() {
		if c.NodeType() == NodeBlockGroup {
			continue
		}
		sb.WriteString(TextContent(c))
	}
	return sb.String()
}

// TextFallback заменяет нераспознанный blockContainer блоком типа
// schema.FallbackType с текстом узла. Вложенные блоки разбираются отдельно.
func TextFallback(r *schema.Registry) FallbackFunc {
	return func(container NativeNode, _ error) (edtypes.Block, bool) {
		spec, ok := r.FallbackType()
		if !ok {
			return edtypes.Block{}, false
		}
		b := edtypes.Block{Type: spec.Name}
		if container.NodeType() == NodeBlockContainer {
			b.ID = getAttrString(container.NodeAttrs(), attrID)
			container = contentNode(container)
		}
		b.Props, _ = schema.NormalizeProps(spec.Props, nil)
		b.Content = edtypes.MergeText([]edtypes.InlineContent{edtypes.Text(TextContent(container), nil)})
		return b, true
	}
}
