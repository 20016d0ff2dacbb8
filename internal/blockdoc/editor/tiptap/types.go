// Пакет tiptap отображает блочную модель документа на дерево узлов редактора
// (JSON ProseMirror/TipTap) и обратно.
//
// Форма дерева:
//
//	doc
//	└── blockGroup
//	    └── blockContainer {id}
//	        ├── <тип блока> {свойства}  - inline-содержимое или строки таблицы
//	        └── blockGroup              - вложенные блоки
//
// Стили текста хранятся марками, отсортированными по имени стиля,
// ссылки - маркой link с атрибутом href.
package tiptap

// Служебные типы узлов и марок.
const (
	NodeDoc            = "doc"
	NodeBlockGroup     = "blockGroup"
	NodeBlockContainer = "blockContainer"
	NodeText           = "text"
	NodeTableRow       = "tableRow"
	NodeTableCell      = "tableCell"
	NodeTableParagraph = "tableParagraph"

	MarkLink = "link"

	attrID          = "id"
	attrHref        = "href"
	attrStringValue = "stringValue"
)

// NativeNode - read-only интерфейс узла дерева редактора.
// Адаптер читает дерево только через него и никогда его не меняет.
type NativeNode interface {
	NodeType() string
	NodeAttrs() map[string]any
	NodeMarks() []NativeMark
	NodeText() string
	NodeChildren() []NativeNode
}

type NativeMark interface {
	MarkType() string
	MarkAttrs() map[string]any
}

// TipTapNode представляет узел в дереве документа TipTap.
type TipTapNode struct {
	Type    string                 `json:"type"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Content []TipTapNode           `json:"content,omitempty"`
	Marks   []TipTapMark           `json:"marks,omitempty"`
	Text    string                 `json:"text,omitempty"`
}

// TipTapMark представляет форматирование текста (bold, textColor, link и т.д.).
type TipTapMark struct {
	Type  string                 `json:"type"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}

func (n *TipTapNode) NodeType() string          { return n.Type }
func (n *TipTapNode) NodeAttrs() map[string]any { return n.Attrs }
func (n *TipTapNode) NodeText() string          { return n.Text }

func (n *TipTapNode) NodeMarks() []NativeMark {
	if len(n.Marks) == 0 {
		return nil
	}
	res := make([]NativeMark, len(n.Marks))
	for i := range n.Marks {
		res[i] = &n.Marks[i]
	}
	return res
}

func (n *TipTapNode) NodeChildren() []NativeNode {
	if len(n.Content) == 0 {
		return nil
	}
	res := make([]NativeNode, len(n.Content))
	for i := range n.Content {
		res[i] = &n.Content[i]
	}
	return res
}

func (m *TipTapMark) MarkType() string          { return m.Type }
func (m *TipTapMark) MarkAttrs() map[string]any { return m.Attrs }
