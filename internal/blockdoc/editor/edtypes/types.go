// Пакет edtypes описывает блочную модель документа: блоки, inline-содержимое,
// стили и табличное содержимое. Модель не содержит поведения, кроме
// глубокого копирования и слияния соседних текстовых фрагментов.
package edtypes

import (
	"encoding/json"
	"maps"
	"slices"
)

// Типы inline-содержимого, известные модели без схемы.
const (
	InlineText = "text"
	InlineLink = "link"
)

// Props - значения свойств блока или inline-элемента.
// Допустимые значения: string, bool, int (целые числа) и float64.
type Props map[string]any

// Styles - активные стили текстового фрагмента.
// Булевы стили хранят true, строковые - значение.
type Styles map[string]any

type Document struct {
	Blocks []Block `json:"blocks"`
}

// Block - типизированный узел документа.
type Block struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Props    Props           `json:"props,omitempty"`
	Content  []InlineContent `json:"content,omitempty"`
	Table    *TableContent   `json:"table,omitempty"`
	Children []Block         `json:"children,omitempty"`
}

// InlineContent - элемент inline-содержимого.
// Для Type == "text" это текстовый фрагмент (Text + Styles),
// для "link" - ссылка Href с текстовыми фрагментами в Content,
// для пользовательских типов - Props и текстовые фрагменты в Content.
type InlineContent struct {
	Type    string          `json:"type"`
	Text    string          `json:"text,omitempty"`
	Styles  Styles          `json:"styles,omitempty"`
	Href    string          `json:"href,omitempty"`
	Props   Props           `json:"props,omitempty"`
	Content []InlineContent `json:"content,omitempty"`
}

type TableContent struct {
	Rows []TableRow `json:"rows"`
}

type TableRow struct {
	Cells [][]InlineContent `json:"cells"`
}

// Text создает текстовый фрагмент.
func Text(text string, styles Styles) InlineContent {
	return InlineContent{Type: InlineText, Text: text, Styles: styles}
}

// Link создает ссылку с текстовыми фрагментами.
func Link(href string, content ...InlineContent) InlineContent {
	return InlineContent{Type: InlineLink, Href: href, Content: content}
}

// IsText сообщает, является ли элемент текстовым фрагментом.
func (ic InlineContent) IsText() bool {
	return ic.Type == InlineText
}

// PlainText возвращает видимый текст элемента без стилей.
func (ic InlineContent) PlainText() string {
	if ic.IsText() {
		return ic.Text
	}
	return PlainText(ic.Content)
}

// PlainText возвращает видимый текст последовательности inline-элементов.
func PlainText(content []InlineContent) string {
	var res []byte
	for _, c := range content {
		res = append(res, c.PlainText()...)
	}
	return string(res)
}

// PlainText возвращает видимый текст блока, включая ячейки таблицы.
func (b Block) PlainText() string {
	if b.Table != nil {
		var res []byte
		for _, row := range b.Table.Rows {
			for i, cell := range row.Cells {
				if i > 0 {
					res = append(res, ' ')
				}
				res = append(res, PlainText(cell)...)
			}
			res = append(res, '\n')
		}
		return string(res)
	}
	return PlainText(b.Content)
}

// Clone возвращает глубокую копию блока.
func (b Block) Clone() Block {
	res := Block{
		ID:    b.ID,
		Type:  b.Type,
		Props: b.Props.Clone(),
	}
	if b.Content != nil {
		res.Content = CloneInline(b.Content)
	}
	if b.Table != nil {
		res.Table = b.Table.Clone()
	}
	if b.Children != nil {
		res.Children = CloneBlocks(b.Children)
	}
	return res
}

// CloneBlocks возвращает глубокую копию списка блоков.
func CloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	res := make([]Block, len(blocks))
	for i, b := range blocks {
		res[i] = b.Clone()
	}
	return res
}

func (ic InlineContent) Clone() InlineContent {
	res := ic
	res.Styles = ic.Styles.Clone()
	res.Props = ic.Props.Clone()
	if ic.Content != nil {
		res.Content = CloneInline(ic.Content)
	}
	return res
}

func CloneInline(content []InlineContent) []InlineContent {
	if content == nil {
		return nil
	}
	res := make([]InlineContent, len(content))
	for i, c := range content {
		res[i] = c.Clone()
	}
	return res
}

func (t *TableContent) Clone() *TableContent {
	if t == nil {
		return nil
	}
	res := &TableContent{Rows: make([]TableRow, len(t.Rows))}
	for i, row := range t.Rows {
		cells := make([][]InlineContent, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = CloneInline(cell)
		}
		res.Rows[i] = TableRow{Cells: cells}
	}
	return res
}

func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

func (s Styles) Clone() Styles {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

// Keys возвращает имена стилей в порядке возрастания.
// Порядок используется везде, где стили превращаются в марки или теги.
func (s Styles) Keys() []string {
	return slices.Sorted(maps.Keys(s))
}

// Equal сравнивает наборы стилей без учета порядка.
func (s Styles) Equal(other Styles) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// MergeText склеивает соседние текстовые фрагменты с одинаковыми стилями
// и отбрасывает пустые фрагменты. Пустой результат - nil.
func MergeText(content []InlineContent) []InlineContent {
	res := make([]InlineContent, 0, len(content))
	for _, c := range content {
		if c.IsText() && c.Text == "" {
			continue
		}
		if !c.IsText() && c.Content != nil {
			c.Content = MergeText(c.Content)
		}
		if n := len(res); n > 0 && c.IsText() && res[n-1].IsText() && res[n-1].Styles.Equal(c.Styles) {
			res[n-1].Text += c.Text
			continue
		}
		res = append(res, c)
	}
	if len(res) == 0 {
		return nil
	}
	return res
}

// MarshalJSON сериализует документ как массив блоков.
func (d Document) MarshalJSON() ([]byte, error) {
	if d.Blocks == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d.Blocks)
}

// UnmarshalJSON принимает как массив блоков, так и объект {"blocks": [...]}.
func (d *Document) UnmarshalJSON(data []byte) error {
	var blocks []Block
	if err := json.Unmarshal(data, &blocks); err == nil {
		d.Blocks = blocks
		return nil
	}

	var raw struct {
		Blocks []Block `json:"blocks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Blocks = raw.Blocks
	return nil
}
