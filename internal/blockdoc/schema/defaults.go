package schema

import (
	"maps"
	"sync"
)

// Имена встроенных типов.
const (
	Paragraph        = "paragraph"
	Heading          = "heading"
	BulletListItem   = "bulletListItem"
	NumberedListItem = "numberedListItem"
	CheckListItem    = "checkListItem"
	CodeBlock        = "codeBlock"
	Image            = "image"
	Table            = "table"

	InlineText = "text"
	InlineLink = "link"

	StyleBold            = "bold"
	StyleItalic          = "italic"
	StyleUnderline       = "underline"
	StyleStrike          = "strike"
	StyleCode            = "code"
	StyleTextColor       = "textColor"
	StyleBackgroundColor = "backgroundColor"
)

// DefaultProps - свойства, общие для всех текстовых блоков.
var DefaultProps = PropSchema{
	"backgroundColor": {Type: PropString, Default: "default"},
	"textColor":       {Type: PropString, Default: "default"},
	"textAlignment":   {Type: PropString, Default: "left", Values: []any{"left", "center", "right", "justify"}},
}

func withDefaultProps(extra PropSchema) PropSchema {
	res := maps.Clone(DefaultProps)
	maps.Copy(res, extra)
	return res
}

// DefaultBlocks возвращает описания встроенных блоков.
func DefaultBlocks() []BlockSpec {
	return []BlockSpec{
		{Name: Paragraph, Props: withDefaultProps(nil), Content: ContentInline, Container: true},
		{
			Name: Heading,
			Props: withDefaultProps(PropSchema{
				"level": {Type: PropNumber, Default: 1, Values: []any{1, 2, 3, 4, 5, 6}},
			}),
			Content:   ContentInline,
			Container: true,
		},
		{Name: BulletListItem, Props: withDefaultProps(nil), Content: ContentInline, Container: true},
		{Name: NumberedListItem, Props: withDefaultProps(nil), Content: ContentInline, Container: true},
		{
			Name: CheckListItem,
			Props: withDefaultProps(PropSchema{
				"checked": {Type: PropBoolean, Default: false},
			}),
			Content:   ContentInline,
			Container: true,
		},
		{
			Name: CodeBlock,
			Props: PropSchema{
				"language": {Type: PropString, Default: "", Rule: "max=32"},
			},
			Content: ContentInline,
		},
		{
			Name: Image,
			Props: PropSchema{
				"backgroundColor": DefaultProps["backgroundColor"],
				"textAlignment":   DefaultProps["textAlignment"],
				"url":             {Type: PropString, Default: ""},
				"caption":         {Type: PropString, Default: ""},
				"previewWidth":    {Type: PropNumber, Default: 512, Rule: "min=1,max=4096"},
			},
			Content: ContentNone,
		},
		{
			Name: Table,
			Props: PropSchema{
				"backgroundColor": DefaultProps["backgroundColor"],
				"textColor":       DefaultProps["textColor"],
			},
			Content: ContentTable,
		},
	}
}

func DefaultInline() []InlineSpec {
	return []InlineSpec{
		{Name: InlineText, Content: ContentNone},
		{Name: InlineLink, Content: ContentInline},
	}
}

func DefaultStyles() []StyleSpec {
	return []StyleSpec{
		{Name: StyleBold, Value: PropBoolean, Tag: "strong"},
		{Name: StyleItalic, Value: PropBoolean, Tag: "em"},
		{Name: StyleUnderline, Value: PropBoolean, Tag: "u"},
		{Name: StyleStrike, Value: PropBoolean, Tag: "s"},
		{Name: StyleCode, Value: PropBoolean, Tag: "code"},
		{Name: StyleTextColor, Value: PropString},
		{Name: StyleBackgroundColor, Value: PropString},
	}
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := New(DefaultBlocks(), DefaultInline(), DefaultStyles())
	if err != nil {
		panic(err)
	}
	return r
})

// Default возвращает связанный реестр встроенных типов.
// Реестр общий и неизменяемый, для расширения используйте Extend.
func Default() *Registry {
	return defaultRegistry()
}
