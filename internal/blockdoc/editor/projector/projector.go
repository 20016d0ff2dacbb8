// Пакет projector строит HTML из блочного дерева в двух режимах.
//
// Внутренний режим (ModeInternal) полностью обратим: каждый блок обернут в
// элемент с data-block-id и data-block-type, свойства записаны в data-атрибуты,
// каждый стиль - отдельный span с data-style-type. Внешний режим (ModeExternal)
// дает переносимую разметку (p, h1-h6, ul/ol, table, pre) и используется для
// копирования и экспорта в Markdown.
package projector

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/edtypes"
	"github.com/aisa-it/blockdoc/internal/blockdoc/schema"
	"github.com/tdewolff/minify/v2"
	minhtml "github.com/tdewolff/minify/v2/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Mode int

const (
	ModeExternal Mode = iota
	ModeInternal
)

// Атрибуты и значения разметки внутреннего режима.
const (
	AttrNodeType   = "data-node-type"
	AttrBlockID    = "data-block-id"
	AttrBlockType  = "data-block-type"
	AttrStyleType  = "data-style-type"
	AttrValue      = "data-value"
	AttrInlineType = "data-inline-type"

	NodeBlockGroup     = "blockGroup"
	NodeBlockContainer = "blockContainer"
	NodeInlineContent  = "inlineContent"
	NodeTableContent   = "tableContent"
)

// StyleRenderer возвращает пустой элемент-обертку для стиля во внешнем режиме.
type StyleRenderer func(spec schema.StyleSpec, value any) *html.Node

// BlockRenderer возвращает элемент блока во внешнем режиме.
// inline - уже построенное inline-содержимое, вложенные блоки добавляет projector.
type BlockRenderer func(b edtypes.Block, inline []*html.Node) *html.Node

type Options struct {
	Mode           Mode
	StyleRenderers map[string]StyleRenderer
	BlockRenderers map[string]BlockRenderer
	// Compact минифицирует результат внешнего режима (закрывающие теги и кавычки
	// сохраняются). Внутренняя разметка не минифицируется: пробелы в ней значимы.
	Compact bool
	Logger  *slog.Logger
}

type projector struct {
	r    *schema.Registry
	opts Options
	log  *slog.Logger
}

// Render строит HTML документа. Никогда не завершается ошибкой:
// блоки без отображения во внешнем режиме выводятся обобщенным контейнером.
func Render(blocks []edtypes.Block, r *schema.Registry, opts Options) string {
	nodes := RenderNodes(blocks, r, opts)

	var sb strings.Builder
	for _, n := range nodes {
		if err := html.Render(&sb, n); err != nil {
			opts.logger().Error("Render html node", "err", err)
		}
	}
	out := sb.String()

	if opts.Compact && opts.Mode == ModeExternal {
		m := minify.New()
		m.Add("text/html", &minhtml.Minifier{KeepEndTags: true, KeepQuotes: true, KeepWhitespace: true})
		res, err := m.String("text/html", out)
		if err != nil {
			opts.logger().Warn("Minify html", "err", err)
			return out
		}
		return res
	}
	return out
}

// RenderNodes возвращает HTML-узлы верхнего уровня без сериализации.
func RenderNodes(blocks []edtypes.Block, r *schema.Registry, opts Options) []*html.Node {
	p := &projector{r: r, opts: opts, log: opts.logger()}
	if opts.Mode == ModeInternal {
		return []*html.Node{p.internalGroup(blocks)}
	}
	return p.externalBlocks(blocks)
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// PropAttr возвращает имя data-атрибута свойства: textAlignment -> data-text-alignment.
func PropAttr(name string) string {
	var sb strings.Builder
	sb.WriteString("data-")
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// activeStyles возвращает имена включенных стилей по возрастанию.
// false и пустая строка означают, что стиль не применен.
func activeStyles(s edtypes.Styles) []string {
	names := make([]string, 0, len(s))
	for _, name := range s.Keys() {
		switch v := s[name].(type) {
		case nil:
			continue
		case bool:
			if !v {
				continue
			}
		case string:
			if v == "" {
				continue
			}
		}
		names = append(names, name)
	}
	return names
}

func element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func appendAll(parent *html.Node, children []*html.Node) *html.Node {
	for _, c := range children {
		parent.AppendChild(c)
	}
	return parent
}

// formatValue форматирует значение свойства или стиля без схемы.
func formatValue(v any) string {
	return schema.PropSpec{}.Format(v)
}
