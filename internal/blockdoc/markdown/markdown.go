// Пакет markdown преобразует блочный документ в Markdown и обратно.
//
// Экспорт: внешний HTML projector -> очистка от оформления редактора (goquery)
// -> html-to-markdown (CommonMark + GFM-таблицы, зачеркивание, автоссылки,
// списки задач). Импорт: goldmark -> HTML -> editor.ParseHTML.
//
// Гарантии круговой конвертации несимметричны:
//   - export(import(md)) не меняет Markdown, в котором есть только конструкции
//     с синтаксисом Markdown (абзацы, заголовки, списки, выделение, таблицы, код);
//   - import(export(blocks)) теряет блоки и стили без представления в Markdown:
//     пользовательские блоки становятся абзацами с их текстом, подчеркивание
//     пропадает, свойства без синтаксиса (цвета, выравнивание, ширина изображения)
//     возвращаются значениями по умолчанию. Стили без тега (textColor,
//     backgroundColor) переносятся как встроенный HTML.
package markdown

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/aisa-it/blockdoc/internal/blockdoc/editor"
	"github.com/aisa-it/blockdoc/internal/blockdoc/schema"
)

// Расширения Markdown.
const (
	ExtTable         = "table"
	ExtStrikethrough = "strikethrough"
	ExtAutolink      = "autolink"
	ExtTaskList      = "tasklist"
)

// DefaultExtensions - расширения, включенные по умолчанию.
var DefaultExtensions = []string{ExtTable, ExtStrikethrough, ExtAutolink, ExtTaskList}

var goldmarkExtensions = map[string]goldmark.Extender{
	ExtTable:         extension.Table,
	ExtStrikethrough: extension.Strikethrough,
	ExtAutolink:      extension.Linkify,
	ExtTaskList:      extension.TaskList,
}

type Options struct {
	// Extensions - имена включенных расширений, nil - DefaultExtensions.
	Extensions []string

	// Handlers - обработчики экспорта по виду узла. Ключ - тип блока
	// (div[data-block-type]), тип inline-элемента (span[data-inline-type])
	// или имя тега.
	Handlers map[string]Handler

	// GoldmarkExtensions - дополнительные расширения разбора.
	GoldmarkExtensions []goldmark.Extender

	// Parse - параметры построения блоков при импорте.
	Parse editor.ParseOptions

	Logger *slog.Logger
}

// Codec - настроенная пара экспорт/импорт. Не имеет изменяемого состояния
// и может использоваться из нескольких горутин.
type Codec struct {
	r    *schema.Registry
	opts Options
	log  *slog.Logger

	exts []string
	conv *converter.Converter
	md   goldmark.Markdown
}

// New создает Codec для схемы r. Карта Handlers и списки копируются.
func New(r *schema.Registry, opts Options) *Codec {
	c := &Codec{r: r, log: opts.Logger}
	if c.log == nil {
		c.log = slog.Default()
	}

	c.exts = normalizeExtensions(opts.Extensions)
	opts.Extensions = slices.Clone(c.exts)
	opts.GoldmarkExtensions = slices.Clone(opts.GoldmarkExtensions)
	handlers := make(map[string]Handler, len(opts.Handlers))
	for k, h := range opts.Handlers {
		if h != nil {
			handlers[k] = h
		}
	}
	opts.Handlers = handlers
	if opts.Parse.Logger == nil {
		opts.Parse.Logger = c.log
	}
	c.opts = opts

	c.conv = c.newConverter()
	c.md = c.newGoldmark()
	return c
}

func (c *Codec) enabled(ext string) bool {
	return slices.Contains(c.exts, ext)
}

func normalizeExtensions(names []string) []string {
	if names == nil {
		return slices.Clone(DefaultExtensions)
	}
	res := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "linkify" {
			name = ExtAutolink
		}
		if _, ok := goldmarkExtensions[name]; !ok || slices.Contains(res, name) {
			continue
		}
		res = append(res, name)
	}
	return res
}

func (c *Codec) newConverter() *converter.Converter {
	plugins := []converter.Plugin{
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	}
	if c.enabled(ExtStrikethrough) {
		plugins = append(plugins, strikethrough.NewStrikethroughPlugin())
	}
	conv := converter.NewConverter(converter.WithPlugins(plugins...))
	c.registerHandlers(conv)
	return conv
}

func (c *Codec) newGoldmark() goldmark.Markdown {
	var exts []goldmark.Extender
	for _, name := range c.exts {
		exts = append(exts, goldmarkExtensions[name])
	}
	exts = append(exts, c.opts.GoldmarkExtensions...)

	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}
