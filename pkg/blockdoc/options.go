package blockdoc

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/aisa-it/blockdoc/internal/blockdoc/editor"
	"github.com/aisa-it/blockdoc/internal/blockdoc/markdown"
)

// Option настраивает одну конвертацию.
type Option func(*options)

type options struct {
	newID        func() string
	sanitize     bool
	compact      bool
	mdExtensions []string
	mdHandlers   map[string]markdown.Handler
	logger       *slog.Logger
}

func newOptions(opts []Option) options {
	o := options{newID: editor.NewID}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// WithIDGenerator задает генератор id блоков, созданных при импорте.
func WithIDGenerator(f func() string) Option {
	return func(o *options) {
		if f != nil {
			o.newID = f
		}
	}
}

// WithSanitize очищает импортируемый HTML политикой bluemonday.
func WithSanitize(on bool) Option {
	return func(o *options) { o.sanitize = on }
}

// WithCompactHTML минифицирует результат BlocksToHTML. Внутренняя разметка
// не минифицируется: пробелы в тексте блоков значимы.
func WithCompactHTML(on bool) Option {
	return func(o *options) { o.compact = on }
}

// WithMarkdownExtensions задает расширения Markdown (table, strikethrough,
// autolink, tasklist). Пустой список отключает все расширения.
func WithMarkdownExtensions(names ...string) Option {
	return func(o *options) {
		o.mdExtensions = slices.Clone(names)
		if o.mdExtensions == nil {
			o.mdExtensions = []string{}
		}
	}
}

// WithMarkdownHandler добавляет обработчик экспорта в Markdown для типа блока,
// типа inline-элемента или тега.
func WithMarkdownHandler(name string, h MarkdownHandler) Option {
	return func(o *options) {
		o.mdHandlers = maps.Clone(o.mdHandlers)
		if o.mdHandlers == nil {
			o.mdHandlers = make(map[string]markdown.Handler)
		}
		o.mdHandlers[name] = h
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func (o options) parse() editor.ParseOptions {
	return editor.ParseOptions{NewID: o.newID, Sanitize: o.sanitize, Logger: o.logger}
}

func (o options) markdown() markdown.Options {
	return markdown.Options{
		Extensions: o.mdExtensions,
		Handlers:   o.mdHandlers,
		Parse:      o.parse(),
		Logger:     o.logger,
	}
}
