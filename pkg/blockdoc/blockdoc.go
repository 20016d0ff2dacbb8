// Пакет blockdoc - публичный интерфейс конвертации блочных документов
// между блочным деревом, деревом узлов редактора (TipTap JSON), HTML и Markdown.
//
// Все функции синхронны и не меняют входные данные. Ошибку возвращает только
// отсутствующая или не связанная схема, остальные проблемы записываются
// в журнал и поглощаются.
package blockdoc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aisa-it/blockdoc/internal/blockdoc/editor"
	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/projector"
	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/tiptap"
	"github.com/aisa-it/blockdoc/internal/blockdoc/markdown"
	"github.com/aisa-it/blockdoc/internal/blockdoc/schema"
)

func checkSchema(s *Schema) error {
	if s == nil {
		return fmt.Errorf("%w: nil schema", schema.ErrSchemaNotLinked)
	}
	if !s.Linked() {
		return schema.ErrSchemaNotLinked
	}
	return nil
}

// BlocksToHTML строит переносимый семантический HTML.
func BlocksToHTML(blocks []Block, s *Schema, opts ...Option) (string, error) {
	return render(blocks, s, projector.ModeExternal, opts)
}

// BlocksToInternalHTML строит обратимую внутреннюю разметку: HTMLToBlocks
// восстанавливает из нее исходные блоки.
func BlocksToInternalHTML(blocks []Block, s *Schema, opts ...Option) (string, error) {
	return render(blocks, s, projector.ModeInternal, opts)
}

func render(blocks []Block, s *Schema, mode projector.Mode, opts []Option) (string, error) {
	if err := checkSchema(s); err != nil {
		return "", err
	}
	o := newOptions(opts)
	return projector.Render(blocks, s, projector.Options{
		Mode:    mode,
		Compact: o.compact,
		Logger:  o.logger,
	}), nil
}

// BlocksToMarkdown экспортирует блоки в Markdown.
func BlocksToMarkdown(blocks []Block, s *Schema, opts ...Option) (string, error) {
	if err := checkSchema(s); err != nil {
		return "", err
	}
	o := newOptions(opts)
	return markdown.New(s, o.markdown()).Export(blocks), nil
}

// MarkdownToBlocks разбирает Markdown в блоки схемы s.
func MarkdownToBlocks(md string, s *Schema, opts ...Option) ([]Block, error) {
	if err := checkSchema(s); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	return markdown.New(s, o.markdown()).Import(md), nil
}

// HTMLToBlocks разбирает внутреннюю разметку или обычный HTML.
func HTMLToBlocks(markup string, s *Schema, opts ...Option) ([]Block, error) {
	if err := checkSchema(s); err != nil {
		return nil, err
	}
	if strings.TrimSpace(markup) == "" {
		return nil, nil
	}
	o := newOptions(opts)
	return editor.ParseHTMLString(markup, s, o.parse()), nil
}

// BlocksToNative строит документ редактора. Блоки неизвестных типов
// заменяются абзацем с их текстом, неизвестные стили отбрасываются.
func BlocksToNative(blocks []Block, s *Schema, opts ...Option) (*NativeNode, error) {
	if err := checkSchema(s); err != nil {
		return nil, err
	}
	o := newOptions(opts)

	degraded, issues := s.Degrade(blocks)
	for _, err := range issues {
		o.logger.Debug("Degrade block for native tree", "err", err)
	}
	doc, err := tiptap.BlocksToDoc(degraded, s)
	if err != nil {
		o.logger.Warn("Build native document", "err", err)
	}
	return doc, nil
}

// NativeToBlocks восстанавливает блоки из документа редактора. Нераспознанные
// узлы заменяются абзацем с их текстом.
func NativeToBlocks(doc *NativeNode, s *Schema, opts ...Option) ([]Block, error) {
	if err := checkSchema(s); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	o := newOptions(opts)

	blocks, err := tiptap.DocToBlocks(doc, s, tiptap.TextFallback(s), tiptap.WithLogger(o.logger))
	if err != nil {
		for _, e := range unjoin(err) {
			o.logger.Warn("Parse native node", "err", e)
		}
	}
	return blocks, nil
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// IsSchemaError сообщает, что ошибка связана со схемой: не найден тип
// или схема не готова к использованию.
func IsSchemaError(err error) bool {
	return errors.Is(err, schema.ErrSchemaMismatch) || errors.Is(err, schema.ErrSchemaNotLinked)
}
