package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/aisa-it/blockdoc/pkg/blockdoc"
)

type format string

const (
	formatMarkdown format = "md"
	formatHTML     format = "html"
	formatInternal format = "internal"
	formatJSON     format = "json"
	// Блочная модель как есть: массив блоков или {"blocks": [...]}.
	formatBlocks format = "blocks"
)

func parseFormat(raw string) (format, error) {
	switch f := format(strings.ToLower(raw)); f {
	case formatMarkdown, formatHTML, formatInternal, formatJSON, formatBlocks:
		return f, nil
	case "markdown":
		return formatMarkdown, nil
	}
	return "", fmt.Errorf("unknown format %q", raw)
}

// detectFormat определяет формат файла по расширению.
func detectFormat(path string) (format, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".blocks.html"):
		return formatInternal, nil
	case strings.HasSuffix(lower, ".blocks.json"):
		return formatBlocks, nil
	case strings.HasSuffix(lower, ".md"), strings.HasSuffix(lower, ".markdown"):
		return formatMarkdown, nil
	case strings.HasSuffix(lower, ".html"), strings.HasSuffix(lower, ".htm"):
		return formatHTML, nil
	case strings.HasSuffix(lower, ".json"):
		return formatJSON, nil
	}
	return "", fmt.Errorf("unknown format of %q", path)
}

func (f format) ext() string {
	switch f {
	case formatInternal:
		return ".blocks.html"
	case formatBlocks:
		return ".blocks.json"
	}
	return "." + string(f)
}

// outputPath строит путь результата: имя входного файла с расширением формата
// в каталоге dir (пустой - рядом с входным).
func outputPath(in, dir string, f format) string {
	base := filepath.Base(in)
	lower := strings.ToLower(base)
	if suffix := ".blocks.html"; strings.HasSuffix(lower, suffix) {
		base = base[:len(base)-len(suffix)]
	} else if suffix := ".blocks.json"; strings.HasSuffix(lower, suffix) {
		base = base[:len(base)-len(suffix)]
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if dir == "" {
		dir = filepath.Dir(in)
	}

	out := filepath.Join(dir, base+f.ext())
	if out == filepath.Clean(in) {
		out = filepath.Join(dir, base+".out"+f.ext())
	}
	return out
}

type converter struct {
	schema *blockdoc.Schema
	opts   []blockdoc.Option
}

func (c *converter) decode(f format, data []byte) ([]blockdoc.Block, error) {
	switch f {
	case formatMarkdown:
		return blockdoc.MarkdownToBlocks(string(data), c.schema, c.opts...)
	case formatHTML, formatInternal:
		return blockdoc.HTMLToBlocks(string(data), c.schema, c.opts...)
	case formatJSON:
		doc, err := blockdoc.ParseNativeJSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", blockdoc.ErrMarkupParse, err)
		}
		return blockdoc.NativeToBlocks(doc, c.schema, c.opts...)
	case formatBlocks:
		var doc blockdoc.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", blockdoc.ErrMarkupParse, err)
		}
		blocks, issues := c.schema.Degrade(doc.Blocks)
		for _, e := range issues {
			slog.Warn("Degrade block", "err", e)
		}
		return blocks, nil
	}
	return nil, fmt.Errorf("%w: decode %q", blockdoc.ErrUnsupportedConversion, f)
}

func (c *converter) encode(f format, blocks []blockdoc.Block) ([]byte, error) {
	var (
		out string
		err error
	)
	switch f {
	case formatMarkdown:
		out, err = blockdoc.BlocksToMarkdown(blocks, c.schema, c.opts...)
	case formatHTML:
		out, err = blockdoc.BlocksToHTML(blocks, c.schema, c.opts...)
	case formatInternal:
		out, err = blockdoc.BlocksToInternalHTML(blocks, c.schema, c.opts...)
	case formatJSON:
		doc, err := blockdoc.BlocksToNative(blocks, c.schema, c.opts...)
		if err != nil {
			return nil, err
		}
		return blockdoc.SerializeNative(doc)
	case formatBlocks:
		return json.Marshal(blockdoc.Document{Blocks: blocks})
	default:
		return nil, fmt.Errorf("%w: encode %q", blockdoc.ErrUnsupportedConversion, f)
	}
	return []byte(out), err
}

func (c *converter) convert(from, to format, data []byte) ([]byte, error) {
	blocks, err := c.decode(from, data)
	if err != nil {
		return nil, err
	}
	return c.encode(to, blocks)
}

// roundTrip переводит документ в формат to и обратно дважды. Возвращает
// результаты первого и второго прохода: после одной нормализации
// они должны совпадать.
func (c *converter) roundTrip(from, to format, data []byte) (first, second string, err error) {
	out, err := c.convert(from, to, data)
	if err != nil {
		return "", "", err
	}
	again, err := c.convert(to, to, out)
	if err != nil {
		return "", "", err
	}
	return string(out), string(again), nil
}

var (
	deleted  = color.New(color.FgRed)
	inserted = color.New(color.FgGreen)
)

// colorDiff выводит различия строк: удаленное [-...-] красным,
// добавленное {+...+} зеленым.
func colorDiff(from, to string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(from, to, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			sb.WriteString(deleted.Sprint("[-" + d.Text + "-]"))
		case diffmatchpatch.DiffInsert:
			sb.WriteString(inserted.Sprint("{+" + d.Text + "+}"))
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		}
	}
	return sb.String()
}
