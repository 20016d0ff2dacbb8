package main

import (
	"fmt"
	"io"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/aisa-it/blockdoc/internal/blockdoc/schema"
)

func writeDocs(w io.Writer, s *schema.Registry) error {
	return md.NewMarkdown(w).
		H1("Схема документа").
		PlainText("Типы блоков, inline-элементов и стилей, известные схеме.").
		H2("Блоки").
		CustomTable(md.TableSet{
			Header: []string{"Тип", "Содержимое", "Вложенные блоки", "Свойства"},
			Rows:   blockRows(s),
		}, md.TableOptions{AutoWrapText: false}).
		H2("Inline-элементы").
		CustomTable(md.TableSet{
			Header: []string{"Тип", "Содержимое", "Свойства"},
			Rows:   inlineRows(s),
		}, md.TableOptions{AutoWrapText: false}).
		H2("Стили").
		CustomTable(md.TableSet{
			Header: []string{"Стиль", "Значение", "Тег"},
			Rows:   styleRows(s),
		}, md.TableOptions{AutoWrapText: false}).
		Build()
}

func blockRows(s *schema.Registry) [][]string {
	var rows [][]string
	for _, name := range s.Names(schema.KindBlock) {
		spec, err := s.Block(name)
		if err != nil {
			continue
		}
		children := "-"
		if spec.AllowsChildren() {
			children = "любые"
			if len(spec.ChildTypes) > 0 {
				children = strings.Join(spec.ChildTypes, ", ")
			}
		}
		rows = append(rows, []string{md.Bold(name), spec.Content.String(), children, propsCell(spec.Props)})
	}
	return rows
}

func inlineRows(s *schema.Registry) [][]string {
	var rows [][]string
	for _, name := range s.Names(schema.KindInline) {
		spec, err := s.Inline(name)
		if err != nil {
			continue
		}
		rows = append(rows, []string{md.Bold(name), spec.Content.String(), propsCell(spec.Props)})
	}
	return rows
}

func styleRows(s *schema.Registry) [][]string {
	var rows [][]string
	for _, name := range s.Names(schema.KindStyle) {
		spec, err := s.Style(name)
		if err != nil {
			continue
		}
		tag := "-"
		if spec.Tag != "" {
			tag = md.Code("<" + spec.Tag + ">")
		}
		rows = append(rows, []string{md.Bold(name), spec.Value.String(), tag})
	}
	return rows
}

// propsCell описывает свойства в одной ячейке: имя, тип, значение по умолчанию
// и допустимые значения.
func propsCell(ps schema.PropSchema) string {
	if len(ps) == 0 {
		return "-"
	}
	var parts []string
	for _, name := range ps.Names() {
		p := ps[name]
		s := fmt.Sprintf("%s %s = %s", md.Code(name), md.Italic(p.Type.String()), md.Code(p.Format(p.Default)))
		if len(p.Values) > 0 {
			values := make([]string, 0, len(p.Values))
			for _, v := range p.Values {
				values = append(values, p.Format(v))
			}
			s += " (" + strings.Join(values, ", ") + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "<br>")
}
