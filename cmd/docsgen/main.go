// Генерация документации схемы блочного документа в формате Markdown:
// таблицы типов блоков, inline-элементов и стилей с их свойствами.
//
// Пример запуска: go run ./cmd/docsgen -schema custom.yaml -out schema.md
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/aisa-it/blockdoc/pkg/blockdoc"
)

func main() {
	schemaFile := flag.String("schema", "", "Path to YAML schema extending the default one")
	outputMd := flag.String("out", "schema.md", "Path to output md")
	flag.Parse()

	slog.Info("Generate schema docs", "schema", *schemaFile, "out", *outputMd)

	s := blockdoc.DefaultSchema()
	if *schemaFile != "" {
		f, err := os.Open(*schemaFile)
		if err != nil {
			slog.Error("Open schema", "err", err)
			os.Exit(1)
		}
		s, err = blockdoc.LoadSchemaYAML(f, s)
		f.Close()
		if err != nil {
			slog.Error("Load schema", "err", err)
			os.Exit(1)
		}
	}

	ff, err := os.Create(*outputMd)
	if err != nil {
		slog.Error("Create output", "err", err)
		os.Exit(1)
	}
	defer ff.Close()

	if err := writeDocs(ff, s); err != nil {
		slog.Error("Generate docs fail", "err", err)
		os.Exit(1)
	}
	slog.Info("Docs generated")
}
