// Конвертация файлов между Markdown, HTML, внутренней разметкой блоков
// и JSON документа редактора.
//
// Формат входа определяется по расширению (.md, .html, .blocks.html, .json),
// формат выхода задает -to. С -check результат переводится в формат -to
// повторно и различия между проходами выводятся в консоль.
//
// Пример запуска: go run ./cmd/blockdoc -to json -out build docs/*.md
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/aisa-it/blockdoc/internal/blockdoc/config"
	stack_error "github.com/aisa-it/blockdoc/internal/blockdoc/stack-error"
	"github.com/aisa-it/blockdoc/pkg/blockdoc"
)

func main() {
	envFile := flag.String("env", ".env", "Path to environment file")
	to := flag.String("to", "json", "Output format: md, html, internal, json, blocks")
	outDir := flag.String("out", "", "Output directory, next to input by default")
	schemaFile := flag.String("schema", "", "Path to YAML schema, overrides BLOCKDOC_SCHEMA")
	check := flag.Bool("check", false, "Check round trip stability instead of writing files")
	workers := flag.Int("workers", 0, "Parallel conversions, overrides BLOCKDOC_WORKERS")
	sanitize := flag.Bool("sanitize", false, "Sanitize input HTML")
	compact := flag.Bool("compact", false, "Minify output HTML")
	trace := flag.Bool("trace", false, "Verbose logs")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		slog.Debug("Env file not loaded", "file", *envFile, "err", err)
	}

	cfg := config.ReadConfig()
	if *trace || cfg.Trace {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	if *schemaFile != "" {
		cfg.SchemaPath = *schemaFile
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	target, err := parseFormat(*to)
	if err != nil {
		slog.Error("Bad output format", "err", err)
		os.Exit(2)
	}
	if flag.NArg() == 0 {
		slog.Error("No input files")
		os.Exit(2)
	}

	s, err := loadSchema(cfg.SchemaPath)
	if err != nil {
		stack_error.LogError(nil, "Load schema", err)
		os.Exit(1)
	}

	opts := []blockdoc.Option{
		blockdoc.WithSanitize(*sanitize || cfg.Sanitize),
		blockdoc.WithCompactHTML(*compact || cfg.CompactHTML),
		blockdoc.WithLogger(slog.Default()),
	}
	if cfg.MarkdownExtensions != nil {
		opts = append(opts, blockdoc.WithMarkdownExtensions(cfg.MarkdownExtensions...))
	}
	c := &converter{schema: s, opts: opts}

	var (
		failed   atomic.Int32
		unstable atomic.Int32
		outMu    sync.Mutex
	)

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for _, in := range flag.Args() {
		g.Go(func() error {
			var err error
			if *check {
				var stable bool
				stable, err = checkFile(c, in, target, func(diff string) {
					outMu.Lock()
					defer outMu.Unlock()
					fmt.Fprintf(color.Output, "%s\n%s\n", color.New(color.FgYellow).Sprint(in), diff)
				})
				if err == nil && !stable {
					unstable.Add(1)
				}
			} else {
				err = convertFile(c, in, *outDir, target)
			}
			if err != nil {
				failed.Add(1)
				stack_error.LogError(nil, "Convert file", err, "file", in)
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.Info("Done", "files", flag.NArg(), "failed", failed.Load(), "unstable", unstable.Load())
	if failed.Load() > 0 || unstable.Load() > 0 {
		os.Exit(1)
	}
}

func loadSchema(path string) (*blockdoc.Schema, error) {
	s := blockdoc.DefaultSchema()
	if path == "" {
		return s, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, stack_error.TrackErrorStack(err).AddContext("schema", path)
	}
	defer f.Close()

	s, err = blockdoc.LoadSchemaYAML(f, s)
	if err != nil {
		return nil, stack_error.TrackErrorStack(err).AddContext("schema", path)
	}
	slog.Info("Schema loaded", "path", path)
	return s, nil
}

func convertFile(c *converter, in, outDir string, to format) error {
	from, err := detectFormat(in)
	if err != nil {
		return stack_error.TrackErrorStack(err)
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return stack_error.TrackErrorStack(err)
	}

	out, err := c.convert(from, to, data)
	if err != nil {
		return stack_error.TrackErrorStack(err).AddContext("from", string(from)).AddContext("to", string(to))
	}

	path := outputPath(in, outDir, to)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return stack_error.TrackErrorStack(err).AddContext("out", path)
	}
	slog.Debug("Converted", "in", in, "out", path)
	return nil
}

// checkFile сообщает, совпадают ли два последовательных прохода конвертации.
// При расхождении report получает раскрашенный diff.
func checkFile(c *converter, in string, to format, report func(diff string)) (bool, error) {
	from, err := detectFormat(in)
	if err != nil {
		return false, stack_error.TrackErrorStack(err)
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return false, stack_error.TrackErrorStack(err)
	}

	first, second, err := c.roundTrip(from, to, data)
	if err != nil {
		return false, stack_error.TrackErrorStack(err).AddContext("from", string(from)).AddContext("to", string(to))
	}
	if first == second {
		return true, nil
	}
	report(colorDiff(first, second))
	return false, nil
}
