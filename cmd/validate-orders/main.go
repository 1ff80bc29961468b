package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rknpizza/counterboard/internal/ports"
	"github.com/rknpizza/counterboard/pkg/validate"
)

// CLI-приложение для валидации фида заказов.
func main() {
	inputPath := flag.String("in", "", "path to input (.json, .jsonl or a directory). If empty, reads from stdin.")
	formatStr := flag.String("format", "auto", "input format: auto|json|jsonl")
	flag.Parse()

	ctx := context.Background()
	orderValidator := validate.NewOrderValidator()

	format := validate.InputFormat(*formatStr)

	// stdin вариант: считаем, что jsonl
	if *inputPath == "" {
		if format == validate.FormatAuto {
			format = validate.FormatJSONL
		}
		summary, err := validate.ValidateFile(ctx, orderValidator, "/dev/stdin", format, os.Stdout)
		report(summary, err)
		return
	}

	info, err := os.Stat(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation: %v\n", err)
		os.Exit(1)
	}

	if info.IsDir() {
		validateDir(ctx, orderValidator, *inputPath, format)
		return
	}

	summary, err := validate.ValidateFile(ctx, orderValidator, *inputPath, format, os.Stdout)
	report(summary, err)
}

// validateDir — прогоняет все *.json/*.jsonl каталога; выходит с ошибкой,
// если хотя бы один файл невалиден.
func validateDir(ctx context.Context, validator ports.OrderValidator, dir string, format validate.InputFormat) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation: %v\n", err)
		os.Exit(1)
	}

	failed := false
	checked := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".json" && ext != ".jsonl" {
			continue
		}
		checked++
		path := filepath.Join(dir, e.Name())
		summary, err := validate.ValidateFile(ctx, validator, path, format, os.Stdout)
		if err != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "%s: %v (%s)\n", path, err, summary)
			continue
		}
		fmt.Fprintf(os.Stderr, "%s: ok (%s)\n", path, summary)
	}

	if checked == 0 {
		fmt.Fprintf(os.Stderr, "validation: no .json/.jsonl files in %s\n", dir)
		os.Exit(1)
	}
	if failed {
		os.Exit(1)
	}
}

func report(summary string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation: %v (%s)\n", err, summary)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "validation ok (%s)\n", summary)
}
