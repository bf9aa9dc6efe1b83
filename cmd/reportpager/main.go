package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/gompdf/reportpager"
	"github.com/gompdf/reportpager/logging"
)

func main() {
	var (
		inputFile  string
		configFile string
		outputFile string
		logo       string
		measure    bool
		verbose    bool
	)

	flag.StringVar(&inputFile, "input", "", "Input row document (YAML or JSON), path or URL")
	flag.StringVar(&configFile, "config", "", "Options file (YAML)")
	flag.StringVar(&outputFile, "output", "", "Output PDF file path")
	flag.StringVar(&logo, "logo", "", "Logo image path or URL, overrides the document's logo")
	flag.BoolVar(&measure, "measure", false, "Measure rows with PDF font metrics instead of estimating")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()

	if inputFile == "" {
		fmt.Fprintln(os.Stderr, "Error: input file is required")
		flag.Usage()
		os.Exit(1)
	}

	if outputFile == "" {
		base := inputFile
		if i := strings.LastIndex(base, "/"); i >= 0 {
			base = base[i+1:]
		}
		outputFile = strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf"
	}

	opts := reportpager.DefaultOptions()
	if configFile != "" {
		var err error
		if opts, err = reportpager.LoadOptionsFile(configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading options: %v\n", err)
			os.Exit(1)
		}
	}
	if verbose {
		opts.Debug = true
	}

	level := slog.LevelWarn
	if opts.Debug {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, reportpager.NewWithOptions(opts), inputFile, outputFile, logo, measure); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, p *reportpager.Paginator, inputFile, outputFile, logo string, measure bool) error {
	doc, err := p.Loader().LoadDocument(ctx, inputFile)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	p = p.ForDocument(inputFile)

	result, err := p.PaginateDocument(ctx, doc, measure)
	if err != nil {
		return err
	}
	if err := p.RenderToFile(ctx, result, doc, logo, outputFile); err != nil {
		return err
	}

	fmt.Print(result.Summary())
	fmt.Printf("Wrote %d pages to %s\n", result.TotalPages(), outputFile)
	if n := len(result.Overflows()); n > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d page(s) overflow their tolerance\n", n)
	}
	return nil
}
