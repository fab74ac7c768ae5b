package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"leadclean/internal/batch"
	"leadclean/internal/config"
	"leadclean/internal/ingest"
	"leadclean/internal/logger"
	"leadclean/internal/lookup"
	"leadclean/internal/pipeline"
	"leadclean/internal/report"
	"leadclean/internal/watch"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	must(err)
	defer func() { _ = log.Sync() }()

	cmd := os.Args[1]
	switch cmd {
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path")
		inType := fs.String("type", "", "csv|xlsx|html|eml (default: from extension)")
		output := fs.String("output", cfg.OutputDir, "output directory")
		lists := fs.Int("lists", cfg.Stages.ListCount, "number of output lists (1-10)")
		lookupPath := fs.String("lookup", cfg.LookupPath, "company alias table (csv|tsv|xlsx|sqlite)")
		dropDup := fs.Bool("drop-duplicates", cfg.DropDuplicates, "leave flagged duplicates out of exports")
		changes := fs.Int("changes", 20, "change rows to print (0 = all)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}

		cfg.Stages.ListCount = *lists
		processor := pipeline.NewProcessor(cfg, lookup.Load(*lookupPath, log), log)
		out, err := batch.Run(processor, batch.Job{
			Input:          *input,
			InputType:      *inType,
			OutputDir:      *output,
			DropDuplicates: *dropDup,
		}, log)
		if errors.Is(err, batch.ErrEmptyBatch) {
			must(fmt.Errorf("no usable contact records in %s; check the header row and file type", *input))
		}
		must(err)

		must(report.Write(os.Stdout, out.Result.Stats, out.Result.Contacts, *changes))
		fmt.Printf("\nrun done contacts=%d xlsx=%s json=%s csv=%d\n",
			out.Result.Stats.Total, out.Files.XLSX, out.Files.JSON, len(out.Files.CSV))
	case "watch":
		must(cfg.Require("WATCH_DIR", cfg.WatchDir))
		processor := pipeline.NewProcessor(cfg, lookup.Load(cfg.LookupPath, log), log)
		svc := watch.NewService(cfg, processor, log)
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		log.Info("watch: started", zap.String("dir", cfg.WatchDir), zap.Int("interval_sec", cfg.WatchIntervalSec))
		must(svc.Run(ctx))
	case "lookup:check":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		path := fs.String("lookup", cfg.LookupPath, "company alias table")
		_ = fs.Parse(os.Args[2:])
		must(cfg.Require("LOOKUP_PATH", *path))
		pairs, err := lookup.ReadPairs(*path)
		must(err)
		resolver := lookup.New(pairs)
		fmt.Printf("lookup ok path=%s pairs=%d keys=%d\n", *path, len(pairs), resolver.Len())
	case "inspect":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path")
		inType := fs.String("type", "", "csv|xlsx|html|eml")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		records, err := ingest.ReadFile(*inType, *input)
		must(err)
		fmt.Printf("records=%d\n", len(records))
		if len(records) > 0 {
			for _, f := range records[0].Fields {
				fmt.Printf("  %s\n", f.Name)
			}
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: leadclean <command>")
	fmt.Println("commands:")
	fmt.Println("  run --input=leads.csv [--type=csv|xlsx|html|eml] [--output=./out] [--lists=3] [--lookup=aliases.csv] [--drop-duplicates]")
	fmt.Println("  watch")
	fmt.Println("  lookup:check [--lookup=aliases.csv]")
	fmt.Println("  inspect --input=leads.xlsx [--type=xlsx]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
