// Package batch runs one uploaded file end to end: ingest, clean, export.
package batch

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"leadclean/internal/export"
	"leadclean/internal/ingest"
	"leadclean/internal/logger"
	"leadclean/internal/pipeline"
)

// ErrEmptyBatch is returned when a file yields no usable contacts.
var ErrEmptyBatch = eris.New("batch: no usable contact records")

type Job struct {
	Input     string
	InputType string
	OutputDir string
	// Base names the output files; defaults to the input file name.
	Base           string
	DropDuplicates bool
}

type Outcome struct {
	Result pipeline.Result
	Files  export.Files
}

// Run reads the job's input, processes it and writes every export format.
// The processor result is returned even for an empty batch so callers can
// report it.
func Run(p *pipeline.Processor, job Job, log *zap.Logger) (Outcome, error) {
	log = logger.OrNop(log)
	records, err := ingest.ReadFile(job.InputType, job.Input)
	if err != nil {
		return Outcome{}, err
	}
	log.Info("batch: records read", zap.String("input", job.Input), zap.Int("records", len(records)))

	res := p.Process(records)
	if res.Stats.Empty() {
		return Outcome{Result: res}, eris.Wrapf(ErrEmptyBatch, "batch: %s", job.Input)
	}

	base := job.Base
	if base == "" {
		base = BaseName(job.Input)
	}
	files, err := export.WriteAll(res, job.OutputDir, base, export.Options{DropDuplicates: job.DropDuplicates})
	if err != nil {
		return Outcome{Result: res}, err
	}
	log.Info("batch: exported", zap.String("xlsx", files.XLSX), zap.Int("csv", len(files.CSV)))
	return Outcome{Result: res, Files: files}, nil
}

// BaseName turns a file path into a safe output name without extension.
func BaseName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(name)
	if len(out) > 120 {
		out = out[:120]
	}
	if out == "" || out == "." {
		out = "contacts"
	}
	return out
}
