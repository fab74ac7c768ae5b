// Package watch polls an inbox directory and cleans every contact list
// dropped into it.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"leadclean/internal/batch"
	"leadclean/internal/config"
	"leadclean/internal/ingest"
	"leadclean/internal/logger"
	"leadclean/internal/pipeline"
)

const (
	DoneDir   = "processed"
	FailedDir = "failed"
)

type Service struct {
	cfg       config.Config
	processor *pipeline.Processor
	log       *zap.Logger
}

func NewService(cfg config.Config, processor *pipeline.Processor, log *zap.Logger) *Service {
	return &Service{cfg: cfg, processor: processor, log: logger.OrNop(log)}
}

// Run processes the inbox every WatchIntervalSec until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.WatchIntervalSec) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	for {
		if _, err := s.RunCycle(ctx); err != nil {
			s.log.Error("watch: cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// CycleResult counts the files handled in one pass.
type CycleResult struct {
	Processed int
	Failed    int
}

// RunCycle handles every supported file currently in the inbox, oldest name
// first. Each file is moved to processed/ or failed/ afterwards so it is
// never picked up twice.
func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	var out CycleResult
	inputs, err := s.pending()
	if err != nil {
		return out, err
	}

	for _, path := range inputs {
		if ctx.Err() != nil {
			break
		}
		job := batch.Job{
			Input:          path,
			OutputDir:      filepath.Join(s.cfg.OutputDir, "watch", batch.BaseName(path)),
			DropDuplicates: s.cfg.DropDuplicates,
		}
		res, runErr := batch.Run(s.processor, job, s.log)
		target := DoneDir
		if runErr != nil {
			target = FailedDir
			out.Failed++
			if errors.Is(runErr, batch.ErrEmptyBatch) {
				s.log.Warn("watch: file has no usable contacts", zap.String("file", path))
			} else {
				s.log.Error("watch: file failed", zap.String("file", path), zap.Error(runErr))
			}
		} else {
			out.Processed++
			s.log.Info("watch: file cleaned",
				zap.String("file", path),
				zap.Int("contacts", res.Result.Stats.Total),
				zap.Int("duplicates", res.Result.Stats.Duplicates),
			)
		}
		if err := s.move(path, target); err != nil {
			return out, err
		}
	}

	s.log.Info("watch: cycle done", zap.Int("processed", out.Processed), zap.Int("failed", out.Failed))
	return out, nil
}

func (s *Service) pending() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.WatchDir)
	if err != nil {
		return nil, eris.Wrapf(err, "watch: read %s", s.cfg.WatchDir)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || ingest.DetectType(e.Name()) == "" {
			continue
		}
		out = append(out, filepath.Join(s.cfg.WatchDir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func (s *Service) move(path, sub string) error {
	dir := filepath.Join(s.cfg.WatchDir, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "watch: create %s", dir)
	}
	if err := os.Rename(path, filepath.Join(dir, filepath.Base(path))); err != nil {
		return eris.Wrapf(err, "watch: move %s", path)
	}
	return nil
}
