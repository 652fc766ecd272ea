package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/everyframe/internal/config"
	"github.com/sandeepkv93/everyframe/internal/logging"
	"github.com/sandeepkv93/everyframe/internal/storage"
	"github.com/sandeepkv93/everyframe/internal/tracker"
)

type session struct {
	cfg     config.Config
	logger  *log.Logger
	logFile io.Closer
	repo    storage.Repository
	store   *tracker.Store
}

// openSession builds the logger, opens the repository and restores the
// store. A corrupt snapshot is logged and replaced by an empty store.
// Interactive sessions never log to stderr since it shares the terminal.
func openSession(ctx context.Context, cfg config.Config, interactive bool, stderr io.Writer) (*session, error) {
	var out io.Writer = stderr
	var logFile io.Closer
	if cfg.LogFile != "" || interactive {
		f, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		out, logFile = f, f
	}
	logger := logging.NewFromConfig(out, cfg.LogLevel, cfg.LogFormat)
	closeLog := func() {
		if logFile != nil {
			logFile.Close()
		}
	}

	repo, err := storage.Open(cfg.Backend, cfg.DataPath)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("open %s store %s: %w", cfg.Backend, cfg.DataPath, err)
	}

	store, err := restore(ctx, repo, logger)
	if err != nil {
		repo.Close()
		closeLog()
		return nil, err
	}
	logger.Debug("store restored", "backend", cfg.Backend, "path", cfg.DataPath, "tasks", store.Len())

	return &session{
		cfg:     cfg,
		logger:  logger,
		logFile: logFile,
		repo:    repo,
		store:   store,
	}, nil
}

func restore(ctx context.Context, repo storage.Repository, logger *log.Logger) (*tracker.Store, error) {
	snap, err := repo.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrCorrupt) {
			logger.Warn("snapshot unreadable, starting empty", "err", err)
			return tracker.NewStore(), nil
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	store, err := tracker.Restore(snap)
	if err != nil {
		logger.Warn("snapshot inconsistent, starting empty", "err", err)
		return tracker.NewStore(), nil
	}
	return store, nil
}

func (s *session) save(ctx context.Context) error {
	if err := s.repo.Save(context.WithoutCancel(ctx), s.store.Snapshot()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.logger.Debug("store saved", "tasks", s.store.Len(), "next_id", s.store.NextID())
	return nil
}

func (s *session) close() {
	if err := s.repo.Close(); err != nil {
		s.logger.Error("close store", "err", err)
	}
	if s.logFile != nil {
		s.logFile.Close()
	}
}
