package telemetry

import (
	"context"
	"fmt"

	"perflab/internal/config"
	"perflab/internal/host"
)

// Store bundles the database, its repo and a running recorder.
type Store struct {
	client   *DuckDBClient
	Repo     *Repo
	Recorder *Recorder
}

// OpenStore opens the configured database, migrates it and starts the
// recorder. Close must be called to flush pending passes.
func OpenStore(ctx context.Context, cfg config.Telemetry) (*Store, error) {
	client, err := Open(cfg.DSN, WithThreads(cfg.Threads))
	if err != nil {
		return nil, err
	}

	repo := NewRepo(client.DB())
	if err := repo.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("migrate telemetry schema: %w", err)
	}

	rec, err := NewRecorder(repo, cfg.BufferSize, cfg.FlushInterval)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	if err := rec.Start(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Store{client: client, Repo: repo, Recorder: rec}, nil
}

func (s *Store) Close() error {
	s.Recorder.Stop()
	return s.client.Close()
}

// Summary flushes pending passes and aggregates everything recorded.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	if err := s.Recorder.Flush(ctx); err != nil {
		return Summary{}, err
	}
	return s.Repo.Summary(ctx)
}

// Recent flushes pending passes and returns the newest ones first.
func (s *Store) Recent(ctx context.Context, limit int) ([]host.Pass, error) {
	if err := s.Recorder.Flush(ctx); err != nil {
		return nil, err
	}
	return s.Repo.Recent(ctx, limit)
}
