package worker

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Manager starts and supervises a set of workers. The first worker to fail
// cancels the others.
type Manager struct {
	workers []Worker
}

func NewManager(ws ...Worker) *Manager {
	return &Manager{workers: ws}
}

func (m *Manager) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i, w := range m.workers {
		g.Go(func() error {
			if err := w.Start(ctx); err != nil {
				slog.Error("manager: worker stopped", "worker", i, "err", err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
