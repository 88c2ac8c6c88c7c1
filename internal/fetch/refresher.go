package fetch

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"dqportal/internal/snapshot"
)

// DefaultRefreshInterval matches the six-day cadence of the federated
// retrieval tasks.
const DefaultRefreshInterval = 144 * time.Hour

// Refresher periodically fetches both payloads and appends them to the
// snapshot store. The first refresh runs immediately on start.
type Refresher struct {
	client   Client
	store    *snapshot.Store
	interval time.Duration
}

func NewRefresher(client Client, store *snapshot.Store, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{client: client, store: store, interval: interval}
}

// Run refreshes until the context is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// refresh fetches the two payloads concurrently and records the snapshot.
// Fetch errors are logged and skip the cycle; the store keeps serving the
// previous snapshot.
func (r *Refresher) refresh(ctx context.Context) {
	started := time.Now()

	var descriptives, statistics []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		descriptives, err = r.client.CollaborationDescriptives(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		statistics, err = r.client.DescriptiveStatistics(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Snapshot refresh failed, keeping previous snapshot")
		return
	}

	timestamp := r.store.Append(descriptives, statistics)
	log.Info().
		Str("timestamp", timestamp).
		Int("snapshots", r.store.Len()).
		Dur("took", time.Since(started)).
		Msg("Snapshot refreshed")
}
