package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dqportal/internal/snapshot"
)

type stubClient struct {
	descriptives []byte
	statistics   []byte
	err          error
}

func (s *stubClient) CollaborationDescriptives(context.Context) ([]byte, error) {
	return s.descriptives, s.err
}

func (s *stubClient) DescriptiveStatistics(context.Context) ([]byte, error) {
	return s.statistics, s.err
}

func TestRefresher_FirstRefreshOnStart(t *testing.T) {
	store := snapshot.NewStore()
	client := &stubClient{
		descriptives: []byte(`[{"organisation":"OrgA","country":"IT","sample_size":5,"variable_info":[]}]`),
		statistics:   []byte(`[{"partial_results":[]}]`),
	}

	// An already-cancelled context still runs the startup refresh before the
	// loop exits.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRefresher(client, store, time.Hour)
	if err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}

	if store.Len() != 1 {
		t.Fatalf("store.Len() = %d, want 1", store.Len())
	}
	_, data, ok := store.Latest()
	if !ok {
		t.Fatal("Latest() returned no snapshot")
	}
	if data["OrgA"].Country != "IT" {
		t.Errorf("OrgA country = %q, want IT", data["OrgA"].Country)
	}
}

func TestRefresher_FetchErrorKeepsPreviousSnapshot(t *testing.T) {
	store := snapshot.NewStore()
	store.Append([]byte(`[{"organisation":"OrgA","country":"IT","sample_size":5,"variable_info":[]}]`), []byte(`[]`))
	before, _, _ := store.Latest()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRefresher(&stubClient{err: errors.New("server unreachable")}, store, time.Hour)
	r.Run(ctx)

	if store.Len() != 1 {
		t.Errorf("store.Len() = %d, want the failed cycle skipped", store.Len())
	}
	after, _, _ := store.Latest()
	if after != before {
		t.Errorf("latest timestamp changed from %q to %q on a failed refresh", before, after)
	}
}

func TestNewRefresher_DefaultInterval(t *testing.T) {
	r := NewRefresher(&stubClient{}, snapshot.NewStore(), 0)
	if r.interval != DefaultRefreshInterval {
		t.Errorf("interval = %v, want %v", r.interval, DefaultRefreshInterval)
	}
}

func TestFileClient(t *testing.T) {
	dir := t.TempDir()
	descriptives := filepath.Join(dir, "descriptives.json")
	statistics := filepath.Join(dir, "statistics.json")
	os.WriteFile(descriptives, []byte(`[{"organisation":"OrgA"}]`), 0o644)
	os.WriteFile(statistics, []byte(`[{"partial_results":[]}]`), 0o644)

	client := NewFileClient(descriptives, statistics)

	payload, err := client.CollaborationDescriptives(context.Background())
	if err != nil {
		t.Fatalf("CollaborationDescriptives() error = %v", err)
	}
	if string(payload) != `[{"organisation":"OrgA"}]` {
		t.Errorf("payload = %s", payload)
	}

	if _, err := client.DescriptiveStatistics(context.Background()); err != nil {
		t.Errorf("DescriptiveStatistics() error = %v", err)
	}

	missing := NewFileClient(filepath.Join(dir, "nope.json"), statistics)
	if _, err := missing.CollaborationDescriptives(context.Background()); err == nil {
		t.Error("expected an error for a missing mock file")
	}
}
