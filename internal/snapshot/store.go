package snapshot

import (
	"bytes"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Data is one fully-formed snapshot: every participating organisation's
// statistics as captured at a single refresh cycle.
type Data map[string]Organisation

// Store accumulates snapshots keyed by fetch timestamp. It grows
// monotonically: one entry per refresh cycle, never compacted or rewritten.
// A single writer (the refresher) appends fully-formed entries; any number
// of readers resolve "latest" concurrently. Entries are never mutated after
// insertion, so readers always observe consistent data.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string]Data
	now       func() time.Time
}

// NewStore creates an empty snapshot store.
func NewStore() *Store {
	return &Store{
		snapshots: make(map[string]Data),
		now:       time.Now,
	}
}

// rawDescriptive is the per-organisation shape of the collaboration
// descriptives payload.
type rawDescriptive struct {
	Organisation string       `json:"organisation"`
	Country      string       `json:"country"`
	SampleSize   FlexInt      `json:"sample_size"`
	VariableInfo []ClassCount `json:"variable_info"`
}

// rawStatistics is the optional second payload carrying the serialised
// categorical/numerical tables per organisation.
type rawStatistics struct {
	PartialResults []rawPartial `json:"partial_results"`
}

type rawPartial struct {
	Organisation      string           `json:"organisation"`
	OrganisationName  string           `json:"organisation_name"`
	Categorical       CategoricalTable `json:"categorical"`
	Numerical         NumericalTable   `json:"numerical"`
	ExcludedVariables []string         `json:"excluded_variables"`
}

func (p rawPartial) name() string {
	if p.Organisation != "" {
		return p.Organisation
	}
	return p.OrganisationName
}

// Append ingests one fetch cycle's payloads, re-keys the descriptives by
// organisation, merges the statistics tables in by organisation name, and
// stores the result under a fresh timestamp. Malformed payloads degrade to
// an empty snapshot for the cycle; the refresh loop never aborts on bad
// upstream data.
func (s *Store) Append(descriptives, statistics []byte) string {
	data := make(Data)

	var items []rawDescriptive
	if err := json.Unmarshal(descriptives, &items); err != nil {
		log.Warn().Err(err).Msg("Descriptives payload malformed, storing empty snapshot for this cycle")
	} else {
		for _, item := range items {
			if item.Organisation == "" {
				continue
			}
			data[item.Organisation] = Organisation{
				Country:      item.Country,
				SampleSize:   item.SampleSize,
				VariableInfo: item.VariableInfo,
			}
		}
	}

	if len(statistics) > 0 && len(data) > 0 {
		stats, err := parseStatistics(statistics)
		if err != nil {
			log.Warn().Err(err).Msg("Statistics payload malformed, snapshot keeps descriptives only")
		} else {
			for _, partial := range stats.PartialResults {
				org, ok := data[partial.name()]
				if !ok {
					continue
				}
				org.Categorical = partial.Categorical
				org.Numerical = partial.Numerical
				org.ExcludedVariables = partial.ExcludedVariables
				data[partial.name()] = org
			}
		}
	}

	// Fixed-width fractional seconds keep lexicographic order identical to
	// chronological order, which Latest depends on.
	timestamp := s.now().UTC().Format("2006-01-02T15:04:05.000000000Z07:00")

	s.mu.Lock()
	s.snapshots[timestamp] = data
	s.mu.Unlock()

	log.Info().Str("timestamp", timestamp).Int("organisations", len(data)).Msg("Snapshot appended")
	return timestamp
}

// parseStatistics accepts the statistics document either bare or wrapped in
// a single-element array, which is how the orchestration platform delivers
// it.
func parseStatistics(payload []byte) (rawStatistics, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var docs []rawStatistics
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return rawStatistics{}, err
		}
		var merged rawStatistics
		for _, doc := range docs {
			merged.PartialResults = append(merged.PartialResults, doc.PartialResults...)
		}
		return merged, nil
	}
	var doc rawStatistics
	err := json.Unmarshal(trimmed, &doc)
	return doc, err
}

// Latest returns the snapshot with the greatest timestamp. ok is false while
// the store is empty.
func (s *Store) Latest() (timestamp string, data Data, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for ts := range s.snapshots {
		if ts > timestamp {
			timestamp = ts
		}
	}
	if timestamp == "" {
		return "", nil, false
	}
	return timestamp, s.snapshots[timestamp], true
}

// Timestamps returns every snapshot timestamp in chronological order.
func (s *Store) Timestamps() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.snapshots))
	for ts := range s.snapshots {
		out = append(out, ts)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of stored snapshots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}
