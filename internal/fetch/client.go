// Package fetch retrieves the federated descriptive payloads from the task
// orchestration platform, or from mock files during development.
package fetch

import (
	"context"
	"time"
)

// Client retrieves the two raw payloads a snapshot is built from.
type Client interface {
	// CollaborationDescriptives returns the per-organisation descriptive
	// payload (country, sample size, class counts).
	CollaborationDescriptives(ctx context.Context) ([]byte, error)
	// DescriptiveStatistics returns the per-organisation statistics payload
	// (categorical and numerical tables, excluded variables).
	DescriptiveStatistics(ctx context.Context) ([]byte, error)
}

// Config holds the connection and task settings for the orchestration
// platform.
type Config struct {
	ServerURL string
	APIPath   string

	Username string
	Password string

	CollaborationID int
	OrganisationID  int

	DescriptivesImage string
	StatisticsImage   string

	PollInterval   time.Duration
	RequestTimeout time.Duration
}

// Fallback payloads served when the platform cannot be reached, so the
// dashboard degrades to an explicit "Not available" entry instead of an
// error.
const (
	descriptivesPlaceholder = `[{"organisation":"Not available","country":"Not available","sample_size":0,"variable_info":[]}]`
	statisticsPlaceholder   = `[{"partial_results":[]}]`
)
