package fetch

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

type fileClient struct {
	descriptivesPath string
	statisticsPath   string
}

// NewFileClient builds a Client that serves payloads from local JSON files.
// Development mode: no orchestration platform needed.
func NewFileClient(descriptivesPath, statisticsPath string) Client {
	return &fileClient{
		descriptivesPath: descriptivesPath,
		statisticsPath:   statisticsPath,
	}
}

func (c *fileClient) CollaborationDescriptives(_ context.Context) ([]byte, error) {
	return c.read(c.descriptivesPath, "descriptives")
}

func (c *fileClient) DescriptiveStatistics(_ context.Context) ([]byte, error) {
	return c.read(c.statisticsPath, "statistics")
}

func (c *fileClient) read(path, kind string) ([]byte, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mock %s file: %w", kind, err)
	}
	log.Debug().Str("path", path).Str("kind", kind).Msg("Loaded mock payload")
	return payload, nil
}
