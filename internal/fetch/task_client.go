package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"dqportal/internal/schema"
)

type taskClient struct {
	cfg        Config
	httpClient *http.Client

	// variables_to_describe for the statistics task, keyed by variable name.
	variables map[string]variableSpec
}

type variableSpec struct {
	Datatype string `json:"datatype"`
}

// NewTaskClient builds a Client that runs retrieval tasks on the
// orchestration platform. The schema decides which variables the statistics
// task describes and whether they are categorical or numerical.
func NewTaskClient(cfg Config, s schema.Schema) Client {
	if cfg.APIPath == "" {
		cfg.APIPath = "/api"
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 90 * time.Second
	}

	variables := make(map[string]variableSpec, len(s.VariableInfo))
	for name, info := range s.VariableInfo {
		datatype := "numerical"
		if info.ValueMapping != nil {
			datatype = "categorical"
		}
		variables[name] = variableSpec{Datatype: datatype}
	}

	return &taskClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		variables:  variables,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type taskRequest struct {
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Image           string           `json:"image"`
	CollaborationID int              `json:"collaboration_id"`
	Organizations   []map[string]int `json:"organizations"`
	Input           map[string]any   `json:"input"`
	Databases       []map[string]any `json:"databases"`
}

type taskResponse struct {
	ID int `json:"id"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type resultResponse struct {
	Data []struct {
		Result string `json:"result"`
	} `json:"data"`
}

func (c *taskClient) CollaborationDescriptives(ctx context.Context) ([]byte, error) {
	payload, err := c.runTask(ctx, taskRequest{
		Name:        "Data management descriptive info retrieval",
		Description: "Task to retrieve the triplestore descriptives in light of a data management portal.",
		Image:       c.cfg.DescriptivesImage,
		Input:       map[string]any{"method": "central"},
	})
	if err != nil {
		log.Warn().Err(err).Msg("Descriptives task failed, serving placeholder payload")
		return []byte(descriptivesPlaceholder), nil
	}
	return payload, nil
}

func (c *taskClient) DescriptiveStatistics(ctx context.Context) ([]byte, error) {
	payload, err := c.runTask(ctx, taskRequest{
		Name:        "Data management descriptive statistics",
		Description: "Task to retrieve the descriptive statistics in light of a data management portal.",
		Image:       c.cfg.StatisticsImage,
		Input: map[string]any{
			"method": "central",
			"kwargs": map[string]any{
				"variables_to_describe": c.variables,
				"return_partials":       true,
			},
		},
	})
	if err != nil {
		log.Warn().Err(err).Msg("Statistics task failed, serving placeholder payload")
		return []byte(statisticsPlaceholder), nil
	}
	return payload, nil
}

// runTask logs in, creates the task, polls until the run completes and
// collects the result payload.
func (c *taskClient) runTask(ctx context.Context, task taskRequest) ([]byte, error) {
	token, err := c.login(ctx)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	task.CollaborationID = c.cfg.CollaborationID
	task.Organizations = []map[string]int{{"id": c.cfg.OrganisationID}}
	task.Databases = []map[string]any{{"label": "default"}}

	taskID, err := c.createTask(ctx, token, task)
	if err != nil {
		return nil, err
	}
	log.Info().Int("task", taskID).Str("name", task.Name).Msg("Created retrieval task")

	if err := c.waitForCompletion(ctx, token, taskID); err != nil {
		return nil, err
	}

	return c.collectResult(ctx, token, taskID)
}

func (c *taskClient) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"username": c.cfg.Username,
		"password": c.cfg.Password,
	})
	if err != nil {
		return "", err
	}

	var token tokenResponse
	if err := c.do(ctx, http.MethodPost, "/token/user", "", body, &token); err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("login response carried no access token")
	}
	return token.AccessToken, nil
}

func (c *taskClient) createTask(ctx context.Context, token string, task taskRequest) (int, error) {
	body, err := json.Marshal(task)
	if err != nil {
		return 0, err
	}

	var created taskResponse
	if err := c.do(ctx, http.MethodPost, "/task", token, body, &created); err != nil {
		return 0, fmt.Errorf("failed to create task: %w", err)
	}
	return created.ID, nil
}

func (c *taskClient) waitForCompletion(ctx context.Context, token string, taskID int) error {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		var status statusResponse
		path := fmt.Sprintf("/task/%d/status", taskID)
		if err := c.do(ctx, http.MethodGet, path, token, nil, &status); err != nil {
			return fmt.Errorf("failed to poll task %d: %w", taskID, err)
		}
		log.Debug().Int("task", taskID).Str("status", status.Status).Msg("Polled task status")

		switch status.Status {
		case "completed":
			return nil
		case "failed", "crashed", "killed":
			return fmt.Errorf("task %d ended with status %q", taskID, status.Status)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *taskClient) collectResult(ctx context.Context, token string, taskID int) ([]byte, error) {
	var result resultResponse
	path := fmt.Sprintf("/result?task_id=%d", taskID)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to collect result of task %d: %w", taskID, err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("task %d produced no result", taskID)
	}
	return []byte(result.Data[0].Result), nil
}

func (c *taskClient) do(ctx context.Context, method, path, token string, body []byte, out any) error {
	url := c.cfg.ServerURL + c.cfg.APIPath + path

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("orchestration server rejected credentials (%d)", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("orchestration server returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", path, err)
	}
	return nil
}
