// Package hub provides a client for the remote prompt and dataset service:
// pulling named prompts, managing datasets and logging experiment runs.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sreevatsan/storysmith/internal/types"
)

var errNotFound = errors.New("not found")

// Client handles communication with the hub API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	BaseURL string        // e.g. "https://hub.storysmith.dev"
	APIKey  string        // required for every call
	Timeout time.Duration // request timeout
}

// NewClient creates a new hub client. A missing API key is a configuration
// error: nothing on the hub is reachable without one.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("hub API key is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// Dataset is a named collection of examples on the hub.
type Dataset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Example is one dataset entry: inputs for the target and, optionally, the
// expected outputs.
type Example struct {
	ID      string            `json:"id,omitempty"`
	Inputs  map[string]string `json:"inputs"`
	Outputs map[string]string `json:"outputs,omitempty"`
}

// Run is a single logged experiment interaction.
type Run struct {
	ID               string            `json:"id,omitempty"`
	Experiment       string            `json:"experiment"`
	ExampleID        string            `json:"example_id,omitempty"`
	Inputs           map[string]string `json:"inputs"`
	Output           string            `json:"output"`
	Error            string            `json:"error,omitempty"`
	Latency          time.Duration     `json:"latency_ns"`
	TimeToFirstToken time.Duration     `json:"time_to_first_token_ns,omitempty"`
}

// PullPrompt fetches a stored prompt by name. With includeModel the hub also
// returns the model configuration saved alongside the template.
func (c *Client) PullPrompt(ctx context.Context, name string, includeModel bool) (*Prompt, error) {
	endpoint := fmt.Sprintf("%s/api/v1/prompts/%s", c.baseURL, url.PathEscape(name))
	if includeModel {
		endpoint += "?include_model=true"
	}

	var prompt Prompt
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &prompt); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: %q", types.ErrPromptNotFound, name)
		}
		return nil, err
	}
	return &prompt, nil
}

// CreateDataset creates a named dataset on the hub.
func (c *Client) CreateDataset(ctx context.Context, name, description string) (*Dataset, error) {
	body := Dataset{Name: name, Description: description}
	var created Dataset
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/v1/datasets", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateExamples uploads examples into an existing dataset.
func (c *Client) CreateExamples(ctx context.Context, datasetID string, examples []Example) error {
	endpoint := fmt.Sprintf("%s/api/v1/datasets/%s/examples", c.baseURL, url.PathEscape(datasetID))
	body := struct {
		Examples []Example `json:"examples"`
	}{Examples: examples}
	return c.do(ctx, http.MethodPost, endpoint, body, nil)
}

// ListExamples fetches all examples of a dataset by dataset name.
func (c *Client) ListExamples(ctx context.Context, datasetName string) ([]Example, error) {
	endpoint := fmt.Sprintf("%s/api/v1/datasets/%s/examples", c.baseURL, url.PathEscape(datasetName))
	var resp struct {
		Examples []Example `json:"examples"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Examples, nil
}

// CreateRun logs one experiment run for later analysis.
func (c *Client) CreateRun(ctx context.Context, run Run) error {
	return c.do(ctx, http.MethodPost, c.baseURL+"/api/v1/runs", run, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("hub request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", errNotFound, endpoint)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("hub returned status %d: %s", resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode hub response: %w", err)
	}
	return nil
}
