// Package lifecycle provides Ollama health checking and model management
// for zero-config setup: detection, readiness polling, and model pulling.
package lifecycle

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	// DefaultHost is the default Ollama API endpoint.
	DefaultHost = "http://localhost:11434"

	// DefaultModel is the embedding model repocks expects.
	DefaultModel = "mxbai-embed-large"

	// StartupTimeout is how long to wait for Ollama to become ready.
	StartupTimeout = 30 * time.Second

	// ReadyPollInterval is the initial polling interval for WaitForReady.
	ReadyPollInterval = 100 * time.Millisecond

	// MaxReadyPollInterval caps the readiness backoff.
	MaxReadyPollInterval = 2 * time.Second

	// PullTimeout is how long to wait for a model pull.
	PullTimeout = 10 * time.Minute
)

// OllamaManager handles Ollama health and model operations.
type OllamaManager struct {
	host   string
	client *http.Client

	// For testing: override binary lookup
	lookPath func(file string) (string, error)
}

// OllamaStatus represents the current state of Ollama.
type OllamaStatus struct {
	Installed     bool
	InstalledPath string
	Running       bool
	Models        []string
	HasModel      bool
	TargetModel   string
}

// PullProgress represents model pull progress.
type PullProgress struct {
	Status    string
	Total     int64
	Completed int64
	Percent   float64
}

// NewOllamaManager creates a manager for the given host.
// An empty host uses the default, overridable via REPOCKS_OLLAMA_HOST.
func NewOllamaManager(host string) *OllamaManager {
	if host == "" {
		host = DefaultHost
	}
	if envHost := os.Getenv("REPOCKS_OLLAMA_HOST"); envHost != "" {
		host = envHost
	}

	return &OllamaManager{
		host: host,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		lookPath: exec.LookPath,
	}
}

// Host returns the configured Ollama host.
func (m *OllamaManager) Host() string {
	return m.host
}

// IsInstalled checks if the ollama binary is on PATH.
func (m *OllamaManager) IsInstalled() (bool, string) {
	if path, err := m.lookPath("ollama"); err == nil {
		return true, path
	}
	return false, ""
}

// IsRunning checks if the Ollama API is responding.
func (m *OllamaManager) IsRunning(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.host+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// ListModels returns the models available from Ollama.
func (m *OllamaManager) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.host+"/api/tags", nil)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	models := make([]string, len(result.Models))
	for i, model := range result.Models {
		models[i] = model.Name
	}
	return models, nil
}

// HasModel checks if a model is available, matching on exact name or base
// name so "mxbai-embed-large" matches "mxbai-embed-large:latest".
func (m *OllamaManager) HasModel(ctx context.Context, model string) (bool, error) {
	models, err := m.ListModels(ctx)
	if err != nil {
		return false, err
	}

	want := strings.ToLower(model)
	wantBase := strings.Split(want, ":")[0]

	for _, available := range models {
		got := strings.ToLower(available)
		gotBase := strings.Split(got, ":")[0]
		if got == want || gotBase == wantBase {
			return true, nil
		}
	}
	return false, nil
}

// Status returns comprehensive Ollama status for the target model.
func (m *OllamaManager) Status(ctx context.Context, targetModel string) (*OllamaStatus, error) {
	if targetModel == "" {
		targetModel = DefaultModel
	}
	status := &OllamaStatus{TargetModel: targetModel}

	status.Installed, status.InstalledPath = m.IsInstalled()
	status.Running = m.IsRunning(ctx)

	if status.Running {
		models, err := m.ListModels(ctx)
		if err != nil {
			return nil, err
		}
		status.Models = models

		hasModel, err := m.HasModel(ctx, targetModel)
		if err != nil {
			return nil, err
		}
		status.HasModel = hasModel
	}

	return status, nil
}

// WaitForReady polls until Ollama is responding or the timeout expires.
func (m *OllamaManager) WaitForReady(ctx context.Context, timeout time.Duration) error {
	if timeout == 0 {
		timeout = StartupTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	interval := ReadyPollInterval
	for {
		if m.IsRunning(ctx) {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for Ollama: %w", ctx.Err())
		case <-time.After(interval):
		}

		interval *= 2
		if interval > MaxReadyPollInterval {
			interval = MaxReadyPollInterval
		}
	}
}

// PullModel pulls a model, streaming progress to progressFunc if set.
// A model that is already available is not pulled again.
func (m *OllamaManager) PullModel(ctx context.Context, model string, progressFunc func(PullProgress)) error {
	hasModel, err := m.HasModel(ctx, model)
	if err == nil && hasModel {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, PullTimeout)
	defer cancel()

	payload, err := json.Marshal(map[string]any{"name": model})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.host+"/api/pull", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	// No client timeout here; pulls are long-running streams
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return fmt.Errorf("failed to start model pull: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("model pull failed with status %d: %s", resp.StatusCode, string(body))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line struct {
			Status    string `json:"status"`
			Total     int64  `json:"total"`
			Completed int64  `json:"completed"`
			Error     string `json:"error"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		if line.Error != "" {
			return fmt.Errorf("model pull failed: %s", line.Error)
		}

		if progressFunc != nil {
			progress := PullProgress{
				Status:    line.Status,
				Total:     line.Total,
				Completed: line.Completed,
			}
			if line.Total > 0 {
				progress.Percent = float64(line.Completed) / float64(line.Total) * 100
			}
			progressFunc(progress)
		}
	}
	return scanner.Err()
}
