package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOllamaServer(t *testing.T, models ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			type model struct {
				Name string `json:"name"`
			}
			resp := struct {
				Models []model `json:"models"`
			}{}
			for _, m := range models {
				resp.Models = append(resp.Models, model{Name: m})
			}
			_ = json.NewEncoder(w).Encode(resp)
		case "/api/pull":
			fmt.Fprintln(w, `{"status":"pulling manifest"}`)
			fmt.Fprintln(w, `{"status":"downloading","total":100,"completed":50}`)
			fmt.Fprintln(w, `{"status":"success","total":100,"completed":100}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestOllamaManager_IsRunning(t *testing.T) {
	srv := newOllamaServer(t)
	defer srv.Close()

	m := NewOllamaManager(srv.URL)
	assert.True(t, m.IsRunning(context.Background()))

	srv.Close()
	assert.False(t, m.IsRunning(context.Background()))
}

func TestOllamaManager_HasModel(t *testing.T) {
	srv := newOllamaServer(t, "mxbai-embed-large:latest", "llama3:8b")
	defer srv.Close()

	m := NewOllamaManager(srv.URL)
	ctx := context.Background()

	has, err := m.HasModel(ctx, "mxbai-embed-large")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = m.HasModel(ctx, "nomic-embed-text")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestOllamaManager_Status(t *testing.T) {
	srv := newOllamaServer(t, "mxbai-embed-large:latest")
	defer srv.Close()

	m := NewOllamaManager(srv.URL)
	m.lookPath = func(string) (string, error) { return "/usr/local/bin/ollama", nil }

	status, err := m.Status(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, status.Installed)
	assert.True(t, status.Running)
	assert.True(t, status.HasModel)
	assert.Equal(t, DefaultModel, status.TargetModel)
	assert.Len(t, status.Models, 1)
}

func TestOllamaManager_PullModel_AlreadyAvailable(t *testing.T) {
	srv := newOllamaServer(t, "mxbai-embed-large:latest")
	defer srv.Close()

	m := NewOllamaManager(srv.URL)
	// No progress expected; the model is already present
	err := m.PullModel(context.Background(), "mxbai-embed-large", func(PullProgress) {
		t.Fatal("unexpected pull for available model")
	})
	require.NoError(t, err)
}

func TestOllamaManager_PullModel_ReportsProgress(t *testing.T) {
	srv := newOllamaServer(t)
	defer srv.Close()

	m := NewOllamaManager(srv.URL)
	var updates []PullProgress
	err := m.PullModel(context.Background(), "mxbai-embed-large", func(p PullProgress) {
		updates = append(updates, p)
	})
	require.NoError(t, err)
	require.NotEmpty(t, updates)
	assert.Equal(t, float64(100), updates[len(updates)-1].Percent)
}

func TestOllamaManager_WaitForReady_Timeout(t *testing.T) {
	srv := newOllamaServer(t)
	url := srv.URL
	srv.Close()

	m := NewOllamaManager(url)
	err := m.WaitForReady(context.Background(), 300_000_000) // 300ms
	assert.Error(t, err)
}

func TestNewOllamaManager_EnvOverride(t *testing.T) {
	t.Setenv("REPOCKS_OLLAMA_HOST", "http://elsewhere:11434")
	m := NewOllamaManager("http://localhost:11434")
	assert.Equal(t, "http://elsewhere:11434", m.Host())
}
