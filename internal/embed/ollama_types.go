package embed

import "time"

// OllamaConfig configures the Ollama embedding provider.
type OllamaConfig struct {
	// Host is the Ollama API endpoint (default: http://localhost:11434).
	Host string

	// Model is the embedding model name (default: mxbai-embed-large).
	Model string

	// Dimensions is the expected embedding dimension. Responses with a
	// different dimension are rejected.
	Dimensions int

	// BatchSize is the maximum number of texts per request.
	BatchSize int

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxRetries is the number of attempts for transient failures.
	MaxRetries int
}

// OllamaEmbedRequest is the request body for POST /api/embed.
type OllamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// OllamaEmbedResponse is the response body for POST /api/embed.
type OllamaEmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
}

// OllamaModelListResponse is the response body for GET /api/tags.
type OllamaModelListResponse struct {
	Models []OllamaModelInfo `json:"models"`
}

// OllamaModelInfo describes one locally available model.
type OllamaModelInfo struct {
	Name string `json:"name"`
}
