package mcp

// ReindexInput defines the input schema for the reindex tool (no parameters).
type ReindexInput struct{}

// ReindexOutput defines the output schema for the reindex tool.
type ReindexOutput struct {
	Success     bool   `json:"success" jsonschema:"whether the sync pass completed"`
	UpsertCount int    `json:"upsert_count" jsonschema:"number of documents written"`
	DeleteCount int    `json:"delete_count" jsonschema:"number of stale documents removed"`
	Error       string `json:"error,omitempty" jsonschema:"error message if the pass failed"`
}

// QueryDocumentsInput defines the input schema for the query_documents tool.
type QueryDocumentsInput struct {
	Query string `json:"query" jsonschema:"the question to search indexed documents for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of results, default 10"`
}

// QueryDocumentsOutput defines the output schema for the query_documents tool.
type QueryDocumentsOutput struct {
	Contents string `json:"contents" jsonschema:"matched document contents as markdown"`
}

// StatusInput defines the input schema for the status tool (no parameters).
type StatusInput struct{}

// StatusOutput defines the output schema for the status tool.
type StatusOutput struct {
	DocumentCount int    `json:"document_count"`
	EmbeddedCount int    `json:"embedded_count"`
	SizeBytes     int64  `json:"size_bytes"`
	Provider      string `json:"provider"`
	Model         string `json:"model"`
	Dimensions    int    `json:"dimensions"`
	ProviderUp    bool   `json:"provider_up"`
}
