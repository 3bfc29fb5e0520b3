// Package store provides durable, queryable persistence of documents with
// vector similarity search, backed by a single SQLite collection file.
//
// Cross-process exclusion is enforced with a sidecar lock file, never the
// data file itself, so SQLite's own locking is not interfered with.
package store

import (
	"time"
)

// Document is the unit of storage: one indexed source file.
type Document struct {
	// ID is the file path, globally unique within a collection.
	ID string

	// Content is the full text of the source file at index time.
	Content string

	// Embedding is the fixed-length vector for the content. Nil only
	// transiently before first embedding; documents without an embedding
	// are excluded from similarity search but still enumerable by id.
	Embedding []float32

	// Metadata is an open string-keyed mapping, stored and returned
	// unmodified. The store never interprets specific keys.
	Metadata map[string]any

	// CreatedAt is set once at first insert and never updated.
	CreatedAt time.Time

	// UpdatedAt tracks the last upsert.
	UpdatedAt time.Time
}

// QueryResult is a single similarity search hit.
type QueryResult struct {
	ID       string
	Score    float64
	Content  string
	Metadata map[string]any
}

// Stats describes the current collection.
type Stats struct {
	// DocumentCount is the total number of stored documents.
	DocumentCount int

	// EmbeddedCount is the number of documents eligible for similarity search.
	EmbeddedCount int

	// SizeBytes is the collection file size on disk.
	SizeBytes int64
}

// Options configures a collection session.
type Options struct {
	// Path is the collection file location.
	Path string

	// LockPath is the sidecar lock file location.
	LockPath string

	// Dimensions is the fixed embedding dimension for the collection.
	Dimensions int
}

// DefaultTopK is the default number of query results.
const DefaultTopK = 10
