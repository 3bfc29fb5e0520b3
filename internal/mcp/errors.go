// Package mcp implements the Model Context Protocol server for repocks.
package mcp

import (
	"context"
	"errors"
	"fmt"

	rperrors "github.com/repocks/repocks/internal/errors"
)

// Custom MCP error codes for repocks.
const (
	// ErrCodeCollectionLocked indicates another process holds the collection lock.
	ErrCodeCollectionLocked = -32001

	// ErrCodeEmbeddingFailed indicates embedding generation failed.
	ErrCodeEmbeddingFailed = -32002

	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout = -32003

	// Standard JSON-RPC error codes.
	ErrCodeInvalidParams = -32602
	ErrCodeInternalError = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// NewInvalidParamsError creates an error for invalid parameters.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{
		Code:    ErrCodeInvalidParams,
		Message: msg,
	}
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var re *rperrors.RepocksError
	if errors.As(err, &re) {
		return mapRepocksError(re)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out.",
		}
	case errors.Is(err, context.Canceled):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request was canceled.",
		}
	default:
		return &MCPError{
			Code:    ErrCodeInternalError,
			Message: "Internal server error.",
		}
	}
}

// mapRepocksError converts a RepocksError to an MCPError.
func mapRepocksError(re *rperrors.RepocksError) *MCPError {
	message := re.Message
	if re.Suggestion != "" {
		message = fmt.Sprintf("%s %s", re.Message, re.Suggestion)
	}

	switch {
	case re.Code == rperrors.ErrCodeLockTimeout:
		return &MCPError{
			Code:    ErrCodeCollectionLocked,
			Message: message,
		}
	case re.Category == rperrors.CategoryEmbedding:
		return &MCPError{
			Code:    ErrCodeEmbeddingFailed,
			Message: message,
		}
	case re.Category == rperrors.CategoryValidation:
		return &MCPError{
			Code:    ErrCodeInvalidParams,
			Message: message,
		}
	default:
		return &MCPError{
			Code:    ErrCodeInternalError,
			Message: message,
		}
	}
}
