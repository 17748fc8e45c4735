package backend

import (
	"context"
	"slices"
	"time"

	"donasi/internal/core"
	"donasi/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the reader and optional cleanup function
type BackendResult struct {
	Reader  sheets.TableReader
	Cleanup CleanupFunc
}

// Factory creates table readers based on configuration
type Factory interface {
	// CreateBackend creates a reader instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// Shared by every reader
	Vocabulary []string
	Detector   core.HeaderDetector

	// Google specific
	SpreadsheetID   string
	GvizBaseURL     string
	APIKey          string
	CredentialsFile string
	FetchTimeout    time.Duration

	// Memory backend specific
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	// GvizBackend reads the public visualization endpoint.
	GvizBackend BackendType = "gviz"
	// SheetsBackend reads through the Sheets API v4 with an API key or a
	// service account.
	SheetsBackend BackendType = "sheets"
	// MemoryBackend serves saved gviz payloads from disk.
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	return slices.Contains(Types(), bt)
}
