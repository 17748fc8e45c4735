package backend

import (
	"context"
	"fmt"
	"os"
	"time"

	"donasi/internal/log"
	gsheet "donasi/internal/sheets/google"
	"donasi/internal/sheets/gviz"
	"donasi/internal/sheets/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case GvizBackend:
		return f.createGvizBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) parser(config Config) gviz.Parser {
	return gviz.Parser{Vocabulary: config.Vocabulary, Detector: config.Detector}
}

func (f *DefaultFactory) createGvizBackend(config Config) (*BackendResult, error) {
	timeout := config.FetchTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	opts := []gviz.Option{
		gviz.WithHTTPClient(gviz.NewHTTPClient(timeout)),
		gviz.WithParser(f.parser(config)),
		gviz.WithLogger(f.logger),
	}
	if config.GvizBaseURL != "" {
		opts = append(opts, gviz.WithBaseURL(config.GvizBaseURL))
	}
	cli := gviz.New(config.SpreadsheetID, opts...)

	f.logger.Info("Initialized gviz backend",
		"spreadsheet_id", config.SpreadsheetID,
		"timeout", timeout.String())

	return &BackendResult{
		Reader:  cli,
		Cleanup: nil, // No cleanup needed for gviz backend
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	var credentials []byte
	if config.CredentialsFile != "" {
		data, err := os.ReadFile(config.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentials = data
	}

	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   config.SpreadsheetID,
		APIKey:          config.APIKey,
		CredentialsJSON: credentials,
		Vocabulary:    config.Vocabulary,
		Detector:      config.Detector,
		Logger:        f.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	auth := "api_key"
	if credentials != nil {
		auth = "service_account"
	}
	f.logger.Info("Initialized Google Sheets backend",
		"spreadsheet_id", config.SpreadsheetID,
		"auth", auth)

	return &BackendResult{
		Reader:  cli,
		Cleanup: nil, // No cleanup needed for sheets backend
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data" // Default directory
	}

	store := memory.NewFromFiles(dataDir, f.parser(config))

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)

	return &BackendResult{
		Reader:  store,
		Cleanup: nil, // No cleanup needed for memory backend
	}, nil
}
