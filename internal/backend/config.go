package backend

import (
	"fmt"

	"donasi/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s (want one of %v)", appConfig.DataBackend, Types())
	}

	return Config{
		Type: backendType,

		Vocabulary: appConfig.Columns.Vocabulary(),
		Detector:   appConfig.Detector(),

		SpreadsheetID: appConfig.SpreadsheetID,
		GvizBaseURL:   appConfig.GvizBaseURL,
		APIKey:          appConfig.GoogleAPIKey,
		CredentialsFile: appConfig.GoogleCredentialsFile,
		FetchTimeout:    appConfig.FetchTimeout,

		DataDirectory: appConfig.DataDirectory,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case GvizBackend:
		if c.SpreadsheetID == "" {
			return fmt.Errorf("spreadsheet ID is required for gviz backend")
		}
	case SheetsBackend:
		if c.SpreadsheetID == "" {
			return fmt.Errorf("spreadsheet ID is required for sheets backend")
		}
		if c.APIKey == "" && c.CredentialsFile == "" {
			return fmt.Errorf("API key or credentials file is required for sheets backend")
		}
	case MemoryBackend:
		// DataDirectory defaults to "data" when empty
	}

	return nil
}

// Types lists the supported backends in order of preference.
func Types() []BackendType {
	return []BackendType{GvizBackend, SheetsBackend, MemoryBackend}
}
