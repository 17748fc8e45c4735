package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"donasi/internal/core"
)

// SheetRef names one tab of the spreadsheet and its position.
type SheetRef struct {
	Name string
	GID  int
}

// Sheets holds the three logical sheets the site reads.
type Sheets struct {
	DonasiMasuk SheetRef
	Realisasi   SheetRef
	Penyaluran  SheetRef
}

type Config struct {
	// HTTP Server
	Port      string
	LogLevel  string
	LogFormat string

	// RateLimitPerMinute bounds sheet-reading requests per client.
	RateLimitPerMinute int

	// Data source
	DataBackend    string
	DataDirectory  string
	SpreadsheetID  string
	GvizBaseURL    string
	GoogleAPIKey   string
	FetchTimeout   time.Duration
	HeaderScanRows int

	// GoogleCredentialsFile is a service account key for the sheets backend.
	GoogleCredentialsFile string

	// Sheet layout
	Sheets           Sheets
	Columns          core.Columns
	AnonymousNames   []string
	AnonymousDisplay string
	CurrencyPrefix   string

	// Site content override (YAML); empty means the embedded default.
	SiteContentFile string
}

const (
	DefaultSpreadsheetID = "16-BQVDuCcsKixvTynVXVIOcYTwCcq-Tkz3rdajJIHis"
	DefaultGvizBaseURL   = "https://docs.google.com/spreadsheets/d"
)

// Default returns the configuration the site was built around.
func Default() *Config {
	return &Config{
		Port:               "8081",
		LogLevel:           "info",
		LogFormat:          "text",
		RateLimitPerMinute: 120,

		DataBackend:    "gviz",
		DataDirectory:  "./data",
		SpreadsheetID:  DefaultSpreadsheetID,
		GvizBaseURL:    DefaultGvizBaseURL,
		FetchTimeout:   15 * time.Second,
		HeaderScanRows: 5,
		Sheets: Sheets{
			DonasiMasuk: SheetRef{Name: "Donasi Masuk", GID: 0},
			Realisasi:   SheetRef{Name: "Realisasi", GID: 1},
			Penyaluran:  SheetRef{Name: "Penyaluran Donasi", GID: 2},
		},
		Columns:          core.DefaultColumns(),
		AnonymousNames:   core.DefaultAnonymousNames(),
		AnonymousDisplay: core.DefaultAnonymousLabel,
		CurrencyPrefix:   core.DefaultCurrencyPrefix,
	}
}

// Load reads the configuration from the environment on top of Default.
func Load() *Config {
	cfg := Default()

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute)

	cfg.DataBackend = getEnv("DATA_BACKEND", cfg.DataBackend)
	cfg.DataDirectory = getEnv("DATA_DIRECTORY", cfg.DataDirectory)
	cfg.SpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", cfg.SpreadsheetID)
	cfg.GvizBaseURL = getEnv("GVIZ_BASE_URL", cfg.GvizBaseURL)
	cfg.GoogleAPIKey = getEnv("GOOGLE_API_KEY", "")
	cfg.GoogleCredentialsFile = getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.HeaderScanRows = getEnvInt("HEADER_SCAN_ROWS", cfg.HeaderScanRows)

	cfg.Sheets.DonasiMasuk.Name = getEnv("SHEET_DONASI_MASUK", cfg.Sheets.DonasiMasuk.Name)
	cfg.Sheets.Realisasi.Name = getEnv("SHEET_REALISASI", cfg.Sheets.Realisasi.Name)
	cfg.Sheets.Penyaluran.Name = getEnv("SHEET_PENYALURAN", cfg.Sheets.Penyaluran.Name)

	if v := os.Getenv("ANONYMOUS_NAMES"); v != "" {
		// The empty alias is always kept so blank donor cells stay anonymous.
		names := []string{""}
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		cfg.AnonymousNames = names
	}
	cfg.AnonymousDisplay = getEnv("ANONYMOUS_DISPLAY", cfg.AnonymousDisplay)
	cfg.CurrencyPrefix = getEnv("CURRENCY_PREFIX", cfg.CurrencyPrefix)
	cfg.SiteContentFile = getEnv("SITE_CONTENT_FILE", "")

	return cfg
}

// Anonymizer builds the donor-name anonymizer for this configuration.
func (c *Config) Anonymizer() core.Anonymizer {
	return core.NewAnonymizer(c.AnonymousNames, c.AnonymousDisplay)
}

// Detector returns the header detector for sheets without declared labels.
func (c *Config) Detector() core.HeaderDetector {
	return core.ScanDetector{MaxRows: c.HeaderScanRows, MinFilled: 2}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	// Validate data backend
	validBackends := []string{"gviz", "sheets", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "gviz":
		if c.SpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using gviz backend")
		}
		if parsed, err := url.Parse(c.GvizBaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid gviz base URL '%s': %v", c.GvizBaseURL, err))
		} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid gviz base URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
		}
	case "sheets":
		if c.SpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleAPIKey == "" && c.GoogleCredentialsFile == "" {
			errors = append(errors, "GOOGLE_API_KEY or GOOGLE_SERVICE_ACCOUNT_FILE is required when using sheets backend")
		}
	case "memory":
		if c.DataDirectory == "" {
			errors = append(errors, "data directory cannot be empty when using memory backend")
		}
	}

	if c.FetchTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at least 1 second", c.FetchTimeout))
	} else if c.FetchTimeout > 2*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at most 2 minutes", c.FetchTimeout))
	}

	if c.HeaderScanRows < 1 {
		errors = append(errors, fmt.Sprintf("invalid header scan rows %d: must be at least 1", c.HeaderScanRows))
	}

	for label, ref := range map[string]SheetRef{
		"donasi masuk": c.Sheets.DonasiMasuk,
		"realisasi":    c.Sheets.Realisasi,
		"penyaluran":   c.Sheets.Penyaluran,
	} {
		if strings.TrimSpace(ref.Name) == "" {
			errors = append(errors, fmt.Sprintf("sheet name for %s cannot be empty", label))
		}
	}

	if c.Columns.Nominal == "" || c.Columns.Donatur == "" || c.Columns.Tanggal == "" {
		errors = append(errors, "column labels for Tanggal, Donatur and Nominal are required")
	}
	if c.AnonymousDisplay == "" {
		errors = append(errors, "anonymous display label cannot be empty")
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
