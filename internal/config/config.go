package config

import (
	"errors"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/couchcryptid/accident-analytics-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	MaxUploadBytes  int64
	ResultCacheSize int
	UploadDir       string
	SamplesDir      string
	CSVDelimiter    rune // 0 means sniff per file

	// Kafka publishing of analysis summaries.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Mapbox reverse geocoding of hotspots.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeoutStr := sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s")
	mapboxTimeout, err := time.ParseDuration(mapboxTimeoutStr)
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	maxUpload, err := strconv.ParseInt(sharedcfg.EnvOrDefault("MAX_UPLOAD_BYTES", "33554432"), 10, 64)
	if err != nil || maxUpload <= 0 {
		return nil, errors.New("invalid MAX_UPLOAD_BYTES")
	}

	cacheSize, err := strconv.Atoi(sharedcfg.EnvOrDefault("RESULT_CACHE_SIZE", "100"))
	if err != nil || cacheSize <= 0 {
		return nil, errors.New("invalid RESULT_CACHE_SIZE")
	}

	delimiter, err := parseDelimiter(os.Getenv("CSV_DELIMITER"))
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		MaxUploadBytes:  maxUpload,
		ResultCacheSize: cacheSize,
		UploadDir:       envOrDefaultAllowEmpty("UPLOAD_DIR", "uploads"),
		SamplesDir:      envOrDefaultAllowEmpty("SAMPLES_DIR", "samples"),
		CSVDelimiter:    delimiter,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "accident-analyses"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

// ParseOptions returns the table parsing options implied by the config.
func (c *Config) ParseOptions() domain.ParseOptions {
	return domain.ParseOptions{Delimiter: c.CSVDelimiter}
}

// envOrDefaultAllowEmpty distinguishes an unset variable (default applies)
// from one explicitly set to "" (feature disabled).
func envOrDefaultAllowEmpty(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

// parseDelimiter accepts a single character, or the names "tab" and "\t".
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, errors.New("invalid CSV_DELIMITER: must be a single character")
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' {
		return 0, errors.New("invalid CSV_DELIMITER: quote and newline are not allowed")
	}
	return r, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
