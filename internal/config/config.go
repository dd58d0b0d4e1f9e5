package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	REST     RESTConfig
	Media    MediaConfig
	Security SecurityConfig
	Kafka    KafkaConfig
	Logging  LoggingConfig
	Listing  ListingConfig
}

type ServerConfig struct {
	Port string
}

// RESTConfig points at the bookstore REST API.
type RESTConfig struct {
	BaseURL string
	Timeout time.Duration
}

// MediaConfig points at the image host used for book covers.
type MediaConfig struct {
	UploadURL string
	Preset    string
	MaxBytes  int64
	Timeout   time.Duration
	// ImageBase prefixes cover paths stored relative to the API host.
	ImageBase string
}

type SecurityConfig struct {
	JWTSecret    string
	JWTPublicKey string
}

type KafkaConfig struct {
	Brokers []string
	GroupID string
	// Topics maps an entity (books, orders, users) to the broker topics announcing its changes.
	Topics map[string][]string
}

type LoggingConfig struct {
	Level     string
	Format    string
	Directory string
}

type ListingConfig struct {
	PollInterval       time.Duration
	MaxSessions        int
	DebounceWait       time.Duration
	RefreshConcurrency int
	AllowedActions     []string
}

var defaultEntities = []string{"books", "orders", "users"}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var errs []error
	durationVar := func(key string, fallback time.Duration) time.Duration {
		d, err := envDuration(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}
	intVar := func(key string, fallback int) int {
		n, err := envInt(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}

	cfg := &Config{
		Server: ServerConfig{Port: envOr("PORT", "8080")},
		REST: RESTConfig{
			BaseURL: strings.TrimRight(envOr("REST_BASE_URL", "http://localhost:3000/api"), "/"),
			Timeout: durationVar("REST_TIMEOUT", 10*time.Second),
		},
		Media: MediaConfig{
			UploadURL: strings.TrimSpace(os.Getenv("MEDIA_UPLOAD_URL")),
			Preset:    strings.TrimSpace(os.Getenv("MEDIA_UPLOAD_PRESET")),
			MaxBytes:  int64(intVar("MEDIA_MAX_BYTES", 2<<20)),
			Timeout:   durationVar("MEDIA_TIMEOUT", 30*time.Second),
			ImageBase: strings.TrimRight(strings.TrimSpace(os.Getenv("MEDIA_IMAGE_BASE")), "/"),
		},
		Security: SecurityConfig{
			JWTSecret:    strings.TrimSpace(os.Getenv("JWT_SECRET")),
			JWTPublicKey: strings.ReplaceAll(strings.TrimSpace(os.Getenv("JWT_PUBLIC_KEY")), `\n`, "\n"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(firstEnv("KAFKA_BROKERS", "KAFKA_BROKER")),
			GroupID: envOr("KAFKA_GROUP_ID", "bookshelf-ws"),
		},
		Logging: LoggingConfig{
			Level:     envOr("LOG_LEVEL", "info"),
			Format:    envOr("LOG_FORMAT", "text"),
			Directory: envOr("LOG_DIR", "./logs"),
		},
		Listing: ListingConfig{
			PollInterval:       durationVar("LISTING_POLL_INTERVAL", 30*time.Second),
			MaxSessions:        intVar("LISTING_MAX_SESSIONS", 512),
			DebounceWait:       durationVar("LISTING_DEBOUNCE_WAIT", 250*time.Millisecond),
			RefreshConcurrency: intVar("LISTING_REFRESH_CONCURRENCY", 8),
			AllowedActions:     splitList(envOr("LISTING_ALLOWED_ACTIONS", "created,updated,deleted")),
		},
	}
	cfg.Kafka.Topics = kafkaTopics(envOr("KAFKA_TOPIC_PREFIX", "bookstore"), cfg.Listing.AllowedActions)

	if cfg.Security.JWTSecret == "" && cfg.Security.JWTPublicKey == "" {
		errs = append(errs, errors.New("JWT_SECRET or JWT_PUBLIC_KEY is required"))
	}
	if u, err := url.Parse(cfg.REST.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("REST_BASE_URL %q is not an absolute URL", cfg.REST.BaseURL))
	}
	if base := cfg.Media.ImageBase; base != "" {
		if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("MEDIA_IMAGE_BASE %q is not an absolute URL", base))
		}
	}
	if cfg.Listing.PollInterval < time.Second {
		errs = append(errs, fmt.Errorf("LISTING_POLL_INTERVAL must be at least 1s, got %s", cfg.Listing.PollInterval))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// kafkaTopics builds <prefix>.<entity>.<action> for every entity. KAFKA_TOPICS_<ENTITY>
// replaces the derived list with an explicit comma separated one.
func kafkaTopics(prefix string, actions []string) map[string][]string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	topics := make(map[string][]string, len(defaultEntities))
	for _, entity := range defaultEntities {
		if explicit := splitList(os.Getenv("KAFKA_TOPICS_" + strings.ToUpper(entity))); len(explicit) > 0 {
			topics[entity] = explicit
			continue
		}
		list := make([]string, 0, len(actions))
		for _, action := range actions {
			name := entity + "." + strings.ToLower(action)
			if prefix != "" {
				name = prefix + "." + name
			}
			list = append(list, name)
		}
		topics[entity] = list
	}
	return topics
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
