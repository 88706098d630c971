package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobdigest/internal/secrets"
)

// Config is the root configuration for a jobdigest run.
type Config struct {
	Roles        []string
	Locations    []string
	Profiles     []ProfileConfig
	Search       SearchConfig
	SerpAPI      SerpAPIConfig
	RateLimit    RateLimitConfig
	Retry        RetryConfig
	Embedding    EmbeddingConfig
	Ranking      RankingConfig
	Notification NotificationConfig
}

// ProfileConfig names a candidate profile whose text lives in a file.
// Relative paths are resolved against the config file's directory.
type ProfileConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// ReadText returns the profile file's trimmed contents.
func (p ProfileConfig) ReadText() (string, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return "", fmt.Errorf("read profile %q: %w", p.Name, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("profile %q: file %q is empty", p.Name, p.Path)
	}
	return text, nil
}

// SearchConfig controls per-role collection.
type SearchConfig struct {
	MinJobs                int
	MaxHours               float64 // freshness window
	PageSize               int
	MaxRounds              int
	BroadenAfterRound      int
	BroadenTo              string // empty disables broadening
	MaxConsecutiveFailures int    // 0 never escalates provider failures
	TitleExcludeKeywords   []string
}

// SerpAPIConfig holds the search provider settings.
type SerpAPIConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// RateLimitConfig controls pacing of provider calls.
type RateLimitConfig struct {
	MinDelay       time.Duration // minimum gap between provider calls
	RolePause      time.Duration // pause between roles
	EmbeddingDelay time.Duration // minimum gap between embedding calls
}

// RetryConfig controls retries of failed provider calls.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// EmbeddingConfig selects and configures the embedding backend.
type EmbeddingConfig struct {
	Provider  string // "openai" or "gemini"
	Model     string
	APIKey    string
	BaseURL   string // openai provider only
	BatchSize int
	Timeout   time.Duration
	CachePath string // empty disables the SQLite cache; relative to the config file
}

// RankingConfig controls ranking output.
type RankingConfig struct {
	TopK int // <= 0 keeps every match
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string // "log", "slack" or "email"
	WebhookURL string // required if type is "slack"
	Email      EmailConfig
}

// EmailConfig holds SMTP settings for the email notifier.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

const (
	defaultMinJobs           = 10
	defaultMaxHours          = 24.0
	defaultPageSize          = 20
	defaultMaxRounds         = 8
	defaultBroadenAfterRound = 2
	defaultSerpAPIBaseURL    = "https://serpapi.com"
	defaultSerpAPITimeout    = 30 * time.Second
	defaultMinDelay          = 1 * time.Second
	defaultRolePause         = 1 * time.Second
	defaultMaxRetries        = 3
	defaultRetryBaseDelay    = 2 * time.Second
	defaultEmbeddingProvider = "openai"
	defaultBatchSize         = 64
	defaultEmbeddingTimeout  = 30 * time.Second
	defaultTopK              = 15
	defaultSMTPHost          = "smtp.gmail.com"
	defaultSMTPPort          = 587

	slackWebhookPrefix = "https://hooks.slack.com/"
)

// rawConfig is used for YAML unmarshaling (snake_case fields, durations as
// strings, pointers where an explicit zero differs from "unset").
type rawConfig struct {
	Roles        []string              `yaml:"roles"`
	Locations    []string              `yaml:"locations"`
	Profiles     []ProfileConfig       `yaml:"profiles"`
	Search       rawSearchConfig       `yaml:"search"`
	SerpAPI      rawSerpAPIConfig      `yaml:"serpapi"`
	RateLimit    rawRateLimitConfig    `yaml:"rate_limit"`
	Retry        rawRetryConfig        `yaml:"retry"`
	Embedding    rawEmbeddingConfig    `yaml:"embedding"`
	Ranking      rawRankingConfig      `yaml:"ranking"`
	Notification rawNotificationConfig `yaml:"notification"`
}

type rawSearchConfig struct {
	MinJobs                *int     `yaml:"min_jobs"`
	MaxHours               *float64 `yaml:"max_hours"`
	PageSize               *int     `yaml:"page_size"`
	MaxRounds              *int     `yaml:"max_rounds"`
	BroadenAfterRound      *int     `yaml:"broaden_after_round"`
	BroadenTo              string   `yaml:"broaden_to"`
	MaxConsecutiveFailures int      `yaml:"max_consecutive_failures"`
	TitleExcludeKeywords   []string `yaml:"title_exclude_keywords"`
}

type rawSerpAPIConfig struct {
	APIKey     string `yaml:"api_key"`
	APIKeyFile string `yaml:"api_key_file"`
	BaseURL    string `yaml:"base_url"`
	Timeout    string `yaml:"timeout"`
}

type rawRateLimitConfig struct {
	MinDelay       string `yaml:"min_delay"`
	RolePause      string `yaml:"role_pause"`
	EmbeddingDelay string `yaml:"embedding_delay"`
}

type rawRetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

type rawEmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	APIKeyFile string `yaml:"api_key_file"`
	BaseURL    string `yaml:"base_url"`
	BatchSize  int    `yaml:"batch_size"`
	Timeout    string `yaml:"timeout"`
	CachePath  string `yaml:"cache_path"`
}

type rawRankingConfig struct {
	TopK *int `yaml:"top_k"`
}

type rawNotificationConfig struct {
	Type       string         `yaml:"type"`
	WebhookURL string         `yaml:"webhook_url"`
	Email      rawEmailConfig `yaml:"email"`
}

type rawEmailConfig struct {
	Host         string   `yaml:"host"`
	Port         int      `yaml:"port"`
	Username     string   `yaml:"username"`
	Password     string   `yaml:"password"`
	PasswordFile string   `yaml:"password_file"`
	From         string   `yaml:"from"`
	To           []string `yaml:"to"`
}

// Load reads and parses the YAML config file at path, resolves secrets,
// validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	serpTimeout, err := parseDuration("serpapi.timeout", raw.SerpAPI.Timeout, defaultSerpAPITimeout)
	if err != nil {
		return nil, err
	}
	minDelay, err := parseDuration("rate_limit.min_delay", raw.RateLimit.MinDelay, defaultMinDelay)
	if err != nil {
		return nil, err
	}
	rolePause, err := parseDuration("rate_limit.role_pause", raw.RateLimit.RolePause, defaultRolePause)
	if err != nil {
		return nil, err
	}
	embedDelay, err := parseDuration("rate_limit.embedding_delay", raw.RateLimit.EmbeddingDelay, 0)
	if err != nil {
		return nil, err
	}
	retryDelay, err := parseDuration("retry.base_delay", raw.Retry.BaseDelay, defaultRetryBaseDelay)
	if err != nil {
		return nil, err
	}
	embedTimeout, err := parseDuration("embedding.timeout", raw.Embedding.Timeout, defaultEmbeddingTimeout)
	if err != nil {
		return nil, err
	}

	serpKey, err := secrets.Require(secrets.Source{Name: "serpapi.api_key", Value: raw.SerpAPI.APIKey, File: raw.SerpAPI.APIKeyFile})
	if err != nil {
		return nil, err
	}
	embedKey, err := secrets.Resolve(secrets.Source{Name: "embedding.api_key", Value: raw.Embedding.APIKey, File: raw.Embedding.APIKeyFile})
	if err != nil {
		return nil, err
	}
	emailPassword, err := secrets.Resolve(secrets.Source{Name: "notification.email.password", Value: raw.Notification.Email.Password, File: raw.Notification.Email.PasswordFile})
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(path)
	profiles := make([]ProfileConfig, len(raw.Profiles))
	for i, p := range raw.Profiles {
		p.Name = strings.TrimSpace(p.Name)
		p.Path = strings.TrimSpace(p.Path)
		if p.Path != "" && !filepath.IsAbs(p.Path) {
			p.Path = filepath.Join(baseDir, p.Path)
		}
		profiles[i] = p
	}
	cachePath := strings.TrimSpace(raw.Embedding.CachePath)
	if cachePath != "" && !filepath.IsAbs(cachePath) {
		cachePath = filepath.Join(baseDir, cachePath)
	}

	provider := strings.ToLower(strings.TrimSpace(raw.Embedding.Provider))
	if provider == "" {
		provider = defaultEmbeddingProvider
	}
	batchSize := raw.Embedding.BatchSize
	if batchSize == 0 {
		batchSize = defaultBatchSize
	}

	serpBaseURL := strings.TrimSpace(raw.SerpAPI.BaseURL)
	if serpBaseURL == "" {
		serpBaseURL = defaultSerpAPIBaseURL
	}

	notifType := strings.ToLower(strings.TrimSpace(raw.Notification.Type))
	if notifType == "" {
		notifType = "log"
	}
	emailHost := raw.Notification.Email.Host
	if emailHost == "" {
		emailHost = defaultSMTPHost
	}
	emailPort := raw.Notification.Email.Port
	if emailPort == 0 {
		emailPort = defaultSMTPPort
	}
	emailTo := raw.Notification.Email.To
	if len(emailTo) == 0 && raw.Notification.Email.From != "" {
		emailTo = []string{raw.Notification.Email.From}
	}

	cfg := &Config{
		Roles:     trimAll(raw.Roles),
		Locations: trimAll(raw.Locations),
		Profiles:  profiles,
		Search: SearchConfig{
			MinJobs:                intOr(raw.Search.MinJobs, defaultMinJobs),
			MaxHours:               floatOr(raw.Search.MaxHours, defaultMaxHours),
			PageSize:               intOr(raw.Search.PageSize, defaultPageSize),
			MaxRounds:              intOr(raw.Search.MaxRounds, defaultMaxRounds),
			BroadenAfterRound:      intOr(raw.Search.BroadenAfterRound, defaultBroadenAfterRound),
			BroadenTo:              strings.TrimSpace(raw.Search.BroadenTo),
			MaxConsecutiveFailures: raw.Search.MaxConsecutiveFailures,
			TitleExcludeKeywords:   raw.Search.TitleExcludeKeywords,
		},
		SerpAPI: SerpAPIConfig{
			APIKey:  serpKey,
			BaseURL: serpBaseURL,
			Timeout: serpTimeout,
		},
		RateLimit: RateLimitConfig{
			MinDelay:       minDelay,
			RolePause:      rolePause,
			EmbeddingDelay: embedDelay,
		},
		Retry: RetryConfig{
			MaxRetries: intOr(raw.Retry.MaxRetries, defaultMaxRetries),
			BaseDelay:  retryDelay,
		},
		Embedding: EmbeddingConfig{
			Provider:  provider,
			Model:     strings.TrimSpace(raw.Embedding.Model),
			APIKey:    embedKey,
			BaseURL:   strings.TrimSpace(raw.Embedding.BaseURL),
			BatchSize: batchSize,
			Timeout:   embedTimeout,
			CachePath: cachePath,
		},
		Ranking: RankingConfig{
			TopK: intOr(raw.Ranking.TopK, defaultTopK),
		},
		Notification: NotificationConfig{
			Type:       notifType,
			WebhookURL: strings.TrimSpace(raw.Notification.WebhookURL),
			Email: EmailConfig{
				Host:     emailHost,
				Port:     emailPort,
				Username: raw.Notification.Email.Username,
				Password: emailPassword,
				From:     strings.TrimSpace(raw.Notification.Email.From),
				To:       emailTo,
			},
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if len(cfg.Roles) == 0 {
		return fmt.Errorf("at least one role is required")
	}
	if len(cfg.Locations) == 0 {
		return fmt.Errorf("at least one location is required")
	}

	if len(cfg.Profiles) == 0 {
		return fmt.Errorf("at least one profile is required")
	}
	seen := make(map[string]bool, len(cfg.Profiles))
	for i, p := range cfg.Profiles {
		if p.Name == "" {
			return fmt.Errorf("profiles[%d].name is required", i)
		}
		if p.Path == "" {
			return fmt.Errorf("profiles[%d].path is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate profile name %q", p.Name)
		}
		seen[p.Name] = true
	}

	s := cfg.Search
	switch {
	case s.MinJobs < 1:
		return fmt.Errorf("search.min_jobs must be >= 1, got %d", s.MinJobs)
	case s.MaxHours <= 0:
		return fmt.Errorf("search.max_hours must be positive, got %v", s.MaxHours)
	case s.PageSize < 1:
		return fmt.Errorf("search.page_size must be >= 1, got %d", s.PageSize)
	case s.MaxRounds < 1:
		return fmt.Errorf("search.max_rounds must be >= 1, got %d", s.MaxRounds)
	case s.BroadenAfterRound < 1:
		return fmt.Errorf("search.broaden_after_round must be >= 1, got %d", s.BroadenAfterRound)
	case s.MaxConsecutiveFailures < 0:
		return fmt.Errorf("search.max_consecutive_failures must be >= 0, got %d", s.MaxConsecutiveFailures)
	}

	if cfg.RateLimit.MinDelay < 0 || cfg.RateLimit.RolePause < 0 || cfg.RateLimit.EmbeddingDelay < 0 {
		return fmt.Errorf("rate_limit delays must not be negative")
	}
	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must be >= 0, got %d", cfg.Retry.MaxRetries)
	}

	switch cfg.Embedding.Provider {
	case "openai":
		// A custom base URL may point at a local server that needs no key.
		if cfg.Embedding.APIKey == "" && cfg.Embedding.BaseURL == "" {
			return fmt.Errorf("embedding.api_key is required for the openai provider")
		}
	case "gemini":
		if cfg.Embedding.APIKey == "" {
			return fmt.Errorf("embedding.api_key is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unknown embedding.provider %q (want openai or gemini)", cfg.Embedding.Provider)
	}
	if cfg.Embedding.BatchSize < 1 {
		return fmt.Errorf("embedding.batch_size must be >= 1, got %d", cfg.Embedding.BatchSize)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	case "email":
		if cfg.Notification.Email.From == "" {
			return fmt.Errorf("notification.email.from is required when type is \"email\"")
		}
		if cfg.Notification.Email.Password == "" {
			return fmt.Errorf("notification.email.password (or password_file) is required when type is \"email\"")
		}
	default:
		return fmt.Errorf("unknown notification.type %q (want log, slack or email)", cfg.Notification.Type)
	}

	return nil
}

func parseDuration(key, raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, raw, err)
	}
	return d, nil
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// trimAll trims every entry and drops blanks.
func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
