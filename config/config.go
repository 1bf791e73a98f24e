package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	BackendSanity   = "sanity"
	BackendPostgres = "postgres"
)

type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	CORS    CORSConfig    `yaml:"cors"`
	Content ContentConfig `yaml:"content"`
	Email   EmailConfig   `yaml:"email"`
	Render  RenderConfig  `yaml:"render"`
	Log     LogConfig     `yaml:"log"`
}

type HTTPConfig struct {
	Address   string          `yaml:"address"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig throttles the email endpoint. Zero requests per second disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type ContentConfig struct {
	// ConfigURL points at the site's own /api/config endpoint.
	ConfigURL string         `yaml:"config_url"`
	Backend   string         `yaml:"backend"`
	Sanity    SanityConfig   `yaml:"sanity"`
	Database  DatabaseConfig `yaml:"database"`
}

type SanityConfig struct {
	ProjectID  string `yaml:"project_id"`
	Dataset    string `yaml:"dataset"`
	APIVersion string `yaml:"api_version"`
	Token      string `yaml:"token"`
	UseCDN     bool   `yaml:"use_cdn"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type EmailConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	SSL            *bool  `yaml:"ssl"`
	FromName       string `yaml:"from_name"`
	FromAddress    string `yaml:"from_address"`
	ReplyTo        string `yaml:"reply_to"`
	MaxConnections int    `yaml:"max_connections"`
}

// UseSSL reports whether the relay is reached over implicit TLS. Defaults to true.
func (e EmailConfig) UseSSL() bool {
	return e.SSL == nil || *e.SSL
}

type RenderConfig struct {
	// TimeZone is an IANA zone name used for event dates. Empty means the process local zone.
	TimeZone string `yaml:"time_zone"`
	Currency string `yaml:"currency"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.RateLimit.RequestsPerSecond > 0 && c.HTTP.RateLimit.Burst <= 0 {
		c.HTTP.RateLimit.Burst = 1
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"https://chicago-tickets-cms.netlify.app"}
	}
	if c.Content.Backend == "" {
		c.Content.Backend = BackendSanity
	}
	if c.Content.Sanity.APIVersion == "" {
		c.Content.Sanity.APIVersion = "2023-05-03"
	}
	if c.Email.Port == 0 {
		c.Email.Port = 465
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "Arthaus"
	}
	if c.Email.FromAddress == "" {
		c.Email.FromAddress = "tickets@arthaus.mt"
	}
	if c.Email.ReplyTo == "" {
		c.Email.ReplyTo = c.Email.FromAddress
	}
	if c.Email.MaxConnections <= 0 {
		c.Email.MaxConnections = 5
	}
	if c.Render.Currency == "" {
		c.Render.Currency = "EUR"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	if c.Content.ConfigURL == "" {
		return fmt.Errorf("content.config_url is required")
	}
	switch c.Content.Backend {
	case BackendSanity:
		if c.Content.Sanity.ProjectID == "" || c.Content.Sanity.Dataset == "" {
			return fmt.Errorf("content.sanity.project_id and content.sanity.dataset are required")
		}
	case BackendPostgres:
		if c.Content.Database.Host == "" || c.Content.Database.Name == "" {
			return fmt.Errorf("content.database.host and content.database.name are required")
		}
	default:
		return fmt.Errorf("unknown content backend %q", c.Content.Backend)
	}
	if c.Email.Host == "" {
		return fmt.Errorf("email.host is required")
	}
	return nil
}
