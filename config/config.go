package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DatabaseURL string
	DBPath      string // operational sqlite store
	FilesDir    string // local document cache root

	Headless bool
	Warmup   bool

	Anthropic AnthropicConfig
	Geocoding GeocodingConfig
	S3        S3Config
	Scheduler SchedulerConfig

	Sites map[string]*SiteConfig
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type GeocodingConfig struct {
	APIKey string
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type SchedulerConfig struct {
	Cron     string
	Interval time.Duration
}

// SiteConfig carries per-site overrides loaded from config/sites/*.yaml.
// Selectors live in code; YAML holds only what operators tune: URLs,
// pagination ceilings and credentials.
type SiteConfig struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	BaseURL   string `yaml:"base_url"`
	SearchURL string `yaml:"search_url"` // %d is the page number
	Sentinel  string `yaml:"sentinel"`
	MaxPages  int    `yaml:"max_pages"`
	Email     string `yaml:"email"`
	Password  string `yaml:"-"` // env only, never YAML
	Disabled  bool   `yaml:"disabled"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBPath:      getEnv("DB_PATH", "scraper.db"),
		FilesDir:    getEnv("FILES_DIR", "files"),
		Headless:    getEnvBool("HEADLESS", true),
		Warmup:      getEnvBool("BROWSER_WARMUP", false),
		Anthropic: AnthropicConfig{
			APIKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		},
		Geocoding: GeocodingConfig{
			APIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		},
		S3: S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("SCRAPE_CRON"),
		},
		Sites: make(map[string]*SiteConfig),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if interval := os.Getenv("SCRAPE_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.loadSiteConfigs(); err != nil {
		return nil, err
	}
	cfg.applySiteCredentials()

	return cfg, nil
}

// Site returns the per-site overrides, or nil when none were configured.
func (c *Config) Site(id string) *SiteConfig {
	return c.Sites[id]
}

func (c *Config) loadSiteConfigs() error {
	configDir := "config/sites"
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(configDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var site SiteConfig
		if err := yaml.Unmarshal(data, &site); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if site.ID == "" {
			return fmt.Errorf("%s: site id is required", path)
		}
		c.Sites[site.ID] = &site
	}

	return nil
}

// applySiteCredentials pulls SITE_<ID>_EMAIL / SITE_<ID>_PASSWORD from the
// environment, creating a site entry when only credentials are configured.
func (c *Config) applySiteCredentials() {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, "SITE_") {
			continue
		}
		parts := strings.SplitN(env, "=", 2)
		key, val := parts[0], parts[1]

		var id, field string
		switch {
		case strings.HasSuffix(key, "_EMAIL"):
			id, field = strings.TrimSuffix(strings.TrimPrefix(key, "SITE_"), "_EMAIL"), "email"
		case strings.HasSuffix(key, "_PASSWORD"):
			id, field = strings.TrimSuffix(strings.TrimPrefix(key, "SITE_"), "_PASSWORD"), "password"
		default:
			continue
		}

		id = strings.ToLower(id)
		site := c.Sites[id]
		if site == nil {
			site = &SiteConfig{ID: id}
			c.Sites[id] = site
		}
		if field == "email" {
			site.Email = val
		} else {
			site.Password = val
		}
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
