package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		// Driver is "sqlite" for the local/desktop store or "pgx" for hosted Postgres.
		Driver string `yaml:"driver" toml:"driver"`
		DSN    string `yaml:"dsn" toml:"dsn"`
		// LocalUserID is stamped on rows created without an owner. Leave it
		// empty for hosted deployments so every write must name its user.
		LocalUserID string `yaml:"local_user_id" toml:"local_user_id"`
	} `yaml:"database" toml:"database"`

	Discord struct {
		Token         string `yaml:"token,omitempty" toml:"token,omitempty"`
		ApplicationID string `yaml:"application_id,omitempty" toml:"application_id,omitempty"`
		GuildID       string `yaml:"guild_id,omitempty" toml:"guild_id,omitempty"`
		HealthAddr    string `yaml:"health_addr" toml:"health_addr"`
	} `yaml:"discord" toml:"discord"`

	AI struct {
		// Provider is "gemini" or "ollama".
		Provider    string `yaml:"provider" toml:"provider"`
		APIKey      string `yaml:"api_key,omitempty" toml:"api_key,omitempty"`
		Model       string `yaml:"model" toml:"model"`
		BaseURL     string `yaml:"base_url" toml:"base_url"`
		OllamaURL   string `yaml:"ollama_url" toml:"ollama_url"`
		OllamaModel string `yaml:"ollama_model" toml:"ollama_model"`
	} `yaml:"ai" toml:"ai"`

	Prompts struct {
		IMVUCaption      string `yaml:"imvu_caption,omitempty" toml:"imvu_caption,omitempty"`
		InstagramCaption string `yaml:"instagram_caption,omitempty" toml:"instagram_caption,omitempty"`
		ItemReview       string `yaml:"item_review,omitempty" toml:"item_review,omitempty"`
		RequestFormat    string `yaml:"request_format,omitempty" toml:"request_format,omitempty"`
	} `yaml:"prompts,omitempty" toml:"prompts,omitempty"`

	Schedule struct {
		Timezone     string `yaml:"timezone" toml:"timezone"`
		OverdueSpec  string `yaml:"overdue_spec" toml:"overdue_spec"`
		ReminderSpec string `yaml:"reminder_spec" toml:"reminder_spec"`
		// ReminderMode is "update" (claim the row before sending) or
		// "reinsert" (send, then write an inactive copy; the row refires).
		ReminderMode string `yaml:"reminder_mode" toml:"reminder_mode"`
	} `yaml:"schedule" toml:"schedule"`

	Web struct {
		Addr      string `yaml:"addr" toml:"addr"`
		AuthMode  string `yaml:"auth_mode" toml:"auth_mode"` // "local" or "jwt"
		JWTSecret string `yaml:"jwt_secret,omitempty" toml:"jwt_secret,omitempty"`
	} `yaml:"web" toml:"web"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "./aurelius.db"
	cfg.Database.LocalUserID = "local"
	cfg.Discord.HealthAddr = ":3000"
	cfg.AI.Provider = "gemini"
	cfg.AI.Model = "gemini-2.5-flash"
	cfg.AI.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	cfg.AI.OllamaURL = "http://localhost:11434"
	cfg.AI.OllamaModel = "llama3"
	cfg.Schedule.Timezone = "UTC"
	cfg.Schedule.OverdueSpec = "0 * * * *"
	cfg.Schedule.ReminderSpec = "0 9 * * *"
	cfg.Schedule.ReminderMode = "update"
	cfg.Web.Addr = "127.0.0.1:8080"
	cfg.Web.AuthMode = "local"
	return cfg
}

// LoadConfig reads a YAML or TOML file (chosen by extension) over the
// defaults, then applies environment overrides. A missing file is not an
// error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := cfg.decode(path, data); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.Decode(string(data), c)
		return err
	default:
		return yaml.Unmarshal(data, c)
	}
}

// Encode renders the config in the format implied by path's extension.
func (c *Config) Encode(path string) ([]byte, error) {
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		var b strings.Builder
		if err := toml.NewEncoder(&b).Encode(c); err != nil {
			return nil, err
		}
		return []byte(b.String()), nil
	}
	return yaml.Marshal(c)
}

// ApplyEnv overrides config values from the deployment environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.Database.Driver, "AURELIUS_DB_DRIVER")
	set(&c.Database.DSN, "DATABASE_URL")
	set(&c.Discord.Token, "DISCORD_TOKEN")
	set(&c.Discord.ApplicationID, "DISCORD_CLIENT_ID")
	set(&c.Discord.GuildID, "DISCORD_GUILD_ID")
	set(&c.AI.APIKey, "GEMINI_API_KEY")
	set(&c.Web.JWTSecret, "SUPABASE_JWT_SECRET")
	if port, ok := lookup("PORT"); ok && port != "" {
		c.Discord.HealthAddr = ":" + port
	}
	// Postgres URLs imply the hosted variant.
	if strings.HasPrefix(c.Database.DSN, "postgres://") || strings.HasPrefix(c.Database.DSN, "postgresql://") {
		c.Database.Driver = "pgx"
	}
	// Hosted stores never fall back to a shared owner unless the deployment
	// names one explicitly.
	if c.Database.Driver == "pgx" {
		c.Database.LocalUserID = ""
	}
	set(&c.Database.LocalUserID, "AURELIUS_LOCAL_USER_ID")
}

// Validate reports configuration errors that must stop startup.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "pgx":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	switch c.Schedule.ReminderMode {
	case "update", "reinsert":
	default:
		return fmt.Errorf("unsupported reminder mode %q", c.Schedule.ReminderMode)
	}
	return nil
}
