package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "NEWSDESK_CONFIG"
	environmentEnv    = "NEWSDESK_ENV"
	listenAddrEnv     = "NEWSDESK_ADDR"
	logLevelEnv       = "LOG_LEVEL"
	databasePathEnv   = "DATABASE_PATH"
	contentDirEnv     = "CONTENT_DIR"
	guardianAPIKeyEnv = "GUARDIAN_API_KEY"
	ollamaURLEnv      = "OLLAMA_URL"
	ollamaModelEnv    = "OLLAMA_MODEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"

	// EnvProduction disables admin routes unless explicitly enabled.
	EnvProduction = "production"
)

// Config holds high-level settings required across the application.
type Config struct {
	Environment   string             `yaml:"environment"`
	Logging       LoggingConfig      `yaml:"logging"`
	Server        ServerConfig       `yaml:"server"`
	Database      DatabaseConfig     `yaml:"database"`
	Guardian      GuardianConfig     `yaml:"guardian"`
	Ollama        OllamaConfig       `yaml:"ollama"`
	Content       ContentConfig      `yaml:"content"`
	Queue         QueueConfig        `yaml:"queue"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig selects slog level and handler format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig describes the admin HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	AdminEnabled    *bool         `yaml:"adminEnabled"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// DatabaseConfig points at the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// GuardianConfig configures the content API pager.
type GuardianConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	APIKey    string        `yaml:"apiKey"`
	PageSize  int           `yaml:"pageSize"`
	PageDelay time.Duration `yaml:"pageDelay"`
}

// OllamaConfig configures the local text-generation service. Timeout 0 means
// no limit.
type OllamaConfig struct {
	URL     string        `yaml:"url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// ContentConfig is where published MDX artifacts live.
type ContentConfig struct {
	Dir string `yaml:"dir"`
}

// QueueConfig tunes the processing queue.
type QueueConfig struct {
	CompletedLinger time.Duration `yaml:"completedLinger"`
}

// SchedulerConfig enables periodic ingestion when IngestInterval > 0.
type SchedulerConfig struct {
	IngestInterval time.Duration `yaml:"ingestInterval"`
	IngestDays     int           `yaml:"ingestDays"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	APIBase  string `yaml:"apiBase"`
}

// AdminRoutesEnabled reports whether admin endpoints are served. Unless set
// explicitly they are off in production.
func (c Config) AdminRoutesEnabled() bool {
	if c.Server.AdminEnabled != nil {
		return *c.Server.AdminEnabled
	}
	return !strings.EqualFold(c.Environment, EnvProduction)
}

// Load reads YAML configuration over the defaults and applies environment
// overrides. path falls back to $NEWSDESK_CONFIG; no file at all is fine.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{environmentEnv, &c.Environment},
		{listenAddrEnv, &c.Server.Addr},
		{logLevelEnv, &c.Logging.Level},
		{databasePathEnv, &c.Database.Path},
		{contentDirEnv, &c.Content.Dir},
		{guardianAPIKeyEnv, &c.Guardian.APIKey},
		{ollamaURLEnv, &c.Ollama.URL},
		{ollamaModelEnv, &c.Ollama.Model},
		{telegramTokenEnv, &c.Notifications.Telegram.BotToken},
		{telegramChatIDEnv, &c.Notifications.Telegram.ChatID},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}
}

// Validate rejects settings the application cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Content.Dir == "" {
		errs = append(errs, errors.New("content.dir is required"))
	}
	if c.Guardian.PageSize < 1 || c.Guardian.PageSize > 200 {
		errs = append(errs, fmt.Errorf("guardian.pageSize must be within [1,200], got %d", c.Guardian.PageSize))
	}
	if c.Guardian.PageDelay < 0 {
		errs = append(errs, errors.New("guardian.pageDelay must not be negative"))
	}
	if c.Ollama.Timeout < 0 {
		errs = append(errs, errors.New("ollama.timeout must not be negative"))
	}
	if c.Scheduler.IngestInterval < 0 {
		errs = append(errs, errors.New("scheduler.ingestInterval must not be negative"))
	}
	return errors.Join(errs...)
}

// Default returns the configuration used when nothing else is provided.
func Default() Config {
	return Config{
		Environment: "development",
		Logging:     LoggingConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{Path: "data/newsdesk.db"},
		Guardian: GuardianConfig{
			Endpoint:  "https://content.guardianapis.com/search",
			PageSize:  50,
			PageDelay: time.Second,
		},
		Ollama: OllamaConfig{
			URL:   "http://localhost:11434",
			Model: "gpt-oss:20b",
		},
		Content:   ContentConfig{Dir: "content/articles"},
		Queue:     QueueConfig{CompletedLinger: 2 * time.Second},
		Scheduler: SchedulerConfig{IngestDays: 1},
	}
}
