// AngelaMos | 2026
// config.go

package config

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DevJWTSecret is the placeholder signing secret used when JWT_SECRET is
// unset. Production configs refuse to start with it.
const DevJWTSecret = "development-secret-key-change-in-production"

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	JWT       JWTConfig       `koanf:"jwt"`
	Hashing   HashingConfig   `koanf:"hashing"`
	Session   SessionConfig   `koanf:"session"`
	Chat      ChatConfig      `koanf:"chat"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
	TUI       TUIConfig       `koanf:"tui"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig selects the backend by URL scheme: postgres:// and
// postgresql:// use pgx, sqlite:// and file: use the pure Go SQLite driver.
// An empty URL runs the client without authentication.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type JWTConfig struct {
	Secret      string `koanf:"secret"`
	ExpiryHours int    `koanf:"expiry_hours"`
	Issuer      string `koanf:"issuer"`
}

func (j JWTConfig) TTL() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

func (j JWTConfig) UsingDevSecret() bool {
	return j.Secret == "" || j.Secret == DevJWTSecret
}

// HashingConfig holds argon2id cost parameters. Memory is in KiB.
type HashingConfig struct {
	Memory      uint32 `koanf:"memory"`
	Iterations  uint32 `koanf:"iterations"`
	Parallelism uint8  `koanf:"parallelism"`
	KeyLength   uint32 `koanf:"key_length"`
	SaltLength  uint32 `koanf:"salt_length"`
}

type SessionConfig struct {
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

type ChatConfig struct {
	APIKey         string        `koanf:"api_key"`
	Endpoint       string        `koanf:"endpoint"`
	Model          string        `koanf:"model"`
	Timeout        time.Duration `koanf:"timeout"`
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
	MaxHistory     int           `koanf:"max_history"`
	RequireAuth    bool          `koanf:"require_auth"`
	SystemPrompt   string        `koanf:"system_prompt"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

type TUIConfig struct {
	TickInterval time.Duration `koanf:"tick_interval"`
	Workers      int           `koanf:"workers"`
}

// Load builds a Config from defaults, an optional YAML file and the
// environment, in that order of precedence.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = DevJWTSecret
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "QHub",
		"app.version":     "0.1.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.auto_migrate":       true,
		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"jwt.expiry_hours": 24,
		"jwt.issuer":       "qhub",

		"hashing.memory":      64 * 1024,
		"hashing.iterations":  1,
		"hashing.parallelism": 4,
		"hashing.key_length":  32,
		"hashing.salt_length": 16,

		"session.sweep_interval": "1h",

		"chat.endpoint":         DefaultChatEndpoint,
		"chat.model":            DefaultChatModel,
		"chat.timeout":          "120s",
		"chat.max_retries":      3,
		"chat.retry_base_delay": "2s",
		"chat.max_history":      20,
		"chat.require_auth":     true,
		"chat.system_prompt":    DefaultSystemPrompt,

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"log.level":  "info",
		"log.format": "json",
		"log.file":   "qhub.log",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "qhub",

		"tui.tick_interval": "50ms",
		"tui.workers":       4,
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

// The default chat backend is the Cloudflare AI gateway's OpenAI-compatible
// route, which accepts the CLOUDFLARE_AI_TOKEN bearer token.
const (
	DefaultChatEndpoint = "https://gateway.ai.cloudflare.com/v1/" +
		"2d4b81ed42312401410d8ab4cd8c5dcf/northstars-industries/compat/chat/completions"
	DefaultChatModel = "deepseek/deepseek-chat"
)

const DefaultSystemPrompt = `You are QHub, an AI assistant specialized in quantum computing.
You help users design and implement quantum algorithms and circuits.

When a user describes a computation they want to perform:
1. Explain what quantum approach would be suitable
2. Generate Python code using Qiskit that implements the quantum circuit
3. Explain the expected output/results

Keep responses concise but informative. Use code blocks with ` + "```python" + ` for code.`

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"DATABASE_AUTO_MIGRATE":       "database.auto_migrate",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"LOG_FILE":                    "log.file",
	"JWT_SECRET":                  "jwt.secret",
	"TOKEN_EXPIRY_HOURS":          "jwt.expiry_hours",
	"JWT_ISSUER":                  "jwt.issuer",
	"ARGON_MEMORY":                "hashing.memory",
	"ARGON_ITERATIONS":            "hashing.iterations",
	"ARGON_PARALLELISM":           "hashing.parallelism",
	"SESSION_SWEEP_INTERVAL":      "session.sweep_interval",
	"CLOUDFLARE_AI_TOKEN":         "chat.api_key",
	"CHAT_API_KEY":                "chat.api_key",
	"CHAT_ENDPOINT":               "chat.endpoint",
	"CHAT_MODEL":                  "chat.model",
	"CHAT_TIMEOUT":                "chat.timeout",
	"CHAT_REQUIRE_AUTH":           "chat.require_auth",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func validate(c *Config) error {
	if c.IsProduction() {
		if c.JWT.UsingDevSecret() {
			return fmt.Errorf("JWT_SECRET is required in production")
		}

		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
	}

	if c.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("TOKEN_EXPIRY_HOURS must be positive")
	}

	if c.Hashing.Memory == 0 || c.Hashing.Iterations == 0 ||
		c.Hashing.Parallelism == 0 {
		return fmt.Errorf("hashing parameters must be positive")
	}

	if c.Hashing.KeyLength < 16 || c.Hashing.SaltLength < 8 {
		return fmt.Errorf("hashing key or salt length too short")
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	if c.Chat.MaxHistory < 1 {
		return fmt.Errorf("chat.max_history must be at least 1")
	}

	if c.Chat.Endpoint == "" {
		return fmt.Errorf("chat.endpoint must be set")
	}

	if c.TUI.Workers < 1 {
		return fmt.Errorf("tui.workers must be at least 1")
	}

	if c.TUI.TickInterval <= 0 {
		return fmt.Errorf("tui.tick_interval must be positive")
	}

	return nil
}

// AuthEnabled reports whether a database is configured. Without one the
// client runs in chat-only mode.
func (c *Config) AuthEnabled() bool {
	return c.Database.URL != ""
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
