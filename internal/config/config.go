// Package config handles loading and validating the voxlate configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration for the voxlate daemon.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Transports   TransportsConfig   `mapstructure:"transports"`
	Translator   TranslatorConfig   `mapstructure:"translator"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	Languages    LanguagesConfig    `mapstructure:"languages"`
	Mode         string             `mapstructure:"mode"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Tables       TablesConfig       `mapstructure:"tables"`
	Pipeline     PipelineConfig     `mapstructure:"pipeline"`
	Synthesis    SynthesisConfig    `mapstructure:"synthesis"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// TranslatorConfig configures the translation fallback chain.
type TranslatorConfig struct {
	Online  OnlineConfig  `mapstructure:"online"`
	Offline OfflineConfig `mapstructure:"offline"`
}

// OnlineConfig holds the hosted translation API settings.
type OnlineConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	APIKey    string `mapstructure:"api_key"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
}

// OfflineConfig holds the local inference server settings.
type OfflineConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Endpoint string   `mapstructure:"endpoint"`
	Pairs    []string `mapstructure:"pairs"` // installed packages as "src-tgt"
	Pivot    string   `mapstructure:"pivot"` // pivot language, default "en"
}

// ConversationConfig configures bidirectional conversation routing.
type ConversationConfig struct {
	Enabled             bool    `mapstructure:"enabled"`
	LanguageA           string  `mapstructure:"language_a"`
	LanguageB           string  `mapstructure:"language_b"`
	AutoMode            bool    `mapstructure:"auto_mode"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
}

// LanguagesConfig holds the static language pair used when conversation
// routing is disabled.
type LanguagesConfig struct {
	Source string `mapstructure:"source"`
	Target string `mapstructure:"target"`
}

// CacheConfig configures the two-tier translation cache.
type CacheConfig struct {
	MemoryEntries int    `mapstructure:"memory_entries"`
	Durable       bool   `mapstructure:"durable"`
	Path          string `mapstructure:"path"` // SQLite database file
}

// TablesConfig points to custom slang/autocorrect tables. Empty paths use the
// embedded defaults.
type TablesConfig struct {
	Slang       string `mapstructure:"slang"`
	Autocorrect string `mapstructure:"autocorrect"`
}

// PipelineConfig holds resolution concurrency and context settings.
type PipelineConfig struct {
	MaxConcurrent int `mapstructure:"max_concurrent"`
	ContextWindow int `mapstructure:"context_window"`
}

// SynthesisConfig selects and configures the speech synthesis backend.
type SynthesisConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Endpoint is the default Wyoming TCP endpoint (host:port). Endpoints
	// maps ISO-639-1 codes to per-language instances and takes precedence.
	Endpoint  string            `mapstructure:"endpoint"`
	Endpoints map[string]string `mapstructure:"endpoints"`
	Voices    map[string]string `mapstructure:"voices"`

	// VoiceModelDir is scanned for voice-conversion models gating
	// voice-preserving mode.
	VoiceModelDir string `mapstructure:"voice_model_dir"`

	// ActiveModel selects a voice model from VoiceModelDir at startup.
	// Models can also be activated at runtime through the HTTP API.
	ActiveModel string `mapstructure:"active_model"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./voxlate.yaml, ./configs/voxlate.yaml, /etc/voxlate/voxlate.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.grpc.enabled", true)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("translator.online.enabled", true)
	v.SetDefault("translator.online.endpoint", "https://libretranslate.com/translate")
	v.SetDefault("translator.online.timeout_ms", 4000)
	v.SetDefault("translator.offline.enabled", true)
	v.SetDefault("translator.offline.endpoint", "http://localhost:5000/translate")
	v.SetDefault("translator.offline.pivot", "en")
	v.SetDefault("conversation.enabled", false)
	v.SetDefault("conversation.language_a", "en")
	v.SetDefault("conversation.language_b", "fr")
	v.SetDefault("conversation.confidence_threshold", 0.8)
	v.SetDefault("languages.source", "en")
	v.SetDefault("languages.target", "fr")
	v.SetDefault("mode", "standard")
	v.SetDefault("cache.memory_entries", 500)
	v.SetDefault("cache.durable", true)
	v.SetDefault("cache.path", "voxlate.db")
	v.SetDefault("pipeline.max_concurrent", 6)
	v.SetDefault("pipeline.context_window", 10)
	v.SetDefault("synthesis.enabled", false)
	v.SetDefault("synthesis.endpoint", "localhost:10200")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("voxlate")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/voxlate")
	}

	// Environment variables: VOXLATE_MODE, VOXLATE_CACHE_PATH, etc.
	v.SetEnvPrefix("VOXLATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional — env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${LT_API_KEY}")
	cfg.Translator.Online.APIKey = resolveEnvRef(cfg.Translator.Online.APIKey)

	return &cfg, nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
