// Package config loads process configuration once at startup.
//
// Precedence, lowest to highest: built-in defaults, an optional YAML file
// named by CONFIG_PATH, then environment variables. .env and .env.local are
// read into the environment first but never override variables that are
// already set.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the optional YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Archive   ArchiveConfig   `koanf:"archive"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
}

type ServerConfig struct {
	Addr         string        `koanf:"addr" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	EnableHSTS   bool          `koanf:"enable_hsts"`
}

// ArchiveConfig points at the upstream Internet Archive endpoints.
type ArchiveConfig struct {
	SearchURL   string        `koanf:"search_url" validate:"required,url"`
	MetadataURL string        `koanf:"metadata_url" validate:"required,url"`
	ImageURL    string        `koanf:"image_url" validate:"required,url"`
	DownloadURL string        `koanf:"download_url" validate:"required,url"`
	UserAgent   string        `koanf:"user_agent" validate:"required"`
	Timeout     time.Duration `koanf:"timeout" validate:"gte=0"`
	RPS         float64       `koanf:"rps" validate:"gt=0"`
	Burst       int           `koanf:"burst" validate:"gte=1"`
}

type BreakerConfig struct {
	Failures uint32        `koanf:"failures" validate:"gte=1"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`
}

type RateLimitConfig struct {
	Disabled bool    `koanf:"disabled"`
	RPS      float64 `koanf:"rps" validate:"gt=0"`
	Burst    int     `koanf:"burst" validate:"gte=1"`
}

type CORSConfig struct {
	Origins []string `koanf:"origins"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 75 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Archive: ArchiveConfig{
			SearchURL:   "https://archive.org/advancedsearch.php",
			MetadataURL: "https://archive.org/metadata",
			ImageURL:    "https://archive.org/services/img",
			DownloadURL: "https://archive.org/download",
			UserAgent:   "archiveapi/0.1.0",
			Timeout:     30 * time.Second,
			RPS:         5,
			Burst:       5,
		},
		Breaker: BreakerConfig{
			Failures: 5,
			Timeout:  30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RPS:   20,
			Burst: 40,
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads .env files into the environment and then builds the Config.
func Load() (Config, error) {
	loadEnvFiles()
	return load(os.Getenv(ConfigPathEnvVar))
}

func loadEnvFiles() {
	// Do not override environment provided by the runtime (e.g. Docker).
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

func load(configPath string) (Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envTransform), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
