package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable the CLI reads.
const EnvPrefix = "VOICEUP_"

// Audiences and styles accepted by the analysis service.
var (
	Audiences = []string{"General", "Investors", "Technical"}
	Styles    = []string{"Neutral", "More Confident", "Add Humor"}
)

// Timeouts bounds each remote call.
type Timeouts struct {
	Clone   time.Duration `yaml:"clone"`
	Analyze time.Duration `yaml:"analyze"`
	TTS     time.Duration `yaml:"tts"`
}

// Config holds the full application configuration.
type Config struct {
	APIBase  string   `yaml:"api_base"`
	Audience string   `yaml:"audience"`
	Style    string   `yaml:"style"`
	Timeouts Timeouts `yaml:"timeouts"`

	// VoicesFile is the saved-voice list. Empty means DataDir()/voiceup_voices.json.
	VoicesFile string `yaml:"voices_file"`
	// Player is the command used to play audio; the file path is appended.
	Player []string `yaml:"player"`

	MaxConcurrent   int `yaml:"max_concurrent"`
	RateLimitPerMin int `yaml:"rate_limit_rpm"`
	WrapWidth       int `yaml:"wrap_width"`
}

// Default returns a Config with the service's documented defaults.
func Default() *Config {
	return &Config{
		APIBase:  "http://localhost:8000",
		Audience: "General",
		Style:    "Neutral",
		Timeouts: Timeouts{
			Clone:   90 * time.Second,
			Analyze: 120 * time.Second,
			TTS:     120 * time.Second,
		},
		Player:          []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
		MaxConcurrent:   2,
		RateLimitPerMin: 20,
		WrapWidth:       80,
	}
}

// Dir returns the directory holding config.yaml and the saved-voice list.
func Dir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "voiceup")
	}
	return ".voiceup"
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load builds a Config from defaults, then the YAML file at path, then a
// .env file in the working directory, then VOICEUP_* environment variables.
// A missing file at path is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("no config file", "path", path)
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "err", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.Audience = Pick(cfg.Audience, Audiences)
	cfg.Style = Pick(cfg.Style, Styles)
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvPrefix + "API_BASE"); v != "" {
		c.APIBase = v
	}
	if v := os.Getenv(EnvPrefix + "AUDIENCE"); v != "" {
		c.Audience = v
	}
	if v := os.Getenv(EnvPrefix + "STYLE"); v != "" {
		c.Style = v
	}
	if v := os.Getenv(EnvPrefix + "VOICES_FILE"); v != "" {
		c.VoicesFile = v
	}
	if v := os.Getenv(EnvPrefix + "MAX_CONCURRENT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_CONCURRENT: %w", EnvPrefix, err)
		}
		c.MaxConcurrent = n
	}
	if v := os.Getenv(EnvPrefix + "RATE_LIMIT_RPM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT_RPM: %w", EnvPrefix, err)
		}
		c.RateLimitPerMin = n
	}
	return nil
}

// VoicesPath returns the saved-voice file path.
func (c *Config) VoicesPath() string {
	if c.VoicesFile != "" {
		return c.VoicesFile
	}
	return filepath.Join(Dir(), "voiceup_voices.json")
}

// Pick returns value when it is one of allowed, otherwise allowed[0].
// The analysis service silently applies the same fallback.
func Pick(value string, allowed []string) string {
	for _, a := range allowed {
		if a == value {
			return value
		}
	}
	slog.Warn("unsupported value, using default", "value", value, "default", allowed[0])
	return allowed[0]
}
