package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode     string `mapstructure:"mode"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
	Secret   string `mapstructure:"secret"`

	// TrustForwardedFor reads client addresses from X-Forwarded-For. Only
	// safe behind a reverse proxy that overwrites the header.
	TrustForwardedFor bool `mapstructure:"trust_forwarded_for"`

	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	SendBuffer int           `mapstructure:"send_buffer"`

	IdleWindow           time.Duration `mapstructure:"idle_window"`
	MaxPinAttempts       int           `mapstructure:"max_pin_attempts"`
	MaxParticipantsLimit int           `mapstructure:"max_participants_limit"`
	DeviceMatch          string        `mapstructure:"device_match"`
	LookupTimeout        time.Duration `mapstructure:"lookup_timeout"`
	MaxMessageLen        int           `mapstructure:"max_message_len"`
	JoinRatePerMinute    int           `mapstructure:"join_rate_per_minute"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 5000)
	v.SetDefault("log_level", "info")
	v.SetDefault("secret", "dev-secret-change-me")
	v.SetDefault("trust_forwarded_for", true)
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("idle_window", "10m")
	v.SetDefault("max_pin_attempts", 1000)
	v.SetDefault("max_participants_limit", 100)
	v.SetDefault("device_match", "primary")
	v.SetDefault("lookup_timeout", "2s")
	v.SetDefault("max_message_len", 2000)
	v.SetDefault("join_rate_per_minute", 30)
}

// Load reads config/config.<CONFIG_ENV>.yaml (dev when unset). A missing
// file is not an error; CHATSALA_* variables override both file and defaults.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvPrefix("CHATSALA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).
		Dur("idle_window", cfg.IdleWindow).Str("device_match", cfg.DeviceMatch).Msg("config ready")
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.IdleWindow <= 0 {
		return fmt.Errorf("config: idle_window must be positive, got %s", c.IdleWindow)
	}
	if c.SendBuffer <= 0 {
		return fmt.Errorf("config: send_buffer must be positive, got %d", c.SendBuffer)
	}
	if c.PingPeriod <= 0 {
		return fmt.Errorf("config: ping_period must be positive, got %s", c.PingPeriod)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	return nil
}

// Level is the zerolog level named by log_level.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
