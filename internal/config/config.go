package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Config holds the example bot settings.
type Config struct {
	DiscordToken string   `env:"DISCORD_TOKEN,required,notEmpty"`
	GuildIDs     []string `env:"DISCORD_GUILD_IDS" envSeparator:","`
	SyncCommands bool     `env:"SYNC_COMMANDS" envDefault:"true"`
	LogLevel     string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFile      string   `env:"LOG_FILE"`
	HashDir      string   `env:"COMMAND_HASH_DIR" envDefault:"data/commands"`
}

// New loads .env (when present) and parses the environment.
func New() (*Config, error) {
	// A missing .env falls back to the system environment.
	_ = godotenv.Load()
	return Parse(env.Options{})
}

// Parse reads the config with the given options, mostly for tests.
func Parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return &cfg, nil
}

// Level returns the zerolog level, info when LOG_LEVEL is not a level name.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// HashCachePath reports whether a hash dir is set and can be created.
func (c *Config) HashCachePath() (string, bool) {
	if c.HashDir == "" {
		return "", false
	}
	if err := os.MkdirAll(c.HashDir, 0o755); err != nil {
		return "", false
	}
	return c.HashDir, true
}
