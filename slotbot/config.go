package slotbot

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/disgoorg/slotbot/internal/domain/mentions"
	"github.com/disgoorg/slotbot/internal/gateways/store"
)

const (
	DefaultTimezone  = "Europe/Tirane"
	DefaultStorePath = "database.json"

	StoreBackendFile   = "file"
	StoreBackendSpaces = "spaces"
)

var DefaultStatuses = []string{"hello", "hi"}

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.applyDefaults()
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log    LogConfig          `toml:"log"`
	Bot    BotConfig          `toml:"bot"`
	Store  StoreConfig        `toml:"store"`
	Spaces store.SpacesConfig `toml:"spaces"`
}

type BotConfig struct {
	DevGuilds    []snowflake.ID `toml:"dev_guilds"`
	Token        string         `toml:"token"`
	GuildID      snowflake.ID   `toml:"guild_id"`
	CategoryID   snowflake.ID   `toml:"category_id"`
	Timezone     string         `toml:"timezone"`
	Statuses     []string       `toml:"statuses"`
	MentionLimit int            `toml:"mention_limit"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type StoreConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

func (c *Config) applyDefaults() {
	if c.Bot.Timezone == "" {
		c.Bot.Timezone = DefaultTimezone
	}
	if len(c.Bot.Statuses) == 0 {
		c.Bot.Statuses = DefaultStatuses
	}
	if c.Bot.MentionLimit <= 0 {
		c.Bot.MentionLimit = mentions.DefaultLimit
	}
	if c.Store.Backend == "" {
		c.Store.Backend = StoreBackendFile
	}
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath
	}
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Bot.Token == "" {
		errs = append(errs, errors.New("bot.token is required"))
	}
	if c.Bot.CategoryID == 0 {
		errs = append(errs, errors.New("bot.category_id is required"))
	}
	if _, err := time.LoadLocation(c.Bot.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("bot.timezone %q: %w", c.Bot.Timezone, err))
	}
	switch c.Store.Backend {
	case StoreBackendFile:
	case StoreBackendSpaces:
		if c.Spaces.Bucket == "" || c.Spaces.Region == "" {
			errs = append(errs, errors.New("spaces.bucket and spaces.region are required for the spaces store"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend %q: want %q or %q", c.Store.Backend, StoreBackendFile, StoreBackendSpaces))
	}
	return errors.Join(errs...)
}

// Location returns the configured timezone. Validate has already checked that it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Bot.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
