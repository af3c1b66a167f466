// Package config handles bangtag.toml configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rubiojr/bangtag/status"
	"github.com/rubiojr/bangtag/store"
	"go.uber.org/zap/zapcore"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "bangtag.toml"

// Environment variables that override file settings.
const (
	EnvLogLevel = "BANGTAG_LOG_LEVEL"
	EnvDB       = "BANGTAG_DB"
)

// Config represents a bangtag.toml file.
type Config struct {
	Instance Instance    `toml:"instance"`
	Log      LogConfig   `toml:"log"`
	Store    StoreConfig `toml:"store"`
	Accounts []Account   `toml:"accounts"`
	Emojis   []Emoji     `toml:"emojis"`

	// Path is the file the configuration was read from (set at load time).
	Path string `toml:"-"`
}

// Instance describes the local server.
type Instance struct {
	Domain  string `toml:"domain"`
	BaseURL string `toml:"base_url"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// StoreConfig selects the collaborator backend.
type StoreConfig struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
}

// Account is an account seeded into the store at startup.
type Account struct {
	Username    string `toml:"username"`
	Domain      string `toml:"domain"`
	DisplayName string `toml:"display_name"`
	Avatar      string `toml:"avatar"`
	Role        string `toml:"role"`
}

// Emoji is a custom emoji seeded into the store. An empty domain makes it
// local.
type Emoji struct {
	Shortcode string `toml:"shortcode"`
	Domain    string `toml:"domain"`
	Image     string `toml:"image"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Instance: Instance{Domain: "localhost", BaseURL: "https://localhost"},
		Log:      LogConfig{Level: "info"},
		Store:    StoreConfig{Driver: "memory"},
	}
}

// Load parses the file at path on top of the defaults, applies the
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Path = path
	c.applyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadOrDefault loads path, or FileName from the working directory when
// path is empty. A missing FileName is not an error; the defaults are used.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(FileName); err == nil {
		return Load(FileName)
	}
	c := Default()
	c.applyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes TOML text on top of the defaults. Unknown keys are errors.
func Parse(text string) (*Config, error) {
	c := Default()
	md, err := toml.Decode(text, c)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := getenv(EnvDB); v != "" {
		c.Store.Driver = "sqlite"
		c.Store.Path = v
	}
}

// Validate checks the values a file can get wrong.
func (c *Config) Validate() error {
	var errs []error
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver))
	}
	for i, a := range c.Accounts {
		if a.Username == "" {
			errs = append(errs, fmt.Errorf("accounts[%d]: username is required", i))
		}
		if _, err := store.ParseRole(a.Role); err != nil {
			errs = append(errs, fmt.Errorf("accounts[%d]: %w", i, err))
		}
	}
	for i, e := range c.Emojis {
		if e.Shortcode == "" || e.Image == "" {
			errs = append(errs, fmt.Errorf("emojis[%d]: shortcode and image are required", i))
		}
	}
	return errors.Join(errs...)
}

// BaseURL returns the permalink base, derived from the domain when unset.
func (c *Config) BaseURL() string {
	if c.Instance.BaseURL != "" {
		return strings.TrimRight(c.Instance.BaseURL, "/")
	}
	return "https://" + c.Instance.Domain
}

// OpenStore opens the configured backend and seeds it.
func (c *Config) OpenStore(ctx context.Context) (store.Store, error) {
	s, err := store.Open(c.Store.Driver, c.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := c.Seed(ctx, s); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Seed writes the configured accounts and emoji into s.
func (c *Config) Seed(ctx context.Context, s store.Store) error {
	for _, a := range c.Accounts {
		role, err := store.ParseRole(a.Role)
		if err != nil {
			return err
		}
		acct := &status.Account{
			Username:    a.Username,
			Domain:      strings.ToLower(a.Domain),
			DisplayName: a.DisplayName,
			Avatar:      a.Avatar,
		}
		if err := s.PutAccount(ctx, acct, role); err != nil {
			return fmt.Errorf("seeding account %s: %w", acct.Acct(), err)
		}
	}
	for _, e := range c.Emojis {
		em := status.Emoji{Shortcode: e.Shortcode, Domain: strings.ToLower(e.Domain), Image: e.Image}
		if err := s.PutEmoji(ctx, em); err != nil {
			return fmt.Errorf("seeding emoji %s: %w", e.Shortcode, err)
		}
	}
	return nil
}
