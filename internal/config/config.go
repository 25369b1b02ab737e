// Package config loads the client settings from a YAML file, overlaid by
// a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tavern/internal/client"
)

// Autojoin decodes from either a boolean (join bookmarked rooms) or a
// list of room addresses.
type Autojoin struct {
	Bookmarks bool
	Rooms     []string
}

func (a *Autojoin) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var b bool
		if err := value.Decode(&b); err != nil {
			return ErrInvalidConfig.WithDetailsf("autojoin: line %d: expected a boolean or a list of rooms", value.Line)
		}
		*a = Autojoin{Bookmarks: b}
		return nil
	case yaml.SequenceNode:
		var rooms []string
		if err := value.Decode(&rooms); err != nil {
			return ErrInvalidConfig.WithDetailsf("autojoin: line %d: %v", value.Line, err)
		}
		*a = Autojoin{Rooms: rooms}
		return nil
	}
	return ErrInvalidConfig.WithDetailsf("autojoin: line %d: expected a boolean or a list of rooms", value.Line)
}

func (a Autojoin) MarshalYAML() (any, error) {
	if len(a.Rooms) > 0 {
		return a.Rooms, nil
	}
	return a.Bookmarks, nil
}

type Config struct {
	JID      string   `yaml:"jid"`
	Password string   `yaml:"password,omitempty"`
	Nick     string   `yaml:"nick,omitempty"`
	Service  string   `yaml:"service,omitempty"`
	Debug    bool     `yaml:"debug"`
	Autojoin Autojoin `yaml:"autojoin"`

	HistoryDB string `yaml:"history_db,omitempty"`
	LogPort   int    `yaml:"log_port,omitempty"`
	Theme     string `yaml:"theme,omitempty"`

	NATSURL           string `yaml:"nats_url,omitempty"`
	NATSSubjectPrefix string `yaml:"nats_subject_prefix,omitempty"`

	ClientName    string `yaml:"client_name"`
	ClientVersion string `yaml:"client_version"`
}

func Default() *Config {
	return &Config{
		Autojoin:          Autojoin{Bookmarks: true},
		NATSSubjectPrefix: "tavern",
		ClientName:        "tavern",
		ClientVersion:     "dev",
	}
}

// Load reads the YAML file at path (~/.tavern/config.yaml when empty)
// on top of the defaults. A missing default file is not an error; a
// missing explicit one is.
func Load(path string) (*Config, error) {
	cfg := Default()
	resolved, err := resolvePath(path)
	if errors.Is(err, ErrConfigNotFound) && path == "" {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		var te *yaml.TypeError
		if errors.As(err, &te) {
			return nil, ErrInvalidConfig.WithDetails(strings.Join(te.Errors, "; "))
		}
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv loads .env files into the process environment. Missing files
// are skipped.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from TAVERN_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	strs := map[string]*string{
		"TAVERN_JID":        &c.JID,
		"TAVERN_PASSWORD":   &c.Password,
		"TAVERN_NICK":       &c.Nick,
		"TAVERN_SERVICE":    &c.Service,
		"TAVERN_HISTORY_DB": &c.HistoryDB,
		"TAVERN_NATS_URL":   &c.NATSURL,
		"TAVERN_THEME":      &c.Theme,
	}
	for key, dst := range strs {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	if v := getenv("TAVERN_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return ErrInvalidConfig.WithDetailsf("TAVERN_DEBUG=%q", v)
		}
		c.Debug = b
	}
	if v := getenv("TAVERN_LOG_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return ErrInvalidConfig.WithDetailsf("TAVERN_LOG_PORT=%q", v)
		}
		c.LogPort = p
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	if c.LogPort < 0 || c.LogPort > 65535 {
		return ErrInvalidConfig.WithDetailsf("log_port %d out of range", c.LogPort)
	}
	for _, room := range c.Autojoin.Rooms {
		if !strings.Contains(room, "@") {
			return ErrInvalidConfig.WithDetailsf("autojoin room %q is not a room address", room)
		}
	}
	return nil
}

// Save writes the config without the password.
func (c *Config) Save(path string) error {
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	if err := createPath(path); err != nil {
		return err
	}
	out := *c
	out.Password = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func (c *Config) ClientOptions() client.Options {
	return client.Options{
		Debug: c.Debug,
		Autojoin: client.Autojoin{
			Bookmarks: c.Autojoin.Bookmarks,
			Rooms:     append([]string(nil), c.Autojoin.Rooms...),
		},
		ClientName:    c.ClientName,
		ClientVersion: c.ClientVersion,
		ClientOS:      runtime.GOOS,
	}
}

func (c *Config) Credentials() client.Credentials {
	return client.Credentials{
		JID:      c.JID,
		Password: c.Password,
		Nick:     c.Nick,
		Service:  c.Service,
	}
}
