// Package config loads everyframe settings from defaults, a TOML file, the
// environment and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	AppName             = "everyframe"
	DefaultBackend      = "sqlite"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultTickInterval = time.Second
	DefaultListenAddr   = "127.0.0.1:8080"
	configFileName      = "config.toml"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Backend      string        `toml:"backend"`
	DataPath     string        `toml:"data_path"`
	LogLevel     string        `toml:"log_level"`
	LogFormat    string        `toml:"log_format"`
	LogFile      string        `toml:"log_file"`
	TickInterval time.Duration `toml:"tick_interval"`
	ListenAddr   string        `toml:"listen_addr"`

	// File is the config file that was read, if any.
	File string `toml:"-"`
}

func Default() Config {
	return Config{
		Backend:      DefaultBackend,
		DataPath:     defaultDataPath(DefaultBackend),
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
		TickInterval: DefaultTickInterval,
		ListenAddr:   DefaultListenAddr,
	}
}

// Load registers the shared flags on fs, parses args and layers defaults,
// the config file, EVERYFRAME_* variables and explicitly set flags.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	var (
		configPath string
		fromFlags  Config
	)
	fs.StringVar(&configPath, "config", "", "path to config.toml")
	fs.StringVar(&fromFlags.Backend, "backend", "", "snapshot backend: sqlite or json")
	fs.StringVar(&fromFlags.DataPath, "data", "", "snapshot location")
	fs.StringVar(&fromFlags.LogLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&fromFlags.LogFormat, "log-format", "", "text, json or logfmt")
	fs.StringVar(&fromFlags.LogFile, "log-file", "", "write logs to this file")
	fs.DurationVar(&fromFlags.TickInterval, "tick", 0, "refresh tick interval")
	fs.StringVar(&fromFlags.ListenAddr, "addr", "", "HTTP listen address for serve")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	dataPathSet := false

	if configPath == "" {
		configPath = strings.TrimSpace(os.Getenv("EVERYFRAME_CONFIG"))
	}
	explicitFile := configPath != ""
	if !explicitFile {
		configPath = filepath.Join(DefaultDir(), configFileName)
	}
	if file, err := loadFile(&cfg, configPath, explicitFile); err != nil {
		return Config{}, err
	} else if file.IsDefined("data_path") {
		dataPathSet = true
	}

	envDataPath, err := FromEnv(&cfg)
	if err != nil {
		return Config{}, err
	}
	if envDataPath {
		dataPathSet = true
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = fromFlags.Backend
		case "data":
			cfg.DataPath = fromFlags.DataPath
			dataPathSet = true
		case "log-level":
			cfg.LogLevel = fromFlags.LogLevel
		case "log-format":
			cfg.LogFormat = fromFlags.LogFormat
		case "log-file":
			cfg.LogFile = fromFlags.LogFile
		case "tick":
			cfg.TickInterval = fromFlags.TickInterval
		case "addr":
			cfg.ListenAddr = fromFlags.ListenAddr
		}
	})

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if !dataPathSet {
		cfg.DataPath = defaultDataPath(cfg.Backend)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string, required bool) (toml.MetaData, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			return toml.MetaData{}, nil
		}
		return toml.MetaData{}, fmt.Errorf("config file %s: %w", path, err)
	}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return toml.MetaData{}, fmt.Errorf("loading config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return toml.MetaData{}, fmt.Errorf("%w: unknown key %q in %s", ErrInvalidConfig, undecoded[0].String(), path)
	}
	cfg.File = path
	return meta, nil
}

// FromEnv applies EVERYFRAME_* overrides and reports whether the data path
// was among them. Unparseable values are rejected rather than skipped.
func FromEnv(cfg *Config) (bool, error) {
	if v, ok := getEnvString("EVERYFRAME_BACKEND"); ok {
		cfg.Backend = v
	}
	dataPathSet := false
	if v, ok := getEnvString("EVERYFRAME_DATA_PATH"); ok {
		cfg.DataPath = v
		dataPathSet = true
	}
	if v, ok := getEnvString("EVERYFRAME_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := getEnvString("EVERYFRAME_LOG_FORMAT"); ok {
		cfg.LogFormat = v
	}
	if v, ok := getEnvString("EVERYFRAME_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok, err := getEnvDuration("EVERYFRAME_TICK_INTERVAL"); err != nil {
		return false, err
	} else if ok {
		cfg.TickInterval = v
	}
	if v, ok := getEnvString("EVERYFRAME_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	return dataPathSet, nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case "sqlite", "json":
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if strings.TrimSpace(c.DataPath) == "" {
		return fmt.Errorf("%w: data path is empty", ErrInvalidConfig)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive, got %s", ErrInvalidConfig, c.TickInterval)
	}
	return nil
}

// DefaultDir is $XDG_CONFIG_HOME/everyframe or ~/.config/everyframe.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func defaultDataPath(backend string) string {
	name := "everyframe.db"
	if backend == "json" {
		name = "everyframe.json"
	}
	return filepath.Join(DefaultDir(), name)
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvDuration(name string) (time.Duration, bool, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		// bare integers are milliseconds
		ms, atoiErr := strconv.Atoi(raw)
		if atoiErr != nil {
			return 0, false, fmt.Errorf("%w: %s=%q is not a duration", ErrInvalidConfig, name, raw)
		}
		d = time.Duration(ms) * time.Millisecond
	}
	if d <= 0 {
		return 0, false, fmt.Errorf("%w: %s must be positive, got %q", ErrInvalidConfig, name, raw)
	}
	return d, true, nil
}
