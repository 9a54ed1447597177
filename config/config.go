// Package config loads simulator configuration from a TOML file, the same
// way and in the same place on disk the emulator this one is descended
// from does.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds every tunable the CLI, debugger, and API server read at
// startup.
type Config struct {
	Execution struct {
		MaxCycles   uint64 `toml:"max_cycles"`
		EntryPoint  string `toml:"entry_point"`
		EnableStats bool   `toml:"enable_stats"`
	} `toml:"execution"`

	Trace struct {
		OutputFile string `toml:"output_file"`
		MaxEntries int    `toml:"max_entries"`
	} `toml:"trace"`

	Debugger struct {
		HistorySize    int  `toml:"history_size"`
		AutoSaveBreaks bool `toml:"auto_save_breakpoints"`
		ShowRegisters  bool `toml:"show_registers"`
	} `toml:"debugger"`

	Display struct {
		ColorOutput  bool   `toml:"color_output"`
		NumberFormat string `toml:"number_format"` // hex, dec
	} `toml:"display"`

	API struct {
		Port            int  `toml:"port"`
		MaxSessions     int  `toml:"max_sessions"`
		SessionIdleSecs int  `toml:"session_idle_secs"`
		EnableStreaming bool `toml:"enable_streaming"`
	} `toml:"api"`
}

// DefaultConfig returns the configuration a fresh install runs with.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.MaxCycles = 1_000_000
	cfg.Execution.EntryPoint = "0x80000000"
	cfg.Execution.EnableStats = false

	cfg.Trace.OutputFile = "trace.log"
	cfg.Trace.MaxEntries = 0

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.AutoSaveBreaks = true
	cfg.Debugger.ShowRegisters = true

	cfg.Display.ColorOutput = true
	cfg.Display.NumberFormat = "hex"

	cfg.API.Port = 8088
	cfg.API.MaxSessions = 32
	cfg.API.SessionIdleSecs = 900
	cfg.API.EnableStreaming = true

	return cfg
}

// GetConfigPath returns the platform-specific config file path, creating
// the containing directory if needed.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "rvsim")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "rvsim")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "rvsim", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "rvsim", "logs")

	default:
		return "logs"
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// EntryPointOverride parses Execution.EntryPoint as a hex address. It
// returns ok=false when the field is empty, meaning the loader's own entry
// point (the first @ directive in the image) should be used instead.
func (c *Config) EntryPointOverride() (addr uint32, ok bool, err error) {
	s := strings.TrimSpace(c.Execution.EntryPoint)
	if s == "" {
		return 0, false, nil
	}
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false, fmt.Errorf("invalid entry_point %q: %w", c.Execution.EntryPoint, err)
	}
	return uint32(v), true, nil
}

// Load loads configuration from the default config file, falling back to
// defaults when the file does not exist.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
