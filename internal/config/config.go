// Package config loads the pre-match configuration file. The link settings
// (port, baud, silence window) feed the serial and framing layers; team
// rosters and officials are passed through to the display and report taps
// without semantic validation, matching what the table officials typed in.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Defaults applied to fields omitted from the config file.
const (
	DefaultSerialPort    = "/dev/ttyUSB0"
	DefaultBaudRate      = 9600
	DefaultSilenceWindow = "600ms"
	DefaultDatabasePath  = "match_events.db"
)

// maxFileSize bounds config reads for safety (1MB).
const maxFileSize = 1 * 1024 * 1024

// RosterEntry is one player as entered before the match.
type RosterEntry struct {
	Cap  int    `json:"cap"`
	Name string `json:"name"`
}

// TeamSetup names a team and its roster.
type TeamSetup struct {
	Name    string        `json:"name"`
	Players []RosterEntry `json:"players,omitempty"`
}

// MatchConfig is the root configuration. Fields omitted from the JSON file
// retain their default values, so partial configs are safe.
type MatchConfig struct {
	SerialPort    string `json:"serial_port,omitempty"`
	BaudRate      int    `json:"baud_rate,omitempty"`
	SilenceWindow string `json:"silence_window,omitempty"` // duration string like "600ms"
	DatabasePath  string `json:"database_path,omitempty"`

	Home      *TeamSetup `json:"home,omitempty"`
	Guest     *TeamSetup `json:"guest,omitempty"`
	Officials []string   `json:"officials,omitempty"`
}

// DefaultMatchConfig returns a config with every field at its default.
func DefaultMatchConfig() *MatchConfig {
	return &MatchConfig{
		SerialPort:    DefaultSerialPort,
		BaudRate:      DefaultBaudRate,
		SilenceWindow: DefaultSilenceWindow,
		DatabasePath:  DefaultDatabasePath,
	}
}

// LoadMatchConfig loads a MatchConfig from a JSON file. The file is validated
// to have a .json extension and to be under the max file size.
func LoadMatchConfig(path string) (*MatchConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultMatchConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the link settings. Roster contents are deliberately not
// validated here.
func (c *MatchConfig) Validate() error {
	if c.SerialPort == "" {
		return fmt.Errorf("serial_port must not be empty")
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("invalid baud_rate %d", c.BaudRate)
	}
	window, err := time.ParseDuration(c.SilenceWindow)
	if err != nil {
		return fmt.Errorf("invalid silence_window %q: %w", c.SilenceWindow, err)
	}
	if window < 50*time.Millisecond {
		return fmt.Errorf("silence_window %s too short: frames would split mid-packet", window)
	}
	return nil
}

// Window returns the parsed silence window. Validate must have accepted the
// config first; an unparseable value falls back to the default.
func (c *MatchConfig) Window() time.Duration {
	window, err := time.ParseDuration(c.SilenceWindow)
	if err != nil {
		window, _ = time.ParseDuration(DefaultSilenceWindow)
	}
	return window
}

// TeamName returns the configured name for a side, or the fallback when the
// setup was not provided.
func (t *TeamSetup) TeamName(fallback string) string {
	if t == nil || t.Name == "" {
		return fallback
	}
	return t.Name
}
