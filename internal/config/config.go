// Package config loads the small JSON configuration the CLI tools need to
// open a bus: which port, at what baud, which servo ids, and which
// temperature unit to report in.
//
// The JSON-tagged-struct-plus-marshal-indent shape mirrors the teacher's
// models.SERIAL/models.PARAMETERS and file.PersistParameters.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/CK6170/lewanbus/codec"
)

// Config is the on-disk shape of a bus configuration file.
type Config struct {
	Port            string `json:"port"`
	Baud            int    `json:"baud"`
	DiscardEcho     bool   `json:"discardEcho"`
	TemperatureUnit string `json:"temperatureUnit"`
	ServoIDs        []int  `json:"servoIds"`
}

// TemperatureUnitValue parses the configured unit string ("C" or "F", default
// "F" matching codec.Fahrenheit's default).
func (c *Config) TemperatureUnitValue() codec.TemperatureUnit {
	if c.TemperatureUnit == "C" {
		return codec.Celsius
	}
	return codec.Fahrenheit
}

// Load reads and parses a Config from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.Baud == 0 {
		cfg.Baud = 115200
	}
	return &cfg, nil
}

// Save overwrites path with cfg, formatted the way file.PersistParameters
// writes the teacher's config JSON.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}
