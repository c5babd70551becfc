package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/OpenSourceNeuro/Spikeling/pkg/engine"
	"github.com/OpenSourceNeuro/Spikeling/pkg/neuron"
	"github.com/OpenSourceNeuro/Spikeling/pkg/transport"
)

// Config represents the application configuration.
type Config struct {
	Serial    SerialConfig    `yaml:"serial"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Loop      LoopConfig      `yaml:"loop"`
}

// SerialConfig contains serial link configuration. An empty port disables
// the serial link.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
	// Decimation forwards every Nth tick to the wire; 1 forwards all.
	Decimation int `yaml:"decimation"`
}

// WebSocketConfig contains the remote server configuration. An empty
// address disables the server.
type WebSocketConfig struct {
	Addr string `yaml:"addr"`
}

// LoopConfig contains control loop parameters.
type LoopConfig struct {
	StepMicros int64 `yaml:"step_micros"`
	// Preset indexes the firing pattern table; out-of-range values fall
	// back to tonic spiking.
	Preset int `yaml:"preset"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:       "", // e.g. "/dev/ttyACM0" on Linux, "COM3" on Windows
			BaudRate:   transport.DefaultBaudRate,
			Decimation: 1,
		},
		WebSocket: WebSocketConfig{
			Addr: ":81",
		},
		Loop: LoopConfig{
			StepMicros: engine.DefaultPeriodMicros,
			Preset:     int(neuron.TonicSpiking),
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Serial.Decimation == 0 {
		c.Serial.Decimation = def.Serial.Decimation
	}
	if c.Loop.StepMicros == 0 {
		c.Loop.StepMicros = def.Loop.StepMicros
	}
}
