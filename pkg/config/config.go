package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the host-side application configuration. The firmware
// carries the same values as compile-time constants; this file exists so the
// monitor and the simulated node agree with the device build.
type Config struct {
	Serial SerialConfig `yaml:"serial"`
	Node   NodeConfig   `yaml:"node"`
	ADC    ADCConfig    `yaml:"adc"`
	Sim    SimConfig    `yaml:"sim"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// NodeConfig contains the scheduler cadence and variant switches.
type NodeConfig struct {
	Tick           time.Duration `yaml:"tick"`            // nominal tick period
	LEDDivisor     uint32        `yaml:"led_divisor"`     // ticks per LED toggle
	SampleDivisor  uint32        `yaml:"sample_divisor"`  // ticks per conversion trigger
	SessionDivisor uint32        `yaml:"session_divisor"` // ticks until the one-shot latch
	Heuristic      bool          `yaml:"heuristic"`       // apply the repeated-reading heuristic
	Button         bool          `yaml:"button"`          // poll the button multiplexed on the reset pin
}

// ADCConfig contains converter configuration.
type ADCConfig struct {
	Resolution int `yaml:"resolution"` // bits
}

// SimConfig contains simulated front-end configuration.
type SimConfig struct {
	Excitation bool `yaml:"excitation"` // NTC excitation on at startup
}

// Default returns a default configuration matching the reference device
// build: 100 ms tick, LED at 200 ms, sampling every tick, session latch
// after 100000 ticks.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
		},
		Node: NodeConfig{
			Tick:           100 * time.Millisecond,
			LEDDivisor:     2,
			SampleDivisor:  1,
			SessionDivisor: 100000,
			Heuristic:      true,
			Button:         false,
		},
		ADC: ADCConfig{
			Resolution: 10,
		},
		Sim: SimConfig{
			Excitation: true,
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
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

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

// Validate rejects configurations the scheduler cannot run. Zero divisors
// would never fire their comparisons and a non-positive tick stalls the loop.
func (c *Config) Validate() error {
	if c.Node.Tick <= 0 {
		return fmt.Errorf("config: tick must be positive, got %v", c.Node.Tick)
	}
	if c.Node.LEDDivisor == 0 {
		return fmt.Errorf("config: led_divisor must be at least 1")
	}
	if c.Node.SampleDivisor == 0 {
		return fmt.Errorf("config: sample_divisor must be at least 1")
	}
	if c.Node.SessionDivisor == 0 {
		return fmt.Errorf("config: session_divisor must be at least 1")
	}
	if c.ADC.Resolution < 8 || c.ADC.Resolution > 14 {
		return fmt.Errorf("config: resolution %d out of range [8, 14]", c.ADC.Resolution)
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Node.Tick == 0 {
		c.Node.Tick = def.Node.Tick
	}
	if c.Node.LEDDivisor == 0 {
		c.Node.LEDDivisor = def.Node.LEDDivisor
	}
	if c.Node.SampleDivisor == 0 {
		c.Node.SampleDivisor = def.Node.SampleDivisor
	}
	if c.Node.SessionDivisor == 0 {
		c.Node.SessionDivisor = def.Node.SessionDivisor
	}

	if c.ADC.Resolution == 0 {
		c.ADC.Resolution = def.ADC.Resolution
	}
}
