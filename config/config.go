// Package config loads application settings for a Maestro controller and the
// servos attached to it.
//
// Settings are read from a YAML file and then overridden by MAESTRO_*
// environment variables:
//
//	port: /dev/ttyACM0
//	baud_rate: 9600
//	driver: serial
//	timeout: 100ms
//	log_level: info
//	servos:
//	  - name: base
//	    channel: 0
//	    neutral: 6000
//	    delta: 3000
//	    speed: 60
//
// The file is never written back.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/go-maestro/logger"
	"github.com/arloliu/go-maestro/maestro"
	"github.com/arloliu/go-maestro/servo"
	"github.com/arloliu/go-maestro/transport"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "MAESTRO_"

// DefaultPort is used when neither the file nor the environment name a port.
const DefaultPort = "/dev/ttyACM0"

// Config is the application configuration.
type Config struct {
	Port     string        `yaml:"port" env:"PORT"`
	BaudRate int           `yaml:"baud_rate" env:"BAUD_RATE"`
	Driver   string        `yaml:"driver" env:"DRIVER"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT"`
	LogLevel string        `yaml:"log_level" env:"LOG_LEVEL"`
	Servos   []ServoConfig `yaml:"servos" env:"-"`
}

// ServoConfig describes one servo. Speed and Acceleration of 0 leave the
// controller setting untouched.
type ServoConfig struct {
	Name         string `yaml:"name"`
	Channel      uint8  `yaml:"channel"`
	Neutral      uint16 `yaml:"neutral"`
	Delta        uint16 `yaml:"delta"`
	Speed        uint16 `yaml:"speed"`
	Acceleration uint16 `yaml:"acceleration"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Port:     DefaultPort,
		BaudRate: maestro.DefaultBaudRate,
		Driver:   transport.DriverSerial,
		Timeout:  maestro.DefaultTimeout,
		LogLevel: logger.InfoLevel.String(),
	}
}

// Load reads path, applies environment overrides and validates the result.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(cfg)
	if errors.Is(err, io.EOF) {
		return nil
	}

	return err
}

// Validate checks every field against the limits of the maestro and servo
// packages.
func (cfg *Config) Validate() error {
	if cfg.Port == "" {
		return errors.New("config: port is empty")
	}
	if cfg.BaudRate < maestro.MinBaudRate || cfg.BaudRate > maestro.MaxBaudRate {
		return fmt.Errorf("config: baud_rate %d out of range [%d, %d]", cfg.BaudRate, maestro.MinBaudRate, maestro.MaxBaudRate)
	}
	if _, err := transport.Lookup(cfg.Driver); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.Timeout < maestro.MinTimeout || cfg.Timeout > maestro.MaxTimeout {
		return fmt.Errorf("config: timeout %s out of range [%s, %s]", cfg.Timeout, maestro.MinTimeout, maestro.MaxTimeout)
	}
	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	names := make(map[string]struct{}, len(cfg.Servos))
	channels := make(map[uint8]string, len(cfg.Servos))
	for i, sc := range cfg.Servos {
		if sc.Name == "" {
			return fmt.Errorf("config: servos[%d]: name is empty", i)
		}
		if _, ok := names[sc.Name]; ok {
			return fmt.Errorf("config: servos[%d]: duplicate name %q", i, sc.Name)
		}
		if other, ok := channels[sc.Channel]; ok {
			return fmt.Errorf("config: servo %q: channel %d is used by %q", sc.Name, sc.Channel, other)
		}
		if sc.Channel > maestro.MaxChannel {
			return fmt.Errorf("config: servo %q: channel %d exceeds %d", sc.Name, sc.Channel, maestro.MaxChannel)
		}
		if sc.Speed > servo.MaxSpeed {
			return fmt.Errorf("config: servo %q: speed %d exceeds %d", sc.Name, sc.Speed, servo.MaxSpeed)
		}
		if sc.Acceleration > servo.MaxAcceleration {
			return fmt.Errorf("config: servo %q: acceleration %d exceeds %d", sc.Name, sc.Acceleration, servo.MaxAcceleration)
		}
		names[sc.Name] = struct{}{}
		channels[sc.Channel] = sc.Name
	}

	return nil
}

// Level returns the parsed log level.
func (cfg *Config) Level() logger.Level {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return logger.InfoLevel
	}

	return level
}

// MaestroConfig converts cfg into controller settings. opts are applied after
// the ones derived from cfg.
func (cfg *Config) MaestroConfig(opts ...maestro.Option) (*maestro.Config, error) {
	all := append([]maestro.Option{
		maestro.WithDriver(cfg.Driver),
		maestro.WithTimeout(cfg.Timeout),
	}, opts...)

	return maestro.NewConfig(cfg.Port, cfg.BaudRate, all...)
}

// BuildRig creates a rig on ctrl holding every configured servo. It does not
// talk to the controller.
func (cfg *Config) BuildRig(ctrl servo.Controller, opts ...servo.Option) (*servo.Rig, error) {
	rig := servo.NewRig(ctrl, opts...)
	for _, sc := range cfg.Servos {
		if _, err := rig.Add(sc.Name, sc.Channel, sc.Neutral, sc.Delta); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	return rig, nil
}

// ApplyLimits sends the configured speed and acceleration of every servo in
// rig to the controller.
func (cfg *Config) ApplyLimits(rig *servo.Rig) error {
	for _, sc := range cfg.Servos {
		s, ok := rig.Get(sc.Name)
		if !ok {
			return fmt.Errorf("config: servo %q is not in the rig", sc.Name)
		}
		if sc.Speed != 0 {
			if err := s.SetSpeed(sc.Speed); err != nil {
				return err
			}
		}
		if sc.Acceleration != 0 {
			if err := s.SetAcceleration(sc.Acceleration); err != nil {
				return err
			}
		}
	}

	return nil
}
