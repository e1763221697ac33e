package maestro

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-maestro/logger"
	"github.com/arloliu/go-maestro/transport"
)

// Connection defaults.
const (
	DefaultBaudRate = 9600
	DefaultTimeout  = transport.DefaultTimeout
)

// Ranges accepted by NewConfig. The Maestro detects baud rates between 300
// and 200000 on its TTL port; the USB virtual port ignores the value.
const (
	MinBaudRate = 300
	MaxBaudRate = 200000

	MinTimeout = 10 * time.Millisecond
	MaxTimeout = 10 * time.Second
)

// Config holds the settings used to create a Controller.
type Config struct {
	portID   string
	baudRate int

	driver    string
	timeout   time.Duration
	transport transport.Transport

	logger logger.Logger
}

// NewConfig creates a configuration for the controller on portID.
//
// A baudRate of 0 selects DefaultBaudRate. opts are applied in order; see
// the With* functions.
func NewConfig(portID string, baudRate int, opts ...Option) (*Config, error) {
	cfg := &Config{
		driver:  transport.DriverSerial,
		timeout: DefaultTimeout,
		logger:  logger.GetLogger(),
	}

	if err := cfg.setPort(portID, baudRate); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (cfg *Config) setPort(portID string, baudRate int) error {
	if err := validatePort(portID, baudRate); err != nil {
		return err
	}
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	cfg.portID = portID
	cfg.baudRate = baudRate

	return nil
}

func validatePort(portID string, baudRate int) error {
	if portID == "" {
		return errors.New("maestro: port identifier is empty")
	}
	if baudRate != 0 && (baudRate < MinBaudRate || baudRate > MaxBaudRate) {
		return fmt.Errorf("maestro: baud rate %d out of range [%d, %d]", baudRate, MinBaudRate, MaxBaudRate)
	}

	return nil
}

// PortID returns the configured port identifier.
func (cfg *Config) PortID() string { return cfg.portID }

// BaudRate returns the configured baud rate.
func (cfg *Config) BaudRate() int { return cfg.baudRate }

// Driver returns the transport driver name.
func (cfg *Config) Driver() string { return cfg.driver }

// Timeout returns the transport read timeout.
func (cfg *Config) Timeout() time.Duration { return cfg.timeout }

// Transport returns the injected transport, or nil.
func (cfg *Config) Transport() transport.Transport { return cfg.transport }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// Option is a functional option for NewConfig.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithDriver selects the transport driver by name, see transport.Drivers.
func WithDriver(name string) Option {
	return optFunc(func(cfg *Config) error {
		if _, err := transport.Lookup(name); err != nil {
			return fmt.Errorf("maestro: %w", err)
		}
		if name != "" {
			cfg.driver = name
		}

		return nil
	})
}

// WithTimeout sets the transport read timeout.
func WithTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinTimeout || d > MaxTimeout {
			return fmt.Errorf("maestro: timeout %s out of range [%s, %s]", d, MinTimeout, MaxTimeout)
		}
		cfg.timeout = d

		return nil
	})
}

// WithTransport injects a transport, bypassing the driver registry.
func WithTransport(t transport.Transport) Option {
	return optFunc(func(cfg *Config) error {
		if t == nil {
			return errors.New("maestro: transport is nil")
		}
		cfg.transport = t

		return nil
	})
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("maestro: logger is nil")
		}
		cfg.logger = l

		return nil
	})
}
