package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/arloliu/go-maestro/config"
	"github.com/arloliu/go-maestro/logger"
	"github.com/arloliu/go-maestro/maestro"
	"github.com/arloliu/go-maestro/servo"
)

// session is one invocation's view of the controller and the configured servos.
type session struct {
	cfg  *config.Config
	ctrl *maestro.Controller
	rig  *servo.Rig
	log  logger.Logger
}

// newSession loads the configuration and builds the controller. When connect
// is set the port is opened and the configured limits are applied.
func newSession(connect bool) (*session, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, err
	}
	if opts.Port != "" {
		cfg.Port = opts.Port
	}
	if opts.Baud != 0 {
		cfg.BaudRate = opts.Baud
	}
	if opts.Driver != "" {
		cfg.Driver = opts.Driver
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := cfg.Level()
	if opts.Verbose {
		level = logger.DebugLevel
	}
	log := logger.New(level, logger.WithOutput(os.Stderr))
	logger.SetLogger(log)

	mcfg, err := cfg.MaestroConfig(maestro.WithLogger(log))
	if err != nil {
		return nil, err
	}
	ctrl, err := maestro.NewController(mcfg)
	if err != nil {
		return nil, err
	}
	rig, err := cfg.BuildRig(ctrl, servo.WithLogger(log))
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, ctrl: ctrl, rig: rig, log: log}
	if !connect {
		return s, nil
	}

	if err := ctrl.Open(); err != nil {
		return nil, err
	}
	if err := cfg.ApplyLimits(rig); err != nil {
		s.close()
		return nil, err
	}

	return s, nil
}

func (s *session) close() {
	if err := s.ctrl.Close(); err != nil {
		s.log.Warn("maestroctl: close failed", "error", err)
	}
}

// servo returns the configured servo called name.
func (s *session) servo(name string) (*servo.Servo, error) {
	sv, ok := s.rig.Get(name)
	if !ok {
		if s.rig.Len() == 0 {
			return nil, fmt.Errorf("unknown servo %q: no servos configured", name)
		}
		return nil, fmt.Errorf("unknown servo %q, expected one of: %s", name, strings.Join(s.rig.Names(), ", "))
	}

	return sv, nil
}

// selected returns the named servos, or every servo when names is empty.
func (s *session) selected(names []string) ([]string, error) {
	if len(names) == 0 {
		return s.rig.Names(), nil
	}
	for _, name := range names {
		if _, err := s.servo(name); err != nil {
			return nil, err
		}
	}

	return names, nil
}
