package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/arloliu/go-maestro/maestro"
)

const defaultWaitTimeout = 10 * time.Second

type servoArg struct {
	Name string `positional-arg-name:"servo" required:"yes"`
}

type servoValueArgs struct {
	Name  string `positional-arg-name:"servo" required:"yes"`
	Value uint16 `positional-arg-name:"value" required:"yes"`
}

type WaitOptions struct {
	Interval time.Duration `long:"interval" default:"20ms" description:"Pause between moving state polls"`
	Timeout  time.Duration `long:"timeout" default:"10s" description:"Give up after this long"`
}

func (w WaitOptions) wait(ctrl *maestro.Controller) error {
	timeout := w.Timeout
	if timeout <= 0 {
		timeout = defaultWaitTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return ctrl.WaitIdle(ctx, w.Interval)
}

type CalibrationCommand struct{}

func (c *CalibrationCommand) Execute(_ []string) error {
	s, err := newSession(false)
	if err != nil {
		return err
	}

	if s.rig.Len() == 0 {
		fmt.Fprintln(stdout, dimStyle.Render("No servos configured."))
		return nil
	}

	rows := make([][]string, 0, s.rig.Len())
	for _, name := range s.rig.Names() {
		sv, _ := s.rig.Get(name)
		cal := sv.DescribeCalibration()
		rows = append(rows, []string{
			name,
			strconv.Itoa(int(sv.Channel())),
			strconv.Itoa(int(sv.Neutral())),
			strconv.Itoa(int(sv.Delta())),
			strconv.Itoa(int(cal.MinMicroseconds)),
			strconv.Itoa(int(cal.MidMicroseconds)),
			strconv.Itoa(int(cal.MaxMicroseconds)),
		})
	}

	fmt.Fprintln(stdout, headerStyle.Render("Maestro Control Center settings"))
	fmt.Fprintln(stdout, renderTable(
		[]string{"Servo", "Channel", "Neutral", "Delta", "Min µs", "Mid µs", "Max µs"}, rows))

	return nil
}

type PositionCommand struct {
	Args struct {
		Names []string `positional-arg-name:"servo"`
	} `positional-args:"yes"`
}

func (c *PositionCommand) Execute(_ []string) error {
	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.close()

	names, err := s.selected(c.Args.Names)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		sv, _ := s.rig.Get(name)
		units, err := sv.PositionAbsolute()
		if err != nil {
			return err
		}
		rows = append(rows, []string{
			name,
			strconv.Itoa(int(units)),
			strconv.Itoa(sv.ToDegrees(units)),
			strconv.FormatFloat(sv.ToRadians(units), 'f', 3, 64),
		})
	}

	fmt.Fprintln(stdout, renderTable([]string{"Servo", "Units", "Degrees", "Radians"}, rows))

	return nil
}

type MoveCommand struct {
	Degrees *int     `long:"deg" description:"Target in degrees from neutral, -90 to 90"`
	Radians *float64 `long:"rad" description:"Target in radians from neutral, -π/2 to π/2"`
	Units   *uint16  `long:"units" description:"Target in quarter-microseconds"`
	Wait    bool     `short:"w" long:"wait" description:"Wait until the move completes"`

	WaitOptions

	Args servoArg `positional-args:"yes" required:"yes"`
}

var errMoveTarget = errors.New("exactly one of --deg, --rad or --units is required")

func (c *MoveCommand) Execute(_ []string) error {
	set := 0
	for _, given := range []bool{c.Degrees != nil, c.Radians != nil, c.Units != nil} {
		if given {
			set++
		}
	}
	if set != 1 {
		return errMoveTarget
	}

	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.close()

	sv, err := s.servo(c.Args.Name)
	if err != nil {
		return err
	}

	var target uint16
	switch {
	case c.Degrees != nil:
		target, err = sv.SetPositionDegrees(*c.Degrees)
	case c.Radians != nil:
		target, err = sv.SetPositionRadians(*c.Radians)
	default:
		target, err = sv.SetPositionAbsolute(*c.Units)
	}
	if err != nil {
		return err
	}

	if c.Wait {
		if err := c.wait(s.ctrl); err != nil {
			return err
		}
	}
	fmt.Fprintln(stdout, successStyle.Render(fmt.Sprintf("%s -> %d", c.Args.Name, target)))

	return nil
}

type SpeedCommand struct {
	Args servoValueArgs `positional-args:"yes" required:"yes"`
}

func (c *SpeedCommand) Execute(_ []string) error {
	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.close()

	sv, err := s.servo(c.Args.Name)
	if err != nil {
		return err
	}
	if err := sv.SetSpeed(c.Args.Value); err != nil {
		return err
	}
	fmt.Fprintln(stdout, successStyle.Render(fmt.Sprintf("%s speed %d", c.Args.Name, c.Args.Value)))

	return nil
}

type AccelCommand struct {
	Args servoValueArgs `positional-args:"yes" required:"yes"`
}

func (c *AccelCommand) Execute(_ []string) error {
	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.close()

	sv, err := s.servo(c.Args.Name)
	if err != nil {
		return err
	}
	if err := sv.SetAcceleration(c.Args.Value); err != nil {
		return err
	}
	fmt.Fprintln(stdout, successStyle.Render(fmt.Sprintf("%s acceleration %d", c.Args.Name, c.Args.Value)))

	return nil
}

type StatusCommand struct{}

func (c *StatusCommand) Execute(_ []string) error {
	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.close()

	moving, err := s.ctrl.GetMovingState()
	if err != nil {
		return err
	}
	flags, err := s.ctrl.GetErrors()
	if err != nil {
		return err
	}

	state := successStyle.Render("idle")
	if moving {
		state = warnStyle.Render("moving")
	}
	errText := successStyle.Render(flags.String())
	if flags != 0 {
		errText = warnStyle.Render(flags.String())
	}

	fmt.Fprintf(stdout, "%s %s\n", headerStyle.Render("port:  "), s.ctrl.PortID())
	fmt.Fprintf(stdout, "%s %s\n", headerStyle.Render("state: "), state)
	fmt.Fprintf(stdout, "%s %s\n", headerStyle.Render("errors:"), errText)

	return nil
}

type HomeCommand struct {
	Wait bool `short:"w" long:"wait" description:"Wait until every servo is home"`

	WaitOptions
}

func (c *HomeCommand) Execute(_ []string) error {
	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.ctrl.GoHome(); err != nil {
		return err
	}
	if c.Wait {
		if err := c.wait(s.ctrl); err != nil {
			return err
		}
	}
	fmt.Fprintln(stdout, successStyle.Render("home"))

	return nil
}

type WaitCommand struct {
	WaitOptions
}

func (c *WaitCommand) Execute(_ []string) error {
	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.close()

	start := time.Now()
	if err := c.wait(s.ctrl); err != nil {
		return err
	}
	fmt.Fprintln(stdout, successStyle.Render(fmt.Sprintf("idle after %s", time.Since(start).Round(time.Millisecond))))

	return nil
}
