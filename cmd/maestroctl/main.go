package main

import (
	"errors"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/arloliu/go-maestro/internal/emulator"
	"github.com/arloliu/go-maestro/transport"
)

type Options struct {
	Config  string `short:"c" long:"config" env:"MAESTRO_CONFIG" description:"YAML configuration file"`
	Port    string `short:"p" long:"port" description:"Serial port, overrides the configuration"`
	Baud    int    `short:"b" long:"baud" description:"Baud rate, overrides the configuration"`
	Driver  string `short:"d" long:"driver" description:"Transport driver (serial, tarm, tcp, sim)"`
	Verbose bool   `short:"v" long:"verbose" description:"Log every frame"`

	Calibration CalibrationCommand `command:"calibration" alias:"cal" description:"Show the limits to configure in the Maestro Control Center"`
	Position    PositionCommand    `command:"position" alias:"pos" description:"Read servo positions"`
	Move        MoveCommand        `command:"move" description:"Move a servo"`
	Speed       SpeedCommand       `command:"speed" description:"Set the speed limit of a servo"`
	Accel       AccelCommand       `command:"accel" description:"Set the acceleration limit of a servo"`
	Status      StatusCommand      `command:"status" description:"Show the moving state and the error register"`
	Home        HomeCommand        `command:"home" description:"Send every channel to its home position"`
	Wait        WaitCommand        `command:"wait" description:"Wait until no servo is moving"`
}

var (
	opts   Options
	stdout io.Writer = os.Stdout
)

func init() {
	transport.Register(emulator.DriverName, emulator.NewDevice().Opener())
}

func newParser() *flags.Parser {
	opts = Options{}
	parser := flags.NewParser(&opts, flags.Default)
	parser.LongDescription = "maestroctl drives servos on a Pololu Maestro controller"

	return parser
}

func run(args []string) error {
	_, err := newParser().ParseArgs(args)

	return err
}

// main relies on flags.PrintErrors to report failures.
func main() {
	err := run(os.Args[1:])
	if err == nil {
		return
	}

	var flagsErr *flags.Error
	if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
		os.Exit(0)
	}
	os.Exit(1)
}
