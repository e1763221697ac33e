package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-maestro/maestro"
)

const testConfig = `
port: sim0
driver: sim
log_level: error
servos:
  - name: base
    channel: 0
    neutral: 6000
    delta: 3000
    speed: 60
  - name: elbow
    channel: 1
    neutral: 5800
    delta: 2000
`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "maestro.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))

	var out bytes.Buffer
	stdout = &out
	t.Cleanup(func() { stdout = os.Stdout })

	err := run(append([]string{"--config", path}, args...))

	return out.String(), err
}

func TestCalibration(t *testing.T) {
	require := require.New(t)

	out, err := runCLI(t, "calibration")
	require.NoError(err)
	require.Contains(out, "base")
	require.Contains(out, "elbow")
	require.Contains(out, "750")
	require.Contains(out, "2250")
	require.Contains(out, "1450")
}

func TestMoveAndPosition(t *testing.T) {
	require := require.New(t)

	out, err := runCLI(t, "move", "--deg=-45", "--wait", "--interval=1ms", "base")
	require.NoError(err)
	require.Contains(out, "base -> 4200")

	out, err = runCLI(t, "position", "base")
	require.NoError(err)
	require.Contains(out, "4200")
	require.Contains(out, "-45")
	require.NotContains(out, "elbow")

	out, err = runCLI(t, "move", "--units=7000", "elbow")
	require.NoError(err)
	require.Contains(out, "elbow -> 7000")

	out, err = runCLI(t, "home", "--wait", "--interval=1ms")
	require.NoError(err)
	require.Contains(out, "home")

	out, err = runCLI(t, "position")
	require.NoError(err)
	require.Contains(out, "6000")
	require.Contains(out, "elbow")
}

func TestMove_Errors(t *testing.T) {
	require := require.New(t)

	_, err := runCLI(t, "move", "base")
	require.ErrorIs(err, errMoveTarget)

	_, err = runCLI(t, "move", "--deg=10", "--units=6000", "base")
	require.ErrorIs(err, errMoveTarget)

	_, err = runCLI(t, "move", "--deg=91", "base")
	require.Equal(maestro.KindRange, maestro.KindOf(err))

	_, err = runCLI(t, "move", "--rad=1.6", "base")
	require.Equal(maestro.KindRange, maestro.KindOf(err))

	_, err = runCLI(t, "move", "--units=1000", "base")
	require.Equal(maestro.KindRange, maestro.KindOf(err))

	_, err = runCLI(t, "move", "--deg=0", "wrist")
	require.ErrorContains(err, `unknown servo "wrist"`)
}

func TestSpeedAndAccel(t *testing.T) {
	require := require.New(t)

	out, err := runCLI(t, "speed", "elbow", "100")
	require.NoError(err)
	require.Contains(out, "elbow speed 100")

	out, err = runCLI(t, "accel", "elbow", "5")
	require.NoError(err)
	require.Contains(out, "elbow acceleration 5")

	_, err = runCLI(t, "speed", "elbow", "0")
	require.Equal(maestro.KindRange, maestro.KindOf(err))

	_, err = runCLI(t, "accel", "elbow", "256")
	require.Equal(maestro.KindRange, maestro.KindOf(err))
}

func TestStatusAndWait(t *testing.T) {
	require := require.New(t)

	out, err := runCLI(t, "wait", "--interval=1ms")
	require.NoError(err)
	require.Contains(out, "idle after")

	out, err = runCLI(t, "status")
	require.NoError(err)
	require.Contains(out, "sim0")
	require.Contains(out, "idle")
	require.Contains(out, "none")
}

func TestGlobalOverrides(t *testing.T) {
	_, err := runCLI(t, "--driver", "carrier-pigeon", "status")
	require.Error(t, err)

	_, err = runCLI(t, "--baud", "10", "status")
	require.Error(t, err)
}
