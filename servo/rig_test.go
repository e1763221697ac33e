package servo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-maestro/logger"
)

func TestRig(t *testing.T) {
	require := require.New(t)

	rig := NewRig(&mockController{}, WithLogger(logger.Discard()))
	require.Equal(0, rig.Len())

	base, err := rig.Add("base", 0, 6000, 3000)
	require.NoError(err)
	require.Equal(uint8(0), base.Channel())

	_, err = rig.Add("elbow", 2, 5800, 2000)
	require.NoError(err)

	_, err = rig.Add("base", 1, 6000, 3000)
	require.ErrorIs(err, ErrDuplicateName)

	_, err = rig.Add("wrist", 2, 6000, 3000)
	require.ErrorIs(err, ErrDuplicateChannel)
	require.Contains(err.Error(), `"elbow"`)

	_, err = rig.Add("", 3, 6000, 3000)
	require.ErrorIs(err, ErrEmptyName)

	_, err = rig.Add("gripper", 3, 6000, 0)
	require.ErrorIs(err, ErrInvalidCalibration)

	require.Equal(2, rig.Len())
	require.Equal([]string{"base", "elbow"}, rig.Names())

	got, ok := rig.Get("base")
	require.True(ok)
	require.Same(base, got)

	_, ok = rig.Get("gripper")
	require.False(ok)

	// a failed add leaves the channel free
	_, err = rig.Add("gripper", 3, 6000, 1000)
	require.NoError(err)
	require.Equal(3, rig.Len())
}
