package gocuda

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberml/gocuda/cudart"
)

func TestComputeToCores(t *testing.T) {
	for _, test := range []struct {
		major, minor int
		want         int
	}{
		{1, 0, 8},
		{2, 1, 48},
		{3, 5, 192},
		{5, 0, 128},
		{6, 0, 128},
		{6, 1, 64},
		{6, 2, 128},
		{7, 5, 64},
		{8, 0, 64},
		{8, 6, 128},
		{9, 0, 128},
		{4, 0, 0},
		{12, 0, 0},
	} {
		require.Equalf(t, test.want, computeToCores(test.major, test.minor),
			"Wrong cores-per-multiprocessor for compute %d.%d", test.major, test.minor)
	}
}

func TestThroughputScore(t *testing.T) {
	// GTX 1080 shape: the product exceeds 32 bits, so the score must be 64 bit.
	props := cudart.DeviceProps{Major: 6, Minor: 1, MultiProcessorCount: 20, ClockRateKHz: 1733500}
	require.Equal(t, int64(20)*64*1733500, throughputScore(props))

	// Unknown compute versions score zero and will rank last.
	props.Major, props.Minor = 4, 2
	require.Zero(t, throughputScore(props))
}
