package mei

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPollTimeout(t *testing.T) {
	require := require.New(t)

	tests := []struct {
		timeout time.Duration
		want    int
	}{
		{0, 0},
		{-time.Second, 0},
		{time.Nanosecond, 1},
		{time.Millisecond, 1},
		{1500 * time.Microsecond, 2},
		{1500 * time.Millisecond, 1500},
		{2*time.Minute + 3*time.Millisecond, 120003},
		{time.Duration(math.MaxInt64), math.MaxInt32},
	}

	for _, tt := range tests {
		t.Run(tt.timeout.String(), func(t *testing.T) {
			require.Equal(tt.want, pollTimeout(tt.timeout))
		})
	}
}

func TestDriverFunc(t *testing.T) {
	require := require.New(t)

	h := &MockHandle{}
	var gotPath string
	d := DriverFunc(func(path string) (Handle, error) {
		gotPath = path
		return h, nil
	})

	got, err := d.Open("/dev/mei1")
	require.NoError(err)
	require.Same(h, got)
	require.Equal("/dev/mei1", gotPath)
}
