package mei

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestState(t *testing.T) {
	require := require.New(t)

	require.Equal("disconnected", DisconnectedState.String())
	require.Equal("connected", ConnectedState.String())
	require.Equal("unknown", State(99).String())

	require.True(DisconnectedState.IsDisconnected())
	require.False(DisconnectedState.IsConnected())
	require.True(ConnectedState.IsConnected())
	require.False(ConnectedState.IsDisconnected())

	var zero State
	require.Equal(DisconnectedState, zero)
}
