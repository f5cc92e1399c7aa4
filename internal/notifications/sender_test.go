package notifications

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilSenderLogsInsteadOfFailing(t *testing.T) {
	s := NewSender(nil, slog.Default())
	require.Nil(t, s)
	assert.NoError(t, s.Send(context.Background(), "title", "body"))
}

func TestSenderHonorsCancelledContext(t *testing.T) {
	s := NewSender([]string{"logger://"}, slog.Default())
	require.NotNil(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, "title", "body"), context.Canceled)
}

func TestTransportPermissionNilSenderGranted(t *testing.T) {
	// No push URLs means log delivery, which is always available: the
	// gatekeeper must not block the reminder pipeline.
	p := NewTransportPermission(nil)

	state, err := p.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, state)

	state, err = p.Request(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, state)
}
