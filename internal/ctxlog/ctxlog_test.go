package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), log)

	require.Same(t, log, FromContext(ctx))
	FromContext(ctx).Info("hello")
	require.Contains(t, buf.String(), "msg=hello")
}

func TestFallbackDiscards(t *testing.T) {
	log := FromContext(context.Background())
	require.NotNil(t, log)
	require.False(t, log.Enabled(context.Background(), slog.LevelError))
}
