package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriterTagsService(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("storefront-test", &buf)
	t.Cleanup(func() { Logger = zerolog.Nop() })

	Info(context.Background()).Str("visitor_id", "v-1").Msg("favorite added")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "storefront-test", line["service"])
	require.Equal(t, "v-1", line["visitor_id"])
	require.Equal(t, "favorite added", line["message"])
	require.NotContains(t, line, "trace_id")
}

func TestSetLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	SetLevel("warn")
	require.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	SetLevel("nonsense")
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
