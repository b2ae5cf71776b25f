package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		"INFO":     zerolog.InfoLevel,
		"":         zerolog.InfoLevel,
		" warn ":   zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"disabled": zerolog.Disabled,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestConfigure_FiltersByLevel(t *testing.T) {
	t.Cleanup(func() { SetGlobalLogger(zerolog.Nop()) })

	var buf bytes.Buffer
	require.NoError(t, Configure(&buf, "warn"))

	Debug().Msg("hidden")
	Warn().Msg("shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestConfigure_Disabled(t *testing.T) {
	t.Cleanup(func() { SetGlobalLogger(zerolog.Nop()) })

	var buf bytes.Buffer
	require.NoError(t, Configure(&buf, "disabled"))

	Error().Msg("nothing")
	require.Empty(t, buf.String())
}

func TestConfigure_InvalidLevel(t *testing.T) {
	require.Error(t, Configure(&bytes.Buffer{}, "chatty"))
}
