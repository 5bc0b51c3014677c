package logx_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FranksOps/yelpleads/pkg/logx"
)

func TestParseLevel(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		input string
		want  slog.Level
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: " warn ", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
	}

	for _, tc := range testCases {
		got, err := logx.ParseLevel(tc.input)
		rq.NoError(err, tc.input)
		rq.Equal(tc.want, got, tc.input)
	}

	_, err := logx.ParseLevel("loud")
	rq.Error(err)
}

func TestNew(t *testing.T) {
	rq := require.New(t)

	var buf bytes.Buffer
	logger := logx.New(&buf, slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("summary failed", logx.Error(errors.New("rate limited")))

	out := buf.String()
	rq.NotContains(out, "hidden")
	rq.Contains(out, "summary failed")
	rq.Contains(out, "rate limited")
}
