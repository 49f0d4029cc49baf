package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "DEBUG", want: DebugLevel},
		{in: " warn ", want: WarnLevel},
		{in: "", want: InfoLevel},
		{in: "verbose", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestReplace_RoutesHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := Replace(zap.New(core))
	defer restore()

	Info("analysis finished", String("emotion", "happy"), Uint64("request_id", 7))
	Error("classifier failed", ErrorField(errors.New("boom")))

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "analysis finished", entries[0].Message)
	assert.Equal(t, "happy", entries[0].ContextMap()["emotion"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}
