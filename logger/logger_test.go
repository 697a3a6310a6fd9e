package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := map[string]struct {
		format, level string
		wantErr       bool
	}{
		"text info":  {format: "text", level: "info"},
		"json debug": {format: "json", level: "debug"},
		"none":       {format: "text", level: "none"},
		"bad level":  {format: "text", level: "loud", wantErr: true},
		"bad format": {format: "xml", level: "info", wantErr: true},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			log, err := NewLogger(test.format, test.level)
			if test.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, log)
		})
	}
}

func TestNamedCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &ZapLogger{zap.New(core)}

	log.Named("pool").Info("allocated", zap.Int("handle", 3))

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "pool", entries[0].LoggerName)
	require.Equal(t, int64(3), entries[0].ContextMap()["handle"])
}

func TestWithAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &ZapLogger{zap.New(core)}

	log.With(zap.String("proc", "vanilla"))
	log.Debug("compiled")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "vanilla", entries[0].ContextMap()["proc"])
}
