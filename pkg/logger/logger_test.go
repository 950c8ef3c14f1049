package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHelpersTagService(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Init(zap.New(core))
	old := SetServiceName("riskcalc")
	defer SetServiceName(old)

	Info("calculated %d tiers", 3)
	Warn("over budget by %s", "10.00")
	Error("boom")

	all := logs.All()
	require.Len(t, all, 3)
	assert.Equal(t, "calculated 3 tiers", all[0].Message)
	assert.Equal(t, zapcore.WarnLevel, all[1].Level)
	assert.Equal(t, "riskcalc", all[2].ContextMap()["service"])
}

func TestNew(t *testing.T) {
	l, err := New(Config{Level: "debug", Encoding: "console"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestUninitializedPanics(t *testing.T) {
	InfoLogger = nil
	assert.Panics(t, func() { Info("x") })
}
