package mylog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestLevelOf(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, levelOf(SeverityDebug))
	assert.Equal(t, zapcore.InfoLevel, levelOf(SeverityInfo))
	assert.Equal(t, zapcore.WarnLevel, levelOf(SeverityWarn))
	assert.Equal(t, zapcore.ErrorLevel, levelOf(SeverityError))
	assert.Equal(t, zapcore.InfoLevel, levelOf(Severity("TRACE")))
}

func TestStandardLogger(t *testing.T) {
	logger := newStandardLogger("test")
	assert.NotPanics(t, func() {
		logger.Log(context.TODO(), "trace", SeverityInfo, "hello %s", "world")
	})
}
