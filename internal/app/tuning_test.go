package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"verba/internal/audio"
	"verba/internal/config"
	"verba/internal/dictation"
	"verba/internal/gesture"
)

func TestDefaultTuningMatchesPackages(t *testing.T) {
	ct := config.DefaultTuning()

	assert.Equal(t, audio.DefaultTuning(), AudioTuning(ct))
	assert.Equal(t, gesture.DefaultOptions(), gestureOptions(ct))

	mo := machineOptions(ct)
	assert.Equal(t, dictation.DefaultErrorRevert, mo.ErrorRevert)
}

func TestCustomTuning(t *testing.T) {
	ct := config.DefaultTuning()
	ct.HoldMs = 500
	ct.DoubleTapMs = 250
	ct.RMSFloor = 0.01
	ct.ErrorRevertMs = 0

	opts := gestureOptions(ct)
	assert.Equal(t, 500*time.Millisecond, opts.Hold)
	assert.Equal(t, 250*time.Millisecond, opts.DoubleTap)
	assert.InDelta(t, 0.01, AudioTuning(ct).RMSFloor, 1e-12)

	// Ноль заменяется задержкой по умолчанию внутри dictation.New
	assert.Zero(t, machineOptions(ct).ErrorRevert)
}
