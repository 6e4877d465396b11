package app

import (
	"time"

	"verba/internal/audio"
	"verba/internal/config"
	"verba/internal/dictation"
	"verba/internal/gesture"
)

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// AudioTuning переносит настраиваемые пороги поверх значений по умолчанию.
func AudioTuning(t config.Tuning) audio.Tuning {
	at := audio.DefaultTuning()
	at.RMSFloor = t.RMSFloor
	at.SilenceThreshold = t.SilenceThreshold
	at.MaxGain = t.MaxGain
	return at
}

func gestureOptions(t config.Tuning) gesture.Options {
	opts := gesture.DefaultOptions()
	opts.Hold = ms(t.HoldMs)
	opts.DoubleTap = ms(t.DoubleTapMs)
	return opts
}

func machineOptions(t config.Tuning) dictation.Options {
	return dictation.Options{
		Tuning:      AudioTuning(t),
		ErrorRevert: ms(t.ErrorRevertMs),
	}
}
