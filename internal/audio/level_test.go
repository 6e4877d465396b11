package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelClamp(t *testing.T) {
	assert.Equal(t, float32(0), Level(0))
	assert.InDelta(t, 0.4, Level(0.05), 1e-6)
	assert.Equal(t, float32(1), Level(0.2))
	assert.Equal(t, float32(1), Level(3))
}

func TestLevelMeterSlicesIndependentOfChunkSize(t *testing.T) {
	const rate = 48000 // отрезок 1600 сэмплов

	for _, chunk := range []int{1, 256, 1024, 5000} {
		var levels []float32
		m := NewLevelMeter(rate, func(l float32) { levels = append(levels, l) })

		total := rate // одна секунда
		samples := make([]int16, total)
		for i := range samples {
			samples[i] = 1000
		}
		for i := 0; i < total; i += chunk {
			end := min(i+chunk, total)
			m.Write(samples[i:end])
		}

		assert.Len(t, levels, LevelRate, "chunk %d", chunk)
		for _, l := range levels {
			assert.InDelta(t, 1000.0/32768*LevelGain, l, 1e-4)
		}
	}
}

func TestLevelMeterReset(t *testing.T) {
	var n int
	m := NewLevelMeter(300, func(float32) { n++ }) // отрезок 10 сэмплов

	m.Write(make([]int16, 9))
	m.Reset()
	m.Write(make([]int16, 9))
	assert.Zero(t, n)

	m.Write(make([]int16, 1))
	assert.Equal(t, 1, n)
}
