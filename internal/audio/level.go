package audio

import (
	"math"
	"sync"
)

const (
	// LevelRate - частота обновления уровня сигнала (раз в секунду).
	LevelRate = 30
	// LevelGain - усиление RMS для индикатора.
	LevelGain = 8.0
)

// Level переводит RMS в значение индикатора [0, 1].
func Level(rms float64) float32 {
	v := rms * LevelGain
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return float32(v)
}

// LevelMeter нарезает поток сэмплов на отрезки ~1/30 с независимо от размера
// буфера устройства и сообщает уровень каждого отрезка.
type LevelMeter struct {
	mu       sync.Mutex
	sliceLen int
	sumSq    float64
	count    int
	emit     func(float32)
}

// NewLevelMeter создаёт измеритель для указанной частоты.
func NewLevelMeter(sampleRate int, emit func(float32)) *LevelMeter {
	sliceLen := sampleRate / LevelRate
	if sliceLen < 1 {
		sliceLen = 1
	}
	return &LevelMeter{sliceLen: sliceLen, emit: emit}
}

// Write добавляет сэмплы, вызывая emit для каждого завершённого отрезка.
func (m *LevelMeter) Write(samples []int16) {
	m.mu.Lock()
	var levels []float32
	for _, s := range samples {
		f := float64(s) / fullScale
		m.sumSq += f * f
		m.count++
		if m.count == m.sliceLen {
			levels = append(levels, Level(math.Sqrt(m.sumSq/float64(m.count))))
			m.sumSq = 0
			m.count = 0
		}
	}
	emit := m.emit
	m.mu.Unlock()

	if emit == nil {
		return
	}
	for _, l := range levels {
		emit(l)
	}
}

// Reset сбрасывает незавершённый отрезок.
func (m *LevelMeter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sumSq = 0
	m.count = 0
}
