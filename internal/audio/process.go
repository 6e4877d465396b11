package audio

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// fullScale - амплитуда, соответствующая 1.0 для 16-бит PCM.
const fullScale = 32768.0

// Buffer неизменяемый по соглашению моно 16-бит PCM буфер.
// Каждый этап обработки возвращает новый буфер.
type Buffer struct {
	Samples    []int16
	SampleRate int
}

// Duration возвращает длительность буфера.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(b.Samples)) * time.Second / time.Duration(b.SampleRate)
}

// Rejection причина отказа от дальнейшей обработки записи.
type Rejection string

const (
	Accepted       Rejection = ""
	RejectTooShort Rejection = "too_short"
	RejectTooQuiet Rejection = "too_quiet"
)

// Tuning пороги постобработки.
type Tuning struct {
	MinDuration      time.Duration // Минимальная длительность записи
	RMSFloor         float64       // Нижний порог RMS (доля полной шкалы)
	TargetRate       int           // Частота для распознавания
	NormalizeMinPeak float64       // Нижняя граница пика для нормализации
	NormalizeMaxPeak float64       // Верхняя граница пика для нормализации
	NormalizeTarget  float64       // Целевой пик после нормализации
	MaxGain          float64       // Максимальное усиление
	SilenceThreshold float64       // Порог тишины для обрезки
	TrimPadding      time.Duration // Запас по краям при обрезке
	TrimMinRemoval   float64       // Минимальная доля, ради которой стоит обрезать
}

// DefaultTuning возвращает пороги по умолчанию.
func DefaultTuning() Tuning {
	return Tuning{
		MinDuration:      100 * time.Millisecond,
		RMSFloor:         0.005,
		TargetRate:       16000,
		NormalizeMinPeak: 1 / fullScale,
		NormalizeMaxPeak: 0.5,
		NormalizeTarget:  0.9,
		MaxGain:          8,
		SilenceThreshold: 0.02,
		TrimPadding:      300 * time.Millisecond,
		TrimMinRemoval:   0.1,
	}
}

// Process прогоняет запись через проверки и преобразования в фиксированном
// порядке: длина, энергия, ресемплинг, нормализация, обрезка тишины.
// При отказе возвращает пустой буфер и причину.
func Process(in Buffer, t Tuning) (Buffer, Rejection) {
	if in.SampleRate <= 0 || in.Duration() < t.MinDuration {
		return Buffer{}, RejectTooShort
	}
	if RMS(in.Samples) < t.RMSFloor {
		return Buffer{}, RejectTooQuiet
	}

	out := Resample(in, t.TargetRate)
	out = Normalize(out, t)
	out = TrimSilence(out, t)
	return out, Accepted
}

func toFloat(samples []int16) []float64 {
	x := make([]float64, len(samples))
	for i, s := range samples {
		x[i] = float64(s) / fullScale
	}
	return x
}

// RMS возвращает среднеквадратичную амплитуду в долях полной шкалы.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	x := toFloat(samples)
	return math.Sqrt(floats.Dot(x, x) / float64(len(x)))
}

// Peak возвращает максимальную абсолютную амплитуду в долях полной шкалы.
func Peak(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	return floats.Norm(toFloat(samples), math.Inf(1))
}

// Resample меняет частоту линейной интерполяцией между соседними сэмплами.
// При совпадении частот возвращает копию без изменений.
func Resample(in Buffer, rate int) Buffer {
	if in.SampleRate == rate || rate <= 0 || in.SampleRate <= 0 || len(in.Samples) == 0 {
		return Buffer{Samples: clone(in.Samples), SampleRate: in.SampleRate}
	}

	n := len(in.Samples)
	ratio := float64(in.SampleRate) / float64(rate)
	outLen := int(int64(n) * int64(rate) / int64(in.SampleRate))
	if outLen < 1 {
		outLen = 1
	}

	out := make([]int16, outLen)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= n-1 {
			out[i] = in.Samples[n-1]
			continue
		}
		frac := pos - float64(idx)
		a := float64(in.Samples[idx])
		b := float64(in.Samples[idx+1])
		out[i] = clampSample(a + (b-a)*frac)
	}
	return Buffer{Samples: out, SampleRate: rate}
}

// Normalize поднимает тихую запись так, чтобы пик стал около NormalizeTarget,
// не усиливая больше чем в MaxGain раз. Громкие и беззвучные записи не меняются.
func Normalize(in Buffer, t Tuning) Buffer {
	out := Buffer{Samples: clone(in.Samples), SampleRate: in.SampleRate}

	peak := Peak(in.Samples)
	if peak < t.NormalizeMinPeak || peak > t.NormalizeMaxPeak {
		return out
	}

	gain := math.Min(t.NormalizeTarget/peak, t.MaxGain)
	if gain <= 1 {
		return out
	}
	for i, s := range out.Samples {
		out.Samples[i] = clampSample(float64(s) * gain)
	}
	return out
}

// TrimSilence обрезает тишину по краям, оставляя TrimPadding с каждой стороны.
// Если обрезка убрала бы меньше TrimMinRemoval буфера, возвращает копию без изменений.
func TrimSilence(in Buffer, t Tuning) Buffer {
	n := len(in.Samples)
	out := Buffer{Samples: clone(in.Samples), SampleRate: in.SampleRate}
	if n == 0 {
		return out
	}

	threshold := t.SilenceThreshold * fullScale
	first, last := -1, -1
	for i, s := range in.Samples {
		if math.Abs(float64(s)) > threshold {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return out
	}

	pad := int(t.TrimPadding.Seconds() * float64(in.SampleRate))
	start := max(0, first-pad)
	end := min(n, last+1+pad)

	removed := n - (end - start)
	if float64(removed) < t.TrimMinRemoval*float64(n) {
		return out
	}

	out.Samples = clone(in.Samples[start:end])
	return out
}

func clampSample(v float64) int16 {
	v = math.Round(v)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

func clone(s []int16) []int16 {
	if s == nil {
		return nil
	}
	out := make([]int16, len(s))
	copy(out, s)
	return out
}
