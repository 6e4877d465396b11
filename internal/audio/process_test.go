package audio

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sine генерирует синус с амплитудой amp (доля полной шкалы).
func sine(n, rate int, freq, amp float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amp * 32767 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

func TestProcessRejectsShortBuffers(t *testing.T) {
	tuning := DefaultTuning()

	for _, rate := range []int{8000, 16000, 44100, 48000} {
		n := rate/10 - 1
		buf := Buffer{Samples: sine(n, rate, 440, 0.8), SampleRate: rate}

		out, reason := Process(buf, tuning)
		assert.Equal(t, RejectTooShort, reason, "rate %d", rate)
		assert.Empty(t, out.Samples)
	}
}

func TestProcessRejectsQuietBuffers(t *testing.T) {
	tuning := DefaultTuning()

	tests := []struct {
		name string
		n    int
	}{
		{"half second", 8000},
		{"five seconds", 80000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Амплитуда 0.004 даёт RMS ~0.0028 < 0.005
			buf := Buffer{Samples: sine(tt.n, 16000, 200, 0.004), SampleRate: 16000}
			require.Less(t, RMS(buf.Samples), 0.005)

			_, reason := Process(buf, tuning)
			assert.Equal(t, RejectTooQuiet, reason)
		})
	}
}

func TestProcessAcceptsSpeechLikeAudio(t *testing.T) {
	rate := 48000
	samples := make([]int16, rate*2)
	copy(samples[rate/2:], sine(rate, rate, 300, 0.3))

	out, reason := Process(Buffer{Samples: samples, SampleRate: rate}, DefaultTuning())
	require.Equal(t, Accepted, reason)
	assert.Equal(t, 16000, out.SampleRate)
	assert.Less(t, len(out.Samples), 2*16000)
	assert.InDelta(t, 0.9, Peak(out.Samples), 0.02)
}

func TestResampleIdentity(t *testing.T) {
	in := Buffer{Samples: sine(1600, 16000, 440, 0.5), SampleRate: 16000}
	out := Resample(in, 16000)

	assert.Equal(t, in.Samples, out.Samples)
	assert.Equal(t, 16000, out.SampleRate)

	out.Samples[0] = 12345
	assert.NotEqual(t, int16(12345), in.Samples[0], "input must not be modified")
}

func TestResampleLength(t *testing.T) {
	tests := []struct {
		from, to, n, want int
	}{
		{48000, 16000, 48000, 16000},
		{44100, 16000, 44100, 16000},
		{8000, 16000, 800, 1600},
	}
	for _, tt := range tests {
		out := Resample(Buffer{Samples: make([]int16, tt.n), SampleRate: tt.from}, tt.to)
		assert.Equal(t, tt.want, len(out.Samples))
		assert.Equal(t, tt.to, out.SampleRate)
	}
}

func TestResampleInterpolates(t *testing.T) {
	in := Buffer{Samples: []int16{0, 100, 200, 300}, SampleRate: 8000}
	out := Resample(in, 16000)

	assert.Equal(t, []int16{0, 50, 100, 150, 200, 250, 300, 300}, out.Samples)
}

func TestNormalizeNoOpWhenLoud(t *testing.T) {
	in := Buffer{Samples: sine(1600, 16000, 440, 0.6), SampleRate: 16000}
	out := Normalize(in, DefaultTuning())

	assert.Equal(t, in.Samples, out.Samples)
}

func TestNormalizeNoOpWhenSilent(t *testing.T) {
	in := Buffer{Samples: make([]int16, 1600), SampleRate: 16000}
	out := Normalize(in, DefaultTuning())

	assert.Equal(t, in.Samples, out.Samples)
}

func TestNormalizeBringsPeakToTarget(t *testing.T) {
	in := Buffer{Samples: sine(1600, 16000, 440, 0.3), SampleRate: 16000}
	out := Normalize(in, DefaultTuning())

	assert.InDelta(t, 0.9, Peak(out.Samples), 0.01)
}

func TestNormalizeGainIsCapped(t *testing.T) {
	tuning := DefaultTuning()
	in := Buffer{Samples: sine(1600, 16000, 440, 0.01), SampleRate: 16000}
	out := Normalize(in, tuning)

	assert.InDelta(t, Peak(in.Samples)*tuning.MaxGain, Peak(out.Samples), 0.001)
}

func TestTrimSilenceKeepsPadding(t *testing.T) {
	rate := 16000
	samples := make([]int16, rate*3)
	// Речь с 1.0 по 2.0 сек
	copy(samples[rate:], sine(rate, rate, 300, 0.5))

	out := TrimSilence(Buffer{Samples: samples, SampleRate: rate}, DefaultTuning())

	pad := rate * 3 / 10
	first, last := -1, -1
	for i, s := range samples {
		if math.Abs(float64(s)) > 0.02*32768 {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	assert.Equal(t, (last+1+pad)-(first-pad), len(out.Samples))
	assert.Equal(t, samples[first-pad:last+1+pad], out.Samples)
}

func TestTrimSilenceSkipsSmallRemovals(t *testing.T) {
	rate := 16000
	samples := sine(rate*2, rate, 300, 0.5)
	// Немного тишины в начале: 0.35 с, из них 0.3 с останется как запас
	for i := 0; i < rate*35/100; i++ {
		samples[i] = 0
	}

	in := Buffer{Samples: samples, SampleRate: rate}
	out := TrimSilence(in, DefaultTuning())
	assert.Equal(t, in.Samples, out.Samples)
}

func TestTrimSilenceAllQuietUnchanged(t *testing.T) {
	in := Buffer{Samples: make([]int16, 16000), SampleRate: 16000}
	out := TrimSilence(in, DefaultTuning())
	assert.Equal(t, in.Samples, out.Samples)
}

func TestRMSAndPeak(t *testing.T) {
	assert.Zero(t, RMS(nil))
	assert.Zero(t, Peak(nil))
	assert.InDelta(t, 0.5, RMS([]int16{16384, -16384}), 1e-9)
	assert.InDelta(t, 1.0, Peak([]int16{0, -32768, 100}), 1e-9)
}

func TestBufferDuration(t *testing.T) {
	assert.Equal(t, "1.5s", Buffer{Samples: make([]int16, 24000), SampleRate: 16000}.Duration().String())
	assert.Zero(t, Buffer{Samples: make([]int16, 10)}.Duration())
}

func TestClassifyErrors(t *testing.T) {
	assert.ErrorIs(t, classify(errors.New("Permission denied by user")), ErrPermissionDenied)
	assert.ErrorIs(t, classify(errors.New("Device unavailable")), ErrDeviceUnavailable)
	assert.ErrorIs(t, classify(errors.New("Invalid device")), ErrDeviceUnavailable)

	err := classify(errors.New("Unanticipated host error"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
	assert.NotErrorIs(t, err, ErrDeviceUnavailable)
	assert.Nil(t, classify(nil))
}
