package wav

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeHeaderFields(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768}
	data := Encode(samples, 16000)

	require.Len(t, data, HeaderSize+len(samples)*2)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, uint32(36+10), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, "fmt ", string(data[12:16]))
	assert.Equal(t, uint32(16), binary.LittleEndian.Uint32(data[16:20]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[20:22]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[22:24]))
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(data[24:28]))
	assert.Equal(t, uint32(32000), binary.LittleEndian.Uint32(data[28:32]))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(data[32:34]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(data[34:36]))
	assert.Equal(t, "data", string(data[36:40]))
	assert.Equal(t, uint32(10), binary.LittleEndian.Uint32(data[40:44]))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		n    int
		rate int
	}{
		{"16k", 1600, 16000},
		{"44.1k", 4410, 44100},
		{"48k odd length", 4801, 48000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := make([]int16, tt.n)
			for i := range samples {
				samples[i] = int16((i*37)%65536 - 32768)
			}

			data := Encode(samples, tt.rate)
			payload := append([]byte(nil), data[HeaderSize:]...)

			got, rate, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, tt.rate, rate)
			assert.Equal(t, samples, got)

			again := Encode(got, rate)
			assert.Equal(t, payload, again[HeaderSize:])
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, _, err := Decode([]byte("definitely not a wav file at all, nope"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestWriteFileReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	samples := []int16{100, -100, 2000, -2000, 0}

	require.NoError(t, WriteFile(path, samples, 16000))

	got, rate, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 16000, rate)
	assert.Equal(t, samples, got)
}
