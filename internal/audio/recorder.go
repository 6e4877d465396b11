// Package audio предоставляет запись с микрофона и постобработку записи.
package audio

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

const (
	// Channels - количество каналов (mono).
	Channels = 1
	// FramesPerBuffer - размер буфера устройства.
	FramesPerBuffer = 1024
	// fallbackRate используется, если устройство не сообщает свою частоту.
	fallbackRate = 48000
)

var (
	// ErrPermissionDenied - доступ к микрофону запрещён.
	ErrPermissionDenied = errors.New("нет доступа к микрофону")
	// ErrDeviceUnavailable - устройство записи отсутствует или занято.
	ErrDeviceUnavailable = errors.New("микрофон недоступен")
	// ErrAlreadyRecording - запись уже идёт.
	ErrAlreadyRecording = errors.New("запись уже идёт")
	// ErrNotRecording - запись не запущена.
	ErrNotRecording = errors.New("запись не запущена")
)

// Recorder записывает аудио с микрофона по умолчанию на его родной частоте.
type Recorder struct {
	mu         sync.Mutex
	stream     *portaudio.Stream
	buffer     []int16
	samples    []int16
	sampleRate int
	running    bool
	done       chan struct{}
	meter      *LevelMeter
	onLevel    func(float32)
	level      atomic.Uint32 // float32 bits
}

// New инициализирует PortAudio и создаёт Recorder.
// onLevel вызывается ~30 раз в секунду с уровнем сигнала [0, 1] (может быть nil).
func New(onLevel func(float32)) (*Recorder, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, classify(err)
	}

	return &Recorder{
		buffer:  make([]int16, FramesPerBuffer),
		onLevel: onLevel,
	}, nil
}

// Start захватывает устройство и начинает запись.
// Ошибки захвата различимы через errors.Is: ErrPermissionDenied, ErrDeviceUnavailable.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrAlreadyRecording
	}

	dev, err := portaudio.DefaultInputDevice()
	if err != nil || dev == nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	rate := int(dev.DefaultSampleRate)
	if rate <= 0 {
		rate = fallbackRate
	}

	stream, err := portaudio.OpenDefaultStream(Channels, 0, float64(rate), FramesPerBuffer, r.buffer)
	if err != nil {
		return classify(err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return classify(err)
	}

	r.stream = stream
	r.sampleRate = rate
	r.samples = make([]int16, 0, rate*30) // Буфер на 30 сек
	r.done = make(chan struct{})
	r.meter = NewLevelMeter(rate, r.publishLevel)
	r.running = true

	zap.S().Infow("Запись начата", "device", dev.Name, "rate", rate)

	go r.recordLoop(stream, r.done)
	return nil
}

func (r *Recorder) publishLevel(l float32) {
	r.level.Store(math.Float32bits(l))
	if r.onLevel != nil {
		r.onLevel(l)
	}
}

func (r *Recorder) recordLoop(stream *portaudio.Stream, done chan struct{}) {
	defer close(done)

	for {
		r.mu.Lock()
		running := r.running
		r.mu.Unlock()
		if !running {
			return
		}

		available, err := stream.AvailableToRead()
		if err != nil || available == 0 {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		if err := stream.Read(); err != nil {
			// Переполнение входного буфера не критично - продолжаем
			time.Sleep(10 * time.Millisecond)
			continue
		}

		chunk := make([]int16, len(r.buffer))
		copy(chunk, r.buffer)

		r.mu.Lock()
		if !r.running {
			r.mu.Unlock()
			return
		}
		r.samples = append(r.samples, chunk...)
		meter := r.meter
		r.mu.Unlock()

		meter.Write(chunk)
	}
}

// Stop останавливает запись, освобождает устройство и возвращает запись
// с фактической частотой дискретизации.
func (r *Recorder) Stop() (Buffer, error) {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return Buffer{}, ErrNotRecording
	}

	r.running = false
	stream := r.stream
	r.stream = nil
	samples := r.samples
	r.samples = nil
	rate := r.sampleRate
	done := r.done
	r.mu.Unlock()

	// Ждём завершения recordLoop (он проверяет running каждые 10ms)
	if done != nil {
		select {
		case <-done:
		case <-time.After(200 * time.Millisecond):
			zap.S().Warn("Цикл записи не завершился вовремя")
		}
	}

	var err error
	if stream != nil {
		if serr := stream.Stop(); serr != nil {
			err = serr
		}
		if cerr := stream.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	r.level.Store(0)

	buf := Buffer{Samples: samples, SampleRate: rate}
	zap.S().Infow("Запись остановлена", "samples", len(samples), "duration", buf.Duration())
	if err != nil {
		zap.S().Warnw("Ошибка освобождения устройства", "error", err)
	}
	return buf, nil
}

// Close освобождает ресурсы.
func (r *Recorder) Close() {
	if r.IsRecording() {
		_, _ = r.Stop()
	}
	portaudio.Terminate()
}

// IsRecording возвращает true если идёт запись.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Level возвращает последний уровень сигнала [0, 1].
func (r *Recorder) Level() float32 {
	return math.Float32frombits(r.level.Load())
}

// classify сводит ошибки PortAudio к различимым категориям.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission"), strings.Contains(msg, "denied"),
		strings.Contains(msg, "not authorized"), strings.Contains(msg, "not permitted"):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case strings.Contains(msg, "unavailable"), strings.Contains(msg, "invalid device"),
		strings.Contains(msg, "no default"), strings.Contains(msg, "busy"):
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	default:
		return fmt.Errorf("ошибка устройства записи: %w", err)
	}
}
