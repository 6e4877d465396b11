package dictation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verba/internal/audio"
	"verba/internal/config"
	"verba/internal/events"
	"verba/internal/gesture"
	"verba/internal/speech"
)

func tone(seconds float64, amp float64) audio.Buffer {
	const rate = 16000
	n := int(seconds * rate)
	s := make([]int16, n)
	for i := range s {
		s[i] = int16(amp * 32767 * math.Sin(2*math.Pi*440*float64(i)/rate))
	}
	return audio.Buffer{Samples: s, SampleRate: rate}
}

type fakeSource struct {
	mu       sync.Mutex
	startErr error
	delay    time.Duration // имитация медленного открытия устройства
	buf      audio.Buffer
	starts   int
	stops    int
}

func (f *fakeSource) Start() error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	return f.startErr
}

func (f *fakeSource) Stop() (audio.Buffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return f.buf, nil
}

func (f *fakeSource) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.stops
}

type fakeRecognizer struct {
	mu    sync.Mutex
	text  string
	err   error
	gate  chan struct{}
	calls int
	bias  string
}

func (f *fakeRecognizer) Transcribe(ctx context.Context, wav []byte, bias string) (speech.Result, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.bias = bias
	return speech.Result{Text: f.text, Source: speech.SourceRemote}, f.err
}

func (f *fakeRecognizer) Name() string          { return "fake" }
func (f *fakeRecognizer) Source() speech.Source { return speech.SourceRemote }

func (f *fakeRecognizer) Current() (speech.Recognizer, error) { return f, nil }

func (f *fakeRecognizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type delivery struct {
	text, target string
}

type fakeDeliverer struct {
	mu  sync.Mutex
	got []delivery
}

func (f *fakeDeliverer) Deliver(_ context.Context, text, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, delivery{text, target})
	return nil
}

func (f *fakeDeliverer) all() []delivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]delivery(nil), f.got...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakePublisher) Publish(e events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakePublisher) topics() []events.Topic {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []events.Topic
	for _, e := range f.events {
		if e.Topic != events.StateChanged {
			out = append(out, e.Topic)
		}
	}
	return out
}

func (f *fakePublisher) find(topic events.Topic) (events.Event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.Topic == topic {
			return e, true
		}
	}
	return events.Event{}, false
}

type fakeResolver struct{ id string }

func (f fakeResolver) Frontmost() (string, bool) { return f.id, f.id != "" }

type fakeSounds struct {
	mu          sync.Mutex
	start, stop int
}

func (f *fakeSounds) Start() { f.mu.Lock(); f.start++; f.mu.Unlock() }
func (f *fakeSounds) Stop()  { f.mu.Lock(); f.stop++; f.mu.Unlock() }

type manualTimer struct {
	at time.Duration
	fn func()
}

func (t *manualTimer) Stop() bool { return true }

// manualClock копит таймеры; Advance вызывает созревшие.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Unix(0, 0).Add(c.now)
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) gesture.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{at: c.now + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due, rest []*manualTimer
	for _, t := range c.timers {
		if t.at <= c.now {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	c.timers = rest
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

type harness struct {
	m     *Machine
	src   *fakeSource
	rec   *fakeRecognizer
	del   *fakeDeliverer
	pub   *fakePublisher
	snd   *fakeSounds
	clock *manualClock
	cfg   *config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		src:   &fakeSource{buf: tone(1, 0.3)},
		rec:   &fakeRecognizer{text: "hello world"},
		del:   &fakeDeliverer{},
		pub:   &fakePublisher{},
		snd:   &fakeSounds{},
		clock: &manualClock{},
		cfg:   config.NewInMemory(),
	}
	h.m = New(Deps{
		Source:    h.src,
		Pipeline:  NewPipeline(h.rec, h.cfg),
		Deliverer: h.del,
		Resolver:  fakeResolver{id: "com.apple.TextEdit"},
		Publisher: h.pub,
		Sounds:    h.snd,
		Settings:  h.cfg,
		Clock:     h.clock,
	}, Options{Tuning: audio.DefaultTuning()})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.m.Run(ctx)
	return h
}

func (h *harness) waitState(t *testing.T, s State) {
	t.Helper()
	require.Eventually(t, func() bool { return h.m.State() == s }, 2*time.Second, 5*time.Millisecond,
		fmt.Sprintf("ожидалось состояние %s, сейчас %s", s, h.m.State()))
}

// settle даёт автомату обработать уже отправленные намерения.
func settle() { time.Sleep(50 * time.Millisecond) }

func TestFullSession(t *testing.T) {
	h := newHarness(t)
	_, err := h.cfg.AddEntry("Kubernetes", "", config.EntryCustom)
	require.NoError(t, err)

	var seen []State
	var mu sync.Mutex
	h.m.Observe(func(s State) { mu.Lock(); seen = append(seen, s); mu.Unlock() })

	h.m.Handle(gesture.IntentPress)
	h.waitState(t, StateRecording)
	assert.True(t, h.m.Recording())

	h.m.Handle(gesture.IntentRelease)
	require.Eventually(t, func() bool { return len(h.del.all()) == 1 }, 2*time.Second, 5*time.Millisecond)
	h.waitState(t, StateIdle)

	assert.Equal(t, []delivery{{"hello world", "com.apple.TextEdit"}}, h.del.all())
	assert.Equal(t, "Kubernetes", h.rec.bias)

	require.Eventually(t, func() bool {
		_, ok := h.pub.find(events.DictationComplete)
		return ok
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []events.Topic{
		events.RecordingStarted, events.RecordingStopped, events.Transcript, events.DictationComplete,
	}, h.pub.topics())

	tr, _ := h.pub.find(events.Transcript)
	assert.Equal(t, 2, tr.Words)
	assert.Equal(t, "remote", tr.Source)

	mu.Lock()
	assert.Equal(t, []State{StateRecording, StateTranscribing, StateIdle}, seen)
	mu.Unlock()

	h.snd.mu.Lock()
	assert.Equal(t, 1, h.snd.start)
	assert.Equal(t, 1, h.snd.stop)
	h.snd.mu.Unlock()
}

func TestHoldReleasedWhileDeviceOpens(t *testing.T) {
	for _, delay := range []time.Duration{0, 150 * time.Millisecond} {
		t.Run(delay.String(), func(t *testing.T) {
			h := newHarness(t)
			h.src.delay = delay

			d := gesture.New(gesture.DefaultOptions(), h.clock, h.m.Handle)
			d.PointerDown(gesture.Point{X: 10, Y: 10}, h.m.Recording())
			h.clock.Advance(300 * time.Millisecond)
			h.clock.Advance(20 * time.Millisecond)
			d.PointerUp(gesture.Point{X: 10, Y: 10}, h.m.Recording())

			require.Eventually(t, func() bool { return len(h.del.all()) == 1 }, 2*time.Second, 5*time.Millisecond)
			h.waitState(t, StateIdle)

			starts, stops := h.src.counts()
			assert.Equal(t, 1, starts)
			assert.Equal(t, 1, stops)
		})
	}
}

func TestPressDuringTranscribingIsNoop(t *testing.T) {
	h := newHarness(t)
	h.rec.gate = make(chan struct{})

	h.m.Handle(gesture.IntentPress)
	h.waitState(t, StateRecording)
	h.m.Handle(gesture.IntentRelease)
	h.waitState(t, StateTranscribing)

	h.m.Handle(gesture.IntentPress)
	h.m.Handle(gesture.IntentRelease)
	settle()

	assert.Equal(t, StateTranscribing, h.m.State())
	starts, stops := h.src.counts()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, stops)

	close(h.rec.gate)
	h.waitState(t, StateIdle)
	assert.Equal(t, 1, h.rec.callCount())
}

func TestOutOfStateIntentsIgnored(t *testing.T) {
	h := newHarness(t)

	h.m.Handle(gesture.IntentRelease)
	h.m.Handle(gesture.IntentDragStarted)
	h.m.Handle(gesture.IntentDoubleTap)
	settle()
	assert.Equal(t, StateIdle, h.m.State())

	h.m.Handle(gesture.IntentPress)
	h.m.Handle(gesture.IntentPress)
	h.waitState(t, StateRecording)
	settle()

	starts, _ := h.src.counts()
	assert.Equal(t, 1, starts)
}

func TestCaptureFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Reason
	}{
		{"permission", fmt.Errorf("%w: denied", audio.ErrPermissionDenied), ReasonPermission},
		{"device", fmt.Errorf("%w: none", audio.ErrDeviceUnavailable), ReasonUnknown},
		{"other", errors.New("boom"), ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.src.startErr = tt.err

			h.m.Handle(gesture.IntentPress)
			require.Eventually(t, func() bool {
				_, ok := h.pub.find(events.RecordingFailed)
				return ok
			}, time.Second, 5*time.Millisecond)

			e, _ := h.pub.find(events.RecordingFailed)
			assert.Equal(t, string(tt.want), e.Reason)
			assert.Equal(t, StateIdle, h.m.State())

			h.snd.mu.Lock()
			assert.Zero(t, h.snd.start)
			h.snd.mu.Unlock()
		})
	}
}

func TestRejectedRecordingsSkipTranscription(t *testing.T) {
	tests := []struct {
		name string
		buf  audio.Buffer
		want Reason
	}{
		{"empty", audio.Buffer{SampleRate: 48000}, ReasonTooShort},
		{"too short", tone(0.05, 0.3), ReasonTooShort},
		{"too quiet", tone(1, 0.001), ReasonTooQuiet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.src.buf = tt.buf

			h.m.Handle(gesture.IntentPress)
			h.waitState(t, StateRecording)
			h.m.Handle(gesture.IntentRelease)

			require.Eventually(t, func() bool {
				_, ok := h.pub.find(events.RecordingFailed)
				return ok
			}, time.Second, 5*time.Millisecond)

			e, _ := h.pub.find(events.RecordingFailed)
			assert.Equal(t, string(tt.want), e.Reason)
			assert.Equal(t, StateIdle, h.m.State())
			assert.Zero(t, h.rec.callCount())
			assert.Empty(t, h.del.all())
		})
	}
}

func TestTranscriptionFailureRevertsAfterDelay(t *testing.T) {
	h := newHarness(t)
	h.rec.err = errors.New("503")

	h.m.Handle(gesture.IntentPress)
	h.waitState(t, StateRecording)
	h.m.Handle(gesture.IntentRelease)
	h.waitState(t, StateError)

	e, ok := h.pub.find(events.RecordingFailed)
	require.True(t, ok)
	assert.Equal(t, string(ReasonTranscription), e.Reason)
	assert.Empty(t, h.del.all())

	// Нажатие в состоянии Error игнорируется
	h.m.Handle(gesture.IntentPress)
	settle()
	assert.Equal(t, StateError, h.m.State())

	h.clock.Advance(4 * time.Second)
	settle()
	assert.Equal(t, StateError, h.m.State())

	h.clock.Advance(time.Second)
	h.waitState(t, StateIdle)

	starts, _ := h.src.counts()
	assert.Equal(t, 1, starts)
}

func TestHallucinationDeliversNothing(t *testing.T) {
	h := newHarness(t)
	h.rec.text = "Thank you."

	h.m.Handle(gesture.IntentPress)
	h.waitState(t, StateRecording)
	h.m.Handle(gesture.IntentRelease)

	require.Eventually(t, func() bool {
		_, ok := h.pub.find(events.DictationComplete)
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, StateIdle, h.m.State())
	assert.Equal(t, []delivery{{"", "com.apple.TextEdit"}}, h.del.all())
	_, ok := h.pub.find(events.Transcript)
	assert.False(t, ok)
}

func TestAutoPasteOffSkipsTarget(t *testing.T) {
	h := newHarness(t)
	h.cfg.ToggleAutoPaste()
	h.cfg.ToggleSounds()

	h.m.Handle(gesture.IntentPress)
	h.waitState(t, StateRecording)
	h.m.Handle(gesture.IntentRelease)

	require.Eventually(t, func() bool { return len(h.del.all()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "", h.del.all()[0].target)

	h.snd.mu.Lock()
	assert.Zero(t, h.snd.start)
	h.snd.mu.Unlock()
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "recording", StateRecording.String())
	assert.Equal(t, "transcribing", StateTranscribing.String())
	assert.Equal(t, "error", StateError.String())
}
