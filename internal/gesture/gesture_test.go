package gesture

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance сдвигает время и вызывает созревшие таймеры.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

type recorder struct {
	mu      sync.Mutex
	intents []Intent
}

func (r *recorder) emit(i Intent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, i)
}

func (r *recorder) all() []Intent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Intent(nil), r.intents...)
}

func setup() (*Disambiguator, *fakeClock, *recorder) {
	clock := newFakeClock()
	rec := &recorder{}
	return New(DefaultOptions(), clock, rec.emit), clock, rec
}

func TestQuickTapEmitsNothing(t *testing.T) {
	d, clock, rec := setup()

	d.PointerDown(Point{10, 10}, false)
	clock.Advance(150 * time.Millisecond)
	d.PointerMove(Point{11, 11})
	d.PointerUp(Point{11, 11}, false)
	clock.Advance(time.Second)

	assert.Empty(t, rec.all())
}

func TestHoldEmitsPressOnceThenRelease(t *testing.T) {
	d, clock, rec := setup()

	d.PointerDown(Point{10, 10}, false)
	clock.Advance(279 * time.Millisecond)
	assert.Empty(t, rec.all())

	clock.Advance(time.Millisecond)
	require.Equal(t, []Intent{IntentPress}, rec.all())

	clock.Advance(2 * time.Second)
	d.PointerMove(Point{30, 30}) // движение после начала записи не перетаскивание
	d.PointerUp(Point{30, 30}, true)

	assert.Equal(t, []Intent{IntentPress, IntentRelease}, rec.all())
}

func TestReleaseAfterHoldBeforeRecordingStarts(t *testing.T) {
	d, clock, rec := setup()

	// Автомат получил press, но устройство ещё открывается
	d.PointerDown(Point{10, 10}, false)
	clock.Advance(300 * time.Millisecond)
	clock.Advance(20 * time.Millisecond)
	d.PointerUp(Point{10, 10}, false)
	clock.Advance(time.Second)

	assert.Equal(t, []Intent{IntentPress, IntentRelease}, rec.all())
}

func TestLeaveAfterHoldBeforeRecordingStarts(t *testing.T) {
	d, clock, rec := setup()

	d.PointerDown(Point{10, 10}, false)
	clock.Advance(300 * time.Millisecond)
	d.PointerLeave(false)

	assert.Equal(t, []Intent{IntentPress, IntentRelease}, rec.all())
}

func TestDragBeforeHoldCancelsPress(t *testing.T) {
	d, clock, rec := setup()

	d.PointerDown(Point{10, 10}, false)
	clock.Advance(100 * time.Millisecond)
	d.PointerMove(Point{10, 12}) // ровно на пороге
	d.PointerMove(Point{10, 13})
	d.PointerMove(Point{40, 40})
	clock.Advance(time.Second)
	d.PointerUp(Point{40, 40}, false)

	assert.Equal(t, []Intent{IntentDragStarted}, rec.all())
}

func TestDoubleTap(t *testing.T) {
	tests := []struct {
		name   string
		gap    time.Duration
		second Point
		want   []Intent
	}{
		{"within window and distance", 300 * time.Millisecond, Point{20, 20}, []Intent{IntentDoubleTap}},
		{"too slow", 450 * time.Millisecond, Point{10, 10}, nil},
		{"too far", 200 * time.Millisecond, Point{40, 10}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, clock, rec := setup()

			d.PointerDown(Point{10, 10}, false)
			clock.Advance(50 * time.Millisecond)
			d.PointerUp(Point{10, 10}, false)

			clock.Advance(tt.gap)
			d.PointerDown(tt.second, false)
			clock.Advance(50 * time.Millisecond)
			d.PointerUp(tt.second, false)

			assert.Equal(t, tt.want, rec.all())
		})
	}
}

func TestDoubleTapResetsCandidate(t *testing.T) {
	d, clock, rec := setup()

	for i := 0; i < 3; i++ {
		d.PointerDown(Point{10, 10}, false)
		clock.Advance(20 * time.Millisecond)
		d.PointerUp(Point{10, 10}, false)
		clock.Advance(100 * time.Millisecond)
	}

	// Третий тап начинает новую пару, а не второй двойной тап
	assert.Equal(t, []Intent{IntentDoubleTap}, rec.all())
}

func TestLeaveWhileRecordingReleases(t *testing.T) {
	d, clock, rec := setup()

	d.PointerDown(Point{10, 10}, false)
	clock.Advance(300 * time.Millisecond)
	d.PointerLeave(true)
	d.PointerUp(Point{10, 10}, true)

	assert.Equal(t, []Intent{IntentPress, IntentRelease}, rec.all())
}

func TestLeaveClearsHoldTimer(t *testing.T) {
	d, clock, rec := setup()

	d.PointerDown(Point{10, 10}, false)
	clock.Advance(100 * time.Millisecond)
	d.PointerLeave(false)
	clock.Advance(time.Second)

	assert.Empty(t, rec.all())
	_, active := d.State()
	assert.False(t, active)
}

func TestUpClearsHoldTimerEvenWhenRecording(t *testing.T) {
	d, clock, rec := setup()

	// Запись начата горячей клавишей, указатель нажат и отпущен быстро
	d.PointerDown(Point{10, 10}, true)
	clock.Advance(50 * time.Millisecond)
	d.PointerUp(Point{10, 10}, true)
	clock.Advance(time.Second)

	assert.Equal(t, []Intent{IntentRelease}, rec.all())
}

func TestStaleTimerNeverEmits(t *testing.T) {
	d, clock, rec := setup()

	d.PointerDown(Point{10, 10}, false)
	clock.Advance(100 * time.Millisecond)
	d.PointerUp(Point{10, 10}, false)
	d.PointerDown(Point{10, 10}, false)
	clock.Advance(200 * time.Millisecond) // первый таймер истёк бы здесь

	assert.Empty(t, rec.all())

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, []Intent{IntentPress}, rec.all())
}

func TestHotkeyGuard(t *testing.T) {
	rec := &recorder{}
	g := NewHotkeyGuard(rec.emit)

	g.Up() // отпускание без нажатия
	g.Down()
	g.Down() // автоповтор
	assert.True(t, g.Pressed())
	g.Up()
	g.Up()

	assert.Equal(t, []Intent{IntentPress, IntentRelease}, rec.all())
	assert.False(t, g.Pressed())
}

func TestIntentString(t *testing.T) {
	assert.Equal(t, "press", IntentPress.String())
	assert.Equal(t, "double-tap", IntentDoubleTap.String())
	assert.Equal(t, "none", IntentNone.String())
}
