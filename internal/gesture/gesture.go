// Package gesture превращает события указателя и горячей клавиши
// в намерения: начать запись, закончить запись, перетаскивание, двойной тап.
package gesture

import (
	"math"
	"sync"
	"time"
)

// Intent намерение пользователя.
type Intent int

const (
	IntentNone Intent = iota
	IntentPress
	IntentRelease
	IntentDragStarted
	IntentDoubleTap
)

func (i Intent) String() string {
	switch i {
	case IntentPress:
		return "press"
	case IntentRelease:
		return "release"
	case IntentDragStarted:
		return "drag-started"
	case IntentDoubleTap:
		return "double-tap"
	default:
		return "none"
	}
}

// Point координаты указателя в пикселях.
type Point struct {
	X, Y float64
}

// Options временные и пространственные пороги жестов.
type Options struct {
	Hold             time.Duration // Удержание до начала записи
	DoubleTap        time.Duration // Окно двойного тапа
	DoubleTapMaxDist float64       // Допустимое смещение между тапами
	DragThreshold    float64       // Смещение, после которого жест считается перетаскиванием
}

// DefaultOptions возвращает пороги по умолчанию.
func DefaultOptions() Options {
	return Options{
		Hold:             280 * time.Millisecond,
		DoubleTap:        400 * time.Millisecond,
		DoubleTapMaxDist: 25,
		DragThreshold:    2,
	}
}

// Timer отменяемый таймер.
type Timer interface {
	Stop() bool
}

// Clock источник времени и таймеров.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// SystemClock - часы на основе пакета time.
var SystemClock Clock = systemClock{}

// State состояние текущего нажатия указателя.
type State struct {
	Origin    Point
	DownAt    time.Time
	Dragging  bool
	HoldArmed bool
	Pressed   bool // таймер удержания сработал
}

type tap struct {
	at  time.Time
	pos Point
}

// Disambiguator распознаёт жесты указателя.
// Каждое событие порождает не более одного намерения.
type Disambiguator struct {
	mu      sync.Mutex
	opts    Options
	clock   Clock
	emit    func(Intent)
	current *State
	timer   Timer
	gen     uint64
	lastTap *tap
}

// New создаёт распознаватель жестов. emit вызывается вне внутренних блокировок.
func New(opts Options, clock Clock, emit func(Intent)) *Disambiguator {
	if clock == nil {
		clock = SystemClock
	}
	return &Disambiguator{opts: opts, clock: clock, emit: emit}
}

// State возвращает копию состояния текущего нажатия.
func (d *Disambiguator) State() (State, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return State{}, false
	}
	return *d.current, true
}

// PointerDown начинает жест. Таймер удержания взводится только вне записи.
func (d *Disambiguator) PointerDown(p Point, recording bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelTimerLocked()
	d.current = &State{Origin: p, DownAt: d.clock.Now()}
	if recording {
		return
	}

	d.gen++
	gen := d.gen
	d.current.HoldArmed = true
	d.timer = d.clock.AfterFunc(d.opts.Hold, func() { d.holdFired(gen) })
}

func (d *Disambiguator) holdFired(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.current == nil || d.current.Dragging || !d.current.HoldArmed {
		d.mu.Unlock()
		return
	}
	d.current.HoldArmed = false
	d.current.Pressed = true
	d.timer = nil
	d.mu.Unlock()

	d.fire(IntentPress)
}

// PointerMove превращает жест в перетаскивание, если смещение превысило порог
// до срабатывания таймера удержания.
func (d *Disambiguator) PointerMove(p Point) {
	d.mu.Lock()
	g := d.current
	if g == nil || g.Dragging || g.Pressed {
		d.mu.Unlock()
		return
	}
	if math.Abs(p.X-g.Origin.X) <= d.opts.DragThreshold && math.Abs(p.Y-g.Origin.Y) <= d.opts.DragThreshold {
		d.mu.Unlock()
		return
	}
	d.cancelTimerLocked()
	g.Dragging = true
	d.mu.Unlock()

	d.fire(IntentDragStarted)
}

// PointerUp завершает жест: отпускание во время записи, либо тап/двойной тап.
func (d *Disambiguator) PointerUp(p Point, recording bool) {
	d.mu.Lock()
	d.cancelTimerLocked()
	g := d.current
	d.current = nil
	if g == nil || g.Dragging {
		d.mu.Unlock()
		return
	}

	// После press отпускание отправляется всегда: автомат мог ещё не
	// перейти в Recording, а release после press он получит по порядку.
	if recording || g.Pressed {
		d.mu.Unlock()
		d.fire(IntentRelease)
		return
	}

	now := d.clock.Now()
	last := d.lastTap
	if last != nil && now.Sub(last.at) <= d.opts.DoubleTap && dist(last.pos, p) <= d.opts.DoubleTapMaxDist {
		d.lastTap = nil
		d.mu.Unlock()
		d.fire(IntentDoubleTap)
		return
	}
	d.lastTap = &tap{at: now, pos: p}
	d.mu.Unlock()
}

// PointerLeave - указатель ушёл с элемента. Во время записи или после
// press с зажатым указателем считается отпусканием.
func (d *Disambiguator) PointerLeave(recording bool) {
	d.mu.Lock()
	d.cancelTimerLocked()
	g := d.current
	d.current = nil
	d.mu.Unlock()

	if g != nil && (recording || g.Pressed) {
		d.fire(IntentRelease)
	}
}

func (d *Disambiguator) cancelTimerLocked() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.current != nil {
		d.current.HoldArmed = false
	}
}

func (d *Disambiguator) fire(i Intent) {
	if d.emit != nil {
		d.emit(i)
	}
}

func dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
