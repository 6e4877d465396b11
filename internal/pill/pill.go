// Package pill provides the floating push-to-talk window with a level meter.
package pill

import (
	"image"
	"image/color"
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/unit"
	"go.uber.org/zap"

	"verba/internal/dictation"
	"verba/internal/gesture"
	"verba/internal/i18n"
)

// Machine receives press and release intents.
type Machine interface {
	Handle(gesture.Intent)
	Recording() bool
}

// Config holds window configuration.
type Config struct {
	Width       int           // Window width in pixels
	Height      int           // Window height in pixels
	RefreshRate time.Duration // Refresh interval while busy
	BGColor     color.NRGBA
	PanelColor  color.NRGBA
	IdleColor   color.NRGBA
	RecordColor color.NRGBA
	BusyColor   color.NRGBA
	ErrorColor  color.NRGBA
	TextColor   color.NRGBA
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Width:       180,
		Height:      44,
		RefreshRate: 33 * time.Millisecond, // ~30fps
		BGColor:     color.NRGBA{R: 30, G: 30, B: 34, A: 245},
		PanelColor:  color.NRGBA{R: 45, G: 45, B: 50, A: 255},
		IdleColor:   color.NRGBA{R: 140, G: 140, B: 150, A: 255},
		RecordColor: color.NRGBA{R: 255, G: 100, B: 100, A: 255},
		BusyColor:   color.NRGBA{R: 88, G: 166, B: 255, A: 255},
		ErrorColor:  color.NRGBA{R: 190, G: 90, B: 210, A: 255},
		TextColor:   color.NRGBA{R: 240, G: 240, B: 245, A: 255},
	}
}

const windowTitle = "Verba"

// Window is the always-on-top pill. Holding it records, dragging moves it,
// double tap calls onDoubleTap.
type Window struct {
	mu        sync.Mutex
	config    Config
	state     dictation.State
	level     float32
	stateAt   time.Time
	router    router
	machine   Machine
	onDouble  func()
	window    *app.Window
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
	dragStart bool
}

// New creates the pill window. Call Show to open it.
func New(cfg Config, opts gesture.Options, machine Machine, onDoubleTap func()) *Window {
	w := &Window{
		config:   cfg,
		machine:  machine,
		onDouble: onDoubleTap,
		stateAt:  time.Now(),
	}
	w.router = router{
		gestures:  gesture.New(opts, nil, w.onIntent),
		recording: machine.Recording,
	}
	return w
}

func (w *Window) onIntent(i gesture.Intent) {
	switch i {
	case gesture.IntentPress, gesture.IntentRelease:
		w.machine.Handle(i)
	case gesture.IntentDragStarted:
		w.mu.Lock()
		w.dragStart = true
		w.mu.Unlock()
	case gesture.IntentDoubleTap:
		if w.onDouble != nil {
			go w.onDouble()
		}
	}
}

// SetState switches the pill appearance.
func (w *Window) SetState(s dictation.State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = s
	w.stateAt = time.Now()
	if s != dictation.StateRecording {
		w.level = 0
	}
	w.invalidateLocked()
}

// SetLevel updates the live input level in [0, 1].
func (w *Window) SetLevel(l float32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.level = l
	w.invalidateLocked()
}

func (w *Window) invalidateLocked() {
	if w.window != nil {
		w.window.Invalidate()
	}
}

// Show opens the window (non-blocking).
func (w *Window) Show() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.window = new(app.Window)

	go w.runEventLoop(w.window, w.stopCh, w.doneCh)
}

// Hide closes the window.
func (w *Window) Hide() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.stopCh = nil
	w.mu.Unlock()

	close(stopCh)
	select {
	case <-doneCh:
	case <-time.After(time.Second):
		zap.S().Warn("Окно не закрылось за секунду")
	}
}

func (w *Window) runEventLoop(win *app.Window, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	defer func() {
		w.mu.Lock()
		w.window = nil
		w.running = false
		w.mu.Unlock()
	}()

	win.Option(
		app.Title(windowTitle),
		app.Size(unit.Dp(w.config.Width), unit.Dp(w.config.Height)),
		app.Decorated(false),
	)

	go positionWindow(windowTitle, w.config.Width, w.config.Height)

	// Анимация нужна только пока идёт распознавание
	ticker := time.NewTicker(w.config.RefreshRate)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-stopCh:
				win.Perform(system.ActionClose)
				return
			case <-ticker.C:
				w.mu.Lock()
				busy := w.state == dictation.StateTranscribing
				w.mu.Unlock()
				if busy {
					win.Invalidate()
				}
			}
		}
	}()

	var ops op.Ops
	for {
		switch e := win.Event().(type) {
		case app.DestroyEvent:
			if e.Err != nil {
				zap.S().Errorw("Окно закрыто с ошибкой", "error", e.Err)
			}
			return
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			w.frame(gtx, win)
			e.Frame(gtx.Ops)
		}
	}
}

func (w *Window) frame(gtx layout.Context, win *app.Window) {
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: w,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release | pointer.Leave | pointer.Cancel,
		})
		if !ok {
			break
		}
		if pe, ok := ev.(pointer.Event); ok {
			w.router.route(pe.Kind, pe.Position)
		}
	}

	w.mu.Lock()
	state, level, since := w.state, w.level, time.Since(w.stateAt)
	move := w.dragStart
	w.dragStart = false
	w.mu.Unlock()

	if move {
		win.Perform(system.ActionMove)
	}

	area := clip.Rect(image.Rectangle{Max: gtx.Constraints.Max}).Push(gtx.Ops)
	event.Op(gtx.Ops, w)
	pointer.CursorPointer.Add(gtx.Ops)
	area.Pop()

	drawPill(gtx, w.config, state, level, since, i18n.T("pill_hint"))
}
