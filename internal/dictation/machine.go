// Package dictation - конечный автомат записи и сеанс диктовки:
// запись, постобработка, распознавание, доставка текста.
package dictation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"verba/internal/audio"
	"verba/internal/events"
	"verba/internal/gesture"
	"verba/internal/history"
)

// State состояние автомата.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateTranscribing
	StateError
)

func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Reason причина неудачи сеанса. Закрытый набор, каждому значению
// соответствует сообщение пользователю.
type Reason string

const (
	ReasonPermission    Reason = "permission"
	ReasonUnknown       Reason = "unknown"
	ReasonTooShort      Reason = "too_short"
	ReasonTooQuiet      Reason = "too_quiet"
	ReasonTranscription Reason = "transcription"
)

// DefaultErrorRevert через сколько состояние Error сменяется на Idle.
const DefaultErrorRevert = 5 * time.Second

// Source устройство записи.
type Source interface {
	Start() error
	Stop() (audio.Buffer, error)
}

// Deliverer доставка итогового текста.
type Deliverer interface {
	Deliver(ctx context.Context, text, target string) error
}

// Resolver определяет активное приложение в момент нажатия.
type Resolver interface {
	Frontmost() (string, bool)
}

// Publisher шина событий.
type Publisher interface {
	Publish(e events.Event) error
}

// Sounds звуковая обратная связь.
type Sounds interface {
	Start()
	Stop()
}

// Settings настройки, читаемые на каждом сеансе.
type Settings interface {
	SoundsEnabled() bool
	AutoPaste() bool
}

// Session один сеанс диктовки.
type Session struct {
	ID        string
	StartedAt time.Time
	Target    string // активное приложение на момент нажатия
}

// Deps зависимости автомата. Resolver и Sounds могут быть nil.
type Deps struct {
	Source    Source
	Pipeline  *Pipeline
	Deliverer Deliverer
	Resolver  Resolver
	Publisher Publisher
	Sounds    Sounds
	Settings  Settings
	Clock     gesture.Clock
}

// Options параметры автомата.
type Options struct {
	Tuning      audio.Tuning
	ErrorRevert time.Duration
}

type result struct {
	session Session
	outcome Outcome
	err     error
}

// Machine владеет состоянием диктовки. Все переходы выполняются
// последовательно в горутине Run.
type Machine struct {
	deps Deps
	opts Options

	intents chan gesture.Intent
	results chan result
	reverts chan uint64

	mu        sync.RWMutex
	state     State
	observers []func(State)

	// Поля ниже меняются только в горутине Run
	session   *Session
	revertGen uint64
	done      chan struct{}
}

// New создаёт автомат в состоянии Idle.
func New(deps Deps, opts Options) *Machine {
	if deps.Clock == nil {
		deps.Clock = gesture.SystemClock
	}
	if opts.ErrorRevert <= 0 {
		opts.ErrorRevert = DefaultErrorRevert
	}
	return &Machine{
		deps:    deps,
		opts:    opts,
		intents: make(chan gesture.Intent, 16),
		results: make(chan result, 1),
		reverts: make(chan uint64, 1),
		done:    make(chan struct{}),
	}
}

// State возвращает текущее состояние.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Recording true, пока идёт запись.
func (m *Machine) Recording() bool {
	return m.State() == StateRecording
}

// Observe подписывает fn на смену состояния. fn вызывается из горутины Run
// и не должна блокироваться.
func (m *Machine) Observe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Handle передаёт намерение автомату. Не блокируется: при переполненной
// очереди намерение отбрасывается.
func (m *Machine) Handle(i gesture.Intent) {
	select {
	case m.intents <- i:
	case <-m.done:
	default:
		zap.S().Warnw("Очередь намерений переполнена", "intent", i)
	}
}

// Run обрабатывает намерения до отмены ctx.
func (m *Machine) Run(ctx context.Context) {
	defer close(m.done)

	for {
		select {
		case <-ctx.Done():
			if m.State() == StateRecording {
				_, _ = m.deps.Source.Stop()
			}
			return
		case i := <-m.intents:
			m.handleIntent(ctx, i)
		case r := <-m.results:
			m.handleResult(r)
		case gen := <-m.reverts:
			if gen == m.revertGen && m.State() == StateError {
				m.setState(StateIdle)
			}
		}
	}
}

func (m *Machine) handleIntent(ctx context.Context, i gesture.Intent) {
	switch {
	case i == gesture.IntentPress && m.State() == StateIdle:
		m.startRecording()
	case i == gesture.IntentRelease && m.State() == StateRecording:
		m.stopRecording(ctx)
	default:
		zap.S().Debugw("Намерение проигнорировано", "intent", i, "state", m.State())
	}
}

func (m *Machine) startRecording() {
	s := Session{ID: uuid.NewString(), StartedAt: m.deps.Clock.Now()}
	if m.deps.Resolver != nil && m.deps.Settings.AutoPaste() {
		if target, ok := m.deps.Resolver.Frontmost(); ok {
			s.Target = target
		}
	}

	log := zap.S().With("session", s.ID)

	if err := m.deps.Source.Start(); err != nil {
		reason := ReasonUnknown
		if errors.Is(err, audio.ErrPermissionDenied) {
			reason = ReasonPermission
		}
		log.Errorw("Не удалось начать запись", "error", err, "reason", reason)
		m.publish(events.Event{Topic: events.RecordingFailed, Session: s.ID, Reason: string(reason)})
		return
	}

	m.session = &s
	m.setState(StateRecording)
	m.playSound(true)
	log.Infow("Запись начата", "target", s.Target)
	m.publish(events.Event{Topic: events.RecordingStarted, Session: s.ID})
}

func (m *Machine) stopRecording(ctx context.Context) {
	s := *m.session
	log := zap.S().With("session", s.ID)

	buf, err := m.deps.Source.Stop()
	m.playSound(false)
	m.publish(events.Event{Topic: events.RecordingStopped, Session: s.ID})

	if err != nil || len(buf.Samples) == 0 {
		log.Infow("Пустая запись", "error", err)
		m.reject(s, ReasonTooShort)
		return
	}

	processed, rej := audio.Process(buf, m.opts.Tuning)
	switch rej {
	case audio.RejectTooShort:
		m.reject(s, ReasonTooShort)
		return
	case audio.RejectTooQuiet:
		m.reject(s, ReasonTooQuiet)
		return
	}

	log.Infow("Запись обработана",
		"duration", buf.Duration(), "processed", processed.Duration(), "rate", buf.SampleRate)
	m.setState(StateTranscribing)

	go func() {
		out, err := m.deps.Pipeline.Run(ctx, processed)
		if err == nil {
			if derr := m.deps.Deliverer.Deliver(ctx, out.Text, s.Target); derr != nil {
				log.Errorw("Не удалось доставить текст", "error", derr)
			}
		}
		select {
		case m.results <- result{session: s, outcome: out, err: err}:
		case <-m.done:
		}
	}()
}

func (m *Machine) reject(s Session, reason Reason) {
	m.session = nil
	m.setState(StateIdle)
	m.publish(events.Event{Topic: events.RecordingFailed, Session: s.ID, Reason: string(reason)})
}

func (m *Machine) handleResult(r result) {
	if m.State() != StateTranscribing || m.session == nil || m.session.ID != r.session.ID {
		return
	}
	m.session = nil
	log := zap.S().With("session", r.session.ID)

	if r.err != nil {
		log.Errorw("Ошибка распознавания", "error", r.err)
		m.publish(events.Event{Topic: events.RecordingFailed, Session: r.session.ID, Reason: string(ReasonTranscription)})
		m.scheduleRevert()
		m.setState(StateError)
		return
	}

	m.setState(StateIdle)
	if r.outcome.Text != "" {
		m.publish(events.Event{
			Topic:   events.Transcript,
			Session: r.session.ID,
			Text:    r.outcome.Text,
			Words:   history.WordCount(r.outcome.Text),
			Source:  string(r.outcome.Source),
		})
	}
	m.publish(events.Event{Topic: events.DictationComplete, Session: r.session.ID})
	log.Infow("Диктовка завершена", "empty", r.outcome.Text == "")
}

func (m *Machine) scheduleRevert() {
	m.revertGen++
	gen := m.revertGen
	m.deps.Clock.AfterFunc(m.opts.ErrorRevert, func() {
		select {
		case m.reverts <- gen:
		case <-m.done:
		}
	})
}

func (m *Machine) setState(s State) {
	m.mu.Lock()
	if m.state == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	observers := append([]func(State){}, m.observers...)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(s)
	}
	m.publish(events.Event{Topic: events.StateChanged, State: s.String()})
}

func (m *Machine) playSound(start bool) {
	if m.deps.Sounds == nil || !m.deps.Settings.SoundsEnabled() {
		return
	}
	if start {
		m.deps.Sounds.Start()
	} else {
		m.deps.Sounds.Stop()
	}
}

func (m *Machine) publish(e events.Event) {
	if m.deps.Publisher == nil {
		return
	}
	if err := m.deps.Publisher.Publish(e); err != nil {
		zap.S().Warnw("Не удалось опубликовать событие", "topic", e.Topic, "error", err)
	}
}
