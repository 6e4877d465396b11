// Package hotkey предоставляет глобальную клавишу диктовки: комбинацию
// через golang.design/x/hotkey или одиночную клавишу через перехват gohook.
package hotkey

import (
	"sync"
	"time"

	hook "github.com/robotn/gohook"
	"go.uber.org/zap"
	"golang.design/x/hotkey"
	"golang.design/x/hotkey/mainthread"

	"verba/internal/config"
)

// Keys получает нажатие и отпускание клавиши диктовки.
// Повторы от автоповтора отфильтровывает получатель.
type Keys interface {
	Down()
	Up()
}

// Handler держит зарегистрированную клавишу диктовки.
type Handler struct {
	mu      sync.Mutex
	keys    Keys
	hk      *hotkey.Hotkey
	raw     bool
	current config.HotkeyConfig
	stopCh  chan struct{}
}

// New создаёт обработчик горячей клавиши.
func New(keys Keys) *Handler {
	return &Handler{keys: keys}
}

// Register регистрирует клавишу, заменяя предыдущую.
func (h *Handler) Register(cfg config.HotkeyConfig) error {
	zap.S().Infow("Регистрация горячей клавиши", "hotkey", cfg.String())

	h.release()

	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = cfg
	h.stopCh = make(chan struct{})

	if cfg.IsRaw() {
		h.raw = true
		go h.listenRaw(hook.Start(), cfg.RawCode, h.stopCh)
		zap.S().Infow("Перехват одиночной клавиши запущен", "raw_code", cfg.RawCode)
		return nil
	}

	mods := make([]hotkey.Modifier, 0, len(cfg.Modifiers))
	for _, m := range cfg.Modifiers {
		if mod, ok := modifierMap[m]; ok {
			mods = append(mods, mod)
		}
	}
	key, ok := keyMap[cfg.Key]
	if !ok {
		key = hotkey.KeySpace
	}

	h.hk = hotkey.New(mods, key)
	if err := h.hk.Register(); err != nil {
		zap.S().Errorw("Ошибка регистрации горячей клавиши", "error", err)
		h.hk = nil
		h.stopCh = nil
		return err
	}

	zap.S().Infow("Горячая клавиша зарегистрирована", "hotkey", cfg.String())
	go h.listen(h.hk, h.stopCh)
	return nil
}

// release останавливает текущий listener и снимает регистрацию.
func (h *Handler) release() {
	h.mu.Lock()
	if h.stopCh != nil {
		close(h.stopCh)
		h.stopCh = nil
	}
	oldHk, wasRaw := h.hk, h.raw
	h.hk, h.raw = nil, false
	h.mu.Unlock()

	if wasRaw {
		hook.End()
	}

	// Клавиша могла остаться зажатой в момент перерегистрации
	if h.keys != nil {
		h.keys.Up()
	}

	if oldHk == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		oldHk.Unregister()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		zap.S().Warn("Таймаут отмены регистрации горячей клавиши")
	}
}

func (h *Handler) listen(hk *hotkey.Hotkey, stopCh chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		case _, ok := <-hk.Keydown():
			if !ok {
				return
			}
			h.keys.Down()
		case _, ok := <-hk.Keyup():
			if !ok {
				return
			}
			h.keys.Up()
		}
	}
}

func (h *Handler) listenRaw(evs chan hook.Event, code uint16, stopCh chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		case ev, ok := <-evs:
			if !ok {
				return
			}
			dispatchRaw(h.keys, ev, code)
		}
	}
}

// dispatchRaw передаёт событие перехвата, если оно относится к клавише code.
// gohook сообщает о зажатии как KeyHold, а KeyDown приходит только для
// печатных клавиш, поэтому нажатием считаются оба.
func dispatchRaw(keys Keys, ev hook.Event, code uint16) {
	if ev.Rawcode != code {
		return
	}
	switch ev.Kind {
	case hook.KeyHold, hook.KeyDown:
		keys.Down()
	case hook.KeyUp:
		keys.Up()
	}
}

// Unregister отменяет регистрацию горячей клавиши.
func (h *Handler) Unregister() {
	h.release()
}

// Current возвращает текущую зарегистрированную горячую клавишу.
func (h *Handler) Current() config.HotkeyConfig {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// RunOnMainThread запускает функцию в главном потоке (требование для macOS).
func RunOnMainThread(fn func()) {
	mainthread.Init(fn)
}

// modifierMap определён в platform-specific файлах modifiers_<os>.go

var keyMap = map[config.Key]hotkey.Key{
	config.KeySpace:  hotkey.KeySpace,
	config.KeyReturn: hotkey.KeyReturn,
	config.KeyTab:    hotkey.KeyTab,
	config.KeyA:      hotkey.KeyA,
	config.KeyB:      hotkey.KeyB,
	config.KeyC:      hotkey.KeyC,
	config.KeyD:      hotkey.KeyD,
	config.KeyE:      hotkey.KeyE,
	config.KeyF:      hotkey.KeyF,
	config.KeyG:      hotkey.KeyG,
	config.KeyH:      hotkey.KeyH,
	config.KeyI:      hotkey.KeyI,
	config.KeyJ:      hotkey.KeyJ,
	config.KeyK:      hotkey.KeyK,
	config.KeyL:      hotkey.KeyL,
	config.KeyM:      hotkey.KeyM,
	config.KeyN:      hotkey.KeyN,
	config.KeyO:      hotkey.KeyO,
	config.KeyP:      hotkey.KeyP,
	config.KeyQ:      hotkey.KeyQ,
	config.KeyR:      hotkey.KeyR,
	config.KeyS:      hotkey.KeyS,
	config.KeyT:      hotkey.KeyT,
	config.KeyU:      hotkey.KeyU,
	config.KeyV:      hotkey.KeyV,
	config.KeyW:      hotkey.KeyW,
	config.KeyX:      hotkey.KeyX,
	config.KeyY:      hotkey.KeyY,
	config.KeyZ:      hotkey.KeyZ,
	config.KeyF1:     hotkey.KeyF1,
	config.KeyF2:     hotkey.KeyF2,
	config.KeyF3:     hotkey.KeyF3,
	config.KeyF4:     hotkey.KeyF4,
	config.KeyF5:     hotkey.KeyF5,
	config.KeyF6:     hotkey.KeyF6,
	config.KeyF7:     hotkey.KeyF7,
	config.KeyF8:     hotkey.KeyF8,
	config.KeyF9:     hotkey.KeyF9,
	config.KeyF10:    hotkey.KeyF10,
	config.KeyF11:    hotkey.KeyF11,
	config.KeyF12:    hotkey.KeyF12,
}
