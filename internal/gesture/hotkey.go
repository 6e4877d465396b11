package gesture

import "sync/atomic"

// HotkeyGuard переводит нажатие и отпускание аппаратной клавиши в намерения,
// отбрасывая повторные нажатия (автоповтор) и отпускание без нажатия.
type HotkeyGuard struct {
	pressed atomic.Bool
	emit    func(Intent)
}

// NewHotkeyGuard создаёт защиту от повторов.
func NewHotkeyGuard(emit func(Intent)) *HotkeyGuard {
	return &HotkeyGuard{emit: emit}
}

// Down - клавиша нажата.
func (g *HotkeyGuard) Down() {
	if g.pressed.CompareAndSwap(false, true) && g.emit != nil {
		g.emit(IntentPress)
	}
}

// Up - клавиша отпущена.
func (g *HotkeyGuard) Up() {
	if g.pressed.CompareAndSwap(true, false) && g.emit != nil {
		g.emit(IntentRelease)
	}
}

// Pressed возвращает true пока клавиша удерживается.
func (g *HotkeyGuard) Pressed() bool {
	return g.pressed.Load()
}
