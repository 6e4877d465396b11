package config

import (
	"runtime"
	"strconv"
	"strings"
)

// Modifier представляет модификатор клавиши.
type Modifier string

const (
	ModCtrl  Modifier = "ctrl"
	ModShift Modifier = "shift"
	ModAlt   Modifier = "alt"
	ModSuper Modifier = "super" // Win/Cmd
)

// Key представляет клавишу.
type Key string

const (
	KeySpace  Key = "space"
	KeyReturn Key = "return"
	KeyTab    Key = "tab"
	KeyA      Key = "a"
	KeyB      Key = "b"
	KeyC      Key = "c"
	KeyD      Key = "d"
	KeyE      Key = "e"
	KeyF      Key = "f"
	KeyG      Key = "g"
	KeyH      Key = "h"
	KeyI      Key = "i"
	KeyJ      Key = "j"
	KeyK      Key = "k"
	KeyL      Key = "l"
	KeyM      Key = "m"
	KeyN      Key = "n"
	KeyO      Key = "o"
	KeyP      Key = "p"
	KeyQ      Key = "q"
	KeyR      Key = "r"
	KeyS      Key = "s"
	KeyT      Key = "t"
	KeyU      Key = "u"
	KeyV      Key = "v"
	KeyW      Key = "w"
	KeyX      Key = "x"
	KeyY      Key = "y"
	KeyZ      Key = "z"
	KeyF1     Key = "f1"
	KeyF2     Key = "f2"
	KeyF3     Key = "f3"
	KeyF4     Key = "f4"
	KeyF5     Key = "f5"
	KeyF6     Key = "f6"
	KeyF7     Key = "f7"
	KeyF8     Key = "f8"
	KeyF9     Key = "f9"
	KeyF10    Key = "f10"
	KeyF11    Key = "f11"
	KeyF12    Key = "f12"
)

// Коды одиночных клавиш для низкоуровневого перехвата.
const (
	RawRightCtrlWindows uint16 = 0xA3 // VK_RCONTROL
	RawRightCtrlX11     uint16 = 0xFFE4
)

// HotkeyConfig хранит настройки горячей клавиши.
// Если RawCode задан, используется одиночная клавиша (например, правый Ctrl),
// иначе комбинация Modifiers+Key.
type HotkeyConfig struct {
	Modifiers []Modifier `json:"modifiers,omitempty" validate:"dive,oneof=ctrl shift alt super"`
	Key       Key        `json:"key,omitempty"`
	RawCode   uint16     `json:"raw_code,omitempty"`
}

// IsRaw возвращает true для одиночной клавиши.
func (h HotkeyConfig) IsRaw() bool {
	return h.RawCode != 0
}

// String возвращает строковое представление горячей клавиши.
func (h HotkeyConfig) String() string {
	if h.IsRaw() {
		switch h.RawCode {
		case RawRightCtrlWindows, RawRightCtrlX11:
			return "right ctrl"
		}
		return "raw:" + strconv.Itoa(int(h.RawCode))
	}

	parts := make([]string, 0, len(h.Modifiers)+1)
	for _, m := range h.Modifiers {
		parts = append(parts, string(m))
	}
	parts = append(parts, string(h.Key))
	return strings.Join(parts, "+")
}

// DefaultHotkey возвращает горячую клавишу по умолчанию для текущей ОС:
// правый Ctrl на Windows и X11, Ctrl+Shift+Space на macOS.
func DefaultHotkey() HotkeyConfig {
	switch runtime.GOOS {
	case "windows":
		return HotkeyConfig{RawCode: RawRightCtrlWindows}
	case "linux":
		return HotkeyConfig{RawCode: RawRightCtrlX11}
	default:
		return HotkeyConfig{
			Modifiers: []Modifier{ModCtrl, ModShift},
			Key:       KeySpace,
		}
	}
}

// AvailableModifiers возвращает список доступных модификаторов.
func AvailableModifiers() []Modifier {
	return []Modifier{ModCtrl, ModShift, ModAlt, ModSuper}
}

// AvailableKeys возвращает список доступных клавиш.
func AvailableKeys() []Key {
	return []Key{
		KeySpace, KeyReturn, KeyTab,
		KeyA, KeyB, KeyC, KeyD, KeyE, KeyF, KeyG, KeyH, KeyI, KeyJ, KeyK, KeyL, KeyM,
		KeyN, KeyO, KeyP, KeyQ, KeyR, KeyS, KeyT, KeyU, KeyV, KeyW, KeyX, KeyY, KeyZ,
		KeyF1, KeyF2, KeyF3, KeyF4, KeyF5, KeyF6, KeyF7, KeyF8, KeyF9, KeyF10, KeyF11, KeyF12,
	}
}
