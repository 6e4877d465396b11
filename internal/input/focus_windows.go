//go:build windows

package input

import (
	"fmt"
	"os"
	"strconv"
	"syscall"
	"unsafe"
)

var (
	user32                       = syscall.NewLazyDLL("user32.dll")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow      = user32.NewProc("SetForegroundWindow")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
)

// windowsFocus идентифицирует окно по его HWND.
type windowsFocus struct{}

func newFocus() Focus {
	return windowsFocus{}
}

func (windowsFocus) Frontmost() (string, bool) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return "", false
	}

	var pid uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	if int(pid) == os.Getpid() {
		return "", false
	}
	return strconv.FormatUint(uint64(hwnd), 16), true
}

func (windowsFocus) Activate(id string) error {
	hwnd, err := strconv.ParseUint(id, 16, 64)
	if err != nil {
		return fmt.Errorf("некорректный идентификатор окна %q: %w", id, err)
	}
	ok, _, _ := procSetForegroundWindow.Call(uintptr(hwnd))
	if ok == 0 {
		return fmt.Errorf("не удалось активировать окно %s", id)
	}
	return nil
}
