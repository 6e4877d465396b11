//go:build linux

package input

import (
	"errors"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// linuxFocus работает через xdotool. Под Wayland активное окно недоступно.
type linuxFocus struct {
	useWayland bool
}

func newFocus() Focus {
	return &linuxFocus{
		useWayland: os.Getenv("WAYLAND_DISPLAY") != "",
	}
}

func (f *linuxFocus) Frontmost() (string, bool) {
	if f.useWayland {
		return "", false
	}

	out, err := exec.Command("xdotool", "getactivewindow").Output()
	if err != nil {
		return "", false
	}
	id := strings.TrimSpace(string(out))
	if id == "" {
		return "", false
	}

	if pidOut, err := exec.Command("xdotool", "getwindowpid", id).Output(); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(pidOut))); err == nil && pid == os.Getpid() {
			return "", false
		}
	}
	return id, true
}

func (f *linuxFocus) Activate(id string) error {
	if f.useWayland {
		return errors.New("активация окна не поддерживается в Wayland")
	}
	return exec.Command("xdotool", "windowactivate", "--sync", id).Run()
}
