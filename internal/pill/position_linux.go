//go:build linux

package pill

import (
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// positionWindow ставит окно по центру у нижнего края экрана поверх остальных.
// Вызывается после появления окна.
func positionWindow(title string, width, height int) {
	time.Sleep(100 * time.Millisecond)

	screenWidth, screenHeight := screenSize()
	if screenWidth == 0 || screenHeight == 0 {
		return
	}
	x, y := placement(screenWidth, screenHeight, width, height)

	out, err := exec.Command("xdotool", "search", "--name", title).Output()
	if err != nil {
		zap.S().Debugw("Окно не найдено через xdotool", "error", err)
		return
	}
	ids := strings.Fields(string(out))
	if len(ids) == 0 {
		return
	}
	id := ids[0]

	_ = exec.Command("xdotool", "windowmove", id, strconv.Itoa(x), strconv.Itoa(y)).Run()

	if err := exec.Command("wmctrl", "-i", "-r", id, "-b", "add,above,skip_taskbar").Run(); err != nil {
		// wmctrl может отсутствовать
		_ = exec.Command("xprop", "-id", id, "-f", "_NET_WM_STATE", "32a",
			"-set", "_NET_WM_STATE", "_NET_WM_STATE_ABOVE").Run()
	}
}

func screenSize() (width, height int) {
	out, err := exec.Command("xdotool", "getdisplaygeometry").Output()
	if err != nil {
		return 0, 0
	}
	return parseGeometry(string(out))
}

func parseGeometry(s string) (width, height int) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return 0, 0
	}
	width, _ = strconv.Atoi(parts[0])
	height, _ = strconv.Atoi(parts[1])
	return width, height
}
