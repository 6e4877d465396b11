package pill

// bottomMargin отступ от нижнего края экрана с учётом панели задач.
const bottomMargin = 80

// placement координаты окна по центру у нижнего края экрана.
func placement(screenW, screenH, w, h int) (x, y int) {
	x = (screenW - w) / 2
	y = screenH - h - bottomMargin
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}
