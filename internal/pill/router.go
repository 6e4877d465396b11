package pill

import (
	"gioui.org/f32"
	"gioui.org/io/pointer"

	"verba/internal/gesture"
)

// router переводит события указателя gioui в вызовы распознавателя жестов.
type router struct {
	gestures  *gesture.Disambiguator
	recording func() bool
	down      bool
}

func (r *router) route(kind pointer.Kind, pos f32.Point) {
	p := gesture.Point{X: float64(pos.X), Y: float64(pos.Y)}

	switch kind {
	case pointer.Press:
		r.down = true
		r.gestures.PointerDown(p, r.recording())
	case pointer.Drag:
		if r.down {
			r.gestures.PointerMove(p)
		}
	case pointer.Release:
		if r.down {
			r.down = false
			r.gestures.PointerUp(p, r.recording())
		}
	case pointer.Leave, pointer.Cancel:
		// Перемещение окна системой отменяет захват указателя
		if r.down {
			r.down = false
			r.gestures.PointerLeave(r.recording())
		}
	}
}
