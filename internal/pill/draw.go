package pill

import (
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"gioui.org/font"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"verba/internal/dictation"
)

var theme = sync.OnceValue(material.NewTheme)

// drawPill draws the rounded body, the state indicator and the level bar.
func drawPill(gtx layout.Context, cfg Config, state dictation.State, level float32, since time.Duration, hint string) {
	size := gtx.Constraints.Max
	r := size.Y / 2
	body := clip.RRect{Rect: image.Rectangle{Max: size}, NE: r, NW: r, SE: r, SW: r}
	paint.FillShape(gtx.Ops, cfg.BGColor, body.Op(gtx.Ops))

	layout.Inset{Left: unit.Dp(14), Right: unit.Dp(14)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if state == dictation.StateTranscribing {
					return drawSpinner(gtx, since, cfg.BusyColor)
				}
				return drawDot(gtx, since, stateColor(state, cfg), state == dictation.StateRecording)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(10)}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				if state == dictation.StateRecording {
					return drawLevelBar(gtx, level, cfg)
				}
				th := theme()
				lbl := material.Label(th, unit.Sp(12), hint)
				lbl.Color = cfg.IdleColor
				lbl.Font.Weight = font.Medium
				lbl.MaxLines = 1
				return layout.W.Layout(gtx, lbl.Layout)
			}),
		)
	})
}

func stateColor(s dictation.State, cfg Config) color.NRGBA {
	switch s {
	case dictation.StateRecording:
		return cfg.RecordColor
	case dictation.StateTranscribing:
		return cfg.BusyColor
	case dictation.StateError:
		return cfg.ErrorColor
	default:
		return cfg.IdleColor
	}
}

// drawDot draws the state indicator, pulsing while recording.
func drawDot(gtx layout.Context, since time.Duration, col color.NRGBA, pulse bool) layout.Dimensions {
	size := gtx.Dp(unit.Dp(12))
	if pulse {
		k := float32(math.Sin(float64(since.Milliseconds())/200.0)*0.3 + 0.7)
		col.A = uint8(float32(col.A) * k)
	}
	dot := clip.Ellipse{Max: image.Pt(size, size)}
	paint.FillShape(gtx.Ops, col, dot.Op(gtx.Ops))
	return layout.Dimensions{Size: image.Pt(size, size)}
}

// levelColor green for normal speech, yellow when loud, red near clipping.
func levelColor(level float32) color.NRGBA {
	switch {
	case level > 0.7:
		return color.NRGBA{R: 255, G: 80, B: 80, A: 255}
	case level > 0.4:
		return color.NRGBA{R: 255, G: 180, B: 0, A: 255}
	default:
		return color.NRGBA{R: 80, G: 200, B: 120, A: 255}
	}
}

// drawLevelBar renders a horizontal level meter.
func drawLevelBar(gtx layout.Context, level float32, cfg Config) layout.Dimensions {
	width := gtx.Constraints.Max.X
	height := gtx.Dp(unit.Dp(8))
	rr := height / 2

	bg := clip.RRect{Rect: image.Rectangle{Max: image.Pt(width, height)}, NE: rr, NW: rr, SE: rr, SW: rr}
	paint.FillShape(gtx.Ops, cfg.PanelColor, bg.Op(gtx.Ops))

	if filled := barWidth(level, width); filled > 0 {
		bar := clip.RRect{Rect: image.Rectangle{Max: image.Pt(filled, height)}, NE: rr, NW: rr, SE: rr, SW: rr}
		paint.FillShape(gtx.Ops, levelColor(level), bar.Op(gtx.Ops))
	}
	return layout.Dimensions{Size: image.Pt(width, height)}
}

func barWidth(level float32, width int) int {
	if level <= 0 {
		return 0
	}
	if level > 1 {
		level = 1
	}
	return int(level * float32(width))
}

// drawSpinner draws a circular dot spinner.
func drawSpinner(gtx layout.Context, since time.Duration, col color.NRGBA) layout.Dimensions {
	size := gtx.Dp(unit.Dp(16))
	thickness := gtx.Dp(unit.Dp(3))

	rotation := float64(since.Milliseconds()) / 800.0 * 2 * math.Pi
	center := image.Pt(size/2, size/2)
	radius := size/2 - thickness/2
	dotRadius := thickness / 2

	const numDots = 8
	for i := 0; i < numDots; i++ {
		angle := rotation + float64(i)*2*math.Pi/numDots
		x := center.X + int(float64(radius)*math.Cos(angle))
		y := center.Y + int(float64(radius)*math.Sin(angle))

		c := col
		c.A = spinnerAlpha(i)
		dot := clip.Ellipse{
			Min: image.Pt(x-dotRadius, y-dotRadius),
			Max: image.Pt(x+dotRadius, y+dotRadius),
		}
		paint.FillShape(gtx.Ops, c, dot.Op(gtx.Ops))
	}
	return layout.Dimensions{Size: image.Pt(size, size)}
}

func spinnerAlpha(i int) uint8 {
	a := 255 - i*35
	if a < 40 {
		a = 40
	}
	return uint8(a)
}
