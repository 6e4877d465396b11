package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"verba/internal/dictation"
)

const iconSize = 64

// Иконки трея рисуются при старте, файлов ресурсов нет.
var (
	iconIdle         = drawIcon(color.RGBA{128, 128, 128, 255}) // Серый
	iconRecording    = drawIcon(color.RGBA{220, 50, 50, 255})   // Красный
	iconTranscribing = drawIcon(color.RGBA{230, 160, 50, 255})  // Оранжевый
	iconError        = drawIcon(color.RGBA{150, 40, 160, 255})  // Фиолетовый
)

func iconFor(s dictation.State) []byte {
	switch s {
	case dictation.StateRecording:
		return iconRecording
	case dictation.StateTranscribing:
		return iconTranscribing
	case dictation.StateError:
		return iconError
	default:
		return iconIdle
	}
}

// drawIcon рисует упрощённый микрофон: круг и ножку.
func drawIcon(c color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))

	cx, cy := iconSize/2, iconSize/2-4
	const radius = 20

	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				img.SetRGBA(x, y, c)
			}
		}
	}

	for y := cy + radius; y < cy+radius+10 && y < iconSize; y++ {
		for x := cx - 3; x <= cx+3; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		// Кодирование в память не возвращает ошибок для RGBA
		panic(err)
	}
	return buf.Bytes()
}
