// Package notify предоставляет системные уведомления и звуковые сигналы записи.
package notify

import (
	"sync/atomic"

	"github.com/gen2brain/beeep"
	"go.uber.org/zap"

	"verba/internal/i18n"
)

// Частоты (Гц) и длительности (мс) сигналов начала и конца записи.
const (
	startFreq     = 380
	startDuration = 14
	stopFreq      = 280
	stopDuration  = 16
)

// maxBody ограничение длины текста в уведомлении (в рунах).
const maxBody = 100

var (
	notifyFn = beeep.Notify
	beepFn   = beeep.Beep
)

// Notifier отправляет системные уведомления.
type Notifier struct {
	enabled atomic.Bool
}

// New создаёт новый Notifier.
func New(enabled bool) *Notifier {
	n := &Notifier{}
	n.enabled.Store(enabled)
	return n
}

// SetEnabled включает/выключает уведомления.
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled.Store(enabled)
}

// Failure показывает сообщение для причины неудачи сеанса.
// Неизвестная причина показывается как общая ошибка записи.
func (n *Notifier) Failure(reason string) {
	n.notify(i18n.T("notify_error"), FailureMessage(reason))
}

// FailureMessage возвращает текст для причины неудачи.
func FailureMessage(reason string) string {
	key := "reason_" + reason
	if !i18n.Has(key) {
		key = "reason_unknown"
	}
	return i18n.T(key)
}

// Success показывает распознанный текст.
func (n *Notifier) Success(text string) {
	n.notify(i18n.T("notify_done"), truncate(text))
}

// Info показывает информационное уведомление.
func (n *Notifier) Info(msg string) {
	n.notify("", truncate(msg))
}

// Error показывает уведомление об ошибке.
func (n *Notifier) Error(msg string) {
	n.notify(i18n.T("notify_error"), msg)
}

func (n *Notifier) notify(title, message string) {
	if !n.enabled.Load() {
		return
	}
	appName := i18n.T("app_name")
	if title != "" {
		title = appName + ": " + title
	} else {
		title = appName
	}
	// Ошибки уведомлений не критичны
	if err := notifyFn(title, message, ""); err != nil {
		zap.S().Debugw("Уведомление не показано", "error", err)
	}
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) > maxBody {
		return string(r[:maxBody]) + "..."
	}
	return s
}

// Sounds короткие сигналы начала и конца записи.
type Sounds struct{}

// Start сигнал начала записи.
func (Sounds) Start() { blip(startFreq, startDuration) }

// Stop сигнал конца записи.
func (Sounds) Stop() { blip(stopFreq, stopDuration) }

func blip(freq float64, ms int) {
	go func() {
		if err := beepFn(freq, ms); err != nil {
			zap.S().Debugw("Сигнал не воспроизведён", "error", err)
		}
	}()
}
