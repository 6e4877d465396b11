// Package delivery доставляет распознанный текст: буфер обмена и вставка в исходное приложение.
package delivery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

// DefaultSettle пауза между активацией приложения и вставкой.
const DefaultSettle = 200 * time.Millisecond

// Clipboard запись в системный буфер обмена.
type Clipboard interface {
	WriteAll(text string) error
}

// Activator выводит приложение на передний план.
type Activator interface {
	Activate(target string) error
}

// Paster синтезирует сочетание вставки.
type Paster interface {
	Paste() error
}

// SystemClipboard буфер обмена операционной системы.
type SystemClipboard struct{}

// WriteAll записывает текст в буфер обмена.
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Deliverer доставляет текст. Единственный писатель в буфер обмена.
type Deliverer struct {
	clip   Clipboard
	act    Activator
	paste  Paster
	ownID  string
	settle time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
}

// New создаёт Deliverer. act и paste могут быть nil - тогда только буфер обмена.
func New(clip Clipboard, act Activator, paste Paster, ownID string, settle time.Duration) *Deliverer {
	return &Deliverer{
		clip:   clip,
		act:    act,
		paste:  paste,
		ownID:  ownID,
		settle: settle,
		sleep:  sleepCtx,
	}
}

// ValidTarget проверяет, что в приложение можно вставлять.
// "missing value" - так osascript сообщает об отсутствии приложения.
func ValidTarget(target, ownID string) bool {
	t := strings.TrimSpace(target)
	return t != "" && !strings.EqualFold(t, "missing value") && t != ownID
}

// Deliver записывает текст в буфер обмена и, если известно исходное
// приложение, активирует его и вставляет текст. Пустой текст ничего не меняет.
// Ошибкой считается только сбой записи в буфер обмена.
func (d *Deliverer) Deliver(ctx context.Context, text, target string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	log := zap.S().With("target", target)

	if err := d.clip.WriteAll(text); err != nil {
		return fmt.Errorf("запись в буфер обмена: %w", err)
	}
	log.Debugw("Текст в буфере обмена", "chars", len([]rune(text)))

	if !ValidTarget(target, d.ownID) || d.paste == nil {
		return nil
	}

	if d.act != nil {
		if err := d.act.Activate(strings.TrimSpace(target)); err != nil {
			log.Warnw("Не удалось активировать приложение", "error", err)
		}
	}

	if err := d.sleep(ctx, d.settle); err != nil {
		return nil
	}

	if err := d.paste.Paste(); err != nil {
		log.Warnw("Не удалось вставить текст", "error", err)
		return nil
	}
	log.Infow("Текст вставлен")
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
