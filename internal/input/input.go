// Package input определяет активное приложение и вставляет текст из буфера обмена.
package input

import (
	"runtime"
	"sync"
	"time"

	"github.com/micmonay/keybd_event"
)

// OwnID идентификатор нашего приложения; активировать себя не нужно.
const OwnID = "app.verba"

// Focus определяет и активирует окно, в которое будет вставлен текст.
type Focus interface {
	// Frontmost возвращает идентификатор активного приложения (если удалось определить).
	Frontmost() (string, bool)
	// Activate выводит приложение на передний план.
	Activate(id string) error
}

// NewFocus создаёт платформо-специфичный Focus.
func NewFocus() Focus {
	return newFocus()
}

// Paster посылает сочетание вставки: Cmd+V на macOS, Ctrl+V на остальных.
type Paster struct {
	mu sync.Mutex
	kb keybd_event.KeyBonding
}

// NewPaster создаёт Paster. На Linux виртуальная клавиатура появляется
// через uinput не сразу, поэтому создавать его нужно при старте.
func NewPaster() (*Paster, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, err
	}
	return &Paster{kb: kb}, nil
}

// Paste нажимает и отпускает сочетание вставки.
func (p *Paster) Paste() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.kb.Clear()
	if runtime.GOOS == "darwin" {
		p.kb.HasSuper(true)
	} else {
		p.kb.HasCTRL(true)
	}
	p.kb.SetKeys(keybd_event.VK_V)

	if err := p.kb.Press(); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	return p.kb.Release()
}
