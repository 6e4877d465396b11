package speech

import (
	"fmt"
	"sync"
	"time"

	"verba/internal/config"
	"verba/internal/models"
)

// Factory создаёт распознаватель по текущим настройкам.
// Выбор делается на каждый запрос: переключение источника не требует перезапуска.
// Удалённый распознаватель переиспользуется, пока его настройки не меняются,
// чтобы соединения keep-alive жили между сеансами.
type Factory struct {
	cfg     *config.Config
	manager *models.Manager

	mu     sync.Mutex
	remote *Remote
}

// NewFactory создаёт фабрику распознавателей.
func NewFactory(cfg *config.Config, manager *models.Manager) *Factory {
	return &Factory{cfg: cfg, manager: manager}
}

// Current возвращает распознаватель для выбранного источника.
func (f *Factory) Current() (Recognizer, error) {
	switch src := f.cfg.TranscriptionSource(); src {
	case config.SourceRemote:
		remote, err := f.cfg.ResolveRemote()
		if err != nil {
			return nil, err
		}
		return f.remoteFor(RemoteOptions{
			Endpoint: remote.Endpoint,
			APIKey:   remote.APIKey,
			Timeout:  time.Duration(remote.TimeoutSeconds) * time.Second,
			HTTP2:    remote.HTTP2,
		}), nil
	case config.SourceLocal:
		path, err := f.manager.Resolve(f.cfg.LocalModelPath(), f.cfg.LocalModelSize())
		if err != nil {
			return nil, err
		}
		return NewLocal(LocalOptions{
			Binary:    f.cfg.WhisperBinary(),
			ModelPath: path,
		}), nil
	default:
		return nil, fmt.Errorf("неизвестный источник распознавания: %s", src)
	}
}

func (f *Factory) remoteFor(opts RemoteOptions) *Remote {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.remote != nil && f.remote.sameOptions(opts) {
		return f.remote
	}
	if f.remote != nil {
		f.remote.client.CloseIdleConnections()
	}
	f.remote = NewRemote(opts)
	return f.remote
}
