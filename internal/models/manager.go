package models

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"verba/internal/config"
)

// Progress информация о прогрессе загрузки.
type Progress struct {
	Size       config.ModelSize
	Downloaded int64
	Total      int64
	Done       bool
}

// Manager управляет файлами моделей.
type Manager struct {
	dir    string
	client *http.Client
	mu     sync.Mutex
}

// DefaultDir каталог моделей по умолчанию.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "models"
	}
	return filepath.Join(dir, "verba", "models")
}

// NewManager создаёт менеджер моделей. Пустой dir - DefaultDir.
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию моделей: %w", err)
	}
	return &Manager{dir: dir, client: http.DefaultClient}, nil
}

// Dir возвращает путь к директории моделей.
func (m *Manager) Dir() string {
	return m.dir
}

// Path возвращает полный путь к модели.
func (m *Manager) Path(info ModelInfo) string {
	return filepath.Join(m.dir, info.Filename)
}

// Resolve возвращает путь к модели: явно заданный путь важнее размера.
func (m *Manager) Resolve(explicit string, size config.ModelSize) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	info, ok := Get(size)
	if !ok {
		return "", fmt.Errorf("модель не найдена: %s", size)
	}
	return m.Path(info), nil
}

// IsDownloaded проверяет, скачана ли модель (файл не пустой).
func (m *Manager) IsDownloaded(info ModelInfo) bool {
	stat, err := os.Stat(m.Path(info))
	if err != nil {
		return false
	}
	return stat.Size() > 0
}

// ListDownloaded возвращает список скачанных моделей.
func (m *Manager) ListDownloaded() []ModelInfo {
	var downloaded []ModelInfo
	for _, model := range Registry {
		if m.IsDownloaded(model) {
			downloaded = append(downloaded, model)
		}
	}
	return downloaded
}

// Download скачивает модель во временный файл и переименовывает его.
// progress вызывается по мере загрузки (можно nil).
func (m *Manager) Download(ctx context.Context, info ModelInfo, progress func(Progress)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.IsDownloaded(info) {
		report(progress, Progress{Size: info.Size, Downloaded: info.Bytes, Total: info.Bytes, Done: true})
		return nil
	}

	dest := m.Path(info)
	tmp := dest + ".tmp"
	defer os.Remove(tmp)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		return err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка скачивания: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP ошибка: %s", resp.Status)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = info.Bytes
	}

	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	pw := &progressWriter{size: info.Size, total: total, fn: progress}
	if _, err := io.Copy(file, io.TeeReader(resp.Body, pw)); err != nil {
		file.Close()
		return fmt.Errorf("ошибка скачивания: %w", err)
	}
	if err := file.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp, dest); err != nil {
		return err
	}

	zap.S().Infow("Модель скачана", "model", info.Name, "path", dest)
	report(progress, Progress{Size: info.Size, Downloaded: total, Total: total, Done: true})
	return nil
}

// Delete удаляет модель.
func (m *Manager) Delete(info ModelInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return os.RemoveAll(m.Path(info))
}

type progressWriter struct {
	size       config.ModelSize
	downloaded int64
	total      int64
	fn         func(Progress)
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.downloaded += int64(len(p))
	report(w.fn, Progress{Size: w.size, Downloaded: w.downloaded, Total: w.total})
	return len(p), nil
}

func report(fn func(Progress), p Progress) {
	if fn != nil {
		fn(p)
	}
}
