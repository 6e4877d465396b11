// Package config предоставляет настройки приложения с сохранением в файл.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Source источник распознавания.
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// ModelSize размер локальной модели Whisper.
type ModelSize string

const (
	ModelTiny   ModelSize = "tiny"
	ModelSmall  ModelSize = "small"
	ModelMedium ModelSize = "medium"
	ModelLarge  ModelSize = "large"
)

// ErrNoCredentials - не задан адрес или ключ удалённого сервиса.
var ErrNoCredentials = errors.New("не заданы адрес или ключ удалённого распознавания")

// RemoteConfig настройки удалённого распознавания.
type RemoteConfig struct {
	Endpoint       string `json:"endpoint,omitempty" validate:"omitempty,url"`
	APIKey         string `json:"api_key,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds" validate:"gte=1,lte=600"`
	HTTP2          bool   `json:"http2"`
}

// Tuning эмпирически подобранные пороги. Значения по умолчанию - DefaultTuning.
type Tuning struct {
	RMSFloor         float64 `json:"rms_floor" validate:"gte=0,lte=1"`
	SilenceThreshold float64 `json:"silence_threshold" validate:"gte=0,lte=1"`
	MaxGain          float64 `json:"max_gain" validate:"gte=1,lte=64"`
	HoldMs           int     `json:"hold_ms" validate:"gte=50,lte=2000"`
	DoubleTapMs      int     `json:"double_tap_ms" validate:"gte=50,lte=2000"`
	ErrorRevertMs    int     `json:"error_revert_ms" validate:"gte=0,lte=60000"`
	PasteSettleMs    int     `json:"paste_settle_ms" validate:"gte=0,lte=5000"`
}

// DefaultTuning возвращает пороги по умолчанию.
func DefaultTuning() Tuning {
	return Tuning{
		RMSFloor:         0.005,
		SilenceThreshold: 0.02,
		MaxGain:          8,
		HoldMs:           280,
		DoubleTapMs:      400,
		ErrorRevertMs:    5000,
		PasteSettleMs:    200,
	}
}

// configData структура для сериализации.
type configData struct {
	UILanguage          string            `json:"ui_language,omitempty" validate:"omitempty,oneof=ru en"`
	Notifications       bool              `json:"notifications"`
	SoundsEnabled       bool              `json:"sounds_enabled"`
	AutoPaste           bool              `json:"auto_paste"`
	TranscriptionSource Source            `json:"transcription_source" validate:"oneof=local remote"`
	LocalModelPath      string            `json:"local_model_path,omitempty"`
	LocalModelSize      ModelSize         `json:"local_model_size" validate:"oneof=tiny small medium large"`
	WhisperBinary       string            `json:"whisper_binary,omitempty"`
	Remote              RemoteConfig      `json:"remote"`
	Hotkey              HotkeyConfig      `json:"hotkey"`
	Dictionary          []DictionaryEntry `json:"dictionary" validate:"dive"`
	Tuning              Tuning            `json:"tuning"`
}

func defaults() configData {
	return configData{
		UILanguage:          "ru",
		Notifications:       true,
		SoundsEnabled:       true,
		AutoPaste:           true,
		TranscriptionSource: SourceLocal,
		LocalModelSize:      ModelSmall,
		Remote: RemoteConfig{
			TimeoutSeconds: 30,
			HTTP2:          true,
		},
		Hotkey:     DefaultHotkey(),
		Dictionary: []DictionaryEntry{},
		Tuning:     DefaultTuning(),
	}
}

var validate = validator.New()

// Config хранит настройки приложения.
type Config struct {
	mu             sync.RWMutex
	data           configData
	configPath     string
	onHotkeyChange func(HotkeyConfig)
}

// DefaultPath возвращает путь к config.json в каталоге настроек пользователя.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "verba", "config.json")
}

// New создаёт конфигурацию, загружая из файла или с настройками по умолчанию.
// Пустой path означает DefaultPath.
func New(path string) *Config {
	if path == "" {
		path = DefaultPath()
	}

	c := &Config{
		data:       defaults(),
		configPath: path,
	}
	c.load()
	return c
}

// NewInMemory создаёт конфигурацию без файла (для тестов и режима CLI).
func NewInMemory() *Config {
	return &Config{data: defaults()}
}

// Path возвращает путь к файлу настроек.
func (c *Config) Path() string {
	return c.configPath
}

// load загружает конфигурацию из файла.
func (c *Config) load() {
	if c.configPath == "" {
		return
	}

	raw, err := os.ReadFile(c.configPath)
	if err != nil {
		return // Файл не существует, используем defaults
	}

	cfg := defaults()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		zap.S().Warnw("Не удалось разобрать файл настроек, используются значения по умолчанию",
			"path", c.configPath, "error", err)
		return
	}
	if err := validate.Struct(cfg); err != nil {
		zap.S().Warnw("Некорректные настройки, используются значения по умолчанию",
			"path", c.configPath, "error", err)
		return
	}
	if cfg.Dictionary == nil {
		cfg.Dictionary = []DictionaryEntry{}
	}

	c.data = cfg
}

// save сохраняет конфигурацию в файл. Вызывается под блокировкой.
func (c *Config) save() {
	if c.configPath == "" {
		return
	}

	raw, err := json.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return
	}

	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		zap.S().Warnw("Не удалось создать каталог настроек", "error", err)
		return
	}
	if err := os.WriteFile(c.configPath, raw, 0600); err != nil {
		zap.S().Warnw("Не удалось сохранить настройки", "path", c.configPath, "error", err)
	}
}

// Validate проверяет текущие настройки.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return validate.Struct(c.data)
}

// UILanguage возвращает язык интерфейса.
func (c *Config) UILanguage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.UILanguage
}

// SetUILanguage устанавливает язык интерфейса.
func (c *Config) SetUILanguage(lang string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.UILanguage = lang
	c.save()
}

// ToggleNotifications переключает состояние уведомлений.
func (c *Config) ToggleNotifications() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Notifications = !c.data.Notifications
	c.save()
	return c.data.Notifications
}

// NotificationsEnabled возвращает true если уведомления включены.
func (c *Config) NotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Notifications
}

// SoundsEnabled возвращает true если включены звуковые сигналы.
func (c *Config) SoundsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.SoundsEnabled
}

// ToggleSounds переключает звуковые сигналы.
func (c *Config) ToggleSounds() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.SoundsEnabled = !c.data.SoundsEnabled
	c.save()
	return c.data.SoundsEnabled
}

// AutoPaste возвращает true если текст вставляется в целевое приложение.
func (c *Config) AutoPaste() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.AutoPaste
}

// ToggleAutoPaste переключает автовставку.
func (c *Config) ToggleAutoPaste() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.AutoPaste = !c.data.AutoPaste
	c.save()
	return c.data.AutoPaste
}

// TranscriptionSource возвращает выбранный источник распознавания.
func (c *Config) TranscriptionSource() Source {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.TranscriptionSource
}

// SetTranscriptionSource устанавливает источник распознавания.
func (c *Config) SetTranscriptionSource(src Source) error {
	if err := validate.Var(string(src), "oneof=local remote"); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.TranscriptionSource = src
	c.save()
	return nil
}

// LocalModelPath возвращает явно заданный путь к локальной модели.
func (c *Config) LocalModelPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.LocalModelPath
}

// LocalModelSize возвращает размер локальной модели.
func (c *Config) LocalModelSize() ModelSize {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.LocalModelSize
}

// SetLocalModel устанавливает размер и (необязательно) путь к локальной модели.
func (c *Config) SetLocalModel(size ModelSize, path string) error {
	if err := validate.Var(string(size), "oneof=tiny small medium large"); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.LocalModelSize = size
	c.data.LocalModelPath = path
	c.save()
	return nil
}

// WhisperBinary возвращает путь к whisper-cli (пусто - поиск в PATH).
func (c *Config) WhisperBinary() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.WhisperBinary
}

// Remote возвращает настройки удалённого распознавания как есть, без подстановки из окружения.
func (c *Config) Remote() RemoteConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Remote
}

// SetRemote устанавливает настройки удалённого распознавания.
func (c *Config) SetRemote(r RemoteConfig) error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Remote = r
	c.save()
	return nil
}

// Hotkey возвращает текущую горячую клавишу.
func (c *Config) Hotkey() HotkeyConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Hotkey
}

// SetHotkey устанавливает горячую клавишу.
func (c *Config) SetHotkey(hk HotkeyConfig) {
	c.mu.Lock()
	c.data.Hotkey = hk
	callback := c.onHotkeyChange
	c.save()
	c.mu.Unlock()

	if callback != nil {
		callback(hk)
	}
}

// OnHotkeyChange устанавливает callback для изменения горячей клавиши.
func (c *Config) OnHotkeyChange(fn func(HotkeyConfig)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onHotkeyChange = fn
}

// Tuning возвращает пороги обработки.
func (c *Config) Tuning() Tuning {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Tuning
}

// SetTuning устанавливает пороги обработки.
func (c *Config) SetTuning(t Tuning) error {
	if err := validate.Struct(t); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Tuning = t
	c.save()
	return nil
}
