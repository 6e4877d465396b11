// Package app связывает компоненты приложения: запись, распознавание,
// доставку, трей, плавающее окно и горячую клавишу.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"verba/internal/audio"
	"verba/internal/config"
	"verba/internal/delivery"
	"verba/internal/dialog"
	"verba/internal/dictation"
	"verba/internal/events"
	"verba/internal/gesture"
	"verba/internal/history"
	"verba/internal/hotkey"
	"verba/internal/i18n"
	"verba/internal/input"
	"verba/internal/models"
	"verba/internal/notify"
	"verba/internal/pill"
	"verba/internal/speech"
	"verba/internal/tray"
)

// historyLimit сколько записей показывать в диалоге истории.
const historyLimit = 50

// Options параметры запуска.
type Options struct {
	ConfigPath string // пусто - config.DefaultPath
	HistoryDir string // пусто - рядом с настройками
}

// App представляет главное приложение.
type App struct {
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	config   *config.Config
	recorder *audio.Recorder
	manager  *models.Manager
	bus      *events.Bus
	history  *history.Store
	machine  *dictation.Machine
	notifier *notify.Notifier
	tray     *tray.Tray
	pill     *pill.Window
	hotkey   *hotkey.Handler
	closed   bool
}

// New создаёт новое приложение.
func New(opts Options) (*App, error) {
	config.LoadEnv()
	cfg := config.New(opts.ConfigPath)

	if uiLang := cfg.UILanguage(); uiLang != "" {
		i18n.SetLanguage(i18n.Language(uiLang))
	}

	manager, err := models.NewManager(models.DefaultDir())
	if err != nil {
		return nil, fmt.Errorf("каталог моделей: %w", err)
	}

	a := &App{
		config:   cfg,
		manager:  manager,
		bus:      events.NewBus(),
		notifier: notify.New(cfg.NotificationsEnabled()),
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	// Окно создаётся раньше записи: уровень сигнала идёт прямо в него
	var levels func(float32)
	a.recorder, err = audio.New(func(l float32) {
		if levels != nil {
			levels(l)
		}
	})
	if err != nil {
		a.cancel()
		return nil, fmt.Errorf("инициализация записи: %w", err)
	}

	a.history = openHistory(opts.HistoryDir)

	focus := input.NewFocus()
	var paster delivery.Paster
	if p, err := input.NewPaster(); err != nil {
		zap.S().Warnw("Автовставка недоступна, текст будет только в буфере обмена", "error", err)
	} else {
		paster = p
	}

	tuning := cfg.Tuning()
	deliverer := delivery.New(delivery.SystemClipboard{}, focus, paster, input.OwnID, ms(tuning.PasteSettleMs))

	a.machine = dictation.New(dictation.Deps{
		Source:    a.recorder,
		Pipeline:  dictation.NewPipeline(speech.NewFactory(cfg, manager), cfg),
		Deliverer: deliverer,
		Resolver:  focus,
		Publisher: a.bus,
		Sounds:    notify.Sounds{},
		Settings:  cfg,
	}, machineOptions(tuning))

	a.pill = pill.New(pill.DefaultConfig(), gestureOptions(tuning), a.machine, a.showHistory)
	levels = a.pill.SetLevel

	a.hotkey = hotkey.New(gesture.NewHotkeyGuard(a.machine.Handle))
	cfg.OnHotkeyChange(func(hk config.HotkeyConfig) {
		if err := a.hotkey.Register(hk); err != nil {
			a.notifier.Error(i18n.T("error_hotkey_register"))
		}
	})

	a.tray = tray.New(tray.Callbacks{
		OnSoundsToggle:    cfg.ToggleSounds,
		OnAutoPasteToggle: cfg.ToggleAutoPaste,
		OnNotificationsToggle: func() bool {
			enabled := cfg.ToggleNotifications()
			a.notifier.SetEnabled(enabled)
			return enabled
		},
		OnSourceSelect: func(src config.Source) config.Source {
			if err := cfg.SetTranscriptionSource(src); err != nil {
				zap.S().Warnw("Не удалось сменить источник распознавания", "source", src, "error", err)
			}
			return cfg.TranscriptionSource()
		},
		OnHistory: a.showHistory,
		OnHotkey:  a.selectHotkey,
		OnModel:   a.downloadModel,
		OnQuit:    a.Close,
	}, tray.Options{
		Sounds:        cfg.SoundsEnabled(),
		AutoPaste:     cfg.AutoPaste(),
		Notifications: cfg.NotificationsEnabled(),
		Source:        cfg.TranscriptionSource(),
	})

	a.machine.Observe(func(s dictation.State) {
		a.tray.SetState(s)
		a.pill.SetState(s)
	})

	return a, nil
}

func openHistory(dir string) *history.Store {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			zap.S().Warnw("История отключена", "error", err)
			return nil
		}
		dir = filepath.Join(base, "verba", "history")
	}
	store, err := history.Open(dir)
	if err != nil {
		zap.S().Warnw("История отключена", "dir", dir, "error", err)
		return nil
	}
	return store
}

// Run запускает приложение. Блокируется до выхода из трея.
func (a *App) Run() {
	go a.machine.Run(a.ctx)

	if err := a.bus.Subscribe(a.ctx, events.RecordingFailed, func(e events.Event) {
		a.notifier.Failure(e.Reason)
	}); err != nil {
		zap.S().Errorw("Не удалось подписаться на ошибки записи", "error", err)
	}
	if a.history != nil {
		if err := a.history.Attach(a.ctx, a.bus); err != nil {
			zap.S().Errorw("Не удалось подключить историю", "error", err)
		}
	}

	a.tray.Run(func() {
		// Регистрируем горячую клавишу после инициализации трея
		hk := a.config.Hotkey()
		if err := a.hotkey.Register(hk); err != nil {
			a.notifier.Error(i18n.T("error_hotkey_register"))
		}
		a.pill.Show()
		a.checkModel()
		zap.S().Infow("Приложение запущено", "hotkey", hk.String(), "source", a.config.TranscriptionSource())
	})
}

// checkModel предупреждает, если локальная модель ещё не скачана.
func (a *App) checkModel() {
	if a.config.TranscriptionSource() != config.SourceLocal {
		return
	}
	if _, err := a.manager.Resolve(a.config.LocalModelPath(), a.config.LocalModelSize()); err != nil {
		zap.S().Warnw("Локальная модель недоступна", "error", err)
		a.notifier.Info(fmt.Sprintf(i18n.T("notify_no_model"), a.config.LocalModelSize()))
		return
	}
	a.notifier.Info(i18n.T("notify_ready"))
}

func (a *App) showHistory() {
	if a.history == nil {
		dialog.ShowError(i18n.T("history_title"), i18n.T("error_history"))
		return
	}

	entries, err := a.history.Recent(historyLimit)
	if err != nil {
		zap.S().Errorw("Не удалось прочитать историю", "error", err)
		dialog.ShowError(i18n.T("history_title"), i18n.T("error_history"))
		return
	}
	stats, err := a.history.Stats()
	if err != nil {
		zap.S().Warnw("Не удалось прочитать статистику", "error", err)
	}

	text, err := dialog.PickHistory(entries, stats)
	if err != nil {
		if !errors.Is(err, dialog.ErrCanceled) {
			zap.S().Warnw("Диалог истории", "error", err)
		}
		return
	}
	if err := (delivery.SystemClipboard{}).WriteAll(text); err != nil {
		zap.S().Errorw("Ошибка копирования в буфер обмена", "error", err)
		a.notifier.Error(i18n.T("error_clipboard"))
		return
	}
	a.notifier.Info(i18n.T("history_copied"))
}

func (a *App) selectHotkey() {
	hk, err := dialog.SelectHotkey(a.config.Hotkey())
	if err != nil {
		if !errors.Is(err, dialog.ErrCanceled) {
			dialog.ShowError(i18n.T("hotkey_title"), err.Error())
		}
		return
	}
	// Перерегистрация - в OnHotkeyChange
	a.config.SetHotkey(hk)
}

func (a *App) downloadModel() {
	info, err := dialog.SelectModel(a.config.LocalModelSize())
	if err != nil {
		return
	}

	if !a.manager.IsDownloaded(info) {
		progress, err := dialog.NewProgress(i18n.T("model_title"))
		if err != nil {
			zap.S().Warnw("Окно прогресса недоступно", "error", err)
		}

		ctx, cancel := context.WithCancel(a.ctx)
		if progress != nil {
			go func() {
				select {
				case <-progress.Done():
					cancel()
				case <-ctx.Done():
				}
			}()
		}

		title := fmt.Sprintf(i18n.T("model_progress"), info.Name)
		err = a.manager.Download(ctx, info, func(p models.Progress) {
			if progress != nil && p.Total > 0 {
				progress.Update(title, int(p.Downloaded*100/p.Total))
			}
		})
		cancel()
		if progress != nil {
			progress.Close()
		}
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				zap.S().Errorw("Не удалось скачать модель", "model", info.Name, "error", err)
				dialog.ShowError(i18n.T("model_title"), i18n.T("error_model_download"))
			}
			return
		}
	}

	if err := a.config.SetLocalModel(info.Size, ""); err != nil {
		zap.S().Errorw("Не удалось сохранить модель", "error", err)
		return
	}
	a.notifier.Info(i18n.T("model_done"))
}

// Close освобождает ресурсы приложения.
func (a *App) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()

	a.hotkey.Unregister()
	a.cancel()
	a.pill.Hide()
	a.recorder.Close()

	if a.history != nil {
		if err := a.history.Close(); err != nil {
			zap.S().Warnw("Ошибка закрытия истории", "error", err)
		}
	}
	if err := a.bus.Close(); err != nil {
		zap.S().Warnw("Ошибка закрытия шины событий", "error", err)
	}
	zap.S().Info("Приложение остановлено")
}
