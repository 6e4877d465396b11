// Package tray предоставляет системный трей с меню.
package tray

import (
	"github.com/getlantern/systray"

	"verba/internal/config"
	"verba/internal/dictation"
	"verba/internal/i18n"
)

// Callbacks содержит обработчики событий меню.
// Переключатели возвращают новое значение настройки.
type Callbacks struct {
	OnSoundsToggle        func() bool
	OnAutoPasteToggle     func() bool
	OnNotificationsToggle func() bool
	OnSourceSelect        func(config.Source) config.Source
	OnHistory             func()
	OnHotkey              func()
	OnModel               func()
	OnQuit                func()
}

// Options начальные значения переключателей.
type Options struct {
	Sounds        bool
	AutoPaste     bool
	Notifications bool
	Source        config.Source
}

// Tray управляет иконкой в системном трее.
type Tray struct {
	callbacks Callbacks
	opts      Options

	status     *systray.MenuItem
	sounds     *systray.MenuItem
	autoPaste  *systray.MenuItem
	notifyOn   *systray.MenuItem
	local      *systray.MenuItem
	remote     *systray.MenuItem
	historyBtn *systray.MenuItem
	hotkeyBtn  *systray.MenuItem
	modelBtn   *systray.MenuItem
	quitBtn    *systray.MenuItem
}

// New создаёт новый Tray.
func New(callbacks Callbacks, opts Options) *Tray {
	return &Tray{callbacks: callbacks, opts: opts}
}

// Run запускает системный трей. Блокирующая функция.
func (t *Tray) Run(onReady func()) {
	systray.Run(func() {
		t.onReady()
		if onReady != nil {
			onReady()
		}
	}, func() {})
}

func (t *Tray) onReady() {
	systray.SetIcon(iconIdle)
	systray.SetTitle(i18n.T("app_name"))
	systray.SetTooltip(i18n.T("app_tooltip"))

	t.status = systray.AddMenuItem(i18n.T("tray_ready"), "")
	t.status.Disable()

	systray.AddSeparator()

	t.sounds = systray.AddMenuItemCheckbox(i18n.T("tray_sounds"), i18n.T("tray_sounds_hint"), t.opts.Sounds)
	t.autoPaste = systray.AddMenuItemCheckbox(i18n.T("tray_autopaste"), i18n.T("tray_autopaste_hint"), t.opts.AutoPaste)
	t.notifyOn = systray.AddMenuItemCheckbox(i18n.T("tray_notifications"), i18n.T("tray_notifications_hint"), t.opts.Notifications)

	systray.AddSeparator()

	t.local = systray.AddMenuItemCheckbox(i18n.T("tray_engine_local"), i18n.T("tray_engine_local_hint"), t.opts.Source == config.SourceLocal)
	t.remote = systray.AddMenuItemCheckbox(i18n.T("tray_engine_remote"), i18n.T("tray_engine_remote_hint"), t.opts.Source == config.SourceRemote)
	t.modelBtn = systray.AddMenuItem(i18n.T("tray_model"), i18n.T("tray_model_hint"))

	systray.AddSeparator()

	t.historyBtn = systray.AddMenuItem(i18n.T("tray_history"), i18n.T("tray_history_hint"))
	t.hotkeyBtn = systray.AddMenuItem(i18n.T("tray_hotkey"), i18n.T("tray_hotkey_hint"))

	systray.AddSeparator()

	t.quitBtn = systray.AddMenuItem(i18n.T("tray_quit"), i18n.T("tray_quit_hint"))

	go t.handleMenuEvents()
}

func (t *Tray) handleMenuEvents() {
	for {
		select {
		case <-t.sounds.ClickedCh:
			toggle(t.sounds, t.callbacks.OnSoundsToggle)
		case <-t.autoPaste.ClickedCh:
			toggle(t.autoPaste, t.callbacks.OnAutoPasteToggle)
		case <-t.notifyOn.ClickedCh:
			toggle(t.notifyOn, t.callbacks.OnNotificationsToggle)

		case <-t.local.ClickedCh:
			t.selectSource(config.SourceLocal)
		case <-t.remote.ClickedCh:
			t.selectSource(config.SourceRemote)

		case <-t.modelBtn.ClickedCh:
			call(t.callbacks.OnModel)
		case <-t.historyBtn.ClickedCh:
			call(t.callbacks.OnHistory)
		case <-t.hotkeyBtn.ClickedCh:
			call(t.callbacks.OnHotkey)

		case <-t.quitBtn.ClickedCh:
			call(t.callbacks.OnQuit)
			systray.Quit()
			return
		}
	}
}

func (t *Tray) selectSource(src config.Source) {
	if t.callbacks.OnSourceSelect != nil {
		src = t.callbacks.OnSourceSelect(src)
	}
	setChecked(t.local, src == config.SourceLocal)
	setChecked(t.remote, src == config.SourceRemote)
}

func toggle(item *systray.MenuItem, fn func() bool) {
	if fn != nil {
		setChecked(item, fn())
	}
}

func setChecked(item *systray.MenuItem, on bool) {
	if on {
		item.Check()
	} else {
		item.Uncheck()
	}
}

func call(fn func()) {
	if fn != nil {
		go fn()
	}
}

// SetState обновляет иконку и строку статуса по состоянию диктовки.
func (t *Tray) SetState(state dictation.State) {
	title := statusTitle(state)
	systray.SetIcon(iconFor(state))
	systray.SetTooltip(i18n.T("app_name") + " - " + title)
	if t.status != nil {
		t.status.SetTitle(title)
	}
}

func statusTitle(state dictation.State) string {
	switch state {
	case dictation.StateRecording:
		return i18n.T("tray_recording")
	case dictation.StateTranscribing:
		return i18n.T("tray_processing")
	case dictation.StateError:
		return i18n.T("tray_error")
	default:
		return i18n.T("tray_ready")
	}
}

// Quit закрывает системный трей.
func (t *Tray) Quit() {
	systray.Quit()
}
