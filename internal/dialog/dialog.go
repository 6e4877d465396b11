// Package dialog предоставляет GUI диалоги: история, горячая клавиша, модель.
package dialog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ncruces/zenity"

	"verba/internal/config"
	"verba/internal/history"
	"verba/internal/i18n"
	"verba/internal/models"
)

// ErrCanceled пользователь закрыл диалог.
var ErrCanceled = zenity.ErrCanceled

// labelWidth максимальная длина текста записи в списке истории (в рунах).
const labelWidth = 60

// PickHistory показывает последние диктовки и возвращает текст выбранной.
func PickHistory(entries []history.Entry, stats history.Stats) (string, error) {
	if len(entries) == 0 {
		ShowInfo(i18n.T("history_title"), i18n.T("history_empty"))
		return "", ErrCanceled
	}

	items := historyItems(entries)
	selected, err := zenity.List(
		i18n.T("history_prompt")+"\n"+fmt.Sprintf(i18n.T("history_stats"), stats.Dictations, stats.Words),
		items,
		zenity.Title(i18n.T("history_title")),
		zenity.Width(520),
		zenity.Height(420),
	)
	if err != nil {
		return "", err
	}

	text, ok := pickHistory(entries, selected)
	if !ok {
		return "", ErrCanceled
	}
	return text, nil
}

// historyItems строит подписи вида "1. 15:04 текст". Номер делает
// подписи уникальными при повторяющемся тексте.
func historyItems(entries []history.Entry) []string {
	items := make([]string, len(entries))
	for i, e := range entries {
		text := strings.Join(strings.Fields(e.Text), " ")
		if r := []rune(text); len(r) > labelWidth {
			text = string(r[:labelWidth]) + "…"
		}
		items[i] = fmt.Sprintf("%d. %s %s", i+1, e.At.Local().Format("15:04"), text)
	}
	return items
}

func pickHistory(entries []history.Entry, label string) (string, bool) {
	num, _, ok := strings.Cut(label, ". ")
	if !ok {
		return "", false
	}
	i, err := strconv.Atoi(num)
	if err != nil || i < 1 || i > len(entries) {
		return "", false
	}
	return entries[i-1].Text, true
}

var modOptions = []struct {
	label string
	mod   config.Modifier
}{
	{"Ctrl", config.ModCtrl},
	{"Shift", config.ModShift},
	{"Alt", config.ModAlt},
	{"Super (Win/Cmd)", config.ModSuper},
}

// SelectHotkey открывает диалог выбора горячей клавиши.
// Возвращает выбранную конфигурацию или ошибку если пользователь отменил.
func SelectHotkey(current config.HotkeyConfig) (config.HotkeyConfig, error) {
	// Шаг 1: одиночная клавиша или комбинация
	kinds := []string{i18n.T("hotkey_combo")}
	if raw, ok := rightCtrl(); ok {
		kinds = append([]string{i18n.T("hotkey_right")}, kinds...)
		kind, err := zenity.List(
			i18n.T("hotkey_kind"),
			kinds,
			zenity.Title(i18n.T("hotkey_title")),
		)
		if err != nil {
			return current, err
		}
		if kind == i18n.T("hotkey_right") {
			return config.HotkeyConfig{RawCode: raw}, nil
		}
	}

	// Шаг 2: модификаторы
	labels := make([]string, len(modOptions))
	var currentMods []string
	for i, o := range modOptions {
		labels[i] = o.label
		for _, m := range current.Modifiers {
			if m == o.mod {
				currentMods = append(currentMods, o.label)
			}
		}
	}

	selectedMods, err := zenity.ListMultiple(
		i18n.T("hotkey_modifiers"),
		labels,
		zenity.Title(i18n.T("hotkey_title")),
		zenity.DefaultItems(currentMods...),
	)
	if err != nil {
		return current, err
	}
	mods := parseModifiers(selectedMods)
	if len(mods) == 0 {
		return current, errors.New(i18n.T("hotkey_need_mod"))
	}

	// Шаг 3: клавиша
	keys := config.AvailableKeys()
	keyLabels := make([]string, len(keys))
	for i, k := range keys {
		keyLabels[i] = keyLabel(k)
	}

	selectedKey, err := zenity.List(
		i18n.T("hotkey_key"),
		keyLabels,
		zenity.Title(i18n.T("hotkey_title")),
		zenity.DefaultItems(keyLabel(current.Key)),
	)
	if err != nil {
		return current, err
	}

	return config.HotkeyConfig{Modifiers: mods, Key: parseKey(selectedKey)}, nil
}

func parseModifiers(labels []string) []config.Modifier {
	mods := make([]config.Modifier, 0, len(labels))
	for _, l := range labels {
		for _, o := range modOptions {
			if l == o.label {
				mods = append(mods, o.mod)
				break
			}
		}
	}
	return mods
}

// keyLabel "space" -> "Space", "f1" -> "F1", "a" -> "A".
func keyLabel(k config.Key) string {
	s := string(k)
	if len(s) > 2 && s[0] != 'f' {
		return strings.ToUpper(s[:1]) + s[1:]
	}
	return strings.ToUpper(s)
}

func parseKey(label string) config.Key {
	return config.Key(strings.ToLower(label))
}

// rightCtrl код правого Ctrl для перехвата на текущей ОС.
func rightCtrl() (uint16, bool) {
	def := config.DefaultHotkey()
	return def.RawCode, def.IsRaw()
}

// SelectModel предлагает размер локальной модели.
func SelectModel(current config.ModelSize) (models.ModelInfo, error) {
	names := make([]string, len(models.Registry))
	var def string
	for i, m := range models.Registry {
		names[i] = m.Name
		if m.Size == current {
			def = m.Name
		}
	}

	selected, err := zenity.List(
		i18n.T("model_prompt"),
		names,
		zenity.Title(i18n.T("model_title")),
		zenity.DefaultItems(def),
	)
	if err != nil {
		return models.ModelInfo{}, err
	}
	for _, m := range models.Registry {
		if m.Name == selected {
			return m, nil
		}
	}
	return models.ModelInfo{}, ErrCanceled
}

// Progress окно прогресса загрузки.
type Progress struct {
	dlg zenity.ProgressDialog
}

// NewProgress открывает окно прогресса.
func NewProgress(title string) (*Progress, error) {
	dlg, err := zenity.Progress(zenity.Title(title), zenity.MaxValue(100))
	if err != nil {
		return nil, err
	}
	return &Progress{dlg: dlg}, nil
}

// Update показывает процент выполнения.
func (p *Progress) Update(text string, percent int) {
	_ = p.dlg.Text(text)
	_ = p.dlg.Value(percent)
}

// Done канал закрывается, когда пользователь отменил загрузку.
func (p *Progress) Done() <-chan struct{} {
	return p.dlg.Done()
}

// Close закрывает окно.
func (p *Progress) Close() {
	_ = p.dlg.Complete()
	_ = p.dlg.Close()
}

// ShowInfo показывает информационное сообщение.
func ShowInfo(title, message string) {
	_ = zenity.Info(message, zenity.Title(title))
}

// ShowError показывает сообщение об ошибке.
func ShowError(title, message string) {
	_ = zenity.Error(message, zenity.Title(title))
}
