// Package i18n provides internationalization support.
package i18n

import "sync"

// Language represents a UI language.
type Language string

const (
	RU Language = "ru"
	EN Language = "en"
)

var (
	mu      sync.RWMutex
	current = RU // Default language
)

// Translations for all supported languages.
var translations = map[Language]map[string]string{
	RU: {
		// App
		"app_name":    "Verba",
		"app_tooltip": "Verba - диктовка голосом",

		// Tray menu
		"tray_ready":              "Готов к работе",
		"tray_recording":          "Запись...",
		"tray_processing":         "Распознавание...",
		"tray_error":              "Ошибка",
		"tray_sounds":             "Звуки",
		"tray_sounds_hint":        "Короткий сигнал в начале и конце записи",
		"tray_autopaste":          "Автовставка",
		"tray_autopaste_hint":     "Вставлять текст в активное приложение",
		"tray_notifications":      "Уведомления",
		"tray_notifications_hint": "Показывать уведомления",
		"tray_engine_local":       "Локальное распознавание",
		"tray_engine_local_hint":  "whisper.cpp на этом компьютере",
		"tray_engine_remote":      "Облачное распознавание",
		"tray_engine_remote_hint": "Отправлять запись на сервер",
		"tray_history":            "История...",
		"tray_history_hint":       "Последние диктовки",
		"tray_hotkey":             "Горячая клавиша...",
		"tray_hotkey_hint":        "Изменить клавишу диктовки",
		"tray_model":              "Скачать модель...",
		"tray_model_hint":         "Модель для локального распознавания",
		"tray_quit":               "Выход",
		"tray_quit_hint":          "Закрыть приложение",

		// Notifications
		"notify_done":     "Готово",
		"notify_error":    "Ошибка",
		"notify_ready":    "Verba готова к работе",
		"notify_no_model": "Локальная модель не скачана: %s",

		// Причины неудачи сеанса
		"reason_permission":    "Нет доступа к микрофону. Разрешите запись в настройках системы.",
		"reason_unknown":       "Не удалось начать запись",
		"reason_too_short":     "Запись слишком короткая",
		"reason_too_quiet":     "Запись слишком тихая",
		"reason_transcription": "Не удалось распознать речь",

		// History dialog
		"history_title":  "История",
		"history_prompt": "Выберите запись, чтобы скопировать её",
		"history_empty":  "История пуста",
		"history_stats":  "Диктовок: %d, слов: %d",
		"history_copied": "Скопировано в буфер обмена",

		// Hotkey dialog
		"hotkey_title":     "Горячая клавиша",
		"hotkey_kind":      "Тип клавиши:",
		"hotkey_right":     "Правый Ctrl",
		"hotkey_combo":     "Комбинация",
		"hotkey_modifiers": "Выберите модификаторы:",
		"hotkey_key":       "Выберите клавишу:",
		"hotkey_need_mod":  "Необходимо выбрать хотя бы один модификатор",

		// Model dialog
		"model_title":    "Модель распознавания",
		"model_prompt":   "Выберите размер модели:",
		"model_progress": "Загрузка %s...",
		"model_done":     "Модель загружена",

		// Pill
		"pill_hint": "Удерживайте для записи",

		// Errors
		"error_hotkey_register": "Не удалось зарегистрировать горячую клавишу",
		"error_clipboard":       "Ошибка копирования в буфер обмена",
		"error_model_download":  "Не удалось скачать модель",
		"error_history":         "История недоступна",
	},

	EN: {
		// App
		"app_name":    "Verba",
		"app_tooltip": "Verba - voice dictation",

		// Tray menu
		"tray_ready":              "Ready",
		"tray_recording":          "Recording...",
		"tray_processing":         "Transcribing...",
		"tray_error":              "Error",
		"tray_sounds":             "Sounds",
		"tray_sounds_hint":        "Short blip when recording starts and stops",
		"tray_autopaste":          "Auto-paste",
		"tray_autopaste_hint":     "Paste text into the active application",
		"tray_notifications":      "Notifications",
		"tray_notifications_hint": "Show notifications",
		"tray_engine_local":       "Local recognition",
		"tray_engine_local_hint":  "whisper.cpp on this computer",
		"tray_engine_remote":      "Cloud recognition",
		"tray_engine_remote_hint": "Send recordings to the server",
		"tray_history":            "History...",
		"tray_history_hint":       "Recent dictations",
		"tray_hotkey":             "Hotkey...",
		"tray_hotkey_hint":        "Change the dictation key",
		"tray_model":              "Download model...",
		"tray_model_hint":         "Model for local recognition",
		"tray_quit":               "Quit",
		"tray_quit_hint":          "Close application",

		// Notifications
		"notify_done":     "Done",
		"notify_error":    "Error",
		"notify_ready":    "Verba is ready",
		"notify_no_model": "Local model is not downloaded: %s",

		"reason_permission":    "Microphone access is blocked. Allow recording in system settings.",
		"reason_unknown":       "Could not start recording",
		"reason_too_short":     "Recording too short",
		"reason_too_quiet":     "Recording too quiet",
		"reason_transcription": "Could not transcribe speech",

		// History dialog
		"history_title":  "History",
		"history_prompt": "Pick an entry to copy it",
		"history_empty":  "History is empty",
		"history_stats":  "Dictations: %d, words: %d",
		"history_copied": "Copied to clipboard",

		// Hotkey dialog
		"hotkey_title":     "Hotkey",
		"hotkey_kind":      "Key type:",
		"hotkey_right":     "Right Ctrl",
		"hotkey_combo":     "Combination",
		"hotkey_modifiers": "Select modifiers:",
		"hotkey_key":       "Select key:",
		"hotkey_need_mod":  "Select at least one modifier",

		// Model dialog
		"model_title":    "Recognition model",
		"model_prompt":   "Select model size:",
		"model_progress": "Downloading %s...",
		"model_done":     "Model downloaded",

		// Pill
		"pill_hint": "Hold to record",

		// Errors
		"error_hotkey_register": "Could not register hotkey",
		"error_clipboard":       "Clipboard copy error",
		"error_model_download":  "Could not download model",
		"error_history":         "History is unavailable",
	},
}

// T returns the translation for the given key.
func T(key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if strings, ok := translations[current]; ok {
		if s, ok := strings[key]; ok {
			return s
		}
	}
	// Fallback to key itself
	return key
}

// Has reports whether key is translated for the current language.
func Has(key string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := translations[current][key]
	return ok
}

// SetLanguage sets the current UI language. Unknown languages fall back to RU.
func SetLanguage(lang Language) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := translations[lang]; !ok {
		lang = RU
	}
	current = lang
}

// GetLanguage returns the current UI language.
func GetLanguage() Language {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// AvailableLanguages returns list of supported languages.
func AvailableLanguages() []Language {
	return []Language{RU, EN}
}

// LanguageName returns display name for a language.
func LanguageName(lang Language) string {
	switch lang {
	case RU:
		return "Русский"
	case EN:
		return "English"
	default:
		return string(lang)
	}
}
