package speech

import (
	"bytes"
	"encoding/json"
	"strings"
)

// DecodeSegments приводит вывод локальной модели к одной строке.
//
// Поддерживаемые формы:
//   - JSON строка
//   - список строк
//   - список троек [start, end, text]
//   - список объектов с полем text
//   - документ whisper.cpp {"transcription": [...]} или объект {"text": "..."}
//   - обычный текст (не JSON)
//
// Всё остальное - ErrUnknownShape.
func DecodeSegments(raw []byte) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", nil
	}
	if !json.Valid(raw) {
		return joinWords([]string{string(raw)}), nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}

	parts, err := collect(v)
	if err != nil {
		return "", err
	}
	return joinWords(parts), nil
}

func collect(v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := segmentText(item)
			if !ok {
				return nil, ErrUnknownShape
			}
			parts = append(parts, s)
		}
		return parts, nil
	case map[string]any:
		if segs, ok := t["transcription"].([]any); ok {
			return collect(segs)
		}
		if s, ok := t["text"].(string); ok {
			return []string{s}, nil
		}
	}
	return nil, ErrUnknownShape
}

func segmentText(item any) (string, bool) {
	switch s := item.(type) {
	case string:
		return s, true
	case []any:
		// [start, end, text]
		if len(s) < 3 {
			return "", false
		}
		text, ok := s[2].(string)
		return text, ok
	case map[string]any:
		text, ok := s["text"].(string)
		return text, ok
	}
	return "", false
}

func joinWords(parts []string) string {
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
