package config

import (
	"strings"

	"github.com/google/uuid"
)

// EntryType тип записи словаря.
type EntryType string

const (
	EntryCustom      EntryType = "custom"      // Термин-подсказка для распознавания
	EntryReplacement EntryType = "replacement" // Замена фразы в итоговом тексте
	EntryBlocked     EntryType = "blocked"     // Фраза удаляется из текста и не подсказывается
)

// DictionaryEntry запись пользовательского словаря.
type DictionaryEntry struct {
	ID          string    `json:"id" validate:"required"`
	Phrase      string    `json:"phrase" validate:"required"`
	Replacement string    `json:"replacement,omitempty"`
	Type        EntryType `json:"entry_type" validate:"oneof=custom replacement blocked"`
}

// Dictionary возвращает копию словаря.
func (c *Config) Dictionary() []DictionaryEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]DictionaryEntry, len(c.data.Dictionary))
	copy(out, c.data.Dictionary)
	return out
}

// AddEntry добавляет запись в словарь и возвращает её.
func (c *Config) AddEntry(phrase, replacement string, typ EntryType) (DictionaryEntry, error) {
	e := DictionaryEntry{
		ID:          uuid.NewString(),
		Phrase:      strings.TrimSpace(phrase),
		Replacement: strings.TrimSpace(replacement),
		Type:        typ,
	}
	if err := validate.Struct(e); err != nil {
		return DictionaryEntry{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Dictionary = append(c.data.Dictionary, e)
	c.save()
	return e, nil
}

// UpdateEntry обновляет запись по ID. Возвращает false если запись не найдена.
func (c *Config) UpdateEntry(e DictionaryEntry) (bool, error) {
	if err := validate.Struct(e); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.data.Dictionary {
		if c.data.Dictionary[i].ID == e.ID {
			c.data.Dictionary[i] = e
			c.save()
			return true, nil
		}
	}
	return false, nil
}

// RemoveEntry удаляет запись по ID.
func (c *Config) RemoveEntry(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.data.Dictionary {
		if c.data.Dictionary[i].ID == id {
			c.data.Dictionary = append(c.data.Dictionary[:i], c.data.Dictionary[i+1:]...)
			c.save()
			return true
		}
	}
	return false
}
