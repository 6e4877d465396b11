package speech

import (
	"strings"

	"verba/internal/config"
)

// BuildBias собирает подсказку для модели из словаря пользователя:
// фразы и замены через запятую, без заблокированных и без повторов.
func BuildBias(entries []config.DictionaryEntry) string {
	seen := make(map[string]struct{}, len(entries))
	terms := make([]string, 0, len(entries))

	for _, e := range entries {
		var term string
		switch e.Type {
		case config.EntryBlocked:
			continue
		case config.EntryReplacement:
			term = e.Replacement
			if strings.TrimSpace(term) == "" {
				term = e.Phrase
			}
		default:
			term = e.Phrase
		}

		term = strings.TrimSpace(term)
		key := strings.ToLower(term)
		if term == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		terms = append(terms, term)
	}
	return strings.Join(terms, ", ")
}
