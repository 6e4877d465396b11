package textproc

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"verba/internal/config"
)

// phrasePattern ищет фразу без учёта регистра. Границы слов проверяет
// replaceWord: RE2 не умеет просмотр вперёд и назад, а \b только ASCII.
func phrasePattern(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(phrase))
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// replaceWord заменяет вхождения фразы, стоящие отдельным словом.
// Соседние вхождения подряд заменяются все.
func replaceWord(text string, re *regexp.Regexp, repl string) string {
	var b strings.Builder
	last := 0
	for _, m := range re.FindAllStringIndex(text, -1) {
		if m[0] > 0 {
			if r, _ := utf8.DecodeLastRuneInString(text[:m[0]]); isWordRune(r) {
				continue
			}
		}
		if m[1] < len(text) {
			if r, _ := utf8.DecodeRuneInString(text[m[1]:]); isWordRune(r) {
				continue
			}
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(repl)
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// ApplyDictionary применяет замены и удаляет заблокированные фразы.
func ApplyDictionary(text string, entries []config.DictionaryEntry) string {
	for _, e := range entries {
		phrase := strings.TrimSpace(e.Phrase)
		if phrase == "" {
			continue
		}

		switch e.Type {
		case config.EntryReplacement:
			if e.Replacement == "" {
				continue
			}
			text = replaceWord(text, phrasePattern(phrase), e.Replacement)
		case config.EntryBlocked:
			text = replaceWord(text, phrasePattern(phrase), "")
		}
	}
	return strings.Join(strings.Fields(text), " ")
}

// Finish - полный проход по распознанному тексту перед доставкой.
func Finish(text string, entries []config.DictionaryEntry) string {
	cleaned := Clean(text)
	if cleaned == "" {
		return ""
	}
	return ApplyDictionary(cleaned, entries)
}
