package textproc

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fillerExact ответы модели на тишину, которые целиком отбрасываются.
var fillerExact = map[string]bool{
	"you": true, "thank you": true, "thanks": true, "bye": true,
	"the": true, "a": true, "an": true, "um": true, "uh": true,
	"so": true, "and": true, "the end": true, ".": true, "...": true,
}

// fillerWords слова, из которых состоят короткие мусорные ответы.
var fillerWords = map[string]bool{
	"you": true, "the": true, "a": true, "an": true, "um": true, "uh": true,
	"so": true, "and": true, "thanks": true, "thank": true, "bye": true,
}

// knownPhrases типичные галлюцинации Whisper (титры, призывы подписаться).
var knownPhrases = []string{
	"thank you for watching",
	"thanks for watching",
	"thank you for listening",
	"thanks for listening",
	"please subscribe",
	"like and subscribe",
	"subscribe to my channel",
	"see you in the next video",
	"subtitles by",
	"transcribed by",
	"amara.org",
}

var (
	bracketed   = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\{[^}]*\}`)
	sentenceEnd = regexp.MustCompile(`[.!?]+`)
)

const (
	shortMaxWords   = 2
	shortMaxChars   = 15
	minSentences    = 3
	maxAvgSentWords = 4.0
)

// StripBracketed удаляет служебные метки вроде "[BLANK_AUDIO]" и "(music)".
func StripBracketed(text string) string {
	return strings.Join(strings.Fields(bracketed.ReplaceAllString(text, " ")), " ")
}

// IsHallucination определяет, что текст - типичный ответ модели на тишину или шум.
func IsHallucination(text string) bool {
	cleaned := StripBracketed(text)
	if cleaned == "" {
		return true
	}

	low := cases.Lower(language.Und).String(cleaned)
	if fillerExact[low] {
		return true
	}

	trimmed := strings.Trim(low, ".,!?;: ")
	if trimmed == "" || fillerExact[trimmed] {
		return true
	}

	words := strings.Fields(trimmed)
	if len(words) <= shortMaxWords && len(trimmed) <= shortMaxChars {
		allFiller := true
		for _, w := range words {
			if !fillerWords[strings.Trim(w, ".,!?;:")] {
				allFiller = false
				break
			}
		}
		if allFiller {
			return true
		}
	}

	for _, p := range knownPhrases {
		if strings.Contains(low, p) {
			return true
		}
	}

	var sentences, total int
	for _, s := range sentenceEnd.Split(low, -1) {
		n := len(strings.Fields(s))
		if n == 0 {
			continue
		}
		sentences++
		total += n
	}
	if sentences >= minSentences && float64(total)/float64(sentences) <= maxAvgSentWords {
		return true
	}

	return false
}

// FilterHallucination возвращает пустую строку для галлюцинации,
// иначе текст без служебных меток.
func FilterHallucination(text string) string {
	if IsHallucination(text) {
		return ""
	}
	return StripBracketed(text)
}

// Clean применяет исправления на лету, затем отсев галлюцинаций.
func Clean(text string) string {
	return FilterHallucination(ApplyCorrections(strings.TrimSpace(text)))
}
