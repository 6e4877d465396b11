// Package textproc очищает распознанный текст: исправления на лету,
// отсев галлюцинаций модели и пользовательский словарь.
package textproc

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// correctionMarkers фразы, которыми говорящий отменяет только что сказанное.
// Варианты с "no" и запятыми сводятся к словам после нормализации.
var correctionMarkers = [][]string{
	{"scratch", "that"},
	{"no", "scratch", "that"},
	{"i", "mean"},
	{"no", "i", "mean"},
	{"i", "meant"},
	{"no", "i", "meant"},
	{"no", "wait"},
}

// normWord приводит слово к виду для сравнения: без регистра и пунктуации по краям.
func normWord(w string) string {
	w = strings.TrimFunc(w, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	return cases.Fold().String(w)
}

// ApplyCorrections находит последний маркер исправления и заменяет им
// хвост предыдущей фразы: последние n слов до маркера, где n = min(слов
// в исправлении, слов до маркера), заменяются словами исправления.
// Если любая из частей пуста, текст возвращается без изменений.
func ApplyCorrections(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	norm := make([]string, len(words))
	for i, w := range words {
		norm[i] = normWord(w)
	}

	start, end := findLastMarker(norm)
	if start < 0 {
		return text
	}

	before := words[:start]
	correction := words[end:]
	if len(before) == 0 || len(correction) == 0 {
		return text
	}

	n := min(len(correction), len(before))
	kept := before[:len(before)-n]

	out := make([]string, 0, len(kept)+len(correction))
	out = append(out, kept...)
	out = append(out, correction...)

	// Запятая перед маркером остаётся висеть на последнем сохранённом слове
	if len(kept) > 0 {
		out[len(kept)-1] = strings.TrimRight(out[len(kept)-1], ",;")
	}
	return strings.Join(out, " ")
}

// findLastMarker возвращает границы (в словах) маркера, который заканчивается
// позже остальных; при равном конце предпочитается более длинный.
func findLastMarker(norm []string) (int, int) {
	bestStart, bestEnd := -1, -1
	for _, marker := range correctionMarkers {
		for i := len(norm) - len(marker); i >= 0; i-- {
			if !matchAt(norm, i, marker) {
				continue
			}
			end := i + len(marker)
			if end > bestEnd || (end == bestEnd && i < bestStart) {
				bestStart, bestEnd = i, end
			}
			break
		}
	}
	return bestStart, bestEnd
}

func matchAt(norm []string, i int, marker []string) bool {
	for j, m := range marker {
		if norm[i+j] != m {
			return false
		}
	}
	return true
}
