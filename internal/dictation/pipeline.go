package dictation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"verba/internal/audio"
	"verba/internal/config"
	"verba/internal/speech"
	"verba/internal/textproc"
	"verba/internal/wav"
)

// Transcriber выбирает распознаватель по текущим настройкам.
type Transcriber interface {
	Current() (speech.Recognizer, error)
}

// Dictionary источник пользовательского словаря.
type Dictionary interface {
	Dictionary() []config.DictionaryEntry
}

// Pipeline распознаёт обработанную запись и приводит текст к итоговому виду.
type Pipeline struct {
	recognizers Transcriber
	dict        Dictionary
}

// NewPipeline создаёт конвейер распознавания.
func NewPipeline(recognizers Transcriber, dict Dictionary) *Pipeline {
	return &Pipeline{recognizers: recognizers, dict: dict}
}

// Outcome результат конвейера.
type Outcome struct {
	Raw    string        // текст от движка
	Text   string        // итоговый текст, может быть пустым
	Source speech.Source // какой движок распознавал
}

// Run упаковывает запись в WAV, распознаёт её и очищает текст.
// buf должен быть результатом audio.Process.
func (p *Pipeline) Run(ctx context.Context, buf audio.Buffer) (Outcome, error) {
	rec, err := p.recognizers.Current()
	if err != nil {
		return Outcome{}, fmt.Errorf("выбор распознавателя: %w", err)
	}

	entries := p.dict.Dictionary()
	data := wav.Encode(buf.Samples, buf.SampleRate)

	res, err := rec.Transcribe(ctx, data, speech.BuildBias(entries))
	if err != nil {
		return Outcome{Source: rec.Source()}, err
	}

	text := textproc.Finish(res.Text, entries)
	zap.S().Infow("Распознано",
		"engine", rec.Name(), "raw_chars", len(res.Text), "chars", len(text))

	return Outcome{Raw: res.Text, Text: text, Source: res.Source}, nil
}
