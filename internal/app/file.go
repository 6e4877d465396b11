package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"verba/internal/audio"
	"verba/internal/dictation"
	"verba/internal/wav"
)

// RejectedError запись отклонена постобработкой и не распознавалась.
type RejectedError struct {
	Reason audio.Rejection
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("запись отклонена: %s", e.Reason)
}

// TranscribeFile прогоняет WAV файл через постобработку и распознавание
// без интерфейса. Если processedOut не пуст, туда пишется обработанный звук.
func TranscribeFile(ctx context.Context, path string, p *dictation.Pipeline, t audio.Tuning, processedOut string) (dictation.Outcome, error) {
	samples, rate, err := wav.ReadFile(path)
	if err != nil {
		return dictation.Outcome{}, err
	}
	in := audio.Buffer{Samples: samples, SampleRate: rate}

	buf, rej := audio.Process(in, t)
	if rej != audio.Accepted {
		return dictation.Outcome{}, &RejectedError{Reason: rej}
	}
	zap.S().Infow("Файл обработан", "path", path, "duration", in.Duration(), "processed", buf.Duration())

	if processedOut != "" {
		if err := wav.WriteFile(processedOut, buf.Samples, buf.SampleRate); err != nil {
			return dictation.Outcome{}, fmt.Errorf("запись обработанного звука: %w", err)
		}
	}

	return p.Run(ctx, buf)
}
