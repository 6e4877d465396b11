// Package speech предоставляет абстракцию для движков распознавания речи.
package speech

import (
	"context"
	"errors"
	"fmt"
)

// Source откуда получен текст.
type Source string

const (
	// SourceLocal - whisper.cpp на этом компьютере.
	SourceLocal Source = "local"
	// SourceRemote - удалённый сервис распознавания.
	SourceRemote Source = "remote"
)

var (
	// ErrEmptyResponse - сервис вернул пустое тело ответа.
	ErrEmptyResponse = errors.New("пустой ответ сервиса распознавания")
	// ErrNoText - в ответе нет строкового поля text.
	ErrNoText = errors.New("в ответе нет поля text")
	// ErrRateLimited - превышен лимит запросов (429) и повторы исчерпаны.
	ErrRateLimited = errors.New("превышен лимит запросов")
	// ErrUnknownShape - результат локальной модели имеет неизвестную форму.
	ErrUnknownShape = errors.New("неизвестный формат результата распознавания")
	// ErrModelMissing - файл локальной модели не найден.
	ErrModelMissing = errors.New("локальная модель не найдена")
	// ErrNoBinary - не найден whisper-cli.
	ErrNoBinary = errors.New("whisper-cli не найден")
)

// APIError ответ сервиса с кодом отличным от 2xx.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ошибка сервиса распознавания %d: %s", e.Status, e.Body)
}

// Is позволяет проверять исчерпанные повторы через errors.Is(err, ErrRateLimited).
func (e *APIError) Is(target error) bool {
	return target == ErrRateLimited && e.Status == 429
}

// Result результат распознавания.
type Result struct {
	Text   string
	Source Source
}

// Recognizer - интерфейс для движков распознавания речи.
type Recognizer interface {
	// Transcribe распознаёт речь из WAV (16 кГц, моно, 16 бит).
	// bias - необязательная подсказка со словарём пользователя.
	Transcribe(ctx context.Context, wav []byte, bias string) (Result, error)

	// Name возвращает название движка (для логирования).
	Name() string

	// Source возвращает тип движка.
	Source() Source
}
