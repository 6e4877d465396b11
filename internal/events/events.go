// Package events - шина событий жизненного цикла диктовки поверх watermill.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

// Topic тип события.
type Topic string

const (
	RecordingStarted  Topic = "recording-started"
	RecordingStopped  Topic = "recording-stopped"
	RecordingFailed   Topic = "recording-failed"
	DictationComplete Topic = "dictation-complete"
	Transcript        Topic = "transcript"
	StateChanged      Topic = "state-changed"
)

// Event полезная нагрузка события. Заполнены только поля, относящиеся к Topic.
type Event struct {
	Topic   Topic     `json:"topic"`
	Session string    `json:"session,omitempty"`
	At      time.Time `json:"at"`
	Reason  string    `json:"reason,omitempty"` // recording-failed: closed-set ключ сообщения
	Text    string    `json:"text,omitempty"`   // transcript
	Words   int       `json:"words,omitempty"`  // transcript
	Source  string    `json:"source,omitempty"` // transcript: local или remote
	State   string    `json:"state,omitempty"`  // state-changed
}

// Bus публикует события подписчикам внутри процесса.
type Bus struct {
	ps *gochannel.GoChannel
}

// NewBus создаёт шину.
func NewBus() *Bus {
	ps := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		newLogger(zap.L()),
	)
	return &Bus{ps: ps}
}

// Publish публикует событие. Если At не задан, берётся текущее время.
func (b *Bus) Publish(e Event) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("кодирование события: %w", err)
	}
	return b.ps.Publish(string(e.Topic), message.NewMessage(watermill.NewUUID(), payload))
}

// Subscribe вызывает handler для каждого события темы, пока не отменён ctx.
func (b *Bus) Subscribe(ctx context.Context, topic Topic, handler func(Event)) error {
	messages, err := b.ps.Subscribe(ctx, string(topic))
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			var e Event
			if err := json.Unmarshal(msg.Payload, &e); err != nil {
				zap.S().Errorw("Не удалось разобрать событие", "topic", topic, "error", err)
				msg.Ack()
				continue
			}
			handler(e)
			msg.Ack()
		}
	}()
	return nil
}

// Close закрывает шину и все подписки.
func (b *Bus) Close() error {
	return b.ps.Close()
}

// zapLogger адаптер логгера watermill к zap.
type zapLogger struct {
	l *zap.Logger
}

func newLogger(l *zap.Logger) watermill.LoggerAdapter {
	return &zapLogger{l: l.Named("events")}
}

func fields(f watermill.LogFields) []zap.Field {
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func (z *zapLogger) Error(msg string, err error, f watermill.LogFields) {
	z.l.Error(msg, append(fields(f), zap.Error(err))...)
}

func (z *zapLogger) Info(msg string, f watermill.LogFields) {
	z.l.Info(msg, fields(f)...)
}

func (z *zapLogger) Debug(msg string, f watermill.LogFields) {
	z.l.Debug(msg, fields(f)...)
}

func (z *zapLogger) Trace(msg string, f watermill.LogFields) {
	z.l.Debug(msg, fields(f)...)
}

func (z *zapLogger) With(f watermill.LogFields) watermill.LoggerAdapter {
	return &zapLogger{l: z.l.With(fields(f)...)}
}
