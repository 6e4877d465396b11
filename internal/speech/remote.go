package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	firstBackoff      = 2 * time.Second
)

// RemoteOptions настройки удалённого распознавания.
type RemoteOptions struct {
	Endpoint   string
	APIKey     string
	Timeout    time.Duration // 0 - 30 секунд
	HTTP2      bool
	MaxRetries int // повторы при 429; 0 - три
}

// Remote распознаёт речь через HTTP сервис (Azure/OpenAI-совместимый).
type Remote struct {
	opts   RemoteOptions
	client *http.Client
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRemote создаёт удалённый распознаватель.
func NewRemote(opts RemoteOptions) *Remote {
	opts = opts.withDefaults()
	return &Remote{
		opts:   opts,
		client: newHTTPClient(opts),
		sleep:  sleepCtx,
	}
}

func (o RemoteOptions) withDefaults() RemoteOptions {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetries
	}
	return o
}

// sameOptions сравнивает настройки с учётом значений по умолчанию.
func (r *Remote) sameOptions(opts RemoteOptions) bool {
	return r.opts == opts.withDefaults()
}

func newHTTPClient(opts RemoteOptions) *http.Client {
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if opts.HTTP2 {
		if err := http2.ConfigureTransport(tr); err != nil {
			zap.S().Warnw("HTTP/2 недоступен", "error", err)
		}
	}
	return &http.Client{
		Transport: tr,
		Timeout:   opts.Timeout,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Name возвращает название движка.
func (r *Remote) Name() string { return "remote" }

// Source возвращает тип движка.
func (r *Remote) Source() Source { return SourceRemote }

// Transcribe отправляет WAV сервису. На 429 повторяет запрос до MaxRetries раз,
// выдерживая Retry-After или 2, 4, 8... секунд.
func (r *Remote) Transcribe(ctx context.Context, wav []byte, bias string) (Result, error) {
	log := zap.S().With("engine", r.Name())

	body, contentType, err := buildForm(wav, bias)
	if err != nil {
		return Result{}, err
	}

	log.Infow("Отправка аудио", "bytes", len(wav))

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.opts.Endpoint, bytes.NewReader(body))
		if err != nil {
			return Result{}, fmt.Errorf("создание запроса: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("api-key", r.opts.APIKey)

		resp, err := r.client.Do(req)
		if err != nil {
			return Result{}, fmt.Errorf("запрос не выполнен: %w", err)
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return Result{}, fmt.Errorf("чтение ответа: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < r.opts.MaxRetries {
			wait := retryAfter(resp.Header.Get("Retry-After"), attempt)
			log.Warnw("Превышен лимит запросов, повтор",
				"wait", wait, "attempt", attempt+1, "max", r.opts.MaxRetries)
			if err := r.sleep(ctx, wait); err != nil {
				return Result{}, err
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return Result{}, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		}

		text, err := parseText(data)
		if err != nil {
			return Result{}, err
		}
		return Result{Text: text, Source: SourceRemote}, nil
	}
}

func buildForm(wav []byte, bias string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="recording.wav"`)
	h.Set("Content-Type", "audio/wav")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("создание формы: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return nil, "", fmt.Errorf("запись аудио в форму: %w", err)
	}

	if bias != "" {
		if err := w.WriteField("prompt", bias); err != nil {
			return nil, "", fmt.Errorf("запись подсказки в форму: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("закрытие формы: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// retryAfter возвращает задержку перед повтором с номером attempt (с нуля).
// Retry-After бывает числом секунд или HTTP-датой.
func retryAfter(header string, attempt int) time.Duration {
	header = strings.TrimSpace(header)
	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		return max(time.Until(at), 0)
	}
	return firstBackoff << attempt
}

func parseText(data []byte) (string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", ErrEmptyResponse
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("разбор ответа: %w", err)
	}

	text, ok := doc["text"].(string)
	if !ok {
		return "", ErrNoText
	}
	return strings.TrimSpace(text), nil
}
