package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Runner запускает внешнюю программу и возвращает её stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// LocalOptions настройки локального распознавания.
type LocalOptions struct {
	Binary    string // путь к whisper-cli; пусто - поиск
	ModelPath string // файл ggml модели
	Threads   int    // 0 - по числу ядер
	TempDir   string // пусто - os.TempDir()
}

// Local распознаёт речь через whisper-cli на этом компьютере.
type Local struct {
	opts LocalOptions
	run  Runner
}

// NewLocal создаёт локальный распознаватель.
func NewLocal(opts LocalOptions) *Local {
	if opts.Threads <= 0 {
		opts.Threads = Threads(runtime.NumCPU())
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	return &Local{opts: opts, run: execRunner}
}

// Threads число потоков для модели: ядра минус 2, от 1 до 8.
func Threads(cores int) int {
	n := cores - 2
	if n < 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}

// Name возвращает название движка.
func (l *Local) Name() string { return "whisper-cli" }

// Source возвращает тип движка.
func (l *Local) Source() Source { return SourceLocal }

// Transcribe запускает модель сначала с GPU, при ошибке - один раз без GPU.
func (l *Local) Transcribe(ctx context.Context, wav []byte, bias string) (Result, error) {
	log := zap.S().With("engine", l.Name())

	if _, err := os.Stat(l.opts.ModelPath); err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrModelMissing, l.opts.ModelPath)
	}

	bin := l.opts.Binary
	if bin == "" {
		bin = FindBinary()
	}
	if bin == "" {
		return Result{}, ErrNoBinary
	}

	base := filepath.Join(l.opts.TempDir, "verba-"+uuid.NewString())
	audioPath := base + ".wav"
	if err := os.WriteFile(audioPath, wav, 0600); err != nil {
		return Result{}, fmt.Errorf("запись аудио: %w", err)
	}
	defer os.Remove(audioPath)
	defer os.Remove(base + ".json")

	args := []string{
		"-m", l.opts.ModelPath,
		"-f", audioPath,
		"-t", strconv.Itoa(l.opts.Threads),
		"-oj",
		"-of", base,
		"--no-prints",
	}
	if bias != "" {
		args = append(args, "--prompt", bias)
	}

	log.Infow("Локальное распознавание", "model", l.opts.ModelPath, "threads", l.opts.Threads)

	out, err := l.run(ctx, bin, args...)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		log.Warnw("Ошибка распознавания с GPU, повтор без GPU", "error", err)
		out, err = l.run(ctx, bin, append(args, "-ng")...)
		if err != nil {
			return Result{}, fmt.Errorf("whisper-cli: %w", err)
		}
	}

	raw, rerr := os.ReadFile(base + ".json")
	if rerr != nil {
		raw = out
	}

	text, err := DecodeSegments(raw)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, Source: SourceLocal}, nil
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, err
		}
		return nil, errors.Join(err, errors.New(msg))
	}
	return stdout.Bytes(), nil
}

// FindBinary ищет whisper-cli в PATH и стандартных каталогах.
func FindBinary() string {
	names := []string{"whisper-cli", "whisper-cpp", "whisper"}
	if runtime.GOOS == "windows" {
		for i, n := range names {
			names[i] = n + ".exe"
		}
	}

	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "bin"), filepath.Join(home, "whisper.cpp", "build", "bin"))
	}
	dirs = append(dirs, "/opt/homebrew/bin", "/usr/local/bin")

	for _, dir := range dirs {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}
