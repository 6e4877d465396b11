// Verba - диктовка голосом: удерживайте плавающую кнопку или горячую клавишу,
// говорите, отпустите - текст окажется в буфере обмена и в активном приложении.
//
// С флагом -transcribe распознаёт WAV файл без интерфейса.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"verba/internal/app"
	"verba/internal/config"
	"verba/internal/dictation"
	"verba/internal/hotkey"
	"verba/internal/logging"
	"verba/internal/models"
	"verba/internal/notify"
	"verba/internal/speech"
)

// Version устанавливается при сборке через -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "путь к config.json")
	debug := flag.Bool("debug", false, "подробный журнал")
	file := flag.String("transcribe", "", "распознать WAV файл и выйти")
	out := flag.String("out", "", "сохранить обработанный звук (с -transcribe)")
	flag.Parse()

	logFile := logging.DefaultFile()
	if *file != "" {
		logFile = ""
	}
	flush := logging.Init(logging.Options{File: logFile, Debug: *debug})
	defer flush()

	if *file != "" {
		code := transcribe(*configPath, *file, *out)
		flush()
		os.Exit(code)
	}

	zap.S().Infow("Verba запускается", "version", Version)

	// Запускаем в главном потоке (требование для macOS и некоторых GUI)
	hotkey.RunOnMainThread(func() {
		application, err := app.New(app.Options{ConfigPath: *configPath})
		if err != nil {
			zap.S().Errorw("Ошибка инициализации", "error", err)
			flush()
			os.Exit(1)
		}
		application.Run()
	})
}

func transcribe(configPath, path, out string) int {
	config.LoadEnv()
	cfg := config.New(configPath)

	manager, err := models.NewManager(models.DefaultDir())
	if err != nil {
		color.Red("Каталог моделей: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pipeline := dictation.NewPipeline(speech.NewFactory(cfg, manager), cfg)
	tuning := cfg.Tuning()

	color.Cyan("Распознавание %s (%s)", path, cfg.TranscriptionSource())
	res, err := app.TranscribeFile(ctx, path, pipeline, app.AudioTuning(tuning), out)
	if err != nil {
		var rej *app.RejectedError
		if errors.As(err, &rej) {
			color.Yellow("%s", notify.FailureMessage(string(rej.Reason)))
			return 2
		}
		color.Red("Ошибка: %v", err)
		return 1
	}

	if res.Raw != res.Text {
		color.New(color.Faint).Printf("Исходный: %s\n", res.Raw)
	}
	if res.Text == "" {
		color.Yellow("Речь не распознана")
		return 2
	}
	color.Green("%s", res.Text)
	if out != "" {
		fmt.Printf("Обработанный звук: %s\n", out)
	}
	return 0
}
