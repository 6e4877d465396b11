// Package logging настраивает структурированный журнал приложения.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options параметры журнала.
type Options struct {
	File  string // Путь к файлу журнала (пусто - только консоль)
	Debug bool   // Подробный вывод в консоль
}

// DefaultFile возвращает путь к файлу журнала в каталоге настроек пользователя.
func DefaultFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "verba", "verba.log")
}

// New создаёт логгер: JSON в файл с ротацией и человекочитаемый вывод в консоль.
func New(opts Options) *zap.Logger {
	consoleLevel := zap.InfoLevel
	if opts.Debug {
		consoleLevel = zap.DebugLevel
	}

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stderr),
		consoleLevel,
	)

	if opts.File == "" {
		return zap.New(consoleCore, zap.AddCaller())
	}

	_ = os.MkdirAll(filepath.Dir(opts.File), 0755)

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // МБ
		MaxBackups: 5,
		MaxAge:     30, // дней
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(rotator),
		zap.InfoLevel,
	)

	return zap.New(zapcore.NewTee(fileCore, consoleCore), zap.AddCaller())
}

// Init создаёт логгер и делает его глобальным (zap.L / zap.S).
// Возвращает функцию для сброса буферов при выходе.
func Init(opts Options) func() {
	l := New(opts)
	restore := zap.ReplaceGlobals(l)
	return func() {
		_ = l.Sync()
		restore()
	}
}
