// Package models управляет локальными моделями Whisper.
package models

import "verba/internal/config"

const baseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

// ModelInfo информация о модели.
type ModelInfo struct {
	Size     config.ModelSize // tiny, small, medium, large
	Name     string           // Отображаемое имя
	Filename string           // Имя файла: "ggml-small.bin"
	URL      string           // URL для скачивания
	Bytes    int64            // Размер в байтах (для прогресса)
}

// Registry все доступные модели.
var Registry = []ModelInfo{
	{
		Size:     config.ModelTiny,
		Name:     "Tiny (75MB)",
		Filename: "ggml-tiny.bin",
		URL:      baseURL + "ggml-tiny.bin",
		Bytes:    75 * 1024 * 1024,
	},
	{
		Size:     config.ModelSmall,
		Name:     "Small (466MB)",
		Filename: "ggml-small.bin",
		URL:      baseURL + "ggml-small.bin",
		Bytes:    466 * 1024 * 1024,
	},
	{
		Size:     config.ModelMedium,
		Name:     "Medium (1.5GB)",
		Filename: "ggml-medium.bin",
		URL:      baseURL + "ggml-medium.bin",
		Bytes:    1500 * 1024 * 1024,
	},
	{
		Size:     config.ModelLarge,
		Name:     "Large v3 Turbo (1.6GB)",
		Filename: "ggml-large-v3-turbo.bin",
		URL:      baseURL + "ggml-large-v3-turbo.bin",
		Bytes:    1620 * 1024 * 1024,
	},
}

// Get возвращает модель по размеру.
func Get(size config.ModelSize) (ModelInfo, bool) {
	for _, m := range Registry {
		if m.Size == size {
			return m, true
		}
	}
	return ModelInfo{}, false
}
