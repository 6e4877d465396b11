package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Переменные окружения с учётными данными удалённого распознавания.
// Вторые имена поддерживаются для совместимости с Azure-развёртываниями.
var (
	endpointEnv = []string{"VERBA_ENDPOINT", "AZURE_WHISPER_ENDPOINT"}
	apiKeyEnv   = []string{"VERBA_API_KEY", "AZURE_WHISPER_API_KEY"}
)

// LoadEnv подгружает переменные из .env файлов (если есть). Уже заданные
// переменные окружения не перезаписываются.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// ResolveRemote возвращает настройки удалённого распознавания, подставляя
// адрес и ключ из окружения, если они не заданы в файле настроек.
func (c *Config) ResolveRemote() (RemoteConfig, error) {
	r := c.Remote()
	if strings.TrimSpace(r.Endpoint) == "" {
		r.Endpoint = firstEnv(endpointEnv)
	}
	if strings.TrimSpace(r.APIKey) == "" {
		r.APIKey = firstEnv(apiKeyEnv)
	}
	if r.Endpoint == "" || r.APIKey == "" {
		return r, ErrNoCredentials
	}
	return r, nil
}

func firstEnv(names []string) string {
	for _, n := range names {
		if v := strings.TrimSpace(os.Getenv(n)); v != "" {
			return v
		}
	}
	return ""
}
