package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string

	GeminiAPIKey    string
	GeminiModelName string
	// Поиск областей дефектов через Gemini вместо сравнения изображений.
	GeminiProposeRegions bool

	// Пути к ONNX моделям эмбеддингов, пустой путь отключает модель.
	FeatureModelPath    string
	PerceptualModelPath string

	TuningPreset string
	TuningFile   string

	// Переопределяют таймауты профиля, 0 оставляет значение профиля.
	RequestTimeout  time.Duration
	ExternalTimeout time.Duration

	// Сколько снимков каждого вида хранить в одной проверке.
	MaxPhotos int

	LogLevel string
	LogFile  string
	AppEnv   string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:       os.Getenv("TELEGRAM_TOKEN"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiModelName:     os.Getenv("GEMINI_MODEL_NAME"),
		FeatureModelPath:    os.Getenv("FEATURE_MODEL_PATH"),
		PerceptualModelPath: os.Getenv("PERCEPTUAL_MODEL_PATH"),
		TuningPreset:        os.Getenv("TUNING_PRESET"),
		TuningFile:          os.Getenv("TUNING_FILE"),
		LogLevel:            os.Getenv("LOG_LEVEL"),
		LogFile:             os.Getenv("LOG_FILE"),
		AppEnv:              os.Getenv("APP_ENV"),
		MaxPhotos:           10,
	}

	var err error
	if v := os.Getenv("GEMINI_PROPOSE_REGIONS"); v != "" {
		if cfg.GeminiProposeRegions, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("GEMINI_PROPOSE_REGIONS: invalid value %q", v)
		}
	}
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.ExternalTimeout, err = durationEnv("EXTERNAL_TIMEOUT"); err != nil {
		return nil, err
	}
	if v := os.Getenv("MAX_PHOTOS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("MAX_PHOTOS: invalid value %q", v)
		}
		cfg.MaxPhotos = n
	}

	return cfg, nil
}

func durationEnv(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}
