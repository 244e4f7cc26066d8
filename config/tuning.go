package config

import (
	"fmt"
	"os"
	"reflect"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"repair-bot/internal/domain/analysis"
)

// LoadTuning собирает параметры анализа: готовый профиль, поверх него
// необязательный YAML файл, затем переопределения таймаутов из окружения.
func LoadTuning(cfg *Config) (analysis.Params, error) {
	params, err := analysis.Preset(cfg.TuningPreset)
	if err != nil {
		return analysis.Params{}, err
	}

	if cfg.TuningFile != "" {
		data, err := os.ReadFile(cfg.TuningFile)
		if err != nil {
			return analysis.Params{}, fmt.Errorf("read tuning file: %w", err)
		}
		if params, err = OverlayTuning(params, data); err != nil {
			return analysis.Params{}, err
		}
	}

	if cfg.RequestTimeout > 0 {
		params.RequestTimeout = cfg.RequestTimeout
	}
	if cfg.ExternalTimeout > 0 {
		params.ExternalTimeout = cfg.ExternalTimeout
	}

	if err := ValidateTuning(params); err != nil {
		return analysis.Params{}, err
	}
	return params, nil
}

// OverlayTuning заменяет в base только поля, указанные в YAML.
func OverlayTuning(base analysis.Params, data []byte) (analysis.Params, error) {
	if err := yaml.Unmarshal(data, &base); err != nil {
		return analysis.Params{}, fmt.Errorf("parse tuning file: %w", err)
	}
	return base, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("odd", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		switch f.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return f.Int()%2 != 0
		}
		return false
	})
	return v
}

func ValidateTuning(p analysis.Params) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid tuning: %w", err)
	}
	return nil
}
