package container

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"repair-bot/config"
	app "repair-bot/internal/application"
	"repair-bot/internal/domain/analysis"
	"repair-bot/internal/domain/port"
	"repair-bot/internal/infrastructure/colorimetry"
	"repair-bot/internal/infrastructure/gemini"
	"repair-bot/internal/infrastructure/vision"
)

// alignmentSeed фиксирует выборку RANSAC, чтобы повторная проверка давала тот же результат.
const alignmentSeed = 42

// Adapters внешние компоненты конвейера и ресурсы, которые нужно закрыть.
type Adapters struct {
	Verifier    app.VerifierDeps
	Highlighter port.Highlighter
	closers     []io.Closer
}

// NewAdapters собирает адаптеры по конфигурации. Отсутствующие модели и ключи
// отключают соответствующие признаки, а не приводят к ошибке.
func NewAdapters(ctx context.Context, cfg *config.Config, params analysis.Params, log logrus.FieldLogger) (*Adapters, error) {
	a := &Adapters{
		Verifier: app.VerifierDeps{
			Aligner:  vision.NewAligner(params.Alignment, alignmentSeed),
			Detector: vision.NewChangeDetector(params.Difference),
			Meter:    colorimetry.NewMeter(params.Indicators),
		},
		Highlighter: vision.NewHighlighter(),
	}

	if cfg.FeatureModelPath != "" {
		e, err := vision.NewDNNEmbedder(cfg.FeatureModelPath, "feature")
		if err != nil {
			log.WithError(err).Warn("feature model disabled")
		} else {
			log.WithField("model", e.Name()).Info("embedding model loaded")
			a.Verifier.Feature = e
			a.closers = append(a.closers, e)
		}
	}
	if cfg.PerceptualModelPath != "" {
		e, err := vision.NewDNNEmbedder(cfg.PerceptualModelPath, "perceptual")
		if err != nil {
			log.WithError(err).Warn("perceptual model disabled")
		} else {
			log.WithField("model", e.Name()).Info("embedding model loaded")
			a.Verifier.Perceptual = e
			a.closers = append(a.closers, e)
		}
	}

	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelName, params.ExternalMaxSide)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("gemini: %w", err)
		}
		a.Verifier.Judge = client
		if cfg.GeminiProposeRegions {
			a.Verifier.Proposer = client
		}
		a.closers = append(a.closers, client)
	} else {
		log.Info("GEMINI_API_KEY is not set, semantic verdicts disabled")
	}

	return a, nil
}

func (a *Adapters) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
