package port

import (
	"context"

	"repair-bot/internal/domain/entity"
)

// Aligner совмещает кандидата с опорным снимком
type Aligner interface {
	// Align возвращает кандидата в координатах reference. Если совместить не удалось,
	// возвращается исходный кандидат и false.
	Align(ctx context.Context, reference, candidate entity.Image) (entity.Image, bool)
}

// ChangeDetector ищет структурные отличия между совмещёнными снимками
type ChangeDetector interface {
	Extract(ctx context.Context, before, after entity.Image) (entity.ChangeMap, error)
}

// FeatureExtractor нейросетевой экстрактор признаков
type FeatureExtractor interface {
	// Embed возвращает вектор фиксированной длины, одинаковый для одинаковых изображений
	Embed(ctx context.Context, img entity.Image) ([]float32, error)
}

// SurfaceMeter считает цветовые и текстурные признаки ремонта
type SurfaceMeter interface {
	Measure(before, after entity.Image) entity.IndicatorSet
}

// Highlighter рисует найденные области поверх снимка
type Highlighter interface {
	Highlight(img entity.Image, defects []entity.DefectCandidate) ([]byte, error)
}
