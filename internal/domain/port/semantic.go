package port

import (
	"context"

	"repair-bot/internal/domain/entity"
)

// SemanticJudge внешняя модель, которая оценивает пару фрагментов текстом
type SemanticJudge interface {
	Judge(ctx context.Context, before, after entity.Image, indicators entity.IndicatorSet) (string, error)
}

// RegionProposer внешний детектор, который предлагает области дефектов
// в процентах от размеров снимка "до" вместе с их описанием
type RegionProposer interface {
	Propose(ctx context.Context, before, after entity.Image) ([]entity.Proposal, error)
}
