// Package analysis содержит чистую логику проверки ремонта: объединение и фильтрацию
// областей, балльную оценку признаков, слияние решений и итоговую агрегацию.
package analysis

import (
	"fmt"
	"time"
)

// Params все настраиваемые пороги конвейера. Значение неизменяемое,
// передаётся в конструкторы компонентов явно.
type Params struct {
	Alignment     AlignmentParams  `yaml:"alignment"`
	Difference    DifferenceParams `yaml:"difference"`
	MergeDistance float64          `yaml:"merge_distance" validate:"gt=0"`
	Area          AreaParams       `yaml:"area"`
	Indicators    IndicatorParams  `yaml:"indicators"`
	Scoring       ScoringParams    `yaml:"scoring"`
	Fusion        FusionParams     `yaml:"fusion"`
	Frames        FrameParams      `yaml:"frames"`

	// Ниже этого SSIM снимки, скорее всего, сделаны в разных местах.
	DifferentSceneSSIM float64 `yaml:"different_scene_ssim" validate:"gte=0,lte=1"`
	// Наибольшая сторона кадра, отправляемого внешней модели.
	ExternalMaxSide int           `yaml:"external_max_side" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"gte=0"`
	ExternalTimeout time.Duration `yaml:"external_timeout" validate:"gte=0"`
}

// AlignmentParams параметры совмещения по ключевым точкам.
type AlignmentParams struct {
	MaxFeatures      int     `yaml:"max_features" validate:"gt=0"`
	KeepRatio        float64 `yaml:"keep_ratio" validate:"gt=0,lte=1"`
	MinMatches       int     `yaml:"min_matches" validate:"gte=4"`
	RansacThreshold  float64 `yaml:"ransac_threshold" validate:"gt=0"`
	RansacIterations int     `yaml:"ransac_iterations" validate:"gt=0"`
}

// DifferenceParams параметры поиска структурных отличий.
type DifferenceParams struct {
	BlurKernel      int     `yaml:"blur_kernel" validate:"gt=0,odd"`
	SSIMWindow      int     `yaml:"ssim_window" validate:"gt=1,odd"`
	DiffThreshold   float64 `yaml:"diff_threshold" validate:"gte=0,lte=255"`
	MorphKernel     int     `yaml:"morph_kernel" validate:"gt=0"`
	CloseIterations int     `yaml:"close_iterations" validate:"gte=0"`
	OpenIterations  int     `yaml:"open_iterations" validate:"gte=0"`
	MinContourArea  float64 `yaml:"min_contour_area" validate:"gte=0"`
}

// AreaParams границы площади области в процентах от изображения.
type AreaParams struct {
	MinPercent float64 `yaml:"min_percent" validate:"gte=0"`
	MaxPercent float64 `yaml:"max_percent" validate:"gtfield=MinPercent,lte=100"`
	MaxRegions int     `yaml:"max_regions" validate:"gt=0"`
}

// IndicatorParams диапазоны измерения признаков. Оттенок и насыщенность
// в единицах 8-битного HSV OpenCV (H 0..179, S и V 0..255).
type IndicatorParams struct {
	RustHueMax float64 `yaml:"rust_hue_max" validate:"gte=0,lte=179"`
	RustSatMin float64 `yaml:"rust_sat_min" validate:"gte=0,lte=255"`
	RustValMin float64 `yaml:"rust_val_min" validate:"gte=0,lte=255"`
	RustValMax float64 `yaml:"rust_val_max" validate:"gtefield=RustValMin,lte=255"`
	EdgeLow    float64 `yaml:"edge_low" validate:"gt=0"`
	EdgeHigh   float64 `yaml:"edge_high" validate:"gtefield=EdgeLow"`
}

// ScoreProfile баллы за каждый признак и порог решения.
type ScoreProfile struct {
	RustThreshold       float64 `yaml:"rust_threshold"`
	RustPoints          float64 `yaml:"rust_points" validate:"gte=0"`
	BrightnessThreshold float64 `yaml:"brightness_threshold"`
	BrightnessPoints    float64 `yaml:"brightness_points" validate:"gte=0"`
	UniformityThreshold float64 `yaml:"uniformity_threshold"`
	UniformityPoints    float64 `yaml:"uniformity_points" validate:"gte=0"`
	EdgeThreshold       float64 `yaml:"edge_threshold"`
	EdgePoints          float64 `yaml:"edge_points" validate:"gte=0"`
	RepairThreshold     float64 `yaml:"repair_threshold" validate:"gte=0,lte=100"`
}

// ScoringParams профили оценки: без нейросетевых признаков и с ними.
type ScoringParams struct {
	Heuristic ScoreProfile `yaml:"heuristic"`
	Deep      ScoreProfile `yaml:"deep"`

	FeatureDistanceLow     float64 `yaml:"feature_distance_low" validate:"gte=0"`
	FeatureDistanceHigh    float64 `yaml:"feature_distance_high" validate:"gtefield=FeatureDistanceLow"`
	FeatureDistancePoints  float64 `yaml:"feature_distance_points" validate:"gte=0"`
	PerceptualPenaltyAbove float64 `yaml:"perceptual_penalty_above" validate:"gte=0,lte=1"`
	PerceptualPenalty      float64 `yaml:"perceptual_penalty" validate:"gte=0"`
}

// FusionParams политика учёта внешнего вердикта.
type FusionParams struct {
	OverrideConfidence float64 `yaml:"override_confidence" validate:"gte=0,lte=1"`
	DoubtPenalty       float64 `yaml:"doubt_penalty" validate:"gte=0,lte=1"`
}

// FrameParams отбор кадров видеопоследовательности.
type FrameParams struct {
	RelevanceThreshold float64 `yaml:"relevance_threshold" validate:"gte=0,lte=1"`
}

// Названия готовых профилей.
const (
	PresetBalanced        = "balanced"
	PresetHighPrecision   = "high_precision"
	PresetHighSensitivity = "high_sensitivity"
)

// DefaultParams сбалансированный профиль.
func DefaultParams() Params {
	return Params{
		Alignment: AlignmentParams{
			MaxFeatures:      2000,
			KeepRatio:        0.5,
			MinMatches:       10,
			RansacThreshold:  5.0,
			RansacIterations: 2000,
		},
		Difference: DifferenceParams{
			BlurKernel:      9,
			SSIMWindow:      7,
			DiffThreshold:   35,
			MorphKernel:     7,
			CloseIterations: 3,
			OpenIterations:  2,
			MinContourArea:  1500,
		},
		MergeDistance: 80,
		Area: AreaParams{
			MinPercent: 0.5,
			MaxPercent: 30,
			MaxRegions: 5,
		},
		Indicators: IndicatorParams{
			RustHueMax: 30,
			RustSatMin: 20,
			RustValMin: 20,
			RustValMax: 200,
			EdgeLow:    50,
			EdgeHigh:   150,
		},
		Scoring: ScoringParams{
			Heuristic: ScoreProfile{
				RustThreshold:       8,
				RustPoints:          35,
				BrightnessThreshold: 8,
				BrightnessPoints:    30,
				UniformityThreshold: 2,
				UniformityPoints:    20,
				EdgeThreshold:       0.02,
				EdgePoints:          15,
				RepairThreshold:     60,
			},
			Deep: ScoreProfile{
				RustThreshold:       5,
				RustPoints:          20,
				BrightnessThreshold: 5,
				BrightnessPoints:    15,
				UniformityThreshold: 0,
				UniformityPoints:    15,
				EdgeThreshold:       0.01,
				EdgePoints:          10,
				RepairThreshold:     45,
			},
			FeatureDistanceLow:     5,
			FeatureDistanceHigh:    15,
			FeatureDistancePoints:  20,
			PerceptualPenaltyAbove: 0.95,
			PerceptualPenalty:      20,
		},
		Fusion: FusionParams{
			OverrideConfidence: 0.6,
			DoubtPenalty:       0.5,
		},
		Frames: FrameParams{
			RelevanceThreshold: 0.45,
		},
		DifferentSceneSSIM: 0.4,
		ExternalMaxSide:    512,
		RequestTimeout:     60 * time.Second,
		ExternalTimeout:    15 * time.Second,
	}
}

// Preset возвращает готовый профиль по имени.
func Preset(name string) (Params, error) {
	p := DefaultParams()
	switch name {
	case "", PresetBalanced:
	case PresetHighPrecision:
		p.Difference.DiffThreshold = 40
		p.Difference.MinContourArea = 2000
		p.Scoring.Heuristic.RepairThreshold = 70
		p.Fusion.OverrideConfidence = 0.7
	case PresetHighSensitivity:
		p.Difference.DiffThreshold = 25
		p.Difference.MinContourArea = 800
		p.Scoring.Heuristic.RepairThreshold = 50
		p.Fusion.OverrideConfidence = 0.5
	default:
		return Params{}, fmt.Errorf("unknown tuning preset %q", name)
	}
	return p, nil
}
