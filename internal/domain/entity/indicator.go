package entity

// Signal числовой признак, который может отсутствовать.
// Отсутствие признака никогда не кодируется нулём.
type Signal struct {
	Value     float64 `json:"value"`
	Available bool    `json:"available"`
}

// Measured возвращает доступный признак со значением v.
func Measured(v float64) Signal {
	return Signal{Value: v, Available: true}
}

// Unavailable признак, который не удалось получить.
var Unavailable = Signal{}

// IndicatorSet набор признаков ремонта для пары областей "до" и "после".
type IndicatorSet struct {
	RustReduction         float64 `json:"rust_reduction"`         // изменение доли ржавых пикселей, %
	BrightnessIncrease    float64 `json:"brightness_increase"`    // прирост средней светлоты L
	UniformityImprovement float64 `json:"uniformity_improvement"` // уменьшение разброса L
	EdgeReduction         float64 `json:"edge_reduction"`         // уменьшение плотности границ

	FeatureDistance      Signal `json:"deep_feature_distance"` // евклидово расстояние эмбеддингов
	PerceptualSimilarity Signal `json:"perceptual_similarity"` // косинусная близость в [0,1]
}

// HasDeepFeatures сообщает, что доступен хотя бы один нейросетевой признак.
func (s IndicatorSet) HasDeepFeatures() bool {
	return s.FeatureDistance.Available || s.PerceptualSimilarity.Available
}
