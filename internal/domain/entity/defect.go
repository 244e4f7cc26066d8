package entity

// OverallStatus итоговая классификация проверки.
type OverallStatus string

const (
	StatusNoDefect OverallStatus = "NO_DEFECT"
	StatusNotFixed OverallStatus = "NOT_FIXED"
	StatusPartial  OverallStatus = "PARTIAL"
	StatusFixed    OverallStatus = "FIXED"
)

// DefectCandidate область опорного снимка и лучший результат сравнения с кандидатами "после".
type DefectCandidate struct {
	ID             string           `json:"defect_id"`
	ReferenceIndex int              `json:"before_image_idx"`
	Region         Region           `json:"region"`
	Description    string           `json:"description,omitempty"`
	AreaPercent    float64          `json:"area_percentage"`
	Compared       []int            `json:"compared_after_idx"` // индексы кандидатов, с которыми сравнивали
	BestCandidate  int              `json:"best_after_image_idx"`
	Best           Verdict          `json:"verdict"`
	HeuristicScore float64          `json:"repair_score"`
	Indicators     IndicatorSet     `json:"indicators"`
	Semantic       *SemanticVerdict `json:"vlm_analysis,omitempty"`
}

// AnalysisResult итог проверки ремонта по всем областям.
type AnalysisResult struct {
	ID              string            `json:"id"`
	Status          OverallStatus     `json:"verdict"`
	Confidence      float64           `json:"confidence"`
	Summary         string            `json:"summary"`
	Defects         []DefectCandidate `json:"defects"`
	FixedCount      int               `json:"fixed_count"`
	DetectedRegions int               `json:"detected_changes"` // областей до фильтрации по площади
	SkippedRegions  int               `json:"skipped_regions"`  // областей без ни одного валидного сравнения
	SceneSimilarity []float64         `json:"scene_similarity"` // SSIM на каждый опорный снимок, -1 если неизвестно
	Warnings        []string          `json:"warnings,omitempty"`
	Incomplete      bool              `json:"incomplete"` // проверка прервана по таймауту
}

// HasDefects сообщает, есть ли в результате проверенные области.
func (r *AnalysisResult) HasDefects() bool {
	return len(r.Defects) > 0
}
