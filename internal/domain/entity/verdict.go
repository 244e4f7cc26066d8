package entity

// VerdictSource откуда получено решение.
type VerdictSource string

const (
	SourceHeuristic VerdictSource = "heuristic"
	SourceFused     VerdictSource = "fused"
	SourceExternal  VerdictSource = "external"
)

// Verdict решение о ремонте для одной области.
type Verdict struct {
	IsRepair   bool          `json:"is_repair"`
	Confidence float64       `json:"confidence"`
	Score      float64       `json:"score"`
	Source     VerdictSource `json:"source"`
}

// SemanticLabel вердикт внешней модели после разбора текста.
type SemanticLabel string

const (
	LabelRepaired    SemanticLabel = "REPAIRED"
	LabelNotRepaired SemanticLabel = "NOT_REPAIRED"
	LabelUncertain   SemanticLabel = "UNCERTAIN"
)

// SemanticVerdict разобранный ответ внешней модели.
type SemanticVerdict struct {
	Label      SemanticLabel `json:"verdict"`
	Confidence float64       `json:"confidence"`
	Reasoning  string        `json:"reasoning"`
}

// Verdict переводит ответ внешней модели в общее решение.
func (s SemanticVerdict) Verdict() Verdict {
	return Verdict{
		IsRepair:   s.Label == LabelRepaired,
		Confidence: s.Confidence,
		Source:     SourceExternal,
	}
}
