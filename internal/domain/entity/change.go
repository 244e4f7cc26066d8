package entity

// ChangeMap результат структурного сравнения двух совмещённых снимков.
type ChangeMap struct {
	Regions         []Region // контуры отличий до объединения
	Mask            Mask
	StructuralScore float64 // глобальный SSIM в [0,1]
}
