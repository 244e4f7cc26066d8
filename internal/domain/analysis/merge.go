package analysis

import "repair-bot/internal/domain/entity"

// MergeRegions объединяет области, расстояние между которыми меньше distance.
// Проходы повторяются, пока находится хотя бы одно слияние, поэтому повторный вызов
// на результате ничего не меняет. Порядок определяется исходными индексами.
func MergeRegions(regions []entity.Region, distance float64) []entity.Region {
	if len(regions) == 0 {
		return nil
	}

	current := make([]entity.Region, len(regions))
	copy(current, regions)

	for {
		next, merged := mergePass(current, distance)
		current = next
		if !merged {
			return current
		}
	}
}

// mergePass жадно поглощает соседние области, наращивая охватывающий прямоугольник.
func mergePass(regions []entity.Region, distance float64) ([]entity.Region, bool) {
	used := make([]bool, len(regions))
	out := make([]entity.Region, 0, len(regions))
	merged := false

	for i := range regions {
		if used[i] {
			continue
		}
		used[i] = true
		acc := regions[i]

		for j := i + 1; j < len(regions); j++ {
			if used[j] {
				continue
			}
			if acc.Box.Gap(regions[j].Box) < distance {
				acc.Box = acc.Box.Union(regions[j].Box)
				acc.Area += regions[j].Area
				used[j] = true
				merged = true
			}
		}

		if acc.Kind == "" {
			acc.Kind = entity.RegionChanged
		}
		out = append(out, acc)
	}

	return out, merged
}
