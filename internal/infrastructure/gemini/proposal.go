package gemini

import (
	"strconv"
	"strings"

	"repair-bot/internal/domain/entity"
)

// defaultBox центральная область на случай, когда модель не указала координаты.
var defaultBox = entity.PercentBox{X: 25, Y: 25, W: 50, H: 50}

// parseProposals разбирает строки "DEFECT:" и "LOCATION:". Каждая строка DEFECT
// открывает новый дефект, LOCATION относится к последнему открытому.
// Строки с NO_DEFECT пропускаются, поэтому ответ без строк DEFECT даёт пустой список.
func parseProposals(text string) []entity.Proposal {
	var out []entity.Proposal
	located := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "```", ""))
		upper := strings.ToUpper(line)

		switch {
		case strings.Contains(upper, "NO_DEFECT"):
			continue
		case strings.Contains(upper, "DEFECT:"):
			desc := strings.TrimSpace(line[strings.Index(line, ":")+1:])
			if desc == "" {
				continue
			}
			out = append(out, entity.Proposal{Description: desc, Box: defaultBox})
			located = false
		case strings.Contains(upper, "LOCATION:"):
			if len(out) == 0 || located {
				continue
			}
			if box, ok := parseBox(line[strings.Index(line, ":")+1:]); ok {
				out[len(out)-1].Box = box
				located = true
			}
		}
	}
	return out
}

// parseBox принимает "x,y,w,h" или "x y w h".
func parseBox(s string) (entity.PercentBox, bool) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(fields) < 4 {
		return entity.PercentBox{}, false
	}
	var v [4]float64
	for i := 0; i < 4; i++ {
		f, err := strconv.ParseFloat(strings.TrimSuffix(fields[i], "%"), 64)
		if err != nil {
			return entity.PercentBox{}, false
		}
		v[i] = f
	}
	return entity.PercentBox{X: v[0], Y: v[1], W: v[2], H: v[3]}, true
}
