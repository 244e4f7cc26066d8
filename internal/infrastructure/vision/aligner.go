//go:build gocv
// +build gocv

package vision

import (
	"context"
	"image"
	"sort"

	"gocv.io/x/gocv"

	"repair-bot/internal/domain/analysis"
	"repair-bot/internal/domain/entity"
)

// Align ищет ключевые точки ORB, сопоставляет их перебором с перекрёстной проверкой,
// оставляет лучшую долю пар и строит гомографию. Любая неудача возвращает кандидата как есть.
func (a *Aligner) Align(ctx context.Context, reference, candidate entity.Image) (entity.Image, bool) {
	if ctx.Err() != nil || reference.Empty() || candidate.Empty() {
		return candidate, false
	}

	refGray, err := toGray(reference)
	if err != nil {
		return candidate, false
	}
	defer refGray.Close()

	candGray, err := toGray(candidate)
	if err != nil {
		return candidate, false
	}
	defer candGray.Close()

	orb := gocv.NewORBWithParams(a.params.MaxFeatures, 1.2, 8, 31, 0, 2, gocv.ORBScoreTypeHarris, 31, 20)
	defer orb.Close()

	noMask := gocv.NewMat()
	defer noMask.Close()

	refKP, refDesc := orb.DetectAndCompute(refGray, noMask)
	defer refDesc.Close()
	candKP, candDesc := orb.DetectAndCompute(candGray, noMask)
	defer candDesc.Close()

	if refDesc.Empty() || candDesc.Empty() || len(refKP) == 0 || len(candKP) == 0 {
		return candidate, false
	}

	matcher := gocv.NewBFMatcherWithParams(gocv.NormHamming, true)
	defer matcher.Close()

	matches := matcher.Match(candDesc, refDesc)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	keep := int(float64(len(matches)) * a.params.KeepRatio)
	if keep < a.params.MinMatches {
		return candidate, false
	}
	matches = matches[:keep]

	src := make([]analysis.Point, 0, keep)
	dst := make([]analysis.Point, 0, keep)
	for _, m := range matches {
		if m.QueryIdx >= len(candKP) || m.TrainIdx >= len(refKP) {
			continue
		}
		src = append(src, analysis.Point{X: candKP[m.QueryIdx].X, Y: candKP[m.QueryIdx].Y})
		dst = append(dst, analysis.Point{X: refKP[m.TrainIdx].X, Y: refKP[m.TrainIdx].Y})
	}

	h, _, err := analysis.EstimateHomography(src, dst, a.params, a.seed)
	if err != nil {
		return candidate, false
	}

	hm := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	defer hm.Close()
	for i, v := range h {
		hm.SetDoubleAt(i/3, i%3, v)
	}

	candBGR, err := toBGR(candidate)
	if err != nil {
		return candidate, false
	}
	defer candBGR.Close()

	warped := gocv.NewMat()
	defer warped.Close()
	gocv.WarpPerspective(candBGR, &warped, hm, image.Pt(reference.Width(), reference.Height()))

	out, err := fromMat(warped)
	if err != nil {
		return candidate, false
	}
	return out, true
}
