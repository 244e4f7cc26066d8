//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	"gocv.io/x/gocv"

	"repair-bot/internal/domain/entity"
)

// Highlight рисует рамки областей и их номера из идентификаторов, возвращает JPEG.
func (h *Highlighter) Highlight(img entity.Image, defects []entity.DefectCandidate) ([]byte, error) {
	mat, err := toBGR(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	for i, d := range defects {
		c := colorNotRepaired
		if d.Best.IsRepair {
			c = colorRepaired
		}
		rect := d.Region.Box.Clip(img.Width(), img.Height()).Rect()
		gocv.Rectangle(&mat, rect, c, h.Thickness)

		num := strings.TrimPrefix(d.ID, "defect_")
		if num == "" {
			num = fmt.Sprint(i + 1)
		}
		label := fmt.Sprintf("#%s %.0f%%", num, d.Best.Confidence*100)
		org := image.Pt(rect.Min.X+4, max(rect.Min.Y-6, 14))
		gocv.PutText(&mat, label, org, gocv.FontHersheySimplex, 0.6, c, 2)
	}

	out, err := mat.ToImage()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: h.Quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
