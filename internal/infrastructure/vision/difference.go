//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"repair-bot/internal/domain/entity"
)

// Константы SSIM для 8-битного диапазона.
const (
	ssimC1 = (0.01 * 255) * (0.01 * 255)
	ssimC2 = (0.03 * 255) * (0.03 * 255)
)

// Extract сглаживает оба снимка, строит карту SSIM, бинаризует несходство,
// чистит маску морфологией и возвращает контуры крупнее MinContourArea.
func (d *ChangeDetector) Extract(ctx context.Context, before, after entity.Image) (entity.ChangeMap, error) {
	if err := ctx.Err(); err != nil {
		return entity.ChangeMap{}, err
	}

	if before.Width() != after.Width() || before.Height() != after.Height() {
		after = after.Resize(before.Width(), before.Height())
	}

	beforeF, err := d.prepare(before)
	if err != nil {
		return entity.ChangeMap{}, fmt.Errorf("prepare before: %w", err)
	}
	defer beforeF.Close()

	afterF, err := d.prepare(after)
	if err != nil {
		return entity.ChangeMap{}, fmt.Errorf("prepare after: %w", err)
	}
	defer afterF.Close()

	ssimMap, score := structuralSimilarity(beforeF, afterF, d.params.SSIMWindow)
	defer ssimMap.Close()

	// 255 * (1 - SSIM) с насыщением в 0..255.
	dissimilarity := gocv.NewMat()
	defer dissimilarity.Close()
	ssimMap.ConvertToWithParams(&dissimilarity, gocv.MatTypeCV8U, -255, 255)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(dissimilarity, &mask, float32(d.params.DiffThreshold), 255, gocv.ThresholdBinary)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(d.params.MorphKernel, d.params.MorphKernel))
	defer kernel.Close()

	for i := 0; i < d.params.CloseIterations; i++ {
		gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)
	}
	for i := 0; i < d.params.OpenIterations; i++ {
		gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, kernel)
	}

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	regions := make([]entity.Region, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		area := gocv.ContourArea(c)
		if area <= d.params.MinContourArea {
			continue
		}
		rect := gocv.BoundingRect(c)
		box := entity.Box{X1: rect.Min.X, Y1: rect.Min.Y, X2: rect.Max.X, Y2: rect.Max.Y}
		if box.Empty() {
			continue
		}
		regions = append(regions, entity.Region{Box: box, Area: area, Kind: entity.RegionChanged})
	}

	return entity.ChangeMap{
		Regions:         regions,
		Mask:            grayMask(mask),
		StructuralScore: clampUnit(score),
	}, nil
}

// prepare переводит снимок в сглаженный серый float32.
func (d *ChangeDetector) prepare(img entity.Image) (gocv.Mat, error) {
	gray, err := toGray(img)
	if err != nil {
		return gray, err
	}
	defer gray.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := d.params.BlurKernel
	gocv.GaussianBlur(gray, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	out := gocv.NewMat()
	blurred.ConvertTo(&out, gocv.MatTypeCV32F)
	return out, nil
}

// structuralSimilarity карта SSIM с равномерным окном window x window
// и выборочной ковариацией. Второе значение среднее по карте.
func structuralSimilarity(a, b gocv.Mat, window int) (gocv.Mat, float64) {
	var temps []gocv.Mat
	defer func() {
		for _, m := range temps {
			m.Close()
		}
	}()
	keep := func(m gocv.Mat) gocv.Mat {
		temps = append(temps, m)
		return m
	}

	ksize := image.Pt(window, window)
	blur := func(src gocv.Mat) gocv.Mat {
		dst := gocv.NewMat()
		gocv.Blur(src, &dst, ksize)
		return keep(dst)
	}
	mul := func(x, y gocv.Mat) gocv.Mat {
		dst := gocv.NewMat()
		gocv.Multiply(x, y, &dst)
		return keep(dst)
	}
	add := func(x, y gocv.Mat) gocv.Mat {
		dst := gocv.NewMat()
		gocv.Add(x, y, &dst)
		return keep(dst)
	}
	sub := func(x, y gocv.Mat) gocv.Mat {
		dst := gocv.NewMat()
		gocv.Subtract(x, y, &dst)
		return keep(dst)
	}

	n := float32(window * window)
	covNorm := n / (n - 1)

	muA := blur(a)
	muB := blur(b)
	muAA := mul(muA, muA)
	muBB := mul(muB, muB)
	muAB := mul(muA, muB)

	varA := sub(blur(mul(a, a)), muAA)
	varA.MultiplyFloat(covNorm)
	varB := sub(blur(mul(b, b)), muBB)
	varB.MultiplyFloat(covNorm)
	covAB := sub(blur(mul(a, b)), muAB)
	covAB.MultiplyFloat(covNorm)

	num1 := keep(muAB.Clone())
	num1.MultiplyFloat(2)
	num1.AddFloat(ssimC1)
	num2 := keep(covAB.Clone())
	num2.MultiplyFloat(2)
	num2.AddFloat(ssimC2)

	den1 := add(muAA, muBB)
	den1.AddFloat(ssimC1)
	den2 := add(varA, varB)
	den2.AddFloat(ssimC2)

	num := mul(num1, num2)
	den := mul(den1, den2)

	ssimMap := gocv.NewMat()
	gocv.Divide(num, den, &ssimMap)

	return ssimMap, ssimMap.Mean().Val1
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
