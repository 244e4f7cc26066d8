package entity

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // декодер JPEG
	_ "image/png"  // декодер PNG

	xdraw "golang.org/x/image/draw"
)

// Image неизменяемый RGB-буфер с 8 битами на канал.
// Все преобразования возвращают новое изображение.
type Image struct {
	pix *image.RGBA
}

// NewImage копирует произвольное изображение в собственный буфер с началом в (0,0).
func NewImage(src image.Image) Image {
	if src == nil {
		return Image{}
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	// Альфа-канал не используется: картинка всегда непрозрачная.
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return Image{pix: dst}
}

// DecodeImage декодирует JPEG или PNG.
func DecodeImage(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrEmptyImage
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("decode image: %w", err)
	}
	img := NewImage(src)
	if img.Empty() {
		return Image{}, ErrEmptyImage
	}
	return img, nil
}

func (i Image) Width() int {
	if i.pix == nil {
		return 0
	}
	return i.pix.Rect.Dx()
}

func (i Image) Height() int {
	if i.pix == nil {
		return 0
	}
	return i.pix.Rect.Dy()
}

// Area возвращает площадь изображения в пикселях.
func (i Image) Area() float64 {
	return float64(i.Width() * i.Height())
}

// Empty сообщает, что в изображении нет ни одного пикселя.
func (i Image) Empty() bool {
	return i.Width() == 0 || i.Height() == 0
}

// Bounds возвращает прямоугольник изображения в пикселях.
func (i Image) Bounds() Box {
	return Box{X1: 0, Y1: 0, X2: i.Width(), Y2: i.Height()}
}

// RGBAAt возвращает цвет пикселя.
func (i Image) RGBAAt(x, y int) color.RGBA {
	return i.pix.RGBAAt(x, y)
}

// RGBA отдаёт буфер только для чтения. Изменять его нельзя.
func (i Image) RGBA() *image.RGBA {
	return i.pix
}

// Crop вырезает область. false, если пересечение с изображением пустое.
func (i Image) Crop(b Box) (Image, bool) {
	clipped := b.Clip(i.Width(), i.Height())
	if clipped.Empty() {
		return Image{}, false
	}
	sub := i.pix.SubImage(clipped.Rect())
	return NewImage(sub), true
}

// Resize масштабирует изображение до заданного размера.
func (i Image) Resize(width, height int) Image {
	if i.Empty() || width <= 0 || height <= 0 {
		return Image{}
	}
	if width == i.Width() && height == i.Height() {
		return i
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), i.pix, i.pix.Bounds(), xdraw.Src, nil)
	return Image{pix: dst}
}

// FitWithin уменьшает изображение так, чтобы длинная сторона не превышала maxSide.
func (i Image) FitWithin(maxSide int) Image {
	w, h := i.Width(), i.Height()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return i
	}
	scale := float64(maxSide) / float64(max(w, h))
	return i.Resize(max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale)))
}

// Mask бинарная карта отличий (0 или 255).
type Mask struct {
	*image.Gray
}

// ChangedRatio возвращает долю ненулевых пикселей маски.
func (m Mask) ChangedRatio() float64 {
	if m.Gray == nil || len(m.Pix) == 0 {
		return 0
	}
	changed := 0
	for _, v := range m.Pix {
		if v != 0 {
			changed++
		}
	}
	return float64(changed) / float64(len(m.Pix))
}
