package entity

import (
	"image"
	"math"
)

// Box прямоугольник в пикселях опорного изображения, правая и нижняя границы не включены.
type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (b Box) Width() int  { return b.X2 - b.X1 }
func (b Box) Height() int { return b.Y2 - b.Y1 }

// Area возвращает площадь прямоугольника, 0 для вырожденного.
func (b Box) Area() int {
	if b.Empty() {
		return 0
	}
	return b.Width() * b.Height()
}

// Empty сообщает, что прямоугольник не содержит пикселей.
func (b Box) Empty() bool {
	return b.X1 >= b.X2 || b.Y1 >= b.Y2
}

// Clip обрезает прямоугольник по границам изображения width x height.
func (b Box) Clip(width, height int) Box {
	return Box{
		X1: clampInt(b.X1, 0, width),
		Y1: clampInt(b.Y1, 0, height),
		X2: clampInt(b.X2, 0, width),
		Y2: clampInt(b.Y2, 0, height),
	}
}

// Union возвращает наименьший прямоугольник, содержащий оба.
func (b Box) Union(o Box) Box {
	return Box{
		X1: min(b.X1, o.X1),
		Y1: min(b.Y1, o.Y1),
		X2: max(b.X2, o.X2),
		Y2: max(b.Y2, o.Y2),
	}
}

// Gap возвращает евклидово расстояние между ближайшими точками прямоугольников.
// Для пересекающихся прямоугольников 0.
func (b Box) Gap(o Box) float64 {
	dx := max(0, max(b.X1, o.X1)-min(b.X2, o.X2))
	dy := max(0, max(b.Y1, o.Y1)-min(b.Y2, o.Y2))
	return math.Hypot(float64(dx), float64(dy))
}

// Rect переводит прямоугольник в image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// RegionKind происхождение области.
type RegionKind string

const (
	RegionChanged  RegionKind = "changed_region"  // найдена сравнением изображений
	RegionProposed RegionKind = "proposed_region" // предложена внешним детектором
)

// Region область опорного изображения, в которой обнаружено изменение.
type Region struct {
	Box         Box        `json:"bbox"`
	Area        float64    `json:"area"`
	Kind        RegionKind `json:"type"`
	Description string     `json:"description,omitempty"` // описание от внешнего детектора
}

// AreaPercent возвращает площадь области в процентах от площади изображения.
func (r Region) AreaPercent(imageArea float64) float64 {
	if imageArea <= 0 {
		return 0
	}
	return r.Area * 100 / imageArea
}

// PercentBox прямоугольник в процентах от размеров изображения: x, y, ширина, высота.
type PercentBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// ToPixels переводит проценты в пиксели изображения width x height.
// Результат всегда удовлетворяет 0 <= x1 <= x2 <= width и 0 <= y1 <= y2 <= height.
func (p PercentBox) ToPixels(width, height int) Box {
	x1 := percentToPixel(p.X, width)
	y1 := percentToPixel(p.Y, height)
	x2 := percentToPixel(p.X+p.W, width)
	y2 := percentToPixel(p.Y+p.H, height)
	return Box{X1: x1, Y1: y1, X2: max(x1, x2), Y2: max(y1, y2)}
}

// Region строит область по процентному прямоугольнику.
func (p PercentBox) Region(width, height int) Region {
	box := p.ToPixels(width, height)
	return Region{Box: box, Area: float64(box.Area()), Kind: RegionProposed}
}

// Proposal область, предложенная внешним детектором, с его описанием дефекта.
type Proposal struct {
	Box         PercentBox `json:"bbox"`
	Description string     `json:"description"`
}

// Region переводит предложение в область снимка размером width x height.
func (p Proposal) Region(width, height int) Region {
	r := p.Box.Region(width, height)
	r.Description = p.Description
	return r
}

func percentToPixel(pct float64, size int) int {
	v := pct * float64(size) / 100
	switch {
	case math.IsNaN(v):
		return 0
	case v <= 0:
		return 0
	case v >= float64(size):
		return size
	}
	return clampInt(int(math.Round(v)), 0, size)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
