package analysis

import (
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrTooFewCorrespondences = errors.New("homography: at least 4 correspondences are required")
	ErrNoConsensus           = errors.New("homography: RANSAC found no consensus")
	errDegenerate            = errors.New("homography: degenerate point configuration")
)

// Point точка в пикселях.
type Point struct {
	X, Y float64
}

// Homography проективное преобразование 3x3 по строкам, элемент [8] равен 1.
type Homography [9]float64

// Apply переводит точку. false, если точка уходит в бесконечность.
func (h Homography) Apply(p Point) (Point, bool) {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if math.Abs(w) < 1e-12 {
		return Point{}, false
	}
	return Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}, true
}

// EstimateHomography ищет преобразование src -> dst методом RANSAC с порогом
// перепроецирования p.RansacThreshold и уточняет его по всем inlier-точкам.
// Возвращает индексы inlier-соответствий. seed делает результат воспроизводимым.
func EstimateHomography(src, dst []Point, p AlignmentParams, seed uint64) (Homography, []int, error) {
	n := len(src)
	if n != len(dst) || n < 4 {
		return Homography{}, nil, ErrTooFewCorrespondences
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	sampleSrc := make([]Point, 4)
	sampleDst := make([]Point, 4)

	var best []int
	for iter := 0; iter < p.RansacIterations; iter++ {
		for i, idx := range rng.Perm(n)[:4] {
			sampleSrc[i] = src[idx]
			sampleDst[i] = dst[idx]
		}
		h, err := solveHomography(sampleSrc, sampleDst)
		if err != nil {
			continue
		}
		inliers := collectInliers(h, src, dst, p.RansacThreshold)
		if len(inliers) > len(best) {
			best = inliers
			if len(best) == n {
				break
			}
		}
	}

	if len(best) < 4 {
		return Homography{}, nil, ErrNoConsensus
	}

	inSrc := make([]Point, len(best))
	inDst := make([]Point, len(best))
	for i, idx := range best {
		inSrc[i] = src[idx]
		inDst[i] = dst[idx]
	}
	h, err := solveHomography(inSrc, inDst)
	if err != nil {
		return Homography{}, nil, err
	}
	return h, collectInliers(h, src, dst, p.RansacThreshold), nil
}

func collectInliers(h Homography, src, dst []Point, threshold float64) []int {
	var inliers []int
	for i := range src {
		q, ok := h.Apply(src[i])
		if !ok {
			continue
		}
		if math.Hypot(q.X-dst[i].X, q.Y-dst[i].Y) < threshold {
			inliers = append(inliers, i)
		}
	}
	return inliers
}

// solveHomography решает DLT с h22 = 1 в нормированных координатах.
// Для четырёх точек система точная, для большего числа решается МНК.
func solveHomography(src, dst []Point) (Homography, error) {
	ns, ts, _, err := normalize(src)
	if err != nil {
		return Homography{}, err
	}
	nd, _, tdInv, err := normalize(dst)
	if err != nil {
		return Homography{}, err
	}

	n := len(ns)
	a := mat.NewDense(2*n, 8, nil)
	b := mat.NewVecDense(2*n, nil)
	for i := 0; i < n; i++ {
		X, Y := ns[i].X, ns[i].Y
		x, y := nd[i].X, nd[i].Y
		r := 2 * i
		a.SetRow(r, []float64{X, Y, 1, 0, 0, 0, -X * x, -Y * x})
		b.SetVec(r, x)
		a.SetRow(r+1, []float64{0, 0, 0, X, Y, 1, -X * y, -Y * y})
		b.SetVec(r+1, y)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return Homography{}, errDegenerate
	}

	hn := mat.NewDense(3, 3, []float64{
		h.AtVec(0), h.AtVec(1), h.AtVec(2),
		h.AtVec(3), h.AtVec(4), h.AtVec(5),
		h.AtVec(6), h.AtVec(7), 1,
	})

	// H = Td^-1 * Hn * Ts
	var tmp, full mat.Dense
	tmp.Mul(hn, ts)
	full.Mul(tdInv, &tmp)

	w := full.At(2, 2)
	if math.Abs(w) < 1e-12 {
		return Homography{}, errDegenerate
	}

	var out Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			v := full.At(r, c) / w
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Homography{}, errDegenerate
			}
			out[r*3+c] = v
		}
	}
	return out, nil
}

// normalize переносит центр масс в начало координат и масштабирует так,
// чтобы среднее расстояние до него было sqrt(2).
func normalize(pts []Point) ([]Point, *mat.Dense, *mat.Dense, error) {
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(pts))
	cy /= float64(len(pts))

	var mean float64
	for _, p := range pts {
		mean += math.Hypot(p.X-cx, p.Y-cy)
	}
	mean /= float64(len(pts))
	if mean < 1e-9 {
		return nil, nil, nil, errDegenerate
	}

	s := math.Sqrt2 / mean
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = Point{X: (p.X - cx) * s, Y: (p.Y - cy) * s}
	}

	t := mat.NewDense(3, 3, []float64{
		s, 0, -s * cx,
		0, s, -s * cy,
		0, 0, 1,
	})
	inv := mat.NewDense(3, 3, []float64{
		1 / s, 0, cx,
		0, 1 / s, cy,
		0, 0, 1,
	})
	return out, t, inv, nil
}
