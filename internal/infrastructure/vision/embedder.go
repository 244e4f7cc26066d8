//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"repair-bot/internal/domain/entity"
	"repair-bot/internal/domain/port"
)

const embedInputSide = 224

// DNNEmbedder извлекает эмбеддинг предобученной сетью ONNX.
// Сеть загружается один раз, Forward защищён мьютексом.
type DNNEmbedder struct {
	name string
	mu   sync.Mutex
	net  gocv.Net
}

// NewDNNEmbedder загружает сеть из modelPath.
func NewDNNEmbedder(modelPath, name string) (*DNNEmbedder, error) {
	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("load %s model from %q", name, modelPath)
	}
	return &DNNEmbedder{name: name, net: net}, nil
}

func (e *DNNEmbedder) Name() string { return e.name }

// Embed возвращает плоский вектор признаков. Пространственные выходы
// усредняются по высоте и ширине.
func (e *DNNEmbedder) Embed(ctx context.Context, img entity.Image) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bgr, err := toBGR(img)
	if err != nil {
		return nil, err
	}
	defer bgr.Close()

	// Среднее ImageNet в шкале 0..255, общий масштаб по среднему отклонению.
	blob := gocv.BlobFromImage(bgr, 1.0/57.12, image.Pt(embedInputSide, embedInputSide),
		gocv.NewScalar(123.675, 116.28, 103.53, 0), true, false)
	defer blob.Close()

	e.mu.Lock()
	e.net.SetInput(blob, "")
	out := e.net.Forward("")
	e.mu.Unlock()
	defer out.Close()

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("%s output: %w", e.name, err)
	}
	if len(data) == 0 {
		return nil, errors.New(e.name + ": empty output")
	}

	return pool(data, out.Size()), nil
}

// pool усредняет выход формы [1, C, H, W] до [C]. Другие формы копируются как есть.
func pool(data []float32, shape []int) []float32 {
	if len(shape) != 4 || shape[2]*shape[3] <= 1 {
		out := make([]float32, len(data))
		copy(out, data)
		return out
	}
	channels, spatial := shape[1], shape[2]*shape[3]
	out := make([]float32, channels)
	for c := 0; c < channels; c++ {
		var sum float32
		for _, v := range data[c*spatial : (c+1)*spatial] {
			sum += v
		}
		out[c] = sum / float32(spatial)
	}
	return out
}

// Close освобождает сеть.
func (e *DNNEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.net.Close()
}

var _ port.FeatureExtractor = (*DNNEmbedder)(nil)
