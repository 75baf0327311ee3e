//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"thermal-inspector/internal/domain/entity"
	"thermal-inspector/internal/domain/port"
)

// YOLODetector запускает ONNX-модель YOLOv8 через gocv/dnn
type YOLODetector struct {
	ModelPath     string
	NamesPath     string
	MinConfidence float64
	NMSThreshold  float64
	InputSize     int

	net    *gocv.Net
	names  Names
	loaded bool
}

// NewYOLODetector создаёт детектор; модель загружается в Prepare.
func NewYOLODetector(modelPath, namesPath string, minConfidence, nmsThreshold float64, inputSize int) *YOLODetector {
	return &YOLODetector{
		ModelPath:     modelPath,
		NamesPath:     namesPath,
		MinConfidence: minConfidence,
		NMSThreshold:  nmsThreshold,
		InputSize:     inputSize,
	}
}

// Prepare читает таблицу имён и модель
func (d *YOLODetector) Prepare(ctx context.Context) error {
	if d.loaded {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	names, err := LoadNames(d.NamesPath)
	if err != nil {
		return fmt.Errorf("load class names: %w", err)
	}

	net := gocv.ReadNetFromONNX(d.ModelPath)
	if net.Empty() {
		net.Close()
		return fmt.Errorf("failed to load model %s", d.ModelPath)
	}

	d.names = names
	d.net = &net
	d.loaded = true
	return nil
}

// Detect прогоняет снимок через сеть и возвращает кандидатов после NMS.
func (d *YOLODetector) Detect(ctx context.Context, imagePath string) ([]entity.CandidateBox, error) {
	if err := d.Prepare(ctx); err != nil {
		return nil, err
	}

	mat := gocv.IMRead(imagePath, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return nil, errors.New("failed to decode image")
	}
	defer mat.Close()

	size := image.Pt(d.InputSize, d.InputSize)
	blob := gocv.BlobFromImage(mat, 1.0/255.0, size, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dims := out.Size()
	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected model output shape %v", dims)
	}
	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read model output: %w", err)
	}

	orig := imageSize(mat)
	scaleX := float64(orig.X) / float64(d.InputSize)
	scaleY := float64(orig.Y) / float64(d.InputSize)
	raw, err := decodeYOLO(data, dims[1], dims[2], scaleX, scaleY, float32(d.MinConfidence))
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	rects := make([]image.Rectangle, len(raw))
	scores := make([]float32, len(raw))
	for i, c := range raw {
		rects[i] = c.Box
		scores[i] = c.Confidence
	}
	keep := gocv.NMSBoxes(rects, scores, float32(d.MinConfidence), float32(d.NMSThreshold))

	boxes := make([]entity.CandidateBox, 0, len(keep))
	for _, i := range keep {
		c := raw[i]
		boxes = append(boxes, entity.CandidateBox{
			Rect: entity.Rect{
				XMin: c.Box.Min.X,
				YMin: c.Box.Min.Y,
				XMax: c.Box.Max.X,
				YMax: c.Box.Max.Y,
			},
			Confidence: float64(c.Confidence),
			ClassID:    c.ClassID,
			Label:      d.names.Label(c.ClassID),
		})
	}
	return boxes, nil
}

// Close освобождает сеть
func (d *YOLODetector) Close() error {
	if d.net != nil {
		d.net.Close()
		d.net = nil
	}
	d.loaded = false
	return nil
}

var (
	_ port.Detector = (*YOLODetector)(nil)
	_ port.Preparer = (*YOLODetector)(nil)
)
