//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"thermal-inspector/internal/domain/entity"
)

type YOLODetector struct {
	ModelPath     string
	NamesPath     string
	MinConfidence float64
	NMSThreshold  float64
	InputSize     int
}

// NewYOLODetector создаёт детектор-заглушку (без OpenCV).
func NewYOLODetector(modelPath, namesPath string, minConfidence, nmsThreshold float64, inputSize int) *YOLODetector {
	return &YOLODetector{
		ModelPath:     modelPath,
		NamesPath:     namesPath,
		MinConfidence: minConfidence,
		NMSThreshold:  nmsThreshold,
		InputSize:     inputSize,
	}
}

// Prepare возвращает ошибку, если сборка без тега gocv.
func (d *YOLODetector) Prepare(ctx context.Context) error {
	_ = ctx
	return errors.New("gocv build tag is not enabled")
}

// Detect возвращает ошибку, если сборка без тега gocv.
func (d *YOLODetector) Detect(ctx context.Context, imagePath string) ([]entity.CandidateBox, error) {
	_ = ctx
	_ = imagePath
	return nil, errors.New("gocv build tag is not enabled")
}

func (d *YOLODetector) Close() error { return nil }
