package port

import (
	"context"

	"thermal-inspector/internal/domain/entity"
)

// Detector интерфейс внешнего детектора аномалий
type Detector interface {
	// Detect возвращает кандидатов в порядке выдачи детектора
	Detect(ctx context.Context, imagePath string) ([]entity.CandidateBox, error)
}

// Preparer реализуют детекторы, которым нужна загрузка модели до первого вызова
type Preparer interface {
	Prepare(ctx context.Context) error
}
