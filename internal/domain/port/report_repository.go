package port

import (
	"context"

	"thermal-inspector/internal/domain/entity"
)

// ReportRepository интерфейс хранилища результатов инспекций
type ReportRepository interface {
	// Save сохраняет запись, повторное сохранение с тем же RunID перезаписывает её
	Save(ctx context.Context, record *entity.InspectionRecord) error

	// Get возвращает запись по идентификатору запуска
	Get(ctx context.Context, runID string) (*entity.InspectionRecord, error)
}
