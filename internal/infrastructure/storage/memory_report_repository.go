package storage

import (
	"context"
	"errors"
	"sync"

	"thermal-inspector/internal/domain/entity"
	"thermal-inspector/internal/domain/port"
)

// ErrNotFound запись не найдена
var ErrNotFound = errors.New("inspection record not found")

// MemoryReportRepository in-memory хранилище результатов
type MemoryReportRepository struct {
	mu      sync.RWMutex
	records map[string]*entity.InspectionRecord
}

// NewMemoryReportRepository создаёт новое in-memory хранилище
func NewMemoryReportRepository() *MemoryReportRepository {
	return &MemoryReportRepository{
		records: make(map[string]*entity.InspectionRecord),
	}
}

// Save сохраняет запись
func (r *MemoryReportRepository) Save(ctx context.Context, record *entity.InspectionRecord) error {
	if record == nil || record.RunID == "" {
		return errors.New("record without run id")
	}

	r.mu.Lock()
	r.records[record.RunID] = record
	r.mu.Unlock()

	return nil
}

// Get возвращает запись по идентификатору запуска
func (r *MemoryReportRepository) Get(ctx context.Context, runID string) (*entity.InspectionRecord, error) {
	r.mu.RLock()
	record, exists := r.records[runID]
	r.mu.RUnlock()

	if !exists {
		return nil, ErrNotFound
	}
	return record, nil
}

// Проверка реализации интерфейса
var _ port.ReportRepository = (*MemoryReportRepository)(nil)
