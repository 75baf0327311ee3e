package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"thermal-inspector/internal/domain/entity"
	"thermal-inspector/internal/domain/port"
)

// inspectionResult строка таблицы результатов
type inspectionResult struct {
	RunID             string `gorm:"primaryKey;size:64"`
	InspectionImage   string
	BaselineImage     string
	OutputDir         string
	Threshold         float64
	BaselineIntensity int
	OverallStatus     string `gorm:"index;size:32"`
	OutputImageName   string
	DetectionJSON     string `gorm:"type:text"` // отчёт целиком
	ErrorMessage      string
	DetectedAt        time.Time `gorm:"index"`
}

func (inspectionResult) TableName() string {
	return "anomaly_detection_result"
}

// SQLiteReportRepository хранит результаты в sqlite через gorm
type SQLiteReportRepository struct {
	db *gorm.DB
}

// NewSQLiteReportRepository открывает базу и создаёт таблицу при необходимости
func NewSQLiteReportRepository(path string) (*SQLiteReportRepository, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db dir %s: %w", dir, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&inspectionResult{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteReportRepository{db: db}, nil
}

// Save вставляет или обновляет запись по RunID
func (r *SQLiteReportRepository) Save(ctx context.Context, record *entity.InspectionRecord) error {
	if record == nil || record.RunID == "" || record.Report == nil {
		return errors.New("record without run id or report")
	}
	payload, err := json.Marshal(record.Report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	row := inspectionResult{
		RunID:             record.RunID,
		InspectionImage:   record.Request.InspectionImage,
		BaselineImage:     record.Request.BaselineImage,
		OutputDir:         record.Request.OutputDir,
		Threshold:         record.Request.Threshold,
		BaselineIntensity: record.BaselineIntensity,
		OverallStatus:     string(record.Report.OverallStatus),
		OutputImageName:   outputImage(record.Report),
		DetectionJSON:     string(payload),
		ErrorMessage:      record.Report.Error,
		DetectedAt:        record.DetectedAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

// Get читает запись по идентификатору запуска
func (r *SQLiteReportRepository) Get(ctx context.Context, runID string) (*entity.InspectionRecord, error) {
	var row inspectionResult
	err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var report entity.Report
	if err := json.Unmarshal([]byte(row.DetectionJSON), &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &entity.InspectionRecord{
		RunID: row.RunID,
		Request: entity.InspectionRequest{
			InspectionImage: row.InspectionImage,
			BaselineImage:   row.BaselineImage,
			OutputDir:       row.OutputDir,
			Threshold:       row.Threshold,
		},
		BaselineIntensity: row.BaselineIntensity,
		Report:            &report,
		DetectedAt:        row.DetectedAt,
	}, nil
}

// Close закрывает соединение
func (r *SQLiteReportRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func outputImage(r *entity.Report) string {
	if r.OutputImagePath != "" {
		return r.OutputImagePath
	}
	return r.OutputImageName
}

var _ port.ReportRepository = (*SQLiteReportRepository)(nil)
