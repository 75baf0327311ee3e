package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"thermal-inspector/internal/domain/entity"
	"thermal-inspector/internal/domain/port"
)

func sampleRecord(runID string, status entity.OverallStatus) *entity.InspectionRecord {
	return &entity.InspectionRecord{
		RunID: runID,
		Request: entity.InspectionRequest{
			InspectionImage: "/in/t.jpg",
			BaselineImage:   "/in/b.jpg",
			OutputDir:       "/out",
			Threshold:       0.1,
		},
		BaselineIntensity: 72,
		Report: &entity.Report{
			OverallStatus:   status,
			OutputImageName: "t_annotated_20240101_000000.jpg",
			Anomalies: []entity.AcceptedAnomaly{{
				ID: 1, Type: "Faulty", Location: entity.Rect{XMin: 1, YMin: 2, XMax: 3, YMax: 4}, SeverityScore: 2, Confidence: 0.91,
			}},
			ImageDimensions: &entity.ImageDimensions{OriginalWidth: 640, OriginalHeight: 480},
		},
		DetectedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func exerciseRepository(t *testing.T, repo port.ReportRepository) {
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	rec := sampleRecord("run-1", entity.StatusFaulty)
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.Get(ctx, "run-1")
	require.NoError(t, err)
	require.Equal(t, rec.Request, got.Request)
	require.Equal(t, rec.BaselineIntensity, got.BaselineIntensity)
	require.Equal(t, rec.Report, got.Report)
	require.True(t, rec.DetectedAt.Equal(got.DetectedAt))

	// повторное сохранение перезаписывает запись
	require.NoError(t, repo.Save(ctx, sampleRecord("run-1", entity.StatusPotentiallyFaulty)))
	got, err = repo.Get(ctx, "run-1")
	require.NoError(t, err)
	require.Equal(t, entity.StatusPotentiallyFaulty, got.Report.OverallStatus)

	require.Error(t, repo.Save(ctx, &entity.InspectionRecord{}))
}

func TestMemoryReportRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryReportRepository())
}

func TestSQLiteReportRepository(t *testing.T) {
	repo, err := NewSQLiteReportRepository(filepath.Join(t.TempDir(), "db", "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	exerciseRepository(t, repo)
}

func TestSQLiteReportRepository_UncertainReport(t *testing.T) {
	repo, err := NewSQLiteReportRepository(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	ctx := context.Background()
	rec := &entity.InspectionRecord{
		RunID:  "run-2",
		Report: &entity.Report{OverallStatus: entity.StatusUncertain, Error: "image not found"},
	}
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.Get(ctx, "run-2")
	require.NoError(t, err)
	require.Equal(t, entity.StatusUncertain, got.Report.OverallStatus)
	require.Equal(t, "image not found", got.Report.Error)
}
