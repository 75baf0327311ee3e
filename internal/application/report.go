package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"thermal-inspector/internal/domain/entity"
	"thermal-inspector/internal/domain/port"
	"thermal-inspector/internal/logger"
)

// OutputMode что отдавать в отчёте: имя файла или полный путь
type OutputMode string

const (
	OutputName OutputMode = "name"
	OutputPath OutputMode = "path"
)

const timestampLayout = "20060102_150405"

// ReportBuilder рисует принятые аномалии, сохраняет снимок и собирает отчёт
type ReportBuilder struct {
	mode         OutputMode
	uniqueSuffix bool
	log          logger.Logger
}

// NewReportBuilder создаёт сборщик отчёта
func NewReportBuilder(mode OutputMode, uniqueSuffix bool, log logger.Logger) *ReportBuilder {
	return &ReportBuilder{mode: mode, uniqueSuffix: uniqueSuffix, log: log}
}

// FileName строит имя аннотированного снимка: {stem}_annotated_{YYYYMMDD_HHMMSS}{ext}
func (b *ReportBuilder) FileName(sourcePath string, run *entity.Run) string {
	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	ts := run.StartedAt.Format(timestampLayout)
	if b.uniqueSuffix && run.ID != "" {
		return fmt.Sprintf("%s_annotated_%s_%s%s", stem, ts, shortID(run.ID), ext)
	}
	return fmt.Sprintf("%s_annotated_%s%s", stem, ts, ext)
}

// Marks переводит принятые аномалии в отметки для рисования
func Marks(anomalies []entity.AcceptedAnomaly) []entity.Mark {
	marks := make([]entity.Mark, 0, len(anomalies))
	for _, a := range anomalies {
		marks = append(marks, entity.Mark{ID: a.ID, Rect: a.Location, Severity: a.SeverityScore})
	}
	return marks
}

// Finish рисует отметки, сохраняет снимок в outputDir и возвращает отчёт.
// Ошибка сохранения только пишется в журнал: отчёт всё равно возвращается.
func (b *ReportBuilder) Finish(ctx context.Context, frame port.Frame, run *entity.Run, req entity.InspectionRequest,
	anomalies []entity.AcceptedAnomaly, status entity.OverallStatus) *entity.Report {
	width, height := frame.Size()
	name := b.FileName(req.InspectionImage, run)
	path := filepath.Join(req.OutputDir, name)

	if err := frame.Draw(Marks(anomalies)); err != nil {
		b.log.Errorf(ctx, "Error drawing annotations: %v", err)
	}
	if err := frame.Save(path); err != nil {
		err = entity.NewFailure(entity.FailureSave, err)
		b.log.Errorf(ctx, "Error saving image to %s (%s): %v", path, entity.KindOf(err), err)
	} else {
		b.log.Infof(ctx, "Successfully saved result image to: %s", path)
	}

	if anomalies == nil {
		anomalies = []entity.AcceptedAnomaly{}
	}
	report := &entity.Report{
		OverallStatus:   status,
		Anomalies:       anomalies,
		ImageDimensions: &entity.ImageDimensions{OriginalWidth: width, OriginalHeight: height},
	}
	if b.mode == OutputPath {
		report.OutputImagePath = path
	} else {
		report.OutputImageName = name
	}
	return report
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
