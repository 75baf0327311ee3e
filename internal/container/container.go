package container

import (
	"fmt"
	"io"

	"thermal-inspector/config"
	app "thermal-inspector/internal/application"
	"thermal-inspector/internal/domain/port"
	"thermal-inspector/internal/infrastructure/storage"
	"thermal-inspector/internal/infrastructure/vision"
	"thermal-inspector/internal/logger"
)

type Container struct {
	InspectionService *app.InspectionService
	Reports           port.ReportRepository

	closers []io.Closer
}

// New собирает конвейер по конфигурации
func New(cfg *config.Config, log logger.Logger) (*Container, error) {
	c := &Container{}

	// Хранилище результатов: sqlite, если задан путь, иначе память
	if cfg.ReportDB != "" {
		repo, err := storage.NewSQLiteReportRepository(cfg.ReportDB)
		if err != nil {
			return nil, fmt.Errorf("open report db: %w", err)
		}
		c.Reports = repo
		c.closers = append(c.closers, repo)
	} else {
		c.Reports = storage.NewMemoryReportRepository()
	}

	detector := newDetector(cfg.Detector)
	if closer, ok := detector.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}

	c.InspectionService = app.NewInspectionService(inspectionConfig(cfg), vision.NewCodec(), detector, c.Reports, log)
	return c, nil
}

func newDetector(cfg config.DetectorConfig) port.Detector {
	if cfg.Mode == "file" {
		return vision.NewFileDetector(cfg.DetectionsDir, cfg.NamesPath, cfg.MinConfidence)
	}
	return vision.NewYOLODetector(cfg.ModelPath, cfg.NamesPath, cfg.MinConfidence, cfg.NMSThreshold, cfg.InputSize)
}

func inspectionConfig(cfg *config.Config) app.InspectionConfig {
	return app.InspectionConfig{
		Baseline: app.BaselineConfig{
			Window:     cfg.Filter.MaskWindow,
			Channel:    cfg.Filter.IntensityChannel,
			Percentile: cfg.Filter.BaselinePercentile,
			Floor:      cfg.Filter.BaselineFloor,
		},
		IntensityChannel: cfg.Filter.IntensityChannel,
		RegionProxy:      app.RegionProxy(cfg.Filter.RegionProxy),
		RegionPercentile: cfg.Filter.RegionPercentile,
		DeferenceScale:   app.DeferenceScale(cfg.Filter.DeferenceScale),
		Severity:         cfg.Severity,
		OutputMode:       app.OutputMode(cfg.Output.Mode),
		UniqueSuffix:     cfg.Output.UniqueSuffix,
		DetectTimeout:    cfg.Detector.Timeout,
	}
}

// Close освобождает модель и хранилище
func (c *Container) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}
