package app

import (
	"context"
	"math"

	"thermal-inspector/internal/domain/entity"
	"thermal-inspector/internal/domain/port"
	"thermal-inspector/internal/logger"
)

// BaselineConfig настройки эталонной яркости
type BaselineConfig struct {
	Window     entity.ColorWindow // окно "холодных" пикселей корпуса
	Channel    int                // канал Lab, из которого берётся яркость
	Percentile float64            // 50 = медиана
	Floor      int                // нижняя граница и значение при отказе
}

// BaselineEstimator считает эталонную яркость по снимку без дефектов
type BaselineEstimator struct {
	cfg   BaselineConfig
	codec port.ImageCodec
	log   logger.Logger
}

// NewBaselineEstimator создаёт оценщик эталона
func NewBaselineEstimator(cfg BaselineConfig, codec port.ImageCodec, log logger.Logger) *BaselineEstimator {
	return &BaselineEstimator{cfg: cfg, codec: codec, log: log}
}

// Estimate возвращает эталонную яркость в [Floor,255].
// Нечитаемый снимок или пустая маска не считаются ошибкой: возвращается Floor.
func (e *BaselineEstimator) Estimate(ctx context.Context, path string) int {
	frame, err := e.codec.Open(path)
	if err != nil {
		e.log.Warnf(ctx, "Could not read baseline image at %s: %v; falling back to %d", path, err, e.cfg.Floor)
		return e.cfg.Floor
	}
	defer frame.Close()

	values, err := frame.MaskedIntensity(e.cfg.Window, e.cfg.Channel)
	if err != nil {
		e.log.Warnf(ctx, "Could not mask baseline image %s: %v; falling back to %d", path, err, e.cfg.Floor)
		return e.cfg.Floor
	}
	if len(values) == 0 {
		e.log.Warnf(ctx, "No pixels inside the baseline color window; falling back to %d", e.cfg.Floor)
		return e.cfg.Floor
	}

	median := percentile(values, e.cfg.Percentile)
	baseline := int(math.Max(median, float64(e.cfg.Floor)))
	if baseline > 255 {
		baseline = 255
	}

	e.log.Infof(ctx, "Calculated color-filtered baseline intensity proxy: %.2f -> %d (%d masked pixels)", median, baseline, len(values))
	return baseline
}
