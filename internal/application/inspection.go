package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"thermal-inspector/internal/domain/entity"
	"thermal-inspector/internal/domain/port"
	"thermal-inspector/internal/logger"
)

// InspectionConfig настройки конвейера фильтрации
type InspectionConfig struct {
	Baseline         BaselineConfig
	IntensityChannel int
	RegionProxy      RegionProxy
	RegionPercentile float64
	DeferenceScale   DeferenceScale
	Severity         entity.SeverityMap
	OutputMode       OutputMode
	UniqueSuffix     bool
	DetectTimeout    time.Duration // 0: без ограничения
}

type InspectionService struct {
	cfg       InspectionConfig
	codec     port.ImageCodec
	detector  port.Detector
	reports   port.ReportRepository
	baseline  *BaselineEstimator
	extractor *RegionIntensityExtractor
	builder   *ReportBuilder
	log       logger.Logger
	now       func() time.Time
	newID     func() string
}

// NewInspectionService создаёт сервис, который проводит одну инспекцию от входных путей до отчёта.
func NewInspectionService(cfg InspectionConfig, codec port.ImageCodec, detector port.Detector,
	reports port.ReportRepository, log logger.Logger) *InspectionService {
	return &InspectionService{
		cfg:       cfg,
		codec:     codec,
		detector:  detector,
		reports:   reports,
		baseline:  NewBaselineEstimator(cfg.Baseline, codec, log),
		extractor: NewRegionIntensityExtractor(cfg.RegionProxy, cfg.RegionPercentile),
		builder:   NewReportBuilder(cfg.OutputMode, cfg.UniqueSuffix, log),
		log:       log,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// WithClock подменяет часы, от которых строится имя выходного файла
func (s *InspectionService) WithClock(now func() time.Time) *InspectionService {
	s.now = now
	return s
}

// WithIDGenerator подменяет генератор идентификаторов запусков
func (s *InspectionService) WithIDGenerator(newID func() string) *InspectionService {
	s.newID = newID
	return s
}

// Run проводит инспекцию. Любая ошибка, включая панику, превращается в отчёт UNCERTAIN.
func (s *InspectionService) Run(ctx context.Context, req entity.InspectionRequest) (report *entity.Report) {
	run := entity.NewRun(s.newID(), s.now())
	ctx = logger.WithRunID(ctx, run.ID)
	baseline := 0

	defer func() {
		if r := recover(); r != nil {
			report = s.fail(ctx, run, entity.Failuref(entity.FailureInternal, "unexpected failure: %v", r))
		}
		s.record(ctx, run, req, baseline, report)
	}()

	report, baseline, err := s.run(ctx, run, req)
	if err != nil {
		return s.fail(ctx, run, err)
	}
	run.SetStage(entity.StageDone)
	s.log.Infof(ctx, "Inspection finished: status=%s anomalies=%d", report.OverallStatus, len(report.Anomalies))
	return report
}

func (s *InspectionService) run(ctx context.Context, run *entity.Run, req entity.InspectionRequest) (*entity.Report, int, error) {
	s.stage(ctx, run, entity.StageValidatingInputs)
	if !exists(req.InspectionImage) || !exists(req.BaselineImage) {
		return nil, 0, entity.Failuref(entity.FailureInputNotFound,
			"image not found. Inspection: %s, Baseline: %s", req.InspectionImage, req.BaselineImage)
	}
	if err := s.setup(ctx, req.OutputDir); err != nil {
		return nil, 0, err
	}

	baseline := s.baseline.Estimate(ctx, req.BaselineImage)
	s.stage(ctx, run, entity.StageBaselineComputed)

	s.stage(ctx, run, entity.StageDetecting)
	frame, err := s.codec.Open(req.InspectionImage)
	if err != nil {
		return nil, baseline, entity.Failuref(entity.FailureDecode,
			"could not read inspection image at %s: %w", req.InspectionImage, err)
	}
	defer frame.Close()

	plane, err := frame.Intensity(s.cfg.IntensityChannel)
	if err != nil {
		return nil, baseline, entity.Failuref(entity.FailureDecode, "intensity channel: %w", err)
	}

	candidates, err := s.detect(ctx, req.InspectionImage)
	if err != nil {
		return nil, baseline, entity.Failuref(entity.FailureDetector, "detector failed: %w", err)
	}
	s.log.Infof(ctx, "Detected %d anomaly candidate(s)", len(candidates))

	s.stage(ctx, run, entity.StageFiltering)
	classifier := NewDeferenceClassifier(s.cfg.DeferenceScale, req.Threshold)
	type accepted struct {
		id  int
		box entity.CandidateBox
	}
	kept := make([]accepted, 0, len(candidates))
	for i, c := range candidates {
		id := i + 1
		proxy := s.extractor.Proxy(plane, c.Rect)
		deference, ok := classifier.Accept(baseline, proxy)
		s.log.Debugf(ctx, "Anomaly %d: proxy=%.2f deference=%.2f%% threshold=%.2f%% accepted=%t",
			id, proxy, deference, req.Threshold*100, ok)
		if !ok {
			continue
		}
		kept = append(kept, accepted{id: id, box: c})
	}

	s.stage(ctx, run, entity.StageAggregating)
	agg := NewSeverityAggregator(s.cfg.Severity)
	anomalies := make([]entity.AcceptedAnomaly, 0, len(kept))
	for _, k := range kept {
		anomalies = append(anomalies, entity.AcceptedAnomaly{
			ID:            k.id,
			Type:          k.box.Label,
			Location:      k.box.Rect,
			SeverityScore: agg.Add(k.box.Label),
			Confidence:    entity.RoundConfidence(k.box.Confidence),
		})
	}

	s.stage(ctx, run, entity.StageAnnotating)
	report := s.builder.Finish(ctx, frame, run, req, anomalies, agg.Status())
	return report, baseline, nil
}

// setup готовит выходной каталог и модель детектора
func (s *InspectionService) setup(ctx context.Context, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return entity.Failuref(entity.FailureSetup, "model or path setup failed: %w", err)
	}
	if s.detector == nil {
		return entity.NewFailure(entity.FailureSetup, errors.New("detector is not configured"))
	}
	if p, ok := s.detector.(port.Preparer); ok {
		if err := p.Prepare(ctx); err != nil {
			return entity.Failuref(entity.FailureSetup, "model or path setup failed: %w", err)
		}
	}
	return nil
}

// detect вызывает детектор с ограничением по времени; паника детектора становится ошибкой.
func (s *InspectionService) detect(ctx context.Context, path string) ([]entity.CandidateBox, error) {
	if s.cfg.DetectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.DetectTimeout)
		defer cancel()
	}

	type result struct {
		boxes []entity.CandidateBox
		err   error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("detector panic: %v", r)}
			}
		}()
		boxes, err := s.detector.Detect(ctx, path)
		done <- result{boxes: boxes, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.boxes, r.err
	}
}

func (s *InspectionService) fail(ctx context.Context, run *entity.Run, err error) *entity.Report {
	s.log.Errorf(ctx, "Inspection failed at %s (%s): %v", run.Stage, entity.KindOf(err), err)
	run.SetStage(entity.StageUncertain)
	return entity.UncertainReport(err)
}

func (s *InspectionService) stage(ctx context.Context, run *entity.Run, stage entity.RunStage) {
	run.SetStage(stage)
	s.log.Debugf(ctx, "Stage %s", stage)
}

// record сохраняет результат; ошибка хранилища не меняет отчёт
func (s *InspectionService) record(ctx context.Context, run *entity.Run, req entity.InspectionRequest, baseline int, report *entity.Report) {
	if s.reports == nil || report == nil {
		return
	}
	rec := &entity.InspectionRecord{
		RunID:             run.ID,
		Request:           req,
		BaselineIntensity: baseline,
		Report:            report,
		DetectedAt:        s.now(),
	}
	if err := s.reports.Save(ctx, rec); err != nil {
		s.log.Warnf(ctx, "Could not store inspection result: %v", err)
	}
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
