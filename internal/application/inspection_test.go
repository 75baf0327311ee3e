package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"thermal-inspector/internal/domain/entity"
	"thermal-inspector/internal/infrastructure/storage"
	"thermal-inspector/internal/logger"
)

type fixture struct {
	req      entity.InspectionRequest
	frame    *stubFrame
	base     *stubFrame
	detector *stubDetector
	repo     *storage.MemoryReportRepository
	svc      *InspectionService
}

func newFixture(t *testing.T, cfg InspectionConfig) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		req: entity.InspectionRequest{
			InspectionImage: touch(t, dir, "T1_faulty_001.jpg"),
			BaselineImage:   touch(t, dir, "T1_baseline.jpg"),
			OutputDir:       filepath.Join(dir, "out"),
			Threshold:       0.10,
		},
		frame:    &stubFrame{plane: uniformPlane(100, 80, 20)},
		base:     &stubFrame{plane: uniformPlane(100, 80, 0)},
		detector: &stubDetector{},
		repo:     storage.NewMemoryReportRepository(),
	}
	codec := &stubCodec{frames: map[string]*stubFrame{
		f.req.InspectionImage: f.frame,
		f.req.BaselineImage:   f.base,
	}}
	f.svc = NewInspectionService(cfg, codec, f.detector, f.repo, logger.NewNop()).
		WithClock(func() time.Time { return pinned }).
		WithIDGenerator(func() string { return "run-1" })
	return f
}

func defaultConfig() InspectionConfig {
	return InspectionConfig{
		Baseline:         BaselineConfig{Percentile: 50, Floor: 50},
		RegionProxy:      ProxyPercentile,
		RegionPercentile: 95,
		DeferenceScale:   ScaleFixed,
		Severity:         entity.DefaultSeverityMap(),
		OutputMode:       OutputName,
		DetectTimeout:    time.Second,
	}
}

func TestInspectionService_AcceptsHotRegion(t *testing.T) {
	f := newFixture(t, defaultConfig())
	box := entity.Rect{XMin: 10, YMin: 10, XMax: 30, YMax: 30}
	paint(f.frame.plane, box, 200)
	f.detector.boxes = []entity.CandidateBox{{Rect: box, Confidence: 0.876543, ClassID: 0, Label: "Faulty"}}

	report := f.svc.Run(context.Background(), f.req)

	require.Equal(t, entity.StatusFaulty, report.OverallStatus)
	require.Equal(t, "T1_faulty_001_annotated_20240307_140509.jpg", report.OutputImageName)
	require.Equal(t, []entity.AcceptedAnomaly{{
		ID: 1, Type: "Faulty", Location: box, SeverityScore: 2, Confidence: 0.8765,
	}}, report.Anomalies)
	require.Equal(t, filepath.Join(f.req.OutputDir, report.OutputImageName), f.frame.saved)
	require.Len(t, f.frame.marks, 1)
	require.DirExists(t, f.req.OutputDir)
	require.True(t, f.frame.closed)
}

func TestInspectionService_HighThresholdRejects(t *testing.T) {
	f := newFixture(t, defaultConfig())
	box := entity.Rect{XMin: 10, YMin: 10, XMax: 30, YMax: 30}
	paint(f.frame.plane, box, 200)
	f.detector.boxes = []entity.CandidateBox{{Rect: box, Confidence: 0.9, Label: "Faulty"}}
	f.req.Threshold = 0.90

	report := f.svc.Run(context.Background(), f.req)

	require.Equal(t, entity.StatusNormal, report.OverallStatus)
	require.Empty(t, report.Anomalies)
	require.Empty(t, f.frame.marks)
	require.NotEmpty(t, f.frame.saved)
}

func TestInspectionService_EvenCountBaselineMedian(t *testing.T) {
	// медиана {60,100} равна 80: область 90 даёт 3.9% и отбрасывается, область 110 даёт 11.8%
	cases := []struct {
		region uint8
		want   entity.OverallStatus
	}{
		{90, entity.StatusNormal},
		{110, entity.StatusFaulty},
	}
	for _, tc := range cases {
		f := newFixture(t, defaultConfig())
		f.base.masked = []uint8{60, 100}
		box := entity.Rect{XMin: 10, YMin: 10, XMax: 30, YMax: 30}
		paint(f.frame.plane, box, tc.region)
		f.detector.boxes = []entity.CandidateBox{{Rect: box, Confidence: 0.9, Label: "Faulty"}}

		report := f.svc.Run(context.Background(), f.req)
		require.Equal(t, tc.want, report.OverallStatus, "region %d", tc.region)

		rec, err := f.repo.Get(context.Background(), "run-1")
		require.NoError(t, err)
		require.Equal(t, 80, rec.BaselineIntensity)
	}
}

func TestInspectionService_KeepsDetectorOrderAndIDs(t *testing.T) {
	f := newFixture(t, defaultConfig())
	cold := entity.Rect{XMin: 0, YMin: 0, XMax: 10, YMax: 10}
	warm := entity.Rect{XMin: 20, YMin: 20, XMax: 40, YMax: 40}
	hot := entity.Rect{XMin: 50, YMin: 10, XMax: 70, YMax: 30}
	paint(f.frame.plane, warm, 120)
	paint(f.frame.plane, hot, 230)
	f.detector.boxes = []entity.CandidateBox{
		{Rect: warm, Confidence: 0.6, Label: "Potentially Faulty"},
		{Rect: cold, Confidence: 0.7, Label: "Faulty"},
		{Rect: hot, Confidence: 0.8, Label: "Faulty"},
		{Rect: warm, Confidence: 0.55, Label: "Potentially Faulty"},
	}

	report := f.svc.Run(context.Background(), f.req)

	require.Equal(t, entity.StatusFaulty, report.OverallStatus)
	require.Len(t, report.Anomalies, 3)
	require.Equal(t, []int{1, 3, 4}, []int{report.Anomalies[0].ID, report.Anomalies[1].ID, report.Anomalies[2].ID})
	require.Equal(t, []int{1, 2, 1}, []int{
		report.Anomalies[0].SeverityScore, report.Anomalies[1].SeverityScore, report.Anomalies[2].SeverityScore,
	})
}

func TestInspectionService_StatusRules(t *testing.T) {
	hot := entity.Rect{XMin: 10, YMin: 10, XMax: 30, YMax: 30}
	tests := []struct {
		name   string
		labels []string
		want   entity.OverallStatus
	}{
		{"no detections", nil, entity.StatusNormal},
		{"only unmapped", []string{"Normal", "Other"}, entity.StatusNormal},
		{"potential only", []string{"Normal", "Potentially Faulty"}, entity.StatusPotentiallyFaulty},
		{"faulty then potential", []string{"Faulty", "Potentially Faulty"}, entity.StatusFaulty},
		{"potential then faulty", []string{"Potentially Faulty", "Faulty"}, entity.StatusFaulty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, defaultConfig())
			paint(f.frame.plane, hot, 220)
			for _, l := range tt.labels {
				f.detector.boxes = append(f.detector.boxes, entity.CandidateBox{Rect: hot, Confidence: 0.9, Label: l})
			}
			require.Equal(t, tt.want, f.svc.Run(context.Background(), f.req).OverallStatus)
		})
	}
}

func TestInspectionService_ZeroAreaBox(t *testing.T) {
	degenerate := entity.Rect{XMin: 10, YMin: 10, XMax: 10, YMax: 30}

	t.Run("rejected with floored baseline", func(t *testing.T) {
		f := newFixture(t, defaultConfig())
		f.req.Threshold = 0
		f.detector.boxes = []entity.CandidateBox{{Rect: degenerate, Confidence: 0.9, Label: "Faulty"}}

		report := f.svc.Run(context.Background(), f.req)
		require.Empty(t, report.Anomalies)
		require.Equal(t, entity.StatusNormal, report.OverallStatus)
	})

	t.Run("accepted when baseline is zero", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Baseline.Floor = 0
		f := newFixture(t, cfg)
		f.req.Threshold = 0.5
		f.detector.boxes = []entity.CandidateBox{{Rect: degenerate, Confidence: 0.9, Label: "Faulty"}}

		report := f.svc.Run(context.Background(), f.req)
		require.Len(t, report.Anomalies, 1)
		require.Equal(t, entity.StatusFaulty, report.OverallStatus)
	})
}

func TestInspectionService_Deterministic(t *testing.T) {
	f := newFixture(t, defaultConfig())
	box := entity.Rect{XMin: 10, YMin: 10, XMax: 30, YMax: 30}
	paint(f.frame.plane, box, 180)
	f.detector.boxes = []entity.CandidateBox{
		{Rect: box, Confidence: 0.7, Label: "Potentially Faulty"},
		{Rect: entity.Rect{XMin: 60, YMin: 60, XMax: 70, YMax: 70}, Confidence: 0.6, Label: "Faulty"},
	}

	first := f.svc.Run(context.Background(), f.req)
	second := f.svc.Run(context.Background(), f.req)
	require.Equal(t, first.OverallStatus, second.OverallStatus)
	require.Equal(t, first.Anomalies, second.Anomalies)
	require.Equal(t, first.OutputImageName, second.OutputImageName)
}

func TestInspectionService_MissingInput(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.req.BaselineImage = filepath.Join(t.TempDir(), "nope.jpg")

	report := f.svc.Run(context.Background(), f.req)

	require.Equal(t, entity.StatusUncertain, report.OverallStatus)
	require.Contains(t, report.Error, "image not found")
	require.Zero(t, f.detector.calls)
	require.NoDirExists(t, f.req.OutputDir)
}

func TestInspectionService_SetupFailure(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.detector.prepareErr = errors.New("weights file is corrupt")

	report := f.svc.Run(context.Background(), f.req)

	require.Equal(t, entity.StatusUncertain, report.OverallStatus)
	require.Contains(t, report.Error, "weights file is corrupt")
}

func TestInspectionService_OutputDirFailure(t *testing.T) {
	f := newFixture(t, defaultConfig())
	// каталог нельзя создать поверх обычного файла
	f.req.OutputDir = filepath.Join(f.req.InspectionImage, "out")

	report := f.svc.Run(context.Background(), f.req)
	require.Equal(t, entity.StatusUncertain, report.OverallStatus)
	require.Contains(t, report.Error, "model or path setup failed")
}

func TestInspectionService_DecodeFailure(t *testing.T) {
	f := newFixture(t, defaultConfig())
	svc := NewInspectionService(defaultConfig(), &stubCodec{frames: map[string]*stubFrame{
		f.req.BaselineImage: f.base,
	}}, f.detector, nil, logger.NewNop())

	report := svc.Run(context.Background(), f.req)
	require.Equal(t, entity.StatusUncertain, report.OverallStatus)
	require.Contains(t, report.Error, "could not read inspection image")
}

func TestInspectionService_DetectorFailures(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		f := newFixture(t, defaultConfig())
		f.detector.err = errors.New("inference crashed")
		report := f.svc.Run(context.Background(), f.req)
		require.Equal(t, entity.StatusUncertain, report.OverallStatus)
		require.Contains(t, report.Error, "inference crashed")
	})

	t.Run("timeout", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.DetectTimeout = 20 * time.Millisecond
		f := newFixture(t, cfg)
		f.detector.block = true
		report := f.svc.Run(context.Background(), f.req)
		require.Equal(t, entity.StatusUncertain, report.OverallStatus)
		require.Contains(t, report.Error, context.DeadlineExceeded.Error())
	})

	t.Run("panic", func(t *testing.T) {
		f := newFixture(t, defaultConfig())
		f.detector.panicMsg = "index out of range"
		report := f.svc.Run(context.Background(), f.req)
		require.Equal(t, entity.StatusUncertain, report.OverallStatus)
		require.Contains(t, report.Error, "index out of range")
	})

	t.Run("not configured", func(t *testing.T) {
		f := newFixture(t, defaultConfig())
		svc := NewInspectionService(defaultConfig(), &stubCodec{}, nil, nil, logger.NewNop())
		report := svc.Run(context.Background(), f.req)
		require.Equal(t, entity.StatusUncertain, report.OverallStatus)
		require.Contains(t, report.Error, "detector is not configured")
	})
}

func TestInspectionService_RecordsRuns(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.base.masked = repeat(90, 10)

	report := f.svc.Run(context.Background(), f.req)

	rec, err := f.repo.Get(context.Background(), "run-1")
	require.NoError(t, err)
	require.Equal(t, report, rec.Report)
	require.Equal(t, 90, rec.BaselineIntensity)
	require.Equal(t, f.req, rec.Request)
	require.Equal(t, pinned, rec.DetectedAt)
}
