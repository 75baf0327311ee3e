package entity

import (
	"encoding/json"
	"math"
	"time"
)

// AcceptedAnomaly кандидат, прошедший проверку превышения
type AcceptedAnomaly struct {
	ID            int     `json:"id"`             // порядковый номер в выдаче детектора, с 1
	Type          string  `json:"type"`           // имя класса
	Location      Rect    `json:"location"`       // координаты
	SeverityScore int     `json:"severity_score"` // 0, 1 или 2
	Confidence    float64 `json:"confidence"`     // уверенность детектора, 4 знака
}

// RoundConfidence округляет уверенность до 4 знаков после запятой
func RoundConfidence(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// ImageDimensions исходный размер инспектируемого изображения
type ImageDimensions struct {
	OriginalWidth  int `json:"original_width"`
	OriginalHeight int `json:"original_height"`
}

// Report итог одной инспекции
type Report struct {
	OverallStatus   OverallStatus     `json:"overall_status"`
	OutputImageName string            `json:"output_image_name,omitempty"`
	OutputImagePath string            `json:"output_image_path,omitempty"`
	Anomalies       []AcceptedAnomaly `json:"anomalies"`
	ImageDimensions *ImageDimensions  `json:"image_dimensions,omitempty"`
	Error           string            `json:"error,omitempty"`
}

// UncertainReport отчёт для неудачного запуска
func UncertainReport(err error) *Report {
	return &Report{OverallStatus: StatusUncertain, Error: err.Error()}
}

// MarshalJSON для UNCERTAIN оставляет только статус и текст ошибки.
func (r Report) MarshalJSON() ([]byte, error) {
	if r.OverallStatus == StatusUncertain {
		return json.Marshal(struct {
			Error         string        `json:"error"`
			OverallStatus OverallStatus `json:"overall_status"`
		}{Error: r.Error, OverallStatus: r.OverallStatus})
	}

	type plain Report
	p := plain(r)
	if p.Anomalies == nil {
		p.Anomalies = []AcceptedAnomaly{}
	}
	return json.Marshal(p)
}

// InspectionRequest входные данные одного запуска
type InspectionRequest struct {
	InspectionImage string  // путь к снимку инспекции
	BaselineImage   string  // путь к эталонному снимку
	OutputDir       string  // каталог для аннотированного снимка
	Threshold       float64 // доля, например 0.10 = 10%
}

// InspectionRecord сохранённый результат запуска
type InspectionRecord struct {
	RunID             string
	Request           InspectionRequest
	BaselineIntensity int
	Report            *Report
	DetectedAt        time.Time
}
