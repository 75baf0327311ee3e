package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"thermal-inspector/internal/domain/entity"
)

const envPrefix = "THERMAL"

// Config настройки конвейера; передаётся в компоненты при сборке
type Config struct {
	LogLevel string
	Detector DetectorConfig
	Filter   FilterConfig
	Severity entity.SeverityMap
	Output   OutputConfig
	ReportDB string // путь к sqlite; пусто: хранение в памяти
}

// DetectorConfig настройки адаптера детектора
type DetectorConfig struct {
	Mode          string        // onnx или file
	ModelPath     string        // ONNX-модель
	NamesPath     string        // data.yaml с именами классов
	DetectionsDir string        // каталог с *.detections.json, пусто: рядом со снимком
	MinConfidence float64       // порог уверенности на стороне адаптера
	NMSThreshold  float64       // порог IoU для подавления дублей
	InputSize     int           // сторона входа сети
	Timeout       time.Duration // ограничение на один вызов
}

// FilterConfig настройки эталона и проверки превышения
type FilterConfig struct {
	MaskWindow         entity.ColorWindow
	IntensityChannel   int
	BaselinePercentile float64
	BaselineFloor      int
	RegionProxy        string  // percentile или max
	RegionPercentile   float64 // для RegionProxy=percentile
	DeferenceScale     string  // fixed (делим на 255) или baseline (делим на эталон)
}

// OutputConfig настройки результата
type OutputConfig struct {
	Mode         string // name или path
	UniqueSuffix bool   // добавлять кусок идентификатора запуска в имя файла
}

// Load читает .env (если есть) и переменные окружения THERMAL_*.
func Load(envFiles ...string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	lower, err := parseTriplet(v.GetString("mask_lower"))
	if err != nil {
		return nil, fmt.Errorf("mask_lower: %w", err)
	}
	upper, err := parseTriplet(v.GetString("mask_upper"))
	if err != nil {
		return nil, fmt.Errorf("mask_upper: %w", err)
	}
	space, err := entity.ParseColorSpace(strings.ToLower(v.GetString("mask_space")))
	if err != nil {
		return nil, fmt.Errorf("mask_space: %w", err)
	}
	severity, err := parseSeverityMap(v.GetString("severity_map"))
	if err != nil {
		return nil, fmt.Errorf("severity_map: %w", err)
	}

	cfg := &Config{
		LogLevel: v.GetString("log_level"),
		Detector: DetectorConfig{
			Mode:          v.GetString("detector"),
			ModelPath:     v.GetString("model_path"),
			NamesPath:     v.GetString("names_path"),
			DetectionsDir: v.GetString("detections_dir"),
			MinConfidence: v.GetFloat64("min_confidence"),
			NMSThreshold:  v.GetFloat64("nms_threshold"),
			InputSize:     v.GetInt("input_size"),
			Timeout:       v.GetDuration("detect_timeout"),
		},
		Filter: FilterConfig{
			MaskWindow:         entity.ColorWindow{Space: space, Lower: lower, Upper: upper},
			IntensityChannel:   v.GetInt("intensity_channel"),
			BaselinePercentile: v.GetFloat64("baseline_percentile"),
			BaselineFloor:      v.GetInt("baseline_floor"),
			RegionProxy:        v.GetString("region_proxy"),
			RegionPercentile:   v.GetFloat64("region_percentile"),
			DeferenceScale:     v.GetString("deference_scale"),
		},
		Severity: severity,
		Output: OutputConfig{
			Mode:         v.GetString("output_mode"),
			UniqueSuffix: v.GetBool("unique_suffix"),
		},
		ReportDB: v.GetString("report_db"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("detector", "onnx")
	v.SetDefault("model_path", "./models/best.onnx")
	v.SetDefault("names_path", "./models/data.yaml")
	v.SetDefault("detections_dir", "")
	v.SetDefault("min_confidence", 0.5)
	v.SetDefault("nms_threshold", 0.45)
	v.SetDefault("input_size", 640)
	v.SetDefault("detect_timeout", "60s")
	v.SetDefault("mask_space", "bgr")
	v.SetDefault("mask_lower", "133,118,162")
	v.SetDefault("mask_upper", "82,207,20")
	v.SetDefault("intensity_channel", 0)
	v.SetDefault("baseline_percentile", 50)
	v.SetDefault("baseline_floor", 50)
	v.SetDefault("region_proxy", "percentile")
	v.SetDefault("region_percentile", 95)
	v.SetDefault("deference_scale", "fixed")
	v.SetDefault("severity_map", "Potentially Faulty:1,Faulty:2")
	v.SetDefault("output_mode", "name")
	v.SetDefault("unique_suffix", false)
	v.SetDefault("report_db", "")
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	switch c.Detector.Mode {
	case "onnx", "file":
	default:
		return fmt.Errorf("detector must be onnx or file, got %q", c.Detector.Mode)
	}
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		return errors.New("min_confidence must be in [0,1]")
	}
	if c.Detector.InputSize <= 0 {
		return errors.New("input_size must be positive")
	}
	if c.Filter.IntensityChannel < 0 || c.Filter.IntensityChannel > 2 {
		return errors.New("intensity_channel must be 0, 1 or 2")
	}
	if !validPercentile(c.Filter.BaselinePercentile) || !validPercentile(c.Filter.RegionPercentile) {
		return errors.New("percentiles must be in [0,100]")
	}
	if c.Filter.BaselineFloor < 0 || c.Filter.BaselineFloor > 255 {
		return errors.New("baseline_floor must be in [0,255]")
	}
	switch c.Filter.RegionProxy {
	case "percentile", "max":
	default:
		return fmt.Errorf("region_proxy must be percentile or max, got %q", c.Filter.RegionProxy)
	}
	switch c.Filter.DeferenceScale {
	case "fixed", "baseline":
	default:
		return fmt.Errorf("deference_scale must be fixed or baseline, got %q", c.Filter.DeferenceScale)
	}
	switch c.Output.Mode {
	case "name", "path":
	default:
		return fmt.Errorf("output_mode must be name or path, got %q", c.Output.Mode)
	}
	return nil
}

func validPercentile(p float64) bool {
	return p >= 0 && p <= 100
}

// parseTriplet разбирает "a,b,c" в три байта
func parseTriplet(s string) ([3]uint8, error) {
	var out [3]uint8
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return out, fmt.Errorf("expected 3 comma separated values, got %q", s)
	}
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return out, fmt.Errorf("value %q: %w", p, err)
		}
		out[i] = uint8(n)
	}
	return out, nil
}

// parseSeverityMap разбирает "Label:1,Other:2"
func parseSeverityMap(s string) (entity.SeverityMap, error) {
	m := entity.SeverityMap{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		idx := strings.LastIndex(item, ":")
		if idx <= 0 {
			return nil, fmt.Errorf("entry %q is not label:score", item)
		}
		score, err := strconv.Atoi(strings.TrimSpace(item[idx+1:]))
		if err != nil || score < 0 || score > 2 {
			return nil, fmt.Errorf("entry %q: score must be 0, 1 or 2", item)
		}
		m[strings.TrimSpace(item[:idx])] = score
	}
	return m, nil
}
