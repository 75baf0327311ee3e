package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"thermal-inspector/internal/domain/entity"
	"thermal-inspector/internal/domain/port"
)

const sidecarSuffix = ".detections.json"

// sidecarFile результат внешнего инференса, сохранённый рядом со снимком
type sidecarFile struct {
	Names      map[int]string     `json:"names,omitempty"`
	Detections []sidecarDetection `json:"detections"`
}

type sidecarDetection struct {
	Box        [4]float64 `json:"box"` // x_min, y_min, x_max, y_max
	Confidence float64    `json:"confidence"`
	ClassID    int        `json:"class_id"`
	Label      string     `json:"label,omitempty"`
}

// FileDetector читает готовые детекции из {stem}.detections.json
type FileDetector struct {
	Dir           string  // каталог с файлами; пусто: каталог снимка
	NamesPath     string  // data.yaml; отсутствующий файл допустим
	MinConfidence float64 // порог уверенности адаптера

	names Names
}

// NewFileDetector создаёт детектор на файлах детекций
func NewFileDetector(dir, namesPath string, minConfidence float64) *FileDetector {
	return &FileDetector{Dir: dir, NamesPath: namesPath, MinConfidence: minConfidence}
}

// SidecarPath путь к файлу детекций для снимка
func (d *FileDetector) SidecarPath(imagePath string) string {
	dir := d.Dir
	if dir == "" {
		dir = filepath.Dir(imagePath)
	}
	base := filepath.Base(imagePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+sidecarSuffix)
}

// Prepare загружает таблицу имён, если она есть
func (d *FileDetector) Prepare(ctx context.Context) error {
	if d.NamesPath == "" || d.names != nil {
		return nil
	}
	names, err := LoadNames(d.NamesPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	d.names = names
	return nil
}

// Detect возвращает детекции из файла в исходном порядке, отбрасывая слабые.
func (d *FileDetector) Detect(ctx context.Context, imagePath string) ([]entity.CandidateBox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.Prepare(ctx); err != nil {
		return nil, err
	}

	path := d.SidecarPath(imagePath)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read detections: %w", err)
	}
	var file sidecarFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse detections %s: %w", path, err)
	}

	boxes := make([]entity.CandidateBox, 0, len(file.Detections))
	for _, det := range file.Detections {
		if det.Confidence < d.MinConfidence {
			continue
		}
		boxes = append(boxes, entity.CandidateBox{
			Rect: entity.Rect{
				XMin: int(det.Box[0]),
				YMin: int(det.Box[1]),
				XMax: int(det.Box[2]),
				YMax: int(det.Box[3]),
			},
			Confidence: det.Confidence,
			ClassID:    det.ClassID,
			Label:      d.label(file.Names, det),
		})
	}
	return boxes, nil
}

func (d *FileDetector) label(fileNames map[int]string, det sidecarDetection) string {
	if det.Label != "" {
		return det.Label
	}
	if l, ok := fileNames[det.ClassID]; ok {
		return l
	}
	return d.names.Label(det.ClassID)
}

var (
	_ port.Detector = (*FileDetector)(nil)
	_ port.Preparer = (*FileDetector)(nil)
)
