package vision

import (
	"fmt"
	"image"
)

// yoloCandidate сырая детекция до подавления пересечений
type yoloCandidate struct {
	Box        image.Rectangle
	Confidence float32
	ClassID    int
}

// decodeYOLO разбирает выход YOLOv8 формы [1, 4+nc, anchors]: для каждого якоря
// cx, cy, w, h во входных координатах сети и по одной оценке на класс.
// Координаты переводятся в пиксели исходного снимка через scaleX и scaleY.
func decodeYOLO(data []float32, rows, anchors int, scaleX, scaleY float64, minConfidence float32) ([]yoloCandidate, error) {
	if rows < 5 {
		return nil, fmt.Errorf("unexpected model output: %d rows", rows)
	}
	if len(data) < rows*anchors {
		return nil, fmt.Errorf("unexpected model output: %d values for %dx%d", len(data), rows, anchors)
	}

	at := func(row, anchor int) float32 { return data[row*anchors+anchor] }

	var out []yoloCandidate
	for i := 0; i < anchors; i++ {
		best, classID := float32(0), -1
		for c := 4; c < rows; c++ {
			if s := at(c, i); s > best {
				best, classID = s, c-4
			}
		}
		if classID < 0 || best < minConfidence {
			continue
		}

		cx, cy := float64(at(0, i)), float64(at(1, i))
		w, h := float64(at(2, i)), float64(at(3, i))
		out = append(out, yoloCandidate{
			Box: image.Rect(
				int((cx-w/2)*scaleX),
				int((cy-h/2)*scaleY),
				int((cx+w/2)*scaleX),
				int((cy+h/2)*scaleY),
			),
			Confidence: best,
			ClassID:    classID,
		})
	}
	return out, nil
}
