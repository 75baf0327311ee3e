package entity

import "image"

// Rect прямоугольник кандидата в пиксельных координатах (x_max и y_max не включаются)
type Rect struct {
	XMin int `json:"x_min"`
	YMin int `json:"y_min"`
	XMax int `json:"x_max"`
	YMax int `json:"y_max"`
}

// Empty сообщает, что у прямоугольника нулевая площадь
func (r Rect) Empty() bool {
	return r.XMax <= r.XMin || r.YMax <= r.YMin
}

// Clip обрезает прямоугольник по границам изображения width x height
func (r Rect) Clip(width, height int) Rect {
	return Rect{
		XMin: clamp(r.XMin, 0, width),
		YMin: clamp(r.YMin, 0, height),
		XMax: clamp(r.XMax, 0, width),
		YMax: clamp(r.YMax, 0, height),
	}
}

// Image переводит прямоугольник в image.Rectangle
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.XMin, r.YMin, r.XMax, r.YMax)
}

// CandidateBox область, которую предложил детектор
type CandidateBox struct {
	Rect       Rect    // координаты области
	Confidence float64 // уверенность детектора, [0,1]
	ClassID    int     // номер класса в таблице имён модели
	Label      string  // имя класса
}

// Mark одна отметка на аннотированном изображении
type Mark struct {
	ID       int
	Rect     Rect
	Severity int
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
