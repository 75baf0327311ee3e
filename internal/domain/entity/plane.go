package entity

import "fmt"

// Plane один 8-битный канал изображения (строки подряд)
type Plane struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewPlane создаёт плоскость заданного размера
func NewPlane(width, height int) *Plane {
	return &Plane{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// At возвращает значение пикселя
func (p *Plane) At(x, y int) uint8 {
	return p.Pix[y*p.Width+x]
}

// Set записывает значение пикселя
func (p *Plane) Set(x, y int, v uint8) {
	p.Pix[y*p.Width+x] = v
}

// Crop копирует значения внутри прямоугольника, обрезанного по границам плоскости.
func (p *Plane) Crop(r Rect) []uint8 {
	r = r.Clip(p.Width, p.Height)
	if r.Empty() {
		return nil
	}
	out := make([]uint8, 0, (r.XMax-r.XMin)*(r.YMax-r.YMin))
	for y := r.YMin; y < r.YMax; y++ {
		row := p.Pix[y*p.Width : (y+1)*p.Width]
		out = append(out, row[r.XMin:r.XMax]...)
	}
	return out
}

// ColorSpace пространство, в котором применяется цветовое окно (8-битные соглашения OpenCV)
type ColorSpace string

const (
	SpaceBGR ColorSpace = "bgr" // исходные каналы B, G, R
	SpaceHSV ColorSpace = "hsv" // H 0-179, S и V 0-255
	SpaceLab ColorSpace = "lab" // L*255/100, a+128, b+128
)

// ParseColorSpace проверяет название пространства
func ParseColorSpace(s string) (ColorSpace, error) {
	switch ColorSpace(s) {
	case SpaceBGR, SpaceHSV, SpaceLab:
		return ColorSpace(s), nil
	}
	return "", fmt.Errorf("unknown color space %q", s)
}

// ColorWindow включающий диапазон по трём каналам
type ColorWindow struct {
	Space ColorSpace
	Lower [3]uint8
	Upper [3]uint8
}

// Contains проверяет попадание пикселя в окно (как cv2.inRange)
func (w ColorWindow) Contains(px [3]uint8) bool {
	for i := 0; i < 3; i++ {
		if px[i] < w.Lower[i] || px[i] > w.Upper[i] {
			return false
		}
	}
	return true
}
