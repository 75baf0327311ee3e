//go:build !gocv
// +build !gocv

package vision

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// lab8 переводит sRGB в 8-битный Lab по соглашению OpenCV: L*255/100, a+128, b+128.
func lab8(r, g, b uint8) [3]uint8 {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	l, a, bb := c.Lab()
	return [3]uint8{saturate(l * 255), saturate(a*100 + 128), saturate(bb*100 + 128)}
}

// hsv8 переводит sRGB в 8-битный HSV по соглашению OpenCV: H 0-179, S и V 0-255.
func hsv8(r, g, b uint8) [3]uint8 {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, s, v := c.Hsv()
	hue := math.Round(h / 2)
	if hue >= 180 {
		hue -= 180
	}
	return [3]uint8{uint8(hue), saturate(s * 255), saturate(v * 255)}
}

func saturate(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
