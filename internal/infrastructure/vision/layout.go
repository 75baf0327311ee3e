package vision

import (
	"image"
	"image/color"
	"strconv"
)

// Цвета отметок по серьёзности
var (
	ColorFaulty    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	ColorPotential = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	ColorNormal    = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	ColorLabelText = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

const (
	outlineThickness = 2
	labelGap         = 10 // отступ подписи над прямоугольником
	labelPadding     = 5
)

// SeverityColor возвращает цвет отметки для серьёзности
func SeverityColor(severity int) color.RGBA {
	switch severity {
	case 2:
		return ColorFaulty
	case 1:
		return ColorPotential
	default:
		return ColorNormal
	}
}

// LabelText текст подписи отметки
func LabelText(id int) string {
	return strconv.Itoa(id)
}

// LabelLayout фон подписи и точка начала базовой линии текста
type LabelLayout struct {
	Background image.Rectangle
	Origin     image.Point
}

// PlaceLabel ставит подпись над прямоугольником. Если сверху не хватает места,
// подпись опускается под верхнюю кромку прямоугольника.
func PlaceLabel(box image.Rectangle, textWidth, textHeight, baseline int) LabelLayout {
	y := box.Min.Y - labelGap
	if y < textHeight+labelPadding {
		y = box.Min.Y + textHeight + labelPadding
	}
	return LabelLayout{
		Background: image.Rect(box.Min.X, y-textHeight-labelPadding, box.Min.X+textWidth+labelPadding, y+baseline),
		Origin:     image.Pt(box.Min.X+2, y-2),
	}
}
