//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"thermal-inspector/internal/domain/entity"
	"thermal-inspector/internal/domain/port"
)

const (
	labelFont      = gocv.FontHersheySimplex
	labelFontScale = 0.7
	labelThickness = 2
)

// Codec читает и пишет изображения через OpenCV
type Codec struct{}

// NewCodec создаёт кодек на gocv.
func NewCodec() *Codec {
	return &Codec{}
}

// Open читает файл в BGR
func (c *Codec) Open(path string) (port.Frame, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return nil, errors.New("failed to decode image")
	}
	return &Frame{mat: mat}, nil
}

// Frame изображение в gocv.Mat
type Frame struct {
	mat gocv.Mat
	lab []*entity.Plane
}

func (f *Frame) Size() (int, int) {
	return f.mat.Cols(), f.mat.Rows()
}

// labPlanes считает Lab один раз на кадр
func (f *Frame) labPlanes() []*entity.Plane {
	if f.lab != nil {
		return f.lab
	}
	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(f.mat, &lab, gocv.ColorBGRToLab)

	channels := gocv.Split(lab)
	planes := make([]*entity.Plane, 0, len(channels))
	for i := range channels {
		planes = append(planes, matToPlane(channels[i]))
		channels[i].Close()
	}
	f.lab = planes
	return planes
}

func matToPlane(m gocv.Mat) *entity.Plane {
	return &entity.Plane{Width: m.Cols(), Height: m.Rows(), Pix: m.ToBytes()}
}

func (f *Frame) Intensity(channel int) (*entity.Plane, error) {
	planes := f.labPlanes()
	if channel < 0 || channel >= len(planes) {
		return nil, fmt.Errorf("lab channel %d out of range", channel)
	}
	return planes[channel], nil
}

func (f *Frame) MaskedIntensity(window entity.ColorWindow, channel int) ([]uint8, error) {
	plane, err := f.Intensity(channel)
	if err != nil {
		return nil, err
	}

	src := f.mat
	switch window.Space {
	case entity.SpaceHSV, entity.SpaceLab:
		code := gocv.ColorBGRToHSV
		if window.Space == entity.SpaceLab {
			code = gocv.ColorBGRToLab
		}
		converted := gocv.NewMat()
		defer converted.Close()
		gocv.CvtColor(f.mat, &converted, code)
		src = converted
	}

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(src, scalar(window.Lower), scalar(window.Upper), &mask)

	var out []uint8
	for i, v := range mask.ToBytes() {
		if v != 0 {
			out = append(out, plane.Pix[i])
		}
	}
	return out, nil
}

func scalar(v [3]uint8) gocv.Scalar {
	return gocv.NewScalar(float64(v[0]), float64(v[1]), float64(v[2]), 0)
}

func (f *Frame) Draw(marks []entity.Mark) error {
	for _, m := range marks {
		col := SeverityColor(m.Severity)
		box := m.Rect.Image()
		gocv.Rectangle(&f.mat, box, col, outlineThickness)

		text := LabelText(m.ID)
		size, baseline := gocv.GetTextSizeWithBaseline(text, labelFont, labelFontScale, labelThickness)
		layout := PlaceLabel(box, size.X, size.Y, baseline)
		gocv.Rectangle(&f.mat, layout.Background, col, -1)
		gocv.PutTextWithParams(&f.mat, text, layout.Origin, labelFont, labelFontScale, ColorLabelText, labelThickness, gocv.LineAA, false)
	}
	return nil
}

func (f *Frame) Save(path string) error {
	if !gocv.IMWrite(path, f.mat) {
		return fmt.Errorf("failed to write image %s", path)
	}
	return nil
}

func (f *Frame) Close() {
	f.mat.Close()
}

var _ port.ImageCodec = (*Codec)(nil)

// imageSize размер кадра в виде точки
func imageSize(m gocv.Mat) image.Point {
	return image.Pt(m.Cols(), m.Rows())
}
