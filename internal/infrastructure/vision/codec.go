//go:build !gocv
// +build !gocv

package vision

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"thermal-inspector/internal/domain/entity"
	"thermal-inspector/internal/domain/port"
)

// Codec декодирует и сохраняет изображения без OpenCV
type Codec struct {
	JPEGQuality int
}

// NewCodec создаёт кодек на стандартных декодерах и golang.org/x/image.
func NewCodec() *Codec {
	return &Codec{JPEGQuality: 95}
}

// Open декодирует файл в RGBA
func (c *Codec) Open(path string) (port.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, errors.New("empty image")
	}

	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	return &Frame{img: rgba, quality: c.JPEGQuality}, nil
}

// Frame изображение в памяти
type Frame struct {
	img     *image.RGBA
	quality int
	lab     *[3]*entity.Plane
}

func (f *Frame) Size() (int, int) {
	b := f.img.Bounds()
	return b.Dx(), b.Dy()
}

// labPlanes считает Lab один раз на кадр
func (f *Frame) labPlanes() [3]*entity.Plane {
	if f.lab != nil {
		return *f.lab
	}
	w, h := f.Size()
	planes := [3]*entity.Plane{entity.NewPlane(w, h), entity.NewPlane(w, h), entity.NewPlane(w, h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := f.img.PixOffset(x, y)
			px := f.img.Pix[i : i+3 : i+3]
			lab := lab8(px[0], px[1], px[2])
			planes[0].Set(x, y, lab[0])
			planes[1].Set(x, y, lab[1])
			planes[2].Set(x, y, lab[2])
		}
	}
	f.lab = &planes
	return planes
}

func (f *Frame) Intensity(channel int) (*entity.Plane, error) {
	if channel < 0 || channel > 2 {
		return nil, fmt.Errorf("lab channel %d out of range", channel)
	}
	return f.labPlanes()[channel], nil
}

func (f *Frame) MaskedIntensity(window entity.ColorWindow, channel int) ([]uint8, error) {
	plane, err := f.Intensity(channel)
	if err != nil {
		return nil, err
	}
	lab := f.labPlanes()

	w, h := f.Size()
	var out []uint8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := f.img.PixOffset(x, y)
			r, g, b := f.img.Pix[i], f.img.Pix[i+1], f.img.Pix[i+2]

			var px [3]uint8
			switch window.Space {
			case entity.SpaceHSV:
				px = hsv8(r, g, b)
			case entity.SpaceLab:
				px = [3]uint8{lab[0].At(x, y), lab[1].At(x, y), lab[2].At(x, y)}
			default:
				px = [3]uint8{b, g, r}
			}
			if window.Contains(px) {
				out = append(out, plane.At(x, y))
			}
		}
	}
	return out, nil
}

func (f *Frame) Draw(marks []entity.Mark) error {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	textHeight := metrics.Ascent.Ceil()
	baseline := metrics.Descent.Ceil()

	for _, m := range marks {
		col := SeverityColor(m.Severity)
		box := m.Rect.Image()
		f.outline(box, col)

		text := LabelText(m.ID)
		textWidth := font.MeasureString(face, text).Ceil()
		layout := PlaceLabel(box, textWidth, textHeight, baseline)
		draw.Draw(f.img, layout.Background.Intersect(f.img.Bounds()), image.NewUniform(col), image.Point{}, draw.Src)

		d := &font.Drawer{
			Dst:  f.img,
			Src:  image.NewUniform(ColorLabelText),
			Face: face,
			Dot:  fixed.P(layout.Origin.X, layout.Origin.Y),
		}
		d.DrawString(text)
	}
	return nil
}

// outline рисует рамку толщиной outlineThickness внутрь от границы
func (f *Frame) outline(r image.Rectangle, col color.RGBA) {
	u := image.NewUniform(col)
	t := outlineThickness
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t),
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y),
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(f.img, e.Intersect(f.img.Bounds()), u, image.Point{}, draw.Src)
	}
}

// Save кодирует по расширению; при ошибке недописанный файл удаляется
func (f *Frame) Save(path string) error {
	encode, err := f.encoder(filepath.Ext(path))
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(out); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return out.Close()
}

func (f *Frame) encoder(ext string) (func(io.Writer) error, error) {
	switch strings.ToLower(ext) {
	case ".png":
		return func(w io.Writer) error { return png.Encode(w, f.img) }, nil
	case ".jpg", ".jpeg":
		return func(w io.Writer) error { return jpeg.Encode(w, f.img, &jpeg.Options{Quality: f.quality}) }, nil
	case ".tif", ".tiff":
		return func(w io.Writer) error { return tiff.Encode(w, f.img, nil) }, nil
	case ".bmp":
		return func(w io.Writer) error { return bmp.Encode(w, f.img) }, nil
	}
	return nil, fmt.Errorf("unsupported output format %q", ext)
}

func (f *Frame) Close() {}

var _ port.ImageCodec = (*Codec)(nil)
