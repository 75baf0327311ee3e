package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"thermal-inspector/internal/domain/entity"
	"thermal-inspector/internal/domain/port"
)

type stubFrame struct {
	plane   *entity.Plane
	masked  []uint8
	maskErr error
	saveErr error
	marks   []entity.Mark
	saved   string
	closed  bool
}

func (f *stubFrame) Size() (int, int) { return f.plane.Width, f.plane.Height }

func (f *stubFrame) Intensity(channel int) (*entity.Plane, error) { return f.plane, nil }

func (f *stubFrame) MaskedIntensity(entity.ColorWindow, int) ([]uint8, error) {
	return f.masked, f.maskErr
}

func (f *stubFrame) Draw(marks []entity.Mark) error {
	f.marks = append(f.marks, marks...)
	return nil
}

func (f *stubFrame) Save(path string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = path
	return nil
}

func (f *stubFrame) Close() { f.closed = true }

type stubCodec struct {
	frames map[string]*stubFrame
}

func (c *stubCodec) Open(path string) (port.Frame, error) {
	f, ok := c.frames[path]
	if !ok {
		return nil, errors.New("failed to decode image")
	}
	return f, nil
}

type stubDetector struct {
	boxes      []entity.CandidateBox
	err        error
	prepareErr error
	block      bool
	panicMsg   string
	calls      int
}

func (d *stubDetector) Detect(ctx context.Context, imagePath string) ([]entity.CandidateBox, error) {
	d.calls++
	if d.panicMsg != "" {
		panic(d.panicMsg)
	}
	if d.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return d.boxes, d.err
}

func (d *stubDetector) Prepare(ctx context.Context) error { return d.prepareErr }

func uniformPlane(w, h int, v uint8) *entity.Plane {
	p := entity.NewPlane(w, h)
	for i := range p.Pix {
		p.Pix[i] = v
	}
	return p
}

func paint(p *entity.Plane, r entity.Rect, v uint8) {
	for y := r.YMin; y < r.YMax; y++ {
		for x := r.XMin; x < r.XMax; x++ {
			p.Set(x, y, v)
		}
	}
}

func repeat(v uint8, n int) []uint8 {
	out := make([]uint8, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// touch создаёт пустой файл, чтобы прошла проверка существования
func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}
