package stencil

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ritzau/dotedit/pkg/geometry"
)

// Measurer reports the rendered size of a line of label text.
type Measurer interface {
	Measure(text string) geometry.Size
}

// DefaultFontSize is the label size, in points, used by the editor.
const DefaultFontSize = 12

// FontMeasurer measures text with the Go Regular font, which is also the
// font requested by rendered SVG.
type FontMeasurer struct {
	mu     sync.Mutex // font.Face is not safe for concurrent use
	face   font.Face
	height float64
}

// NewFontMeasurer loads Go Regular at the given point size (72 DPI, so one
// point is one drawing unit).
func NewFontMeasurer(size float64) (*FontMeasurer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return &FontMeasurer{face: face, height: toFloat(face.Metrics().Height)}, nil
}

func (m *FontMeasurer) Measure(text string) geometry.Size {
	m.mu.Lock()
	defer m.mu.Unlock()
	return geometry.Size{
		Width:  toFloat(font.MeasureString(m.face, text)),
		Height: m.height,
	}
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// FixedMeasurer gives every rune the same width. Useful where no font is
// wanted, such as tests.
type FixedMeasurer struct {
	CharWidth  float64
	LineHeight float64
}

func (m FixedMeasurer) Measure(text string) geometry.Size {
	return geometry.Size{
		Width:  float64(utf8.RuneCountInString(text)) * m.CharWidth,
		Height: m.LineHeight,
	}
}
