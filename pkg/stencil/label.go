package stencil

import (
	svg "github.com/ajstarks/svgo"

	"github.com/ritzau/dotedit/pkg/geometry"
	"github.com/ritzau/dotedit/pkg/model"
)

// LabelStencil measures and draws one kind of label.
type LabelStencil interface {
	Kind() model.LabelKind
	Size(m Measurer, l *model.Label) geometry.Size
	Draw(c *svg.SVG, center geometry.Point, l *model.Label, attrs ...string)
}

type plainLabel struct{}

// Plain draws the label value as a single centred line of text.
func Plain() LabelStencil { return plainLabel{} }

func (plainLabel) Kind() model.LabelKind { return model.LabelPlain }

func (plainLabel) Size(m Measurer, l *model.Label) geometry.Size {
	if l == nil || l.Value == "" {
		return geometry.Size{}
	}
	return m.Measure(l.Value)
}

func (plainLabel) Draw(c *svg.SVG, center geometry.Point, l *model.Label, attrs ...string) {
	if l == nil || l.Value == "" {
		return
	}
	attrs = append([]string{`text-anchor="middle"`, `dominant-baseline="central"`}, attrs...)
	c.Text(px(center.X), px(center.Y), l.Value, attrs...)
}
