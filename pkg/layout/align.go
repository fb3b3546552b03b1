package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/ritzau/dotedit/pkg/geometry"
	"github.com/ritzau/dotedit/pkg/model"
)

// Alignment is one of the axis alignments.
type Alignment int

const (
	Left Alignment = iota
	Right
	Top
	Bottom
	CenterHorizontal // same x, halfway between the outermost centres
	CenterVertical   // same y, halfway between the outermost centres
)

var alignmentNames = [...]string{"left", "right", "top", "bottom", "center-horizontal", "center-vertical"}

func (a Alignment) String() string {
	if a < 0 || int(a) >= len(alignmentNames) {
		return fmt.Sprintf("Alignment(%d)", int(a))
	}
	return alignmentNames[a]
}

// ToolName returns the registry name of the alignment tool.
func (a Alignment) ToolName() string {
	switch a {
	case Left:
		return AlignLeft
	case Right:
		return AlignRight
	case Top:
		return AlignTop
	case Bottom:
		return AlignBottom
	case CenterHorizontal:
		return AlignCenterHorizontal
	case CenterVertical:
		return AlignCenterVertical
	}
	return ""
}

// ParseAlignment accepts the names printed by String, case-insensitively.
func ParseAlignment(s string) (Alignment, error) {
	for i, name := range alignmentNames {
		if strings.EqualFold(s, name) {
			return Alignment(i), nil
		}
	}
	return 0, fmt.Errorf("unknown alignment %q", s)
}

// Align moves the given nodes so that the matching side, or centre, of their
// rendered boxes lines up. The orthogonal coordinate is left alone.
func Align(nodes []*model.Node, boxes BoxQuerier, op Alignment) {
	if len(nodes) == 0 {
		return
	}

	switch op {
	case Left:
		l := math.Inf(1)
		for _, n := range nodes {
			l = math.Min(l, boxes.BBox(n).Left())
		}
		for _, n := range nodes {
			p := n.Position()
			n.SetPosition(geometry.Pt(l+boxes.BBox(n).Width/2, p.Y))
		}
	case Right:
		r := math.Inf(-1)
		for _, n := range nodes {
			r = math.Max(r, boxes.BBox(n).Right())
		}
		for _, n := range nodes {
			p := n.Position()
			n.SetPosition(geometry.Pt(r-boxes.BBox(n).Width/2, p.Y))
		}
	case Top:
		t := math.Inf(1)
		for _, n := range nodes {
			t = math.Min(t, boxes.BBox(n).Top())
		}
		for _, n := range nodes {
			p := n.Position()
			n.SetPosition(geometry.Pt(p.X, t+boxes.BBox(n).Height/2))
		}
	case Bottom:
		b := math.Inf(-1)
		for _, n := range nodes {
			b = math.Max(b, boxes.BBox(n).Bottom())
		}
		for _, n := range nodes {
			p := n.Position()
			n.SetPosition(geometry.Pt(p.X, b-boxes.BBox(n).Height/2))
		}
	case CenterHorizontal:
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, n := range nodes {
			lo, hi = math.Min(lo, n.Position().X), math.Max(hi, n.Position().X)
		}
		mid := lo + (hi-lo)/2
		for _, n := range nodes {
			n.SetPosition(geometry.Pt(mid, n.Position().Y))
		}
	case CenterVertical:
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, n := range nodes {
			lo, hi = math.Min(lo, n.Position().Y), math.Max(hi, n.Position().Y)
		}
		mid := lo + (hi-lo)/2
		for _, n := range nodes {
			n.SetPosition(geometry.Pt(n.Position().X, mid))
		}
	}
}

// AlignTool applies one alignment to the selected nodes.
type AlignTool struct {
	Op  Alignment
	ctx Context
}

func (t *AlignTool) Init(ctx Context) bool {
	t.ctx = ctx
	return ctx.View != nil && ctx.Selection != nil
}

func (t *AlignTool) DoLayout() {
	Align(t.ctx.Selection.Nodes(), t.ctx.View, t.Op)
}
