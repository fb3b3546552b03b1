// Package layout holds the tools that rearrange node positions: the axis
// alignments applied to the selected nodes, the spring embedder and the
// fit-to-viewport pass. Tools read rendered sizes through a BoxQuerier and
// write positions only through the graph model.
package layout

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ritzau/dotedit/pkg/geometry"
	"github.com/ritzau/dotedit/pkg/logging"
	"github.com/ritzau/dotedit/pkg/model"
)

// Tool names understood by the default registry.
const (
	Spring                = "Layout.Spring"
	Center                = "Layout.Center"
	AlignLeft             = "Align.Left"
	AlignRight            = "Align.Right"
	AlignTop              = "Align.Top"
	AlignBottom           = "Align.Bottom"
	AlignCenterHorizontal = "Align.CenterHorizontal"
	AlignCenterVertical   = "Align.CenterVertical"
)

var (
	ErrUnknownTool  = errors.New("unknown layout tool")
	ErrToolNotReady = errors.New("layout tool not ready")
)

// BoxQuerier reports the rendered size of elements and the visible area.
type BoxQuerier interface {
	BBox(el model.Element) geometry.Rect
	Viewport() geometry.Size
}

// NodeSelection is the part of a selection the alignment tools read.
type NodeSelection interface {
	Nodes() []*model.Node
}

// Context is what a tool works on.
type Context struct {
	Graph     *model.Graph
	View      BoxQuerier
	Selection NodeSelection
}

// Tool is a named layout strategy. Init reports whether the tool can run in
// the given context; DoLayout then moves nodes through the graph.
type Tool interface {
	Init(ctx Context) bool
	DoLayout()
}

// Factory creates a fresh, uninitialised tool.
type Factory func() Tool

// Registry maps tool names to factories and keeps one initialised instance
// per name.
type Registry struct {
	factories map[string]Factory
	order     []string
	ctx       Context
	ready     map[string]Tool
}

// NewRegistry creates an empty registry whose tools are initialised with ctx.
func NewRegistry(ctx Context) *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		ctx:       ctx,
		ready:     make(map[string]Tool),
	}
}

// DefaultRegistry registers the spring embedder, the fit-to-viewport tool
// and the six alignments.
func DefaultRegistry(ctx Context, opts SpringOptions) *Registry {
	r := NewRegistry(ctx)
	r.MustRegister(Spring, func() Tool { return NewSpringEmbedder(opts) })
	r.MustRegister(Center, func() Tool { return &FitTool{} })
	for _, op := range []Alignment{Left, Right, Top, Bottom, CenterHorizontal, CenterVertical} {
		r.MustRegister(op.ToolName(), func() Tool { return &AlignTool{Op: op} })
	}
	return r
}

// Register adds a factory under name.
func (r *Registry) Register(name string, f Factory) error {
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("layout tool %q already registered", name)
	}
	r.factories[name] = f
	r.order = append(r.order, name)
	return nil
}

// MustRegister is Register for built-in tools.
func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string { return slices.Clone(r.order) }

// Get returns the initialised tool called name, creating and initialising it
// on first use.
func (r *Registry) Get(name string) (Tool, error) {
	if t, ok := r.ready[name]; ok {
		return t, nil
	}
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	t := f()
	if !t.Init(r.ctx) {
		return nil, fmt.Errorf("%w: %s", ErrToolNotReady, name)
	}
	r.ready[name] = t
	return t, nil
}

// Run looks up name and applies it.
func (r *Registry) Run(name string) error {
	t, err := r.Get(name)
	if err != nil {
		return err
	}
	logging.Debug("running layout tool", "tool", name, "nodes", r.ctx.Graph.NodeCount())
	t.DoLayout()
	return nil
}
