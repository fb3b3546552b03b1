// Package stencil provides the named visual styles nodes and edges refer to.
//
// The model stores only stencil names. A Registry resolves them when the view
// draws, falling back to the first registered stencil of the right sort when
// a name is unknown.
package stencil

import (
	"fmt"

	"github.com/ritzau/dotedit/pkg/geometry"
	"github.com/ritzau/dotedit/pkg/logging"
	"github.com/ritzau/dotedit/pkg/model"
)

// Registry holds the stencils available to one view or editor.
type Registry struct {
	measurer Measurer

	nodeNames  []string
	nodes      map[string]NodeStencil
	edgeNames  []string
	edges      map[string]EdgeStencil
	labelKinds []model.LabelKind
	labels     map[model.LabelKind]LabelStencil
}

// NewRegistry creates an empty registry measuring labels with m.
func NewRegistry(m Measurer) *Registry {
	return &Registry{
		measurer: m,
		nodes:    make(map[string]NodeStencil),
		edges:    make(map[string]EdgeStencil),
		labels:   make(map[model.LabelKind]LabelStencil),
	}
}

// Default returns a registry with the built-in stencils. circle and line come
// first, so they are the fallbacks.
func Default(m Measurer) *Registry {
	r := NewRegistry(m)
	for _, s := range []NodeStencil{Circle(), Box(), Hexagon(), ConcaveHexagon()} {
		r.RegisterNode(s)
	}
	for _, s := range []EdgeStencil{Line(), DirectedLine(), BidiLine()} {
		r.RegisterEdge(s)
	}
	r.RegisterLabel(Plain())
	return r
}

// Measurer returns the measurer used for labels.
func (r *Registry) Measurer() Measurer { return r.measurer }

// RegisterNode adds a node stencil. Names are unique.
func (r *Registry) RegisterNode(s NodeStencil) error {
	if _, ok := r.nodes[s.Name()]; ok {
		return fmt.Errorf("node stencil %q already registered", s.Name())
	}
	r.nodes[s.Name()] = s
	r.nodeNames = append(r.nodeNames, s.Name())
	return nil
}

// RegisterEdge adds an edge stencil. Names are unique.
func (r *Registry) RegisterEdge(s EdgeStencil) error {
	if _, ok := r.edges[s.Name()]; ok {
		return fmt.Errorf("edge stencil %q already registered", s.Name())
	}
	r.edges[s.Name()] = s
	r.edgeNames = append(r.edgeNames, s.Name())
	return nil
}

// RegisterLabel adds a label stencil. Kinds are unique.
func (r *Registry) RegisterLabel(s LabelStencil) error {
	if _, ok := r.labels[s.Kind()]; ok {
		return fmt.Errorf("label stencil %q already registered", s.Kind())
	}
	r.labels[s.Kind()] = s
	r.labelKinds = append(r.labelKinds, s.Kind())
	return nil
}

// HasNodeStencil reports whether name is a registered node stencil.
func (r *Registry) HasNodeStencil(name string) bool {
	_, ok := r.nodes[name]
	return ok
}

// HasEdgeStencil reports whether name is a registered edge stencil.
func (r *Registry) HasEdgeStencil(name string) bool {
	_, ok := r.edges[name]
	return ok
}

// NodeNames lists node stencils in registration order.
func (r *Registry) NodeNames() []string { return append([]string(nil), r.nodeNames...) }

// EdgeNames lists edge stencils in registration order.
func (r *Registry) EdgeNames() []string { return append([]string(nil), r.edgeNames...) }

// ResolveNode returns the stencil called name, or the first registered node
// stencil. It returns nil only for an empty registry.
func (r *Registry) ResolveNode(name string) NodeStencil {
	if s, ok := r.nodes[name]; ok {
		return s
	}
	if len(r.nodeNames) == 0 {
		return nil
	}
	logging.Debug("unknown node stencil, using fallback", "stencil", name, "fallback", r.nodeNames[0])
	return r.nodes[r.nodeNames[0]]
}

// ResolveEdge returns the stencil called name, or the first registered edge
// stencil.
func (r *Registry) ResolveEdge(name string) EdgeStencil {
	if s, ok := r.edges[name]; ok {
		return s
	}
	if len(r.edgeNames) == 0 {
		return nil
	}
	logging.Debug("unknown edge stencil, using fallback", "stencil", name, "fallback", r.edgeNames[0])
	return r.edges[r.edgeNames[0]]
}

// ResolveLabel returns the stencil for kind, or the first registered one.
func (r *Registry) ResolveLabel(kind model.LabelKind) LabelStencil {
	if s, ok := r.labels[kind]; ok {
		return s
	}
	if len(r.labelKinds) == 0 {
		return nil
	}
	return r.labels[r.labelKinds[0]]
}

// LabelSize measures l with its label stencil. A nil label has no size.
func (r *Registry) LabelSize(l *model.Label) geometry.Size {
	if l == nil {
		return geometry.Size{}
	}
	s := r.ResolveLabel(l.Kind)
	if s == nil {
		return geometry.Size{}
	}
	return s.Size(r.measurer, l)
}

var _ model.StencilCatalog = (*Registry)(nil)
