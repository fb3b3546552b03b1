// Package editor ties a graph, its view and its selection together and
// implements the editing modes on top of them.
package editor

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ritzau/dotedit/pkg/document"
	"github.com/ritzau/dotedit/pkg/geometry"
	"github.com/ritzau/dotedit/pkg/layout"
	"github.com/ritzau/dotedit/pkg/logging"
	"github.com/ritzau/dotedit/pkg/model"
	"github.com/ritzau/dotedit/pkg/pubsub"
	"github.com/ritzau/dotedit/pkg/selection"
	"github.com/ritzau/dotedit/pkg/stencil"
	"github.com/ritzau/dotedit/pkg/view"
)

// Mode decides what a click on the canvas does.
type Mode int

const (
	Select Mode = iota
	AddNode
	AddEdge
	Remove
)

var modeNames = [...]string{"select", "add-node", "add-edge", "remove"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// ParseMode maps a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return Select, fmt.Errorf("unknown mode %q", s)
}

// Config sets up a new editor.
type Config struct {
	Viewport    geometry.Size
	Spring      layout.SpringOptions
	NodeStencil string
	EdgeStencil string
}

// DefaultConfig uses the default viewport, spring options and stencils.
func DefaultConfig() Config {
	return Config{
		Viewport:    view.DefaultViewport,
		Spring:      layout.DefaultSpringOptions(),
		NodeStencil: model.DefaultNodeStencil,
		EdgeStencil: model.DefaultEdgeStencil,
	}
}

// Editor is one editable diagram. It is not safe for concurrent use.
type Editor struct {
	graph     *model.Graph
	stencils  *stencil.Registry
	view      *view.View
	sel       *selection.Manager
	dragger   *selection.Dragger
	layouts   *layout.Registry
	inspector *Inspector

	header      document.Header
	mode        Mode
	nodeStencil string
	edgeStencil string
	edgeStart   *model.Node
	defaults    [2]string

	tokens []pubsub.Token
}

// New creates an empty editor drawing with reg.
func New(reg *stencil.Registry, cfg Config) (*Editor, error) {
	if cfg.Viewport.Width <= 0 || cfg.Viewport.Height <= 0 {
		cfg.Viewport = view.DefaultViewport
	}
	if cfg.NodeStencil == "" {
		cfg.NodeStencil = model.DefaultNodeStencil
	}
	if cfg.EdgeStencil == "" {
		cfg.EdgeStencil = model.DefaultEdgeStencil
	}

	g := model.New(model.WithCatalog(reg))
	if err := g.SetDefaultStencils(cfg.NodeStencil, cfg.EdgeStencil); err != nil {
		return nil, err
	}

	e := &Editor{
		graph:       g,
		stencils:    reg,
		view:        view.New(g, reg, view.WithViewport(cfg.Viewport)),
		nodeStencil: cfg.NodeStencil,
		edgeStencil: cfg.EdgeStencil,
		defaults:    [2]string{cfg.NodeStencil, cfg.EdgeStencil},
	}
	e.sel = selection.New(g, e.view)
	e.view.Attach(e.sel)
	e.dragger = selection.NewDragger(e.sel, e.view)
	e.layouts = layout.DefaultRegistry(layout.Context{Graph: g, View: e.view, Selection: e.sel}, cfg.Spring)
	e.inspector = newInspector(g, e.sel, reg)

	e.tokens = []pubsub.Token{
		e.sel.Subscribe(selection.Click, func(_ any, ev selection.Event) { e.click(ev) }),
		g.Subscribe(model.Removed, func(_ any, ev model.Event) {
			if n := ev.Node(); n != nil && n == e.edgeStart {
				e.edgeStart = nil
			}
		}),
		g.Subscribe(model.NewGraph, func(_ any, _ model.Event) { e.edgeStart = nil }),
	}
	return e, nil
}

// Close detaches every component from the graph.
func (e *Editor) Close() {
	e.sel.Unsubscribe(e.tokens[0])
	for _, t := range e.tokens[1:] {
		e.graph.Unsubscribe(t)
	}
	e.inspector.close()
	e.dragger.Close()
	e.view.Close()
	e.sel.Close()
}

func (e *Editor) Graph() *model.Graph           { return e.graph }
func (e *Editor) View() *view.View              { return e.view }
func (e *Editor) Selection() *selection.Manager { return e.sel }
func (e *Editor) Layouts() *layout.Registry     { return e.layouts }
func (e *Editor) Inspector() *Inspector         { return e.inspector }
func (e *Editor) Stencils() *stencil.Registry   { return e.stencils }
func (e *Editor) Header() document.Header       { return e.header }
func (e *Editor) SetHeader(h document.Header)   { e.header = h }
func (e *Editor) Mode() Mode                    { return e.mode }
func (e *Editor) NodeStencil() string           { return e.nodeStencil }
func (e *Editor) EdgeStencil() string           { return e.edgeStencil }
func (e *Editor) PendingEdgeStart() *model.Node { return e.edgeStart }
func (e *Editor) Press(p selection.Pointer)     { e.sel.Press(p) }
func (e *Editor) Move(p selection.Pointer)      { e.sel.Move(p) }
func (e *Editor) Release(p selection.Pointer)   { e.sel.Release(p) }
func (e *Editor) Render(w io.Writer) error      { return e.view.Render(w) }
func (e *Editor) SetViewport(s geometry.Size)   { e.view.SetViewport(s) }

// SetMode switches the click behaviour. Leaving add-edge drops a pending
// start node, and every mode other than select turns selection off so
// that clicks reach the editor.
func (e *Editor) SetMode(m Mode) {
	if m == e.mode {
		return
	}
	logging.Debug("editor mode", "from", e.mode, "to", m)
	e.mode = m
	e.edgeStart = nil
	if m == Select {
		e.sel.SetPolicy(selection.DefaultPolicy())
	} else {
		e.sel.SetPolicy(selection.Policy{})
	}
}

// SetNodeStencil picks the stencil for nodes created from now on.
func (e *Editor) SetNodeStencil(name string) error {
	if !e.stencils.HasNodeStencil(name) {
		return fmt.Errorf("node stencil %q: %w", name, model.ErrUnknownStencil)
	}
	e.nodeStencil = name
	return nil
}

// SetEdgeStencil picks the stencil for edges created from now on.
func (e *Editor) SetEdgeStencil(name string) error {
	if !e.stencils.HasEdgeStencil(name) {
		return fmt.Errorf("edge stencil %q: %w", name, model.ErrUnknownStencil)
	}
	e.edgeStencil = name
	return nil
}

func (e *Editor) click(ev selection.Event) {
	switch e.mode {
	case AddNode:
		if _, err := e.AddNode("", ev.Point); err != nil {
			logging.Warn("add node failed", "error", err)
		}
	case AddEdge:
		n, ok := ev.Element.(*model.Node)
		if !ok {
			return
		}
		if e.edgeStart == nil {
			e.edgeStart = n
			return
		}
		src := e.edgeStart
		e.edgeStart = nil
		if _, err := e.AddEdge(src, n); err != nil {
			logging.Warn("add edge failed", "error", err)
		}
	case Remove:
		switch el := ev.Element.(type) {
		case *model.Node:
			e.graph.RemoveNode(el)
		case *model.Edge:
			e.graph.RemoveEdge(el)
		}
	}
}

// CancelEdge forgets the start node of an edge being created.
func (e *Editor) CancelEdge() { e.edgeStart = nil }

// AddNode creates a node at p with the current node stencil. An empty name
// is replaced by a generated one. Listeners see a single created event with
// the node fully set up.
func (e *Editor) AddNode(name string, p geometry.Point) (*model.Node, error) {
	var n *model.Node
	var err error
	e.graph.Silently(func() {
		n, err = e.graph.CreateNode(name)
		if err != nil {
			return
		}
		n.SetStencil(e.nodeStencil)
		n.SetPosition(p)
	})
	if err != nil {
		return nil, err
	}
	e.graph.Emit(model.Created, n)
	return n, nil
}

// AddEdge connects src to dst with the current edge stencil.
func (e *Editor) AddEdge(src, dst *model.Node) (*model.Edge, error) {
	var ed *model.Edge
	var err error
	e.graph.Silently(func() {
		ed, err = e.graph.CreateEdge(src, dst)
		if err != nil {
			return
		}
		ed.SetStencil(e.edgeStencil)
	})
	if err != nil {
		return nil, err
	}
	e.graph.Emit(model.Created, ed)
	return ed, nil
}

// RemoveSelected removes every selected element. It reports whether there
// was anything to remove.
func (e *Editor) RemoveSelected() bool {
	els := e.sel.Selection()
	if len(els) == 0 {
		return false
	}
	for _, el := range els {
		switch el := el.(type) {
		case *model.Node:
			e.graph.RemoveNode(el)
		case *model.Edge:
			e.graph.RemoveEdge(el)
		}
	}
	return true
}

// Align lines up the selected nodes.
func (e *Editor) Align(op layout.Alignment) error {
	return e.layouts.Run(op.ToolName())
}

// Layout runs the named layout tool.
func (e *Editor) Layout(name string) error {
	return e.layouts.Run(name)
}

// Clear empties the graph and forgets the document header.
func (e *Editor) Clear() {
	e.clearGraph()
	e.header = document.Header{}
}

// clearGraph empties the graph and puts back the configured default
// stencils, which Graph.Clear resets.
func (e *Editor) clearGraph() {
	e.graph.Clear()
	if err := e.graph.SetDefaultStencils(e.defaults[0], e.defaults[1]); err != nil {
		logging.Warn("restoring default stencils", "error", err)
	}
}

// Import reads a document from r and merges it into the graph, clearing the
// graph first when clear is set. A rejected document leaves the graph as it
// was.
func (e *Editor) Import(r io.Reader, clear bool) error {
	doc, err := document.Read(r)
	if err != nil {
		return err
	}
	return e.ImportDocument(doc, clear)
}

// ImportDocument is Import for an already parsed document.
func (e *Editor) ImportDocument(doc *document.Document, clear bool) error {
	if err := document.Validate(doc); err != nil {
		return err
	}
	if clear {
		e.clearGraph()
		e.header = doc.Header()
	}
	if err := document.Import(e.graph, doc); err != nil {
		return err
	}
	logging.Debug("document imported", "name", doc.Name, "nodes", len(doc.Nodes), "edges", len(doc.Edges), "clear", clear)
	return nil
}

// Export writes the graph as a document.
func (e *Editor) Export(w io.Writer) error {
	return document.Write(w, document.Export(e.graph, e.header))
}

// ErrNotFound is returned when a named element does not exist.
var ErrNotFound = errors.New("no such element")

// LookupNode returns the named node.
func (e *Editor) LookupNode(name string) (*model.Node, error) {
	if n := e.graph.Node(name); n != nil {
		return n, nil
	}
	return nil, fmt.Errorf("node %q: %w", name, ErrNotFound)
}

// LookupEdge returns the edge with the given id.
func (e *Editor) LookupEdge(id int) (*model.Edge, error) {
	if ed := e.graph.Edge(id); ed != nil {
		return ed, nil
	}
	return nil, fmt.Errorf("edge %d: %w", id, ErrNotFound)
}
