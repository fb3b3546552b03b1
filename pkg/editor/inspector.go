package editor

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ritzau/dotedit/pkg/model"
	"github.com/ritzau/dotedit/pkg/pubsub"
	"github.com/ritzau/dotedit/pkg/selection"
	"github.com/ritzau/dotedit/pkg/stencil"
)

// ErrNoSingleSelection is returned by the Apply methods unless exactly one
// element is selected.
var ErrNoSingleSelection = errors.New("exactly one element must be selected")

// Form holds the editable values of the single selected element.
type Form struct {
	Kind     string         `json:"kind"` // "node" or "edge"
	Name     string         `json:"name"` // node name or edge id
	Label    string         `json:"label"`
	Stencil  string         `json:"stencil"`
	Stencils []string       `json:"stencils"`
	Data     map[string]any `json:"data,omitempty"`
}

// Inspector follows the selection and keeps a summary of it, plus the form
// values when a single element is selected.
type Inspector struct {
	graph    *model.Graph
	sel      *selection.Manager
	stencils *stencil.Registry

	summary string
	form    *Form

	graphTokens []pubsub.Token
	selToken    pubsub.Token
}

func newInspector(g *model.Graph, sel *selection.Manager, reg *stencil.Registry) *Inspector {
	in := &Inspector{graph: g, sel: sel, stencils: reg}
	in.selToken = sel.Subscribe(selection.Changed, func(_ any, _ selection.Event) { in.Refresh() })
	in.graphTokens = []pubsub.Token{
		g.Subscribe(model.Changed, func(_ any, e model.Event) {
			if in.inspecting(e.Element) {
				in.Refresh()
			}
		}),
		g.Subscribe(model.Removed, func(_ any, _ model.Event) { in.Refresh() }),
		g.Subscribe(model.NewGraph, func(_ any, _ model.Event) { in.Refresh() }),
	}
	in.Refresh()
	return in
}

func (in *Inspector) close() {
	in.sel.Unsubscribe(in.selToken)
	for _, t := range in.graphTokens {
		in.graph.Unsubscribe(t)
	}
}

func (in *Inspector) inspecting(el model.Element) bool {
	if in.sel.Len() != 1 {
		return false
	}
	return in.sel.Selection()[0] == el
}

// Summary describes the selection in one sentence.
func (in *Inspector) Summary() string { return in.summary }

// Form returns the values of the single selected element.
func (in *Inspector) Form() (Form, bool) {
	if in.form == nil {
		return Form{}, false
	}
	return *in.form, true
}

// Refresh recomputes the summary and form from the current selection.
func (in *Inspector) Refresh() {
	in.form = nil
	els := in.sel.Selection()
	switch len(els) {
	case 0:
		in.summary = "Nothing selected."
	case 1:
		in.summary, in.form = single(els[0], in.stencils)
	default:
		in.summary = countSummary(len(in.sel.Nodes()), len(in.sel.Edges()))
	}
}

func single(el model.Element, reg *stencil.Registry) (string, *Form) {
	f := &Form{Stencil: el.Stencil()}
	if l := el.Label(); l != nil {
		f.Label = l.Value
	}
	if keys := el.DataKeys(); len(keys) > 0 {
		f.Data = make(map[string]any, len(keys))
		for _, k := range keys {
			f.Data[k], _ = el.Data(k)
		}
	}

	var summary string
	switch el := el.(type) {
	case *model.Node:
		f.Kind, f.Name = "node", el.Name()
		f.Stencils = reg.NodeNames()
		summary = fmt.Sprintf("Node %q.", el.Name())
	case *model.Edge:
		f.Kind, f.Name = "edge", strconv.Itoa(el.ID())
		f.Stencils = reg.EdgeNames()
		summary = fmt.Sprintf("Edge %q.", f.Name)
	}
	return summary, f
}

func countSummary(nodes, edges int) string {
	plural := func(n int, word string) string {
		if n == 1 {
			return "1 " + word
		}
		return strconv.Itoa(n) + " " + word + "s"
	}
	switch {
	case edges == 0:
		return plural(nodes, "node") + " selected."
	case nodes == 0:
		return plural(edges, "edge") + " selected."
	}
	return plural(nodes, "node") + " and " + plural(edges, "edge") + " selected."
}

func (in *Inspector) target() (model.Element, error) {
	if in.sel.Len() != 1 {
		return nil, ErrNoSingleSelection
	}
	return in.sel.Selection()[0], nil
}

// ApplyLabel sets the plain label of the selected element. An empty value
// removes the label.
func (in *Inspector) ApplyLabel(value string) error {
	el, err := in.target()
	if err != nil {
		return err
	}
	if value == "" {
		el.SetLabel(nil)
	} else {
		el.SetLabel(model.PlainLabel(value))
	}
	return nil
}

// ApplyStencil changes the stencil of the selected element.
func (in *Inspector) ApplyStencil(name string) error {
	el, err := in.target()
	if err != nil {
		return err
	}
	known := in.stencils.HasEdgeStencil
	if _, ok := el.(*model.Node); ok {
		known = in.stencils.HasNodeStencil
	}
	if !known(name) {
		return fmt.Errorf("%s stencil %q: %w", el, name, model.ErrUnknownStencil)
	}
	el.SetStencil(name)
	return nil
}

// ApplyData stores a user data value on the selected element.
func (in *Inspector) ApplyData(key string, value any) error {
	el, err := in.target()
	if err != nil {
		return err
	}
	el.SetData(key, value)
	return nil
}
