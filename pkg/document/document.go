// Package document converts graphs to and from their JSON interchange form.
//
// A document looks like
//
//	{
//	  "name": "deps",
//	  "directed": true,
//	  "defaultNodeStencil": "box",
//	  "nodes": ["a", {"name": "b", "label": "B", "position": [10, 20]}],
//	  "edges": [{"src": "a", "dst": "b", "stencil": "directed line"}],
//	  "attributes": {}
//	}
//
// Nodes may be bare names. Labels may be bare strings or {"type", "value"}
// objects. Import reports one of three codes: CodeMalformed,
// CodeDuplicateName or CodeDanglingEdge.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ritzau/dotedit/pkg/model"
)

// Document is the interchange form of one graph.
type Document struct {
	Name               string         `json:"name,omitempty"`
	Directed           bool           `json:"directed"`
	DefaultNodeStencil string         `json:"defaultNodeStencil,omitempty"`
	DefaultEdgeStencil string         `json:"defaultEdgeStencil,omitempty"`
	Nodes              []Node         `json:"nodes"`
	Edges              []Edge         `json:"edges"`
	Attributes         map[string]any `json:"attributes,omitempty"`
}

// Header carries the document level fields the graph model does not keep.
type Header struct {
	Name       string
	Directed   bool
	Attributes map[string]any
}

// Header returns the document level fields of d.
func (d *Document) Header() Header {
	return Header{Name: d.Name, Directed: d.Directed, Attributes: d.Attributes}
}

// Node is one node entry.
type Node struct {
	Name     string         `json:"name"`
	Label    *Label         `json:"label,omitempty"`
	Position *[2]float64    `json:"position,omitempty"`
	Stencil  string         `json:"stencil,omitempty"`
	UserData map[string]any `json:"userData,omitempty"`
}

// UnmarshalJSON accepts a bare name as well as an object.
func (n *Node) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*n = Node{Name: name}
		return nil
	}
	type plain Node
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*n = Node(p)
	return nil
}

// Edge is one edge entry. Src and Dst are node names.
type Edge struct {
	Src      string         `json:"src"`
	Dst      string         `json:"dst"`
	Label    *Label         `json:"label,omitempty"`
	Stencil  string         `json:"stencil,omitempty"`
	UserData map[string]any `json:"userData,omitempty"`
}

// Label is a tagged label value.
type Label struct {
	Type  model.LabelKind `json:"type"`
	Value string          `json:"value"`
}

// UnmarshalJSON accepts a bare string as a plain label.
func (l *Label) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = Label{Type: model.LabelPlain, Value: s}
		return nil
	}
	type plain Label
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Type == "" {
		p.Type = model.LabelPlain
	}
	*l = Label(p)
	return nil
}

// ToModel converts l to a model label; nil stays nil.
func (l *Label) ToModel() *model.Label {
	if l == nil {
		return nil
	}
	return &model.Label{Kind: l.Type, Value: l.Value}
}

func fromModel(l *model.Label) *Label {
	if l == nil {
		return nil
	}
	return &Label{Type: l.Kind, Value: l.Value}
}

// Read parses a document. Input that is not JSON, or that lacks the node or
// edge list, fails with CodeMalformed.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return Parse(data)
}

// Parse is Read for a byte slice.
func Parse(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, newError(CodeMalformed, "empty document")
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, wrapError(CodeMalformed, err, "invalid document")
	}
	if doc.Nodes == nil || doc.Edges == nil {
		return nil, newError(CodeMalformed, "document needs both a nodes and an edges list")
	}
	return &doc, nil
}

// Write encodes doc as indented JSON.
func Write(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}
