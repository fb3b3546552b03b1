package web

import (
	"bytes"
	"errors"
	"maps"
	"net/http"
	"slices"

	"github.com/gorilla/mux"

	"github.com/ritzau/dotedit/pkg/document"
	"github.com/ritzau/dotedit/pkg/editor"
	"github.com/ritzau/dotedit/pkg/geometry"
	"github.com/ritzau/dotedit/pkg/layout"
	"github.com/ritzau/dotedit/pkg/model"
	"github.com/ritzau/dotedit/pkg/pubsub"
	"github.com/ritzau/dotedit/pkg/selection"
	"github.com/ritzau/dotedit/pkg/topology"
)

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doc := document.Export(s.editor.Graph(), s.editor.Header())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := document.Read(r.Body)
	if err != nil {
		writeDocumentError(w, err)
		return
	}
	reset := r.URL.Query().Get("clear") == "true"

	s.mu.Lock()
	err = s.editor.ImportDocument(doc, reset)
	nodes, edges := s.editor.Graph().NodeCount(), s.editor.Graph().EdgeCount()
	s.mu.Unlock()

	if err != nil {
		writeDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"nodes": nodes, "edges": edges})
}

// writeDocumentError reports import failures as 422 with their code.
func writeDocumentError(w http.ResponseWriter, err error) {
	code := document.CodeOf(err)
	if code == "" {
		writeError(w, http.StatusBadRequest, "import failed", err)
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, apiError{Code: string(code), Message: err.Error()})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.editor.Clear()
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// elementPatch holds the editable fields of a node or edge. Absent fields
// are left alone.
type elementPatch struct {
	Label    *document.Label `json:"label"`
	Stencil  *string         `json:"stencil"`
	Position *[2]float64     `json:"position"`
	Data     map[string]any  `json:"userData"`
}

func (p *elementPatch) validate(s *Server, el model.Element) error {
	if p.Stencil == nil {
		return nil
	}
	known := s.editor.Stencils().HasEdgeStencil
	if _, ok := el.(*model.Node); ok {
		known = s.editor.Stencils().HasNodeStencil
	}
	if !known(*p.Stencil) {
		return model.ErrUnknownStencil
	}
	return nil
}

func (p *elementPatch) apply(el model.Element) {
	if p.Label != nil {
		el.SetLabel(p.Label.ToModel())
	}
	if p.Stencil != nil {
		el.SetStencil(*p.Stencil)
	}
	for _, k := range slices.Sorted(maps.Keys(p.Data)) {
		el.SetData(k, p.Data[k])
	}
	if n, ok := el.(*model.Node); ok && p.Position != nil {
		n.SetPosition(geometry.Pt(p.Position[0], p.Position[1]))
	}
}

type createNodeRequest struct {
	Name string `json:"name"`
	elementPatch
}

func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	var req createNodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad node", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := req.validate(s, &model.Node{}); err != nil {
		writeError(w, http.StatusBadRequest, "bad node", err)
		return
	}
	var p geometry.Point
	if req.Position != nil {
		p = geometry.Pt(req.Position[0], req.Position[1])
	}
	n, err := s.editor.AddNode(req.Name, p)
	if errors.Is(err, model.ErrDuplicateName) {
		writeError(w, http.StatusConflict, "node exists", err)
		return
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, "create failed", err)
		return
	}
	req.Position = nil
	req.apply(n)
	writeJSON(w, http.StatusCreated, document.ExportNode(n))
}

func (s *Server) handlePatchNode(w http.ResponseWriter, r *http.Request) {
	var patch elementPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "bad patch", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.editor.LookupNode(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, http.StatusNotFound, "not found", err)
		return
	}
	if err := patch.validate(s, n); err != nil {
		writeError(w, http.StatusBadRequest, "bad patch", err)
		return
	}
	patch.apply(n)
	writeJSON(w, http.StatusOK, document.ExportNode(n))
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.editor.LookupNode(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, http.StatusNotFound, "not found", err)
		return
	}
	s.editor.Graph().RemoveNode(n)
	w.WriteHeader(http.StatusNoContent)
}

// edgeJSON is an edge entry plus its id, which documents do not carry.
type edgeJSON struct {
	ID int `json:"id"`
	document.Edge
}

func exportEdge(e *model.Edge) edgeJSON {
	return edgeJSON{ID: e.ID(), Edge: document.ExportEdge(e)}
}

type createEdgeRequest struct {
	Src string `json:"src"`
	Dst string `json:"dst"`
	elementPatch
}

func (s *Server) handleCreateEdge(w http.ResponseWriter, r *http.Request) {
	var req createEdgeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad edge", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.editor.LookupNode(req.Src)
	if err != nil {
		writeError(w, http.StatusNotFound, "bad source", err)
		return
	}
	dst, err := s.editor.LookupNode(req.Dst)
	if err != nil {
		writeError(w, http.StatusNotFound, "bad destination", err)
		return
	}
	if err := req.validate(s, &model.Edge{}); err != nil {
		writeError(w, http.StatusBadRequest, "bad edge", err)
		return
	}
	e, err := s.editor.AddEdge(src, dst)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "create failed", err)
		return
	}
	req.Position = nil
	req.apply(e)
	writeJSON(w, http.StatusCreated, exportEdge(e))
}

func (s *Server) handlePatchEdge(w http.ResponseWriter, r *http.Request) {
	var patch elementPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "bad patch", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.editor.LookupEdge(edgeID(r))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found", err)
		return
	}
	if err := patch.validate(s, e); err != nil {
		writeError(w, http.StatusBadRequest, "bad patch", err)
		return
	}
	patch.apply(e)
	writeJSON(w, http.StatusOK, exportEdge(e))
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.editor.LookupEdge(edgeID(r))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found", err)
		return
	}
	s.editor.Graph().RemoveEdge(e)
	w.WriteHeader(http.StatusNoContent)
}

type pointerRequest struct {
	Action   string  `json:"action"` // press, move or release
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Modifier bool    `json:"modifier"`
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad pointer event", err)
		return
	}
	p := selection.Pointer{Point: geometry.Pt(req.X, req.Y), Modifier: req.Modifier}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Action {
	case "press":
		s.editor.Press(p)
	case "move":
		s.editor.Move(p)
	case "release":
		s.editor.Release(p)
	default:
		writeError(w, http.StatusBadRequest, "unknown pointer action "+req.Action, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.selectionState())
}

type modeRequest struct {
	Mode        string `json:"mode"`
	NodeStencil string `json:"nodeStencil,omitempty"`
	EdgeStencil string `json:"edgeStencil,omitempty"`
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad mode", err)
		return
	}
	mode, err := editor.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad mode", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.NodeStencil != "" {
		if err := s.editor.SetNodeStencil(req.NodeStencil); err != nil {
			writeError(w, http.StatusBadRequest, "bad mode", err)
			return
		}
	}
	if req.EdgeStencil != "" {
		if err := s.editor.SetEdgeStencil(req.EdgeStencil); err != nil {
			writeError(w, http.StatusBadRequest, "bad mode", err)
			return
		}
	}
	s.editor.SetMode(mode)
	writeJSON(w, http.StatusOK, modeRequest{
		Mode:        s.editor.Mode().String(),
		NodeStencil: s.editor.NodeStencil(),
		EdgeStencil: s.editor.EdgeStencil(),
	})
}

// selectionState is what a client needs to draw the inspector.
type selectionState struct {
	Summary string              `json:"summary"`
	Members []pubsub.ElementRef `json:"members"`
	Form    *editor.Form        `json:"form,omitempty"`
}

func (s *Server) selectionState() selectionState {
	in := s.editor.Inspector()
	state := selectionState{Summary: in.Summary(), Members: members(s.editor.Selection())}
	if f, ok := in.Form(); ok {
		state.Form = &f
	}
	return state
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.selectionState())
}

func (s *Server) handleDeleteSelection(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.RemoveSelected()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAlign(w http.ResponseWriter, r *http.Request) {
	op, err := layout.ParseAlignment(mux.Vars(r)["op"])
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown alignment", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runTool(w, func() error { return s.editor.Align(op) })
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["tool"]

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runTool(w, func() error { return s.editor.Layout(name) })
}

func (s *Server) runTool(w http.ResponseWriter, run func() error) {
	switch err := run(); {
	case errors.Is(err, layout.ErrUnknownTool):
		writeError(w, http.StatusNotFound, "layout failed", err)
	case errors.Is(err, layout.ErrToolNotReady):
		writeError(w, http.StatusConflict, "layout failed", err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, "layout failed", err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	s.mu.Lock()
	err := s.editor.Render(&buf)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render failed", err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(buf.Bytes())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	report := topology.Analyze(s.editor.Graph(), s.editor.Stencils())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, report)
}
