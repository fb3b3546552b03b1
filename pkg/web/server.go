// Package web serves one editor over HTTP and streams its events to
// browsers with Server-Sent Events.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/ritzau/dotedit/pkg/editor"
	"github.com/ritzau/dotedit/pkg/logging"
	"github.com/ritzau/dotedit/pkg/model"
	"github.com/ritzau/dotedit/pkg/pubsub"
	"github.com/ritzau/dotedit/pkg/selection"
)

// Server represents the web server
type Server struct {
	// mu serialises every access to the editor, which is single threaded.
	mu        sync.Mutex
	editor    *editor.Editor
	router    *mux.Router
	publisher pubsub.Publisher

	graphToken pubsub.Token
	selToken   pubsub.Token
}

// NewServer creates a server for ed. Graph and selection events of ed are
// published to the graph and selection topics.
func NewServer(ed *editor.Editor) *Server {
	ssePublisher := pubsub.NewSSEPublisher()

	// graph: buffer the last event so a client that joins late learns the
	// current counts straight away
	ssePublisher.ConfigureTopic(pubsub.TopicGraph, pubsub.TopicConfig{
		BufferSize: 1,
		ReplayAll:  false,
	})
	ssePublisher.ConfigureTopic(pubsub.TopicSelection, pubsub.TopicConfig{
		BufferSize: 1,
		ReplayAll:  false,
	})

	s := &Server{
		editor:    ed,
		router:    mux.NewRouter(),
		publisher: ssePublisher,
	}
	s.graphToken = ed.Graph().SubscribeAll(func(_ any, e model.Event) { s.publishGraph(e) })
	s.selToken = ed.Selection().SubscribeAll(func(_ any, e selection.Event) { s.publishSelection(e) })
	s.setupRoutes()
	return s
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

// Do runs fn with exclusive access to the editor. Anything outside the
// request handlers that touches the editor, such as a file watcher, must go
// through Do.
func (s *Server) Do(fn func(ed *editor.Editor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.editor)
}

// Close stops publishing and ends all subscriptions.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.Graph().Unsubscribe(s.graphToken)
	s.editor.Selection().Unsubscribe(s.selToken)
	return s.publisher.Close()
}

func elementRef(el model.Element) *pubsub.ElementRef {
	switch el := el.(type) {
	case *model.Node:
		return &pubsub.ElementRef{Kind: "node", Name: el.Name()}
	case *model.Edge:
		return &pubsub.ElementRef{Kind: "edge", ID: el.ID()}
	}
	return nil
}

func (s *Server) publishGraph(e model.Event) {
	g := s.editor.Graph()
	data := pubsub.GraphData{
		Element: elementRef(e.Element),
		Nodes:   g.NodeCount(),
		Edges:   g.EdgeCount(),
	}
	if n := e.Node(); n != nil && e.Kind == model.Moved {
		p := n.Position()
		data.Position = &[2]float64{p.X, p.Y}
	}
	if err := s.publisher.Publish(pubsub.TopicGraph, e.Kind.String(), data); err != nil {
		logging.Debug("graph event not published", "type", e.Kind, "error", err)
	}
}

func (s *Server) publishSelection(e selection.Event) {
	data := pubsub.SelectionData{
		Element:  elementRef(e.Element),
		Selected: e.Selected,
		Members:  members(s.editor.Selection()),
	}
	if err := s.publisher.Publish(pubsub.TopicSelection, e.Kind.String(), data); err != nil {
		logging.Debug("selection event not published", "type", e.Kind, "error", err)
	}
}

func members(sel *selection.Manager) []pubsub.ElementRef {
	refs := make([]pubsub.ElementRef, 0, sel.Len())
	for _, el := range sel.Selection() {
		refs = append(refs, *elementRef(el))
	}
	return refs
}

func (s *Server) setupRoutes() {
	// SSE subscription endpoint
	s.router.HandleFunc("/api/subscribe/{topic}", s.handleSubscribe).Methods("GET")

	s.router.HandleFunc("/api/document", s.handleGetDocument).Methods("GET")
	s.router.HandleFunc("/api/document", s.handlePutDocument).Methods("PUT")
	s.router.HandleFunc("/api/clear", s.handleClear).Methods("POST")

	s.router.HandleFunc("/api/nodes", s.handleCreateNode).Methods("POST")
	s.router.HandleFunc("/api/nodes/{name}", s.handlePatchNode).Methods("PATCH")
	s.router.HandleFunc("/api/nodes/{name}", s.handleDeleteNode).Methods("DELETE")
	s.router.HandleFunc("/api/edges", s.handleCreateEdge).Methods("POST")
	s.router.HandleFunc("/api/edges/{id:[0-9]+}", s.handlePatchEdge).Methods("PATCH")
	s.router.HandleFunc("/api/edges/{id:[0-9]+}", s.handleDeleteEdge).Methods("DELETE")

	s.router.HandleFunc("/api/pointer", s.handlePointer).Methods("POST")
	s.router.HandleFunc("/api/mode", s.handleMode).Methods("PUT")
	s.router.HandleFunc("/api/selection", s.handleSelection).Methods("GET")
	s.router.HandleFunc("/api/selection", s.handleDeleteSelection).Methods("DELETE")

	s.router.HandleFunc("/api/align/{op}", s.handleAlign).Methods("POST")
	s.router.HandleFunc("/api/layout/{tool}", s.handleLayout).Methods("POST")

	s.router.HandleFunc("/api/render.svg", s.handleRender).Methods("GET")
	s.router.HandleFunc("/api/stats", s.handleStats).Methods("GET")
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if topic != pubsub.TopicGraph && topic != pubsub.TopicSelection {
		writeError(w, http.StatusNotFound, "unknown topic", fmt.Errorf("%q", topic))
		return
	}

	// Create subscription
	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "subscription failed", err)
		return
	}
	defer sub.Close()

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*") // CORS support

	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	flush(w)

	// Stream events until the client goes away or the publisher closes
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.WarnContext(r.Context(), "error writing SSE event", "error", err)
				return
			}
			flush(w)
		}
	}
}

func flush(w http.ResponseWriter) {
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// apiError is the body of every failed API call.
type apiError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := apiError{Message: message}
	if err != nil {
		body.Message = message + ": " + err.Error()
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to encode response", "error", err)
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func edgeID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"]) // the route only matches digits
	return id
}

// Start serves on port until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logging.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	// SSE handlers only return once their subscriptions close.
	s.publisher.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
