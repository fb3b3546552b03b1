package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ritzau/dotedit/pkg/document"
	"github.com/ritzau/dotedit/pkg/topology"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

const cyclic = `{"name":"demo","nodes":["a","b","c"],
	"edges":[{"src":"a","dst":"b"},{"src":"b","dst":"a"},{"src":"c","dst":"c","stencil":"wavy"}]}`

func TestInfoJSON(t *testing.T) {
	path := writeDoc(t, cyclic)
	out, err := execute(t, "info", path, "--json")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	var report topology.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if report.Nodes != 3 || len(report.Cycles) != 1 || len(report.SelfLoops) != 1 || len(report.Unresolved) != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestLayoutWritesDocument(t *testing.T) {
	path := writeDoc(t, `{"nodes":[{"name":"a","position":[0,0]},{"name":"b","position":[300,90]}],"edges":[]}`)
	out, err := execute(t, "layout", path, "Align.Left", "--all", "-o", "-")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	doc, err := document.Parse([]byte(out))
	if err != nil {
		t.Fatalf("output is not a document: %v", err)
	}
	if doc.Nodes[0].Position[0] != doc.Nodes[1].Position[0] {
		t.Errorf("x positions differ after Align.Left: %v %v", doc.Nodes[0].Position, doc.Nodes[1].Position)
	}
}

func TestRenderToStdout(t *testing.T) {
	path := writeDoc(t, cyclic)
	out, err := execute(t, "render", path)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "<svg") {
		t.Errorf("output is not SVG: %.80s", out)
	}
}

func TestRejectsBadDocument(t *testing.T) {
	path := writeDoc(t, `{"nodes":["a"],"edges":[{"src":"a","dst":"b"}]}`)
	_, err := execute(t, "info", path)
	if !document.Is(err, document.CodeDanglingEdge) {
		t.Errorf("err = %v, want DANGLING_EDGE", err)
	}
	if _, err := execute(t, "render"); err == nil {
		t.Error("render without a document should fail")
	}
}
