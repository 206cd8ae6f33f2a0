package diagram

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFileJSON(t *testing.T) {
	d, err := ReadFile("testdata/order.json")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(d.Nodes) != 3 || len(d.Edges) != 2 {
		t.Fatalf("ReadFile() = %d nodes, %d edges", len(d.Nodes), len(d.Edges))
	}
	if d.Name() != "order" || d.Metadata.WorkflowVersion != "1.2" {
		t.Errorf("Metadata = %+v", d.Metadata)
	}
	if d.Nodes[0].Description() != "Entry point" {
		t.Errorf("Description() = %q", d.Nodes[0].Description())
	}
	if d.Edges[1].Label != "total" {
		t.Errorf("edge label = %q", d.Edges[1].Label)
	}
}

func TestReadFileYAML(t *testing.T) {
	d, err := ReadFile("testdata/order.yaml")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(d.Nodes) != 2 || d.Nodes[1].Type != "timer" {
		t.Errorf("ReadFile() = %+v", d.Nodes)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", `{nodes`},
		{"missing edges", `{"nodes": []}`},
		{"node without label", `{"nodes": [{"id": "a", "type": "step"}], "edges": []}`},
		{"edge wrong type", `{"nodes": [], "edges": [{"from": 1, "to": "a", "type": "calls"}]}`},
		{"metadata without name", `{"nodes": [], "edges": [], "metadata": {}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.in)); !errors.Is(err, ErrInvalidDiagram) {
				t.Errorf("Parse() error = %v, want %v", err, ErrInvalidDiagram)
			}
		})
	}
}

func TestParseKeepsUnknownTypes(t *testing.T) {
	in := `{"nodes": [{"id": "a", "type": "decision", "label": "x", "extra": 1}], "edges": [], "version": 3}`
	d, err := Parse([]byte(in))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if d.Nodes[0].Type != "decision" {
		t.Errorf("Type = %q", d.Nodes[0].Type)
	}
}

func TestEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, threeNodes()); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	d, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(d.Nodes) != 3 {
		t.Errorf("Decode() = %+v", d)
	}
}

func TestReadFileBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("nodes: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ReadFile(path)
	if !errors.Is(err, ErrInvalidDiagram) || !strings.Contains(err.Error(), "bad.yml") {
		t.Errorf("ReadFile() error = %v", err)
	}
}
