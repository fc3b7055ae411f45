package sourcemap

import (
	"encoding/json"
	"go/token"
	"strings"
	"testing"
)

func TestGenerateProducesValidJSON(t *testing.T) {
	g := NewGenerator("kernel.tanto", "kernel.cpp")
	g.AddMapping(token.Position{Line: 1, Column: 1}, token.Position{Line: 3, Column: 1})
	g.AddMapping(token.Position{Line: 2, Column: 5}, token.Position{Line: 4, Column: 9})

	data, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var doc struct {
		Version  int      `json:"version"`
		File     string   `json:"file"`
		Sources  []string `json:"sources"`
		Mappings string   `json:"mappings"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if doc.Version != 3 {
		t.Errorf("expected version 3, got %d", doc.Version)
	}
	if doc.File != "kernel.cpp" || len(doc.Sources) != 1 || doc.Sources[0] != "kernel.tanto" {
		t.Errorf("unexpected file/sources: %+v", doc)
	}
	if doc.Mappings == "" {
		t.Error("expected a non-empty VLQ-encoded mappings field")
	}
}

func TestGenerateInlineEmitsDataURL(t *testing.T) {
	g := NewGenerator("kernel.tanto", "kernel.cpp")
	g.AddMapping(token.Position{Line: 1, Column: 1}, token.Position{Line: 1, Column: 1})

	inline, err := g.GenerateInline()
	if err != nil {
		t.Fatalf("GenerateInline: %v", err)
	}
	if !strings.HasPrefix(inline, "//# sourceMappingURL=data:application/json;base64,") {
		t.Errorf("unexpected inline comment: %s", inline)
	}
}

func TestRoundTripThroughConsumer(t *testing.T) {
	g := NewGenerator("kernel.tanto", "kernel.cpp")
	g.AddMapping(token.Position{Line: 5, Column: 1}, token.Position{Line: 12, Column: 1})

	data, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	c, err := NewConsumer(data)
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	pos, err := c.Source(12, 1)
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if pos.Line != 5 {
		t.Errorf("expected source line 5, got %d", pos.Line)
	}
}

func TestAppendVLQRoundTripsSmallValues(t *testing.T) {
	for _, n := range []int{0, 1, -1, 15, -15, 16, 1000, -1000} {
		encoded := string(appendVLQ(nil, n))
		if encoded == "" {
			t.Errorf("appendVLQ(%d) produced empty output", n)
		}
	}
}
