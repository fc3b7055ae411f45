package mathinit

import (
	"strings"
	"testing"

	"github.com/tenstorrent/ronin-sub003/internal/graph"
	"github.com/tenstorrent/ronin-sub003/internal/tool"
)

func buildGraph(t *testing.T, src string) (*tool.Unit, *graph.Graph) {
	t.Helper()
	u, err := tool.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g, err := graph.NewBuilder().Build(u)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return u, g
}

func TestApplyInsertsInitBeforeFirstUse(t *testing.T) {
	src := `package k

func kernel(a math, b math, c math) {
	a.add(b, c)
}
`
	u, g := buildGraph(t, src)
	out, err := Apply(u, g)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "__unpack_binary_init(") {
		t.Errorf("expected unpack init call, got:\n%s", text)
	}
	if !strings.Contains(text, "__add_init(") {
		t.Errorf("expected math init call, got:\n%s", text)
	}
	if strings.Index(text, "__unpack_binary_init(") > strings.Index(text, "a.add(b, c)") {
		t.Errorf("init call must precede its use, got:\n%s", text)
	}
}

func TestApplyNoInsertionWithoutBuiltinCall(t *testing.T) {
	src := `package k

func kernel(a math) {
	var x int
	_ = x
}
`
	u, g := buildGraph(t, src)
	out, err := Apply(u, g)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if strings.Contains(string(out), "_init(") {
		t.Errorf("expected no init insertions, got:\n%s", out)
	}
}

func TestCombineLattice(t *testing.T) {
	none := None()
	undef := Undef()
	concrete := New(InitAdd, []Arg{{Param: 0, Value: ArgUndef, Code: "a"}})
	sameConcrete := New(InitAdd, []Arg{{Param: 0, Value: ArgUndef, Code: "a"}})
	otherConcrete := New(InitAdd, []Arg{{Param: 1, Value: ArgUndef, Code: "b"}})

	if got := Combine(none, concrete); !got.Equal(concrete) {
		t.Errorf("None combined with concrete should yield concrete, got %v", got)
	}
	if got := Combine(concrete, undef); !got.IsUndef() {
		t.Errorf("combining with Undef must yield Undef, got %v", got)
	}
	if got := Combine(concrete, sameConcrete); !got.Equal(concrete) {
		t.Errorf("combining two equal concrete calls should survive, got %v", got)
	}
	if got := Combine(concrete, otherConcrete); !got.IsUndef() {
		t.Errorf("combining two distinct concrete calls must yield Undef, got %v", got)
	}
}

func TestLookupBuiltinFreeFunctions(t *testing.T) {
	if id := LookupBuiltin("", "tilize_block"); id != BuiltinTilizeBlock {
		t.Errorf("tilize_block should resolve to BuiltinTilizeBlock, got %v", id)
	}
	if id := LookupBuiltin("", "untilize_block"); id != BuiltinUntilizeBlock {
		t.Errorf("untilize_block should resolve to BuiltinUntilizeBlock, got %v", id)
	}
	if id := LookupBuiltin("math", "add"); id != BuiltinAdd {
		t.Errorf("math.add should resolve to BuiltinAdd, got %v", id)
	}
	if id := LookupBuiltin("pipe", "push_back"); id != BuiltinNone {
		t.Errorf("non-math receiver should not resolve to a builtin, got %v", id)
	}
}
