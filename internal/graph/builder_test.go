package graph

import (
	"testing"

	"github.com/tenstorrent/ronin-sub003/internal/tool"
)

func build(t *testing.T, src string) *Graph {
	t.Helper()
	u, err := tool.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g, err := NewBuilder().Build(u)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestBuildRequiresKernelFunc(t *testing.T) {
	u, err := tool.Parse([]byte(`package k

func helper() {}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := NewBuilder().Build(u); err != ErrNoMain {
		t.Errorf("expected ErrNoMain, got %v", err)
	}
}

func TestBuildFindsMainAndParams(t *testing.T) {
	g := build(t, `package k

func kernel(a local, b pipe) {
	a.set(0, 1)
}
`)
	if g.Main == nil || g.Main.Name != "kernel" {
		t.Fatalf("expected Main to be \"kernel\", got %v", g.Main)
	}
	if len(g.Main.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(g.Main.Params))
	}
	if g.Main.Params[0].Name != "a" || g.Main.Params[0].TypeName != "local" {
		t.Errorf("expected param 0 to be local \"a\", got %+v", g.Main.Params[0])
	}
	if g.Main.Params[1].Name != "b" || g.Main.Params[1].TypeName != "pipe" {
		t.Errorf("expected param 1 to be pipe \"b\", got %+v", g.Main.Params[1])
	}
}

func TestBuildMemberCallNode(t *testing.T) {
	g := build(t, `package k

func kernel(a math, b math, c math) {
	a.add(b, c)
}
`)
	call := g.Main.Top.FirstChild
	if call == nil || call.Class != ClassMemberCall {
		t.Fatalf("expected a ClassMemberCall node, got %v", call)
	}
	if call.TypeName != "math" || call.MemberName != "add" {
		t.Errorf("expected math.add member call, got TypeName=%q MemberName=%q", call.TypeName, call.MemberName)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 argument nodes, got %d", len(call.Args))
	}
}

func TestBuildIfConstExpr(t *testing.T) {
	// go/parser places no type constraint on an "if" condition (only
	// go/types would reject a non-bool one, and this pipeline never runs
	// the type checker), so a literal integer-constant condition parses
	// the same way the original's C++ dialect source permits one
	// directly — exercising ConstInt's arithmetic-expression evaluation.
	g := build(t, `package k

func kernel(a local) {
	if 1 + 1 {
		a.set(0, 1)
	}
	if cond {
		a.set(0, 2)
	}
	if 1 - 1 {
		a.set(0, 3)
	}
}
`)
	var ifs []*Stmt
	for c := g.Main.Top.FirstChild; c != nil; c = c.Next {
		if c.Class == ClassIf {
			ifs = append(ifs, c)
		}
	}
	if len(ifs) != 3 {
		t.Fatalf("expected 3 if nodes, got %d", len(ifs))
	}
	if !ifs[0].IsIntConstExpr || ifs[0].IntConstExpr != 2 {
		t.Errorf("expected first if (1+1) to be int-const-expr 2, got %+v", ifs[0])
	}
	if ifs[1].IsIntConstExpr {
		t.Errorf("expected second if (cond) to not be a const expr, got %+v", ifs[1])
	}
	if !ifs[2].IsIntConstExpr || ifs[2].IntConstExpr != 0 {
		t.Errorf("expected third if (1-1) to be int-const-expr 0, got %+v", ifs[2])
	}
}

func TestBuildDeclStmt(t *testing.T) {
	g := build(t, `package k

func kernel(a local) {
	var x int
	_ = x
}
`)
	decl := g.Main.Top.FirstChild
	if decl == nil || decl.Class != ClassDecl {
		t.Fatalf("expected a ClassDecl node, got %v", decl)
	}
	if decl.DeclRef == nil || decl.DeclRef.Name != "x" {
		t.Errorf("expected DeclRef to name \"x\", got %+v", decl.DeclRef)
	}
}

func TestFuncByNameResolvesHelper(t *testing.T) {
	g := build(t, `package k

func helper(a local) {
	a.set(0, 1)
}

func kernel(a local) {
	helper(a)
}
`)
	fn, ok := g.FuncByName("helper")
	if !ok || fn.Name != "helper" {
		t.Fatalf("expected to resolve \"helper\", got %v, %v", fn, ok)
	}
	call := g.Main.Top.FirstChild
	if call == nil || call.Class != ClassCall || call.FuncRef != fn {
		t.Errorf("expected kernel's call to resolve FuncRef to helper, got %+v", call)
	}
}
