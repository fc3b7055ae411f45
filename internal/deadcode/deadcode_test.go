package deadcode

import (
	"strings"
	"testing"

	"github.com/tenstorrent/ronin-sub003/internal/tool"
)

func apply(t *testing.T, src string) string {
	t.Helper()
	u, err := tool.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := Apply(u)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return string(out)
}

func TestConstTrueKeepsThenDropsElse(t *testing.T) {
	out := apply(t, `package k

func kernel(a local) {
	if true {
		a.set(0, 1)
	} else {
		a.set(0, 2)
	}
}
`)
	if !strings.Contains(out, "a.set(0, 1)") {
		t.Errorf("expected then-branch to survive, got:\n%s", out)
	}
	if strings.Contains(out, "a.set(0, 2)") {
		t.Errorf("expected else-branch to be removed, got:\n%s", out)
	}
}

func TestConstFalseNoElseRemovesStmt(t *testing.T) {
	out := apply(t, `package k

func kernel(a local) {
	if false {
		a.set(0, 1)
	}
	a.set(0, 2)
}
`)
	if strings.Contains(out, "a.set(0, 1)") {
		t.Errorf("expected dead branch to be removed, got:\n%s", out)
	}
	if !strings.Contains(out, "a.set(0, 2)") {
		t.Errorf("expected surviving statement to remain, got:\n%s", out)
	}
}

func TestNonConstConditionUntouched(t *testing.T) {
	src := `package k

func kernel(a local, cond bool) {
	if cond {
		a.set(0, 1)
	}
}
`
	out := apply(t, src)
	if !strings.Contains(out, "if cond {") {
		t.Errorf("expected non-constant if to survive untouched, got:\n%s", out)
	}
}

func TestIfWithInitUntouched(t *testing.T) {
	src := `package k

func kernel(a local) {
	if x := 1; true {
		a.set(0, x)
	}
}
`
	out := apply(t, src)
	if !strings.Contains(out, "if x := 1; true {") {
		t.Errorf("expected if-with-init to survive untouched, got:\n%s", out)
	}
}
