package mathinit

import (
	"go/ast"
	"go/token"
	"strings"

	"github.com/tenstorrent/ronin-sub003/internal/graph"
	"github.com/tenstorrent/ronin-sub003/internal/tool"
)

// Apply runs the full math-init pipeline over g (built from u) and
// rewrites u's source to insert every selected init call immediately
// before the statement or block Run's analysis chose as its host — the
// Go-native analogue of MathInitPass::run's final transform step.
func Apply(u *tool.Unit, g *graph.Graph) ([]byte, error) {
	a, err := Run(g)
	if err != nil {
		return nil, err
	}

	compoundHosts := make(map[token.Pos]string)
	stmtHosts := make(map[token.Pos]string)
	for _, fn := range g.Funcs {
		walkStmt(fn.Top, func(s *graph.Stmt) {
			state, ok := a.FinalState(s)
			if !ok {
				return
			}
			text := formatInsert(state)
			if text == "" {
				return
			}
			// A single source position can host more than one graph.Stmt
			// (e.g. "var a, b T" splits into one decl node per name, all
			// sharing the DeclStmt's Pos): concatenate rather than
			// overwrite so no selected insertion is silently dropped.
			if s.Class == graph.ClassCompound {
				compoundHosts[s.Pos] += text
			} else {
				stmtHosts[s.Pos] += text
			}
		})
	}

	rule := tool.Rule{
		{
			Name: "math_init_insert_block",
			Match: func(_ *tool.Unit, n ast.Node, _ tool.Stack) bool {
				block, ok := n.(*ast.BlockStmt)
				if !ok {
					return false
				}
				_, ok = compoundHosts[block.Pos()]
				return ok
			},
			Edit: func(_ *tool.Unit, n ast.Node, _ tool.Stack) ([]tool.Edit, error) {
				block := n.(*ast.BlockStmt)
				text := compoundHosts[block.Pos()]
				if len(block.List) > 0 {
					return []tool.Edit{tool.InsertBefore(block.List[0].Pos(), text)}, nil
				}
				// Empty block: insert right after the opening brace.
				return []tool.Edit{tool.InsertAfter(block.Lbrace+1, text)}, nil
			},
		},
		{
			Name: "math_init_insert_stmt",
			Match: func(_ *tool.Unit, n ast.Node, _ tool.Stack) bool {
				stmt, ok := n.(ast.Stmt)
				if !ok {
					return false
				}
				if _, isBlock := n.(*ast.BlockStmt); isBlock {
					return false
				}
				_, ok = stmtHosts[stmt.Pos()]
				return ok
			},
			Edit: func(_ *tool.Unit, n ast.Node, _ tool.Stack) ([]tool.Edit, error) {
				stmt := n.(ast.Stmt)
				return []tool.Edit{tool.InsertBefore(stmt.Pos(), stmtHosts[stmt.Pos()])}, nil
			},
		},
	}

	return tool.Rewrite(u, rule)
}

// formatInsert renders every concrete (non-None) call in state as one
// "__<name>_init(args...);" statement per group, in group order, the
// Go-native analogue of make_init_call_insert/format_math_init_call.
func formatInsert(state State) string {
	var b strings.Builder
	for _, call := range state {
		if call.IsNone() || call.IsUndef() {
			continue
		}
		b.WriteString("__")
		b.WriteString(call.Func.Name())
		b.WriteString("_init(")
		for i := 0; i < call.ArgCount; i++ {
			if i != 0 {
				b.WriteString(", ")
			}
			b.WriteString(call.Args[i].Code)
		}
		b.WriteString(");")
	}
	return b.String()
}
