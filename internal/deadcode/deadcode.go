// Package deadcode implements the two-pass constant-condition dead-code
// elimination step (SPEC_FULL.md §5.4, spec.md §4.4), the Go-native
// analogue of dead_code_pass.hpp/.cpp: fold away an "if" statement whose
// condition is a compile-time constant, then flatten any compound block
// left with no declarations of its own into its parent.
package deadcode

import (
	"go/ast"

	"github.com/tenstorrent/ronin-sub003/internal/graph"
	"github.com/tenstorrent/ronin-sub003/internal/tool"
)

// Apply runs both passes over u's source and returns the rewritten text.
// Pass1 drops the unreachable arm of every constant-condition "if"
// (keeping only the reachable branch's statement, braces and all); pass2
// then removes the outer braces of any compound statement left nested
// directly inside another compound statement once it contains no
// var-declaration of its own — the shape an unwrapped "if" branch leaves
// behind when its single statement was itself a block.
func Apply(u *tool.Unit) ([]byte, error) {
	out, err := tool.Rewrite(u, pass1Rule())
	if err != nil {
		return nil, err
	}
	u2, err := tool.Parse(out)
	if err != nil {
		return nil, err
	}
	return tool.Rewrite(u2, pass2Rule())
}

// constBool evaluates e as a compile-time boolean: a literal true/false
// identifier, or (mirroring the original's integer-based
// get_int_const_expr_value) a constant integer expression interpreted as
// false iff it is zero.
func constBool(e ast.Expr) (bool, bool) {
	if id, ok := e.(*ast.Ident); ok {
		switch id.Name {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	if i, ok := graph.ConstInt(e); ok {
		return i != 0, true
	}
	return false, false
}

// pass1Rule folds every "if" whose condition is a compile-time constant,
// the Go-native analogue of dead_code_pass.cpp's m_pass1_rule applyFirst
// chain. Go's "if" grammar has no braceless-body or condition-variable
// form to guard against (unlike the original's
// unless(hasConditionVariableStatement(...))), so only the init-
// statement guard carries over: an "if" with an init clause ("if x :=
// f(); cond {") is left untouched because removing the condition would
// orphan x's scope.
func pass1Rule() tool.Rule {
	return tool.Rule{{
		Name: "const_if",
		Match: func(_ *tool.Unit, n ast.Node, _ tool.Stack) bool {
			ifs, ok := n.(*ast.IfStmt)
			if !ok || ifs.Init != nil || ifs.Cond == nil {
				return false
			}
			_, ok = constBool(ifs.Cond)
			return ok
		},
		Edit: func(u *tool.Unit, n ast.Node, _ tool.Stack) ([]tool.Edit, error) {
			ifs := n.(*ast.IfStmt)
			value, _ := constBool(ifs.Cond)

			if value {
				text := nodeText(u, ifs.Body)
				return []tool.Edit{tool.ChangeTo(ifs.Pos(), ifs.End(), text)}, nil
			}
			if ifs.Else == nil {
				return []tool.Edit{tool.Remove(ifs.Pos(), ifs.End())}, nil
			}
			text := nodeText(u, ifs.Else)
			return []tool.Edit{tool.ChangeTo(ifs.Pos(), ifs.End(), text)}, nil
		},
	}}
}

// pass2Rule flattens a compound statement nested directly inside another
// compound statement once it declares nothing of its own, the Go-native
// analogue of m_pass2_rule: "{ { stmt; stmt; } }" -> "{ stmt; stmt; }".
// Go's block scoping makes this purely cosmetic (braces never carry the
// original's declaration-shadowing hazard once reachability is already
// resolved by pass1), but it mirrors the original's output exactly,
// which is the point of a source-to-source translator.
func pass2Rule() tool.Rule {
	return tool.Rule{{
		Name: "flatten_block",
		Match: func(_ *tool.Unit, n ast.Node, stack tool.Stack) bool {
			block, ok := n.(*ast.BlockStmt)
			if !ok {
				return false
			}
			if _, ok := stack.Parent().(*ast.BlockStmt); !ok {
				return false
			}
			for _, stmt := range block.List {
				if _, ok := stmt.(*ast.DeclStmt); ok {
					return false
				}
			}
			return true
		},
		Edit: func(u *tool.Unit, n ast.Node, _ tool.Stack) ([]tool.Edit, error) {
			block := n.(*ast.BlockStmt)
			if len(block.List) == 0 {
				return []tool.Edit{tool.Remove(block.Pos(), block.End())}, nil
			}
			first, last := block.List[0], block.List[len(block.List)-1]
			return []tool.Edit{
				tool.Remove(block.Pos(), first.Pos()),
				tool.Remove(last.End(), block.End()),
			}, nil
		},
	}}
}

func nodeText(u *tool.Unit, n ast.Node) string {
	start := u.Fset.Position(n.Pos()).Offset
	end := u.Fset.Position(n.End()).Offset
	return string(u.Src[start:end])
}
