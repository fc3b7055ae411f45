// Package rules builds the tool.Rule catalogs that lower the tile-
// programming dialect's Go-native surface syntax into the target C++
// kernel text, the Go-native analogue of the original frontend's
// RuleFactory (rules.hpp, rules_common.cpp, rules_compute.cpp,
// rules_compute_init.cpp, rules_dataflow.cpp). A Factory is a pure
// catalog: it holds no AST state, only the compile mode and write-mode
// flag that decide which rule subset applies, and the param values the
// param rule renders.
package rules

import (
	"go/ast"

	"github.com/tenstorrent/ronin-sub003/internal/tool"
)

// Mode selects which rule subset Rules assembles, mirroring
// frontend.Mode without importing internal/frontend (which itself
// depends on this package).
type Mode int

const (
	ModeCompute Mode = iota
	ModeRead
	ModeWrite
)

// Factory assembles the tool.Rule catalog for one compile mode.
// WriteMode exists for parity with the original RuleFactory's
// set_write_mode (kept as a field on the struct it was declared on
// across all four rules_*.cpp files) but, as in the original, no rule
// case branches on it — see DESIGN.md.
type Factory struct {
	mode      Mode
	writeMode bool

	// paramValues supplies the sequential values make_param_rule's
	// get_value callback pulls from, one per top-level "param"-typed
	// declaration encountered in source order.
	paramValues []uint32
}

// New returns a Factory for mode. paramValues is consumed in the order
// top-level param declarations appear in source; a declaration beyond
// the end of paramValues renders as 0.
func New(mode Mode, writeMode bool, paramValues []uint32) *Factory {
	return &Factory{mode: mode, writeMode: writeMode, paramValues: paramValues}
}

// Rules returns the ordered, first-match rule catalog for f's mode.
// Categories common to every mode (top-level param, parameter-type
// lowering, pipe primitives) are always included; compute-only
// categories (math declarations, math ops, math-arg removal, tilize,
// init stubs) and dataflow-only categories are appended per mode, matching how
// frontend.cpp selects pass1/pass2 per FrontendMode.
func (f *Factory) Rules() tool.Rule {
	var rule tool.Rule
	rule = append(rule, f.paramRules()...)
	rule = append(rule, f.parmTypeRules()...)

	switch f.mode {
	case ModeCompute:
		rule = append(rule, f.pipeCommonRules()...)
		rule = append(rule, f.mathDeclRule())
		rule = append(rule, f.mathOpRules()...)
		rule = append(rule, f.mathArgRemovalRule())
		rule = append(rule, f.tilizeFuncRules()...)
		rule = append(rule, f.initStubRule())
	case ModeRead, ModeWrite:
		rule = append(rule, f.pipeCommonRules()...)
		rule = append(rule, f.dataflowRules()...)
		rule = append(rule, f.semaphoreRules()...)
		rule = append(rule, f.barrierRules()...)
	}
	return rule
}

// memberCallStmt matches an *ast.ExprStmt whose expression is a call
// "recv.method(...)" where recv was declared with dialect base type
// typeName and the call takes exactly argc arguments (argc < 0 means
// any count) — the Go-native analogue of make_member_call_N_matcher
// combined with statement(), used by every rule whose original changeTo
// targets the whole enclosing statement rather than a sub-expression.
func memberCallStmt(typeName, method string, argc int) tool.NodePredicate {
	return func(_ *tool.Unit, n ast.Node, stack tool.Stack) bool {
		es, ok := n.(*ast.ExprStmt)
		if !ok {
			return false
		}
		call, ok := es.X.(*ast.CallExpr)
		if !ok {
			return false
		}
		return matchMemberCall(call, stack, typeName, method, argc)
	}
}

// memberCallExpr is memberCallStmt's expression-position counterpart,
// for the handful of rules (local.get) whose original changeTo targets
// the call expression itself because it appears as a sub-expression
// (e.g. on the right-hand side of an assignment) rather than as a bare
// statement.
func memberCallExpr(typeName, method string, argc int) tool.NodePredicate {
	return func(_ *tool.Unit, n ast.Node, stack tool.Stack) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return false
		}
		return matchMemberCall(call, stack, typeName, method, argc)
	}
}

func matchMemberCall(call *ast.CallExpr, stack tool.Stack, typeName, method string, argc int) bool {
	recv, name, ok := receiver(call)
	if !ok || name != method {
		return false
	}
	if argc >= 0 && len(call.Args) != argc {
		return false
	}
	info, ok := resolveIdent(stack, recv.Name)
	return ok && info.TypeName == typeName
}

// memberCallStmtWithArgType additionally requires the call's argument at
// argIndex to be a bare identifier declared with dialect base type
// argType — the Go-native analogue of the original's per-overload
// dispatch on a second parameter's clang record type (e.g. "local" vs
// "pipe" source/destination overloads of read/write/move).
func memberCallStmtWithArgType(typeName, method string, argc, argIndex int, argType string) tool.NodePredicate {
	return func(_ *tool.Unit, n ast.Node, stack tool.Stack) bool {
		es, ok := n.(*ast.ExprStmt)
		if !ok {
			return false
		}
		call, ok := es.X.(*ast.CallExpr)
		if !ok {
			return false
		}
		if !matchMemberCall(call, stack, typeName, method, argc) {
			return false
		}
		if argIndex >= len(call.Args) {
			return false
		}
		id, ok := call.Args[argIndex].(*ast.Ident)
		if !ok {
			return false
		}
		info, ok := resolveIdent(stack, id.Name)
		return ok && info.TypeName == argType
	}
}

// freeCallStmt matches an *ast.ExprStmt calling the bare free function
// name with exactly argc arguments (argc < 0 means any count).
func freeCallStmt(name string, argc int) tool.NodePredicate {
	return func(_ *tool.Unit, n ast.Node, _ tool.Stack) bool {
		es, ok := n.(*ast.ExprStmt)
		if !ok {
			return false
		}
		call, ok := es.X.(*ast.CallExpr)
		if !ok {
			return false
		}
		id, ok := call.Fun.(*ast.Ident)
		if !ok || id.Name != name {
			return false
		}
		return argc < 0 || len(call.Args) == argc
	}
}

// changeStmt builds a CaseFunc that replaces the whole matched
// *ast.ExprStmt with render's output.
func changeStmt(render func(u *tool.Unit, call *ast.CallExpr) string) tool.CaseFunc {
	return func(u *tool.Unit, n ast.Node, _ tool.Stack) ([]tool.Edit, error) {
		es := n.(*ast.ExprStmt)
		call := es.X.(*ast.CallExpr)
		return []tool.Edit{tool.ChangeTo(es.Pos(), es.End(), render(u, call))}, nil
	}
}

// arg renders call's i-th argument's exact source text.
func arg(u *tool.Unit, call *ast.CallExpr, i int) string {
	return nodeText(u, call.Args[i])
}

// argField renders call's i-th argument followed by ".field" — the
// Go-native analogue of the original's access("argN", field) stencil.
func argField(u *tool.Unit, call *ast.CallExpr, i int, field string) string {
	return arg(u, call, i) + "." + field
}
