package mathinit

import (
	"fmt"

	"github.com/tenstorrent/ronin-sub003/internal/graph"
)

// funcUseArg records, across every call site to one function found
// anywhere in the graph, whether formal parameter index i is always
// forwarded the same literal value or always forwarded from the exact
// same caller-side parameter variable — the Go-native analogue of
// MathInitFuncUse. Both fields go to "unset" the first time two call
// sites disagree, matching update_use's narrowing.
type funcUseArg struct {
	value     int // ArgUndef if not a single fixed literal across all calls
	param     *graph.Var
	hasParam  bool // true once a first call site has been recorded for this arg
}

// funcUse is one callee's aggregated parameter usage, the Go-native
// analogue of MathInitFuncUse's Arg slice.
type funcUse struct {
	args []funcUseArg
}

// buildFuncUseMap scans every call expression in g and aggregates, per
// called function, how its formal parameters are actually invoked at
// every call site — the Go-native analogue of
// MathInitFuncUseMapBuilder::run. Only calls to functions with a body
// are tracked (calls to externally-declared/intrinsic functions carry no
// useful summary).
func buildFuncUseMap(g *graph.Graph) map[*graph.Func]*funcUse {
	uses := make(map[*graph.Func]*funcUse)
	for _, fn := range g.Funcs {
		walkStmt(fn.Top, func(s *graph.Stmt) {
			if s.Class != graph.ClassCall || s.FuncRef == nil || s.FuncRef.Top == nil {
				return
			}
			callee := s.FuncRef
			use, ok := uses[callee]
			if !ok {
				use = &funcUse{args: make([]funcUseArg, len(callee.Params))}
				uses[callee] = use
			}
			for i, arg := range s.Args {
				if i >= len(use.args) {
					break // arity mismatch, tolerated (spec.md §9 parser diagnostics own this)
				}
				value := argLiteralValue(arg)
				param := argParamRef(arg)
				slot := &use.args[i]
				if !slot.hasParam {
					slot.value = value
					slot.param = param
					slot.hasParam = true
					continue
				}
				if slot.value != value {
					slot.value = ArgUndef
				}
				if slot.param != param {
					slot.param = nil
				}
			}
		})
	}
	return uses
}

func argLiteralValue(arg *graph.Stmt) int {
	if arg.IsBoolLiteral {
		if arg.BoolLiteral {
			return 1
		}
		return 0
	}
	if arg.IsIntLiteral {
		return arg.IntLiteral
	}
	return ArgUndef
}

func argParamRef(arg *graph.Stmt) *graph.Var {
	if arg.DeclRef == nil || arg.DeclRef.ParamIndex < 0 {
		return nil
	}
	return arg.DeclRef
}

// walkStmt visits s and every descendant in source order.
func walkStmt(s *graph.Stmt, visit func(*graph.Stmt)) {
	if s == nil {
		return
	}
	visit(s)
	for c := s.FirstChild; c != nil; c = c.Next {
		walkStmt(c, visit)
	}
}

// callOrder returns the functions reachable from the designated main
// function, in call-discovery order (main first, then each callee in the
// order its first call site is encountered while walking already-queued
// functions) — the Go-native analogue of StmtGraphFuncSort. A function
// already queued is never re-queued: self- and mutual recursion are
// tolerated by silent omission rather than treated as an error (an
// acknowledged limitation carried over unchanged, per spec.md §9).
func callOrder(g *graph.Graph) ([]*graph.Func, error) {
	if g.Main == nil {
		return nil, fmt.Errorf("missing main function")
	}
	seen := map[*graph.Func]bool{g.Main: true}
	order := []*graph.Func{g.Main}
	for i := 0; i < len(order); i++ {
		walkStmt(order[i].Top, func(s *graph.Stmt) {
			if s.Class != graph.ClassCall || s.FuncRef == nil || s.FuncRef.Top == nil {
				return
			}
			if !seen[s.FuncRef] {
				seen[s.FuncRef] = true
				order = append(order, s.FuncRef)
			}
		})
	}
	return order, nil
}

// Analysis holds every intermediate and final result of the three
// math-init passes (spec.md §4.5), keyed directly by the graph.Stmt
// pointers the passes computed them for — the statement graph stays
// alive across all three passes and the final rewrite, so lookups never
// need the position-keyed indirection the original pipeline's
// re-parse-per-pass design required.
type Analysis struct {
	orig  map[*graph.Stmt]State
	stmt  map[*graph.Stmt]State
	fn    map[*graph.Func]State
	final map[*graph.Stmt]State
}

// Run executes pass1 (original per-call init states), pass2
// (inter-procedural propagation) and pass3 (final insertion-point
// selection) over g, returning the Analysis the rewrite pass in pass.go
// consumes.
func Run(g *graph.Graph) (*Analysis, error) {
	a := &Analysis{
		orig:  make(map[*graph.Stmt]State),
		stmt:  make(map[*graph.Stmt]State),
		fn:    make(map[*graph.Func]State),
		final: make(map[*graph.Stmt]State),
	}
	a.pass1(g)
	if err := a.pass2(g); err != nil {
		return nil, err
	}
	a.pass3(g)
	return a, nil
}

// pass1 creates the original init state directly implied by each call
// statement's own builtin identity, the Go-native analogue of
// create_orig_inits.
func (a *Analysis) pass1(g *graph.Graph) {
	for _, fn := range g.Funcs {
		walkStmt(fn.Top, func(s *graph.Stmt) {
			className, methodName, ok := builtinNameOf(s)
			if !ok {
				return
			}
			id := LookupBuiltin(className, methodName)
			if id == BuiltinNone {
				return
			}
			state := NewState()
			any := false
			for grp := Group(0); grp < groupCount; grp++ {
				f := InitFuncFor(id, grp)
				if f == InitNone {
					continue
				}
				state[grp] = buildInitCall(f, id, grp, s)
				any = true
			}
			if any {
				a.orig[s] = state
			}
		})
	}
}

// builtinNameOf extracts the (class, method) pair create_orig_inits uses
// to look up a builtin, for both free-function calls (ClassCall, empty
// class name) and member calls (ClassMemberCall, receiver's TypeName).
func builtinNameOf(s *graph.Stmt) (className, methodName string, ok bool) {
	switch s.Class {
	case graph.ClassCall:
		return "", s.FuncName, true
	case graph.ClassMemberCall:
		return s.TypeName, s.MemberName, true
	default:
		return "", "", false
	}
}

// buildInitCall reads off stmt's actual arguments at the positions
// ArgDescFor(id, group) names and builds a concrete Call, the Go-native
// analogue of MathInitArgsBuilder::build plus
// create_math_init_call_with_args.
func buildInitCall(f InitFunc, id BuiltinID, group Group, stmt *graph.Stmt) Call {
	desc := ArgDescFor(id, group)
	if desc[0] == ArgUndef {
		return New(f, nil)
	}
	var args []Arg
	for _, pos := range desc {
		if pos < 0 {
			break
		}
		if pos >= len(stmt.Args) {
			// Arity mismatch between the argument descriptor and the
			// actual call: treat as undef rather than panic, matching
			// the original's tolerant recovery ("Arguments do not match
			// argument descriptor" is reported upstream by the parser's
			// own arity checks, not re-diagnosed here).
			return Undef()
		}
		arg := stmt.Args[pos]
		args = append(args, Arg{
			Param: argParamIndex(arg),
			Value: argLiteralValue(arg),
			Code:  arg.Code,
		})
	}
	return New(f, args)
}

func argParamIndex(arg *graph.Stmt) int {
	if arg.DeclRef == nil || arg.DeclRef.ParamIndex < 0 {
		return ArgUndef
	}
	return arg.DeclRef.ParamIndex
}

// pass2 propagates init calls upward from call sites to the statements
// that contain them and across function boundaries, the Go-native
// analogue of MathInitPass::pass2.
func (a *Analysis) pass2(g *graph.Graph) error {
	uses := buildFuncUseMap(g)
	order, err := callOrder(g)
	if err != nil {
		return err
	}
	for i := len(order) - 1; i >= 0; i-- {
		fn := order[i]
		a.fn[fn] = a.evalFuncInitState(fn, uses)
	}
	return nil
}

func (a *Analysis) evalFuncInitState(fn *graph.Func, uses map[*graph.Func]*funcUse) State {
	if fn.Top == nil {
		return NewState()
	}
	stmtState := a.evalStmtInitState(fn.Top)
	return a.filterFuncInitState(fn, stmtState, uses[fn])
}

// filterFuncInitState keeps only the init calls that, if pulled up to
// describe fn as a whole, can still be expressed purely in terms of fn's
// own formal parameters at every call site that invokes fn — the
// Go-native analogue of filter_func_init_state/filter_func_init_call.
func (a *Analysis) filterFuncInitState(fn *graph.Func, stmtState State, use *funcUse) State {
	out := NewState()
	if use == nil {
		return out
	}
	for g, call := range stmtState {
		if callSurvivesFilter(call, use) {
			out[g] = call
		}
	}
	return out
}

func callSurvivesFilter(call Call, use *funcUse) bool {
	if call.IsNone() || call.IsUndef() {
		return true
	}
	for i := 0; i < call.ArgCount; i++ {
		param := call.Args[i].Param
		if param == ArgUndef {
			continue
		}
		if param >= len(use.args) || use.args[param].param == nil {
			return false
		}
	}
	return true
}

// evalStmtInitState computes the init state implied by stmt and
// everything reachable under it, memoizing per-statement results into
// a.stmt as it goes — the Go-native analogue of eval_stmt_init_state.
func (a *Analysis) evalStmtInitState(stmt *graph.Stmt) State {
	if orig, ok := a.orig[stmt]; ok {
		a.stmt[stmt] = orig
		state := orig
		checkUndefInitFuncs(&state)
		return state
	}

	var state State
	if stmt.Class == graph.ClassCall {
		state = a.evalCallExprInitState(stmt)
	} else {
		state = NewState()
		for c := stmt.FirstChild; c != nil; c = c.Next {
			state = state.Combine(a.evalStmtInitState(c))
		}
	}
	a.stmt[stmt] = state
	return state
}

func checkUndefInitFuncs(state *State) {
	for i, call := range state {
		if call.IsNone() || call.IsUndef() {
			continue
		}
		for j := 0; j < call.ArgCount; j++ {
			if call.Args[j].Param == ArgUndef && call.Args[j].Value == ArgUndef {
				state[i] = Undef()
				break
			}
		}
	}
}

// evalCallExprInitState looks up the callee's own summarized exit state
// and remaps any calls expressed in terms of the callee's parameters into
// the caller's own parameters where possible, the Go-native analogue of
// eval_call_expr_init_state plus map_call_expr_args.
func (a *Analysis) evalCallExprInitState(stmt *graph.Stmt) State {
	state := NewState()
	if stmt.FuncRef == nil {
		return state
	}
	calleeState, ok := a.fn[stmt.FuncRef]
	if !ok {
		return state
	}
	for g, call := range calleeState {
		if call.IsNone() || call.IsUndef() {
			state[g] = call
			continue
		}
		state[g] = mapCallExprArgs(call, stmt.Args)
	}
	return state
}

func mapCallExprArgs(call Call, actualArgs []*graph.Stmt) Call {
	haveParams := false
	params := make([]*graph.Var, call.ArgCount)
	for i := 0; i < call.ArgCount; i++ {
		argIndex := call.Args[i].Param
		if argIndex == ArgUndef {
			continue
		}
		if argIndex >= len(actualArgs) {
			return Undef()
		}
		actual := actualArgs[argIndex]
		if actual.DeclRef == nil || actual.DeclRef.ParamIndex < 0 {
			continue
		}
		params[i] = actual.DeclRef
		haveParams = true
	}
	if !haveParams {
		return call
	}
	out := Call{Func: call.Func, ArgCount: call.ArgCount}
	for i := 0; i < call.ArgCount; i++ {
		if params[i] != nil {
			out.Args[i] = Arg{Param: params[i].ParamIndex, Value: ArgUndef, Code: params[i].Name}
		} else {
			out.Args[i] = call.Args[i]
		}
	}
	return out
}

// pass3 selects, for every statement, the subset of its init state that
// is not already satisfied higher up the tree and assigns it as that
// statement's final insertion point, the Go-native analogue of
// MathInitPass::pass3/eval_final_init_states.
func (a *Analysis) pass3(g *graph.Graph) {
	for _, fn := range g.Funcs {
		if fn.Top == nil {
			continue
		}
		mask := a.topInitMask(g, fn)
		a.evalFinalInitStates(fn.Top, mask)
	}
}

// topInitMask starts every group as a pending insertion target. For a
// function other than main, groups that fn's own summarized init state
// already sets (not None) are excluded; main keeps every group — the
// Go-native analogue of make_top_init_mask.
func (a *Analysis) topInitMask(g *graph.Graph, fn *graph.Func) Mask {
	mask := TopMask()
	if fn == g.Main {
		return mask
	}
	state := a.fn[fn]
	for i, call := range state {
		if !call.IsNone() {
			mask[i] = false
		}
	}
	return mask
}

func (a *Analysis) evalFinalInitStates(stmt *graph.Stmt, mask Mask) {
	if maskEmpty(mask) {
		return
	}
	if !mayHaveFinalInitState(stmt) {
		a.evalFinalInitStatesChildren(stmt, mask)
		return
	}

	state := a.stmt[stmt]
	stmtState := NewState()
	stmtMask := mask
	found := false
	for i := range mask {
		if !mask[i] {
			continue
		}
		call := state[i]
		if call.IsNone() {
			stmtMask[i] = false
			continue
		}
		if call.IsUndef() {
			continue
		}
		stmtState[i] = call
		stmtMask[i] = false
		found = true
	}
	if found {
		a.final[stmt] = stmtState
	}
	if maskEmpty(stmtMask) {
		return
	}
	a.evalFinalInitStatesChildren(stmt, stmtMask)
}

func (a *Analysis) evalFinalInitStatesChildren(stmt *graph.Stmt, mask Mask) {
	for c := stmt.FirstChild; c != nil; c = c.Next {
		a.evalFinalInitStates(c, mask)
	}
}

// mayHaveFinalInitState excludes if-statements as insertion hosts: an
// init call pending across both branches of an if cannot be hoisted
// above the condition check without risking execution on a path that
// never reaches the call it was meant to precede, so it is pushed down
// into the branches instead.
func mayHaveFinalInitState(stmt *graph.Stmt) bool {
	return stmt.Class != graph.ClassIf
}

func maskEmpty(m Mask) bool {
	for _, v := range m {
		if v {
			return false
		}
	}
	return true
}

// FinalState returns the init calls to insert immediately before stmt, or
// the zero State if stmt hosts no pending insertion.
func (a *Analysis) FinalState(stmt *graph.Stmt) (State, bool) {
	s, ok := a.final[stmt]
	return s, ok
}
