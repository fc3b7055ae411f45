package graph

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"

	"github.com/tenstorrent/ronin-sub003/internal/tool"
)

// ErrNoMain is returned by Build when the translation unit defines no
// function named "kernel" with a body.
var ErrNoMain = fmt.Errorf("no function named %q with a body", "kernel")

// mainFuncName is the designated entry-point name, matching spec.md §3:
// "at most one function has name kernel; it is the designated main."
const mainFuncName = "kernel"

// Builder populates a Graph by running a single matcher-style traversal
// over a parsed translation unit, per spec.md §4.2.
type Builder struct{}

// NewBuilder returns a Builder. Builder holds no state between calls.
func NewBuilder() *Builder { return &Builder{} }

// symtab maps a declared name (parameter or local variable) to its Var
// node within the function currently being built. Flat per function,
// last declaration wins on shadowing — sufficient for the dialect's
// param/global/local/pipe/semaphore/math declarations, which are never
// re-declared under the same name within one kernel or helper function.
type symtab map[string]*Var

// Build implements spec.md §4.2 steps 1–6.
func (b *Builder) Build(u *tool.Unit) (*Graph, error) {
	g := &Graph{byName: make(map[string]*Func)}

	// Step 0: register every top-level func (with or without a body) so
	// that call sites can resolve FuncRef even to externally-declared
	// functions kept only for reference resolution (spec.md §3).
	var decls []*ast.FuncDecl
	for _, d := range u.File.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok {
			decls = append(decls, fd)
		}
	}

	for _, fd := range decls {
		fn := &Func{Name: fd.Name.Name, Pos: fd.Pos(), End: fd.End()}
		g.byName[fn.Name] = fn
	}

	var mainCount int
	for _, fd := range decls {
		fn := g.byName[fd.Name.Name]
		idx := 0
		if fd.Type.Params != nil {
			for _, field := range fd.Type.Params.List {
				typeName := baseTypeName(field.Type)
				names := field.Names
				if len(names) == 0 {
					// unnamed parameter; still occupies a slot
					fn.Params = append(fn.Params, &Var{ParamIndex: idx, TypeName: typeName})
					idx++
					continue
				}
				for _, n := range names {
					fn.Params = append(fn.Params, &Var{
						Name:       n.Name,
						Pos:        n.Pos(),
						End:        n.End(),
						ParamIndex: idx,
						TypeName:   typeName,
					})
					idx++
				}
			}
		}

		if fd.Body == nil {
			continue // referenced only; not added to g.Funcs (spec.md §3)
		}

		st := symtab{}
		for _, p := range fn.Params {
			if p.Name != "" {
				st[p.Name] = p
			}
		}

		top := &Stmt{Class: ClassCompound, Pos: fd.Body.Pos(), End: fd.Body.End()}
		b.buildBlock(g, top, fd.Body, fn, st)
		fn.Top = top

		g.Funcs = append(g.Funcs, fn)
		if fn.Name == mainFuncName {
			mainCount++
			g.Main = fn
		}
	}

	if mainCount == 0 {
		return nil, ErrNoMain
	}
	return g, nil
}

func (b *Builder) buildBlock(g *Graph, parent *Stmt, block *ast.BlockStmt, fn *Func, st symtab) {
	for _, s := range block.List {
		for _, child := range b.buildStmt(g, s, fn, st) {
			parent.AddChild(child)
		}
	}
}

func (b *Builder) buildStmt(g *Graph, s ast.Stmt, fn *Func, st symtab) []*Stmt {
	switch n := s.(type) {
	case *ast.BlockStmt:
		node := &Stmt{Class: ClassCompound, Pos: n.Pos(), End: n.End()}
		b.buildBlock(g, node, n, fn, st)
		return []*Stmt{node}

	case *ast.IfStmt:
		node := &Stmt{Class: ClassIf, Pos: n.Pos(), End: n.End()}
		if v, ok := ConstInt(n.Cond); ok {
			node.IsIntConstExpr = true
			node.IntConstExpr = v
		}
		if then, ok := n.Body, true; ok {
			for _, c := range b.buildStmt(g, then, fn, st) {
				node.AddChild(c)
			}
		}
		if n.Else != nil {
			for _, c := range b.buildStmt(g, n.Else, fn, st) {
				node.AddChild(c)
			}
		}
		return []*Stmt{node}

	case *ast.ForStmt:
		class := ClassFor
		if n.Init == nil && n.Post == nil && n.Cond != nil {
			class = ClassWhile
		}
		node := &Stmt{Class: class, Pos: n.Pos(), End: n.End()}
		if n.Init != nil {
			// Acknowledged gap (spec.md §9): expression children whose
			// parent is the synthetic decl statement of a for-initializer
			// are attached directly under the for/while node rather than
			// under a nested init scope, and the cond/post expressions
			// themselves are not modeled as statement-graph nodes.
			for _, c := range b.buildStmt(g, n.Init, fn, st) {
				node.AddChild(c)
			}
		}
		if n.Body != nil {
			b.buildBlock(g, node, n.Body, fn, st)
		}
		return []*Stmt{node}

	case *ast.DeclStmt:
		gd, ok := n.Decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.VAR {
			return nil
		}
		var out []*Stmt
		for _, spec := range gd.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			typeName := baseTypeName(vs.Type)
			for _, name := range vs.Names {
				v := &Var{Name: name.Name, Pos: name.Pos(), End: name.End(), ParamIndex: -1, TypeName: typeName}
				st[name.Name] = v
				out = append(out, &Stmt{Class: ClassDecl, Pos: n.Pos(), End: n.End(), DeclRef: v, TypeName: typeName})
			}
		}
		return out

	case *ast.AssignStmt:
		if n.Tok != token.DEFINE {
			return []*Stmt{{Class: ClassOther, Pos: n.Pos(), End: n.End()}}
		}
		var out []*Stmt
		for _, lhs := range n.Lhs {
			id, ok := lhs.(*ast.Ident)
			if !ok || id.Name == "_" {
				continue
			}
			v := &Var{Name: id.Name, Pos: id.Pos(), End: id.End(), ParamIndex: -1}
			st[id.Name] = v
			out = append(out, &Stmt{Class: ClassDecl, Pos: n.Pos(), End: n.End(), DeclRef: v})
		}
		return out

	case *ast.ExprStmt:
		return []*Stmt{b.buildCallLike(g, n.X, fn, st, n.Pos(), n.End())}

	default:
		return []*Stmt{{Class: ClassOther, Pos: s.Pos(), End: s.End()}}
	}
}

func (b *Builder) buildCallLike(g *Graph, x ast.Expr, fn *Func, st symtab, pos, end token.Pos) *Stmt {
	call, ok := x.(*ast.CallExpr)
	if !ok {
		return &Stmt{Class: ClassOther, Pos: pos, End: end}
	}

	switch f := call.Fun.(type) {
	case *ast.SelectorExpr:
		recv, ok := f.X.(*ast.Ident)
		if !ok {
			return &Stmt{Class: ClassOther, Pos: pos, End: end}
		}
		typeName := ""
		var declRef *Var
		if v, ok := st[recv.Name]; ok {
			typeName = v.TypeName
			declRef = v
		}
		node := &Stmt{
			Class:      ClassMemberCall,
			Pos:        pos,
			End:        end,
			TypeName:   typeName,
			MemberName: f.Sel.Name,
			FuncName:   f.Sel.Name,
			DeclRef:    declRef,
		}
		node.Args = buildArgs(call.Args, st)
		return node

	case *ast.Ident:
		node := &Stmt{Class: ClassCall, Pos: pos, End: end, FuncName: f.Name}
		// Resolves to a known Func (with or without a body) so
		// inter-procedural passes (internal/mathinit) can recurse into
		// user-defined helper functions; nil for unresolved intrinsics.
		if fr, ok := g.byName[f.Name]; ok {
			node.FuncRef = fr
		}
		node.Args = buildArgs(call.Args, st)
		return node

	default:
		return &Stmt{Class: ClassOther, Pos: pos, End: end}
	}
}

func buildArgs(args []ast.Expr, st symtab) []*Stmt {
	out := make([]*Stmt, len(args))
	for i, a := range args {
		out[i] = buildArg(a, st)
	}
	return out
}

// buildArg produces a lightweight leaf node for one actual argument
// expression: the statement graph models full statements, but the
// math-init analysis (internal/mathinit) only ever needs to know, per
// argument, whether it is a bare reference to a declared parameter, an
// integer/bool literal, or some other expression (kept verbatim as
// Code).
func buildArg(e ast.Expr, st symtab) *Stmt {
	switch n := e.(type) {
	case *ast.Ident:
		if n.Name == "true" || n.Name == "false" {
			return &Stmt{Class: ClassBoolLiteral, Pos: n.Pos(), End: n.End(), IsBoolLiteral: true, BoolLiteral: n.Name == "true", Code: n.Name}
		}
		v := st[n.Name] // nil if unresolved (not a declared parameter/local)
		return &Stmt{Class: ClassDeclRef, Pos: n.Pos(), End: n.End(), DeclRef: v, Code: n.Name}
	case *ast.BasicLit:
		if n.Kind == token.INT {
			if v, ok := ConstInt(n); ok {
				return &Stmt{Class: ClassIntLiteral, Pos: n.Pos(), End: n.End(), IsIntLiteral: true, IntLiteral: v, Code: n.Value}
			}
		}
		return &Stmt{Class: ClassOther, Pos: n.Pos(), End: n.End(), Code: n.Value}
	default:
		return &Stmt{Class: ClassOther, Pos: e.Pos(), End: e.End()}
	}
}

// baseTypeName extracts the base identifier of a (possibly generic)
// Go-native type expression: pipe[T] -> "pipe", global[T, U] -> "global",
// semaphore -> "semaphore".
func baseTypeName(t ast.Expr) string {
	switch n := t.(type) {
	case *ast.Ident:
		return n.Name
	case *ast.IndexExpr:
		return baseTypeName(n.X)
	case *ast.IndexListExpr:
		return baseTypeName(n.X)
	case *ast.StarExpr:
		return baseTypeName(n.X)
	default:
		return ""
	}
}

// ConstInt evaluates e as an integer constant expression using go/constant
// (the same evaluator go/types relies on), without requiring a resolvable
// package scope — sufficient for the literal/operator-only constant
// expressions spec.md §4.4 requires ("the condition must be a
// non-variable expression").
func ConstInt(e ast.Expr) (int, bool) {
	v := evalConst(e)
	if v == nil || v.Kind() != constant.Int {
		return 0, false
	}
	i, ok := constant.Int64Val(v)
	return int(i), ok
}

func evalConst(e ast.Expr) constant.Value {
	switch n := e.(type) {
	case *ast.ParenExpr:
		return evalConst(n.X)
	case *ast.BasicLit:
		if n.Kind != token.INT {
			return nil
		}
		return constant.MakeFromLiteral(n.Value, n.Kind, 0)
	case *ast.UnaryExpr:
		x := evalConst(n.X)
		if x == nil {
			return nil
		}
		return constant.UnaryOp(n.Op, x, 0)
	case *ast.BinaryExpr:
		x := evalConst(n.X)
		y := evalConst(n.Y)
		if x == nil || y == nil {
			return nil
		}
		switch n.Op {
		case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ:
			return constant.MakeBool(constant.Compare(x, n.Op, y))
		default:
			return constant.BinaryOp(x, n.Op, y)
		}
	default:
		return nil
	}
}
