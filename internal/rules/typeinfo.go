package rules

import (
	"go/ast"

	"github.com/tenstorrent/ronin-sub003/internal/tool"
)

// declInfo is what a rule case needs to know about how an identifier was
// declared within its enclosing function: its dialect base type (pipe,
// local, math, global, semaphore, param), the bound element-type
// identifier of a generic pipe[T]/local[T]/global[T,…] declaration
// (uint32, float, bfloat16 — used to pick the byte-shift amount), and,
// for global[T, tag] declarations, the DRAM/L1 placement tag.
type declInfo struct {
	TypeName string
	Elem     string
	DramTag  string
}

// baseTypeNameArgs extracts the base identifier and generic type-argument
// identifiers of a possibly-generic Go-native dialect type expression:
// pipe[T] -> ("pipe", ["T"]), global[uint32, Dram] -> ("global",
// ["uint32", "Dram"]), semaphore -> ("semaphore", nil).
func baseTypeNameArgs(t ast.Expr) (string, []string) {
	switch n := t.(type) {
	case *ast.Ident:
		return n.Name, nil
	case *ast.IndexExpr:
		base, _ := baseTypeNameArgs(n.X)
		if id, ok := n.Index.(*ast.Ident); ok {
			return base, []string{id.Name}
		}
		return base, nil
	case *ast.IndexListExpr:
		base, _ := baseTypeNameArgs(n.X)
		var args []string
		for _, idx := range n.Indices {
			if id, ok := idx.(*ast.Ident); ok {
				args = append(args, id.Name)
			} else {
				args = append(args, "")
			}
		}
		return base, args
	case *ast.StarExpr:
		return baseTypeNameArgs(n.X)
	default:
		return "", nil
	}
}

// baseTypeName is baseTypeNameArgs restricted to the first type argument,
// the common case every caller needing only the bound element type uses.
func baseTypeName(t ast.Expr) (string, string) {
	base, args := baseTypeNameArgs(t)
	if len(args) > 0 {
		return base, args[0]
	}
	return base, ""
}

// enclosingFunc returns the nearest *ast.FuncDecl in stack, walking from
// the matched node back up to the file root. The dialect never nests one
// kernel/helper function inside another, so the last FuncDecl seen while
// descending is always the one that owns the matched node.
func enclosingFunc(stack tool.Stack) *ast.FuncDecl {
	for i := len(stack) - 1; i >= 0; i-- {
		if fd, ok := stack[i].(*ast.FuncDecl); ok {
			return fd
		}
	}
	return nil
}

// resolveIdent reports how name was declared inside the function
// enclosing the matched node: as a formal parameter, or as a "var name
// Type" local. Scans the whole function body rather than stopping at the
// matched position — sufficient here since the dialect never declares the
// same name twice with different dialect types in one function, so the
// scan order doesn't change the result. Returns ok=false if name isn't a
// locally declared identifier.
func resolveIdent(stack tool.Stack, name string) (declInfo, bool) {
	fd := enclosingFunc(stack)
	if fd == nil {
		return declInfo{}, false
	}

	var found declInfo
	ok := false

	declare := func(base string, args []string) declInfo {
		info := declInfo{TypeName: base}
		if len(args) > 0 {
			info.Elem = args[0]
		}
		if len(args) > 1 {
			info.DramTag = args[1]
		}
		return info
	}

	if fd.Type.Params != nil {
		for _, field := range fd.Type.Params.List {
			base, args := baseTypeNameArgs(field.Type)
			for _, n := range field.Names {
				if n.Name == name {
					found, ok = declare(base, args), true
				}
			}
		}
	}

	if fd.Body != nil {
		ast.Inspect(fd.Body, func(n ast.Node) bool {
			decl, isDecl := n.(*ast.DeclStmt)
			if !isDecl {
				return true
			}
			gd, isGen := decl.Decl.(*ast.GenDecl)
			if !isGen {
				return true
			}
			for _, spec := range gd.Specs {
				vs, isVal := spec.(*ast.ValueSpec)
				if !isVal {
					continue
				}
				base, args := baseTypeNameArgs(vs.Type)
				for _, id := range vs.Names {
					if id.Name == name {
						found, ok = declare(base, args), true
					}
				}
			}
			return true
		})
	}

	return found, ok
}

// cppElemType renders the make_t_stencil table: the target-language spelling
// of a bound dialect element-type tag.
func cppElemType(elem string) string {
	switch elem {
	case "uint32":
		return "uint32_t"
	case "bfloat16":
		return "bfloat16_t"
	default:
		return "float" // cannot happen, per the original stencil's default arm
	}
}

// dramSuffix renders the make_dram_suffix_stencil table: global[T, Dram]
// selects the _dram overload, anything else (notably global[T, L1]) the
// _l1 overload.
func dramSuffix(tag string) string {
	if tag == "Dram" {
		return "dram"
	}
	return "l1"
}

// elemShift renders the T_SHIFT stencil (rules_dataflow.cpp's
// make_t_shift_stencil): bfloat16 elements shift by 1 tile-row unit,
// uint32/float shift by 2. Any other/unknown element defaults to 2, the
// original's stencil has no third case.
func elemShift(elem string) string {
	if elem == "bfloat16" {
		return "1"
	}
	return "2"
}

// nodeText returns n's exact source text from u.Src.
func nodeText(u *tool.Unit, n ast.Node) string {
	start := u.Fset.Position(n.Pos()).Offset
	end := u.Fset.Position(n.End()).Offset
	return string(u.Src[start:end])
}

// receiver returns the *ast.Ident receiver of a method-call expression
// "recv.method(...)", or nil if call isn't shaped that way.
func receiver(call *ast.CallExpr) (*ast.Ident, string, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return nil, "", false
	}
	id, ok := sel.X.(*ast.Ident)
	if !ok {
		return nil, "", false
	}
	return id, sel.Sel.Name, true
}
