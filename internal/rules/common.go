package rules

import (
	"fmt"
	"go/ast"

	"github.com/tenstorrent/ronin-sub003/internal/tool"
)

// paramRules lowers every top-level "param"-typed global declaration,
// the Go-native analogue of make_param_rule. The dialect's Go-native
// surface spells these as package-level "var name param" declarations;
// each becomes a runtime constant fed by paramValues in source order,
// mirroring the original's get_value callback.
func (f *Factory) paramRules() tool.Rule {
	return tool.Rule{{
		Name: "param_decl",
		Match: func(_ *tool.Unit, n ast.Node, stack tool.Stack) bool {
			vs, ok := n.(*ast.ValueSpec)
			if !ok {
				return false
			}
			if _, ok := stack.Parent().(*ast.GenDecl); !ok {
				return false
			}
			// Only package-level declarations qualify: a *ast.FuncDecl
			// enclosing this node means it's a local, not the
			// top-level param the original restricts to
			// (hasGlobalStorage, unless(isStaticLocal)).
			if enclosingFunc(stack) != nil {
				return false
			}
			base, _ := baseTypeName(vs.Type)
			return base == "param"
		},
		Edit: func(_ *tool.Unit, n ast.Node, stack tool.Stack) ([]tool.Edit, error) {
			vs := n.(*ast.ValueSpec)
			if len(vs.Names) != 1 {
				return nil, fmt.Errorf("param declaration must name exactly one identifier")
			}
			idx := paramDeclIndex(stack, vs)
			var value uint32
			if idx >= 0 && idx < len(f.paramValues) {
				value = f.paramValues[idx]
			}
			text := fmt.Sprintf("static constexpr uint32 %s = uint32(%d);", vs.Names[0].Name, value)
			return []tool.Edit{tool.ChangeTo(vs.Pos(), vs.End(), text)}, nil
		},
	}}
}

// paramDeclIndex reports vs's position among every top-level "param"
// declaration in the file, in source order — the Go-native analogue of
// the original's sequential get_value callback invocation order.
func paramDeclIndex(stack tool.Stack, target *ast.ValueSpec) int {
	file, ok := stack[0].(*ast.File)
	if !ok {
		return -1
	}
	idx := 0
	for _, d := range file.Decls {
		gd, ok := d.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, spec := range gd.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			if base, _ := baseTypeName(vs.Type); base != "param" {
				continue
			}
			if vs == target {
				return idx
			}
			idx++
		}
	}
	return -1
}

// parmTypeRules lowers every dialect-typed formal parameter, the
// Go-native analogue of make_parm_global/local/semaphore/pipe/math_rule.
// global/local/semaphore/pipe parameters are rewritten to their
// capitalized runtime type name with generics dropped ("a global[T]" ->
// "Global a", reordering back to the target language's "Type name"
// convention — see SPEC_FULL.md §0); math parameters are removed.
func (f *Factory) parmTypeRules() tool.Rule {
	runtimeName := map[string]string{
		"global":    "Global",
		"local":     "Local",
		"semaphore": "Semaphore",
		"pipe":      "Pipe",
	}
	return tool.Rule{
		{
			Name: "parm_dialect_type",
			Match: func(_ *tool.Unit, n ast.Node, stack tool.Stack) bool {
				field, ok := n.(*ast.Field)
				if !ok || len(field.Names) == 0 {
					return false
				}
				if _, ok := stack.Parent().(*ast.FieldList); !ok {
					return false
				}
				base, _ := baseTypeName(field.Type)
				_, known := runtimeName[base]
				return known
			},
			Edit: func(_ *tool.Unit, n ast.Node, _ tool.Stack) ([]tool.Edit, error) {
				field := n.(*ast.Field)
				base, _ := baseTypeName(field.Type)
				return []tool.Edit{tool.ChangeTo(field.Pos(), field.End(),
					runtimeName[base]+" "+field.Names[0].Name)}, nil
			},
		},
		{
			Name: "parm_math_removal",
			Match: func(_ *tool.Unit, n ast.Node, stack tool.Stack) bool {
				field, ok := n.(*ast.Field)
				if !ok || len(field.Names) == 0 {
					return false
				}
				if _, ok := stack.Parent().(*ast.FieldList); !ok {
					return false
				}
				base, _ := baseTypeName(field.Type)
				return base == "math"
			},
			Edit: func(_ *tool.Unit, n ast.Node, _ tool.Stack) ([]tool.Edit, error) {
				field := n.(*ast.Field)
				return []tool.Edit{tool.Remove(field.Pos(), field.End())}, nil
			},
		},
	}
}

// pipeCommonRules lowers the five pipe primitives shared by every mode,
// the Go-native analogue of rules_common.cpp's make_pipe_set_frame/
// wait_front/pop_front/reserve_back/push_back_rule.
func (f *Factory) pipeCommonRules() tool.Rule {
	return tool.Rule{
		{
			Name:  "pipe_set_frame",
			Match: memberCallStmt("pipe", "set_frame", 1),
			Edit: changeStmt(func(u *tool.Unit, call *ast.CallExpr) string {
				recv, _, _ := receiver(call)
				return fmt.Sprintf("%s.frame_size = %s;", recv.Name, arg(u, call, 0))
			}),
		},
		pipeZeroArgRule("wait_front", "cb_wait_front"),
		pipeZeroArgRule("pop_front", "cb_pop_front"),
		pipeZeroArgRule("reserve_back", "cb_reserve_back"),
		pipeZeroArgRule("push_back", "cb_push_back"),
	}
}

// pipeZeroArgRule builds one "self.method(); -> api(self.cb_id, self.frame_size);" case.
func pipeZeroArgRule(method, api string) tool.RuleCase {
	return tool.RuleCase{
		Name:  "pipe_" + method,
		Match: memberCallStmt("pipe", method, 0),
		Edit: changeStmt(func(u *tool.Unit, call *ast.CallExpr) string {
			recv, _, _ := receiver(call)
			return fmt.Sprintf("%s(%s.cb_id, %s.frame_size);", api, recv.Name, recv.Name)
		}),
	}
}
