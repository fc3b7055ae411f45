package rules

import (
	"fmt"
	"go/ast"

	"github.com/tenstorrent/ronin-sub003/internal/tool"
)

// mathRender renders one lowered math-method call given its call-site
// arguments.
type mathRender func(u *tool.Unit, call *ast.CallExpr) string

// mathOp is one compute:math rule-table entry: the method's argument
// count (used both to select the right make_member_call_N_matcher
// analogue and to validate the table) and its lowering.
type mathOp struct {
	argc   int
	render mathRender
}

// eltwiseBinary is _make_math_eltwise_binary_rule's Go-native shape:
// api(src0.cb_id, src1.cb_id, isrc0, isrc1, idst).
func eltwiseBinary(api string) mathRender {
	return func(u *tool.Unit, call *ast.CallExpr) string {
		return fmt.Sprintf("%s(%s, %s, %s, %s, %s);", api,
			argField(u, call, 0, "cb_id"), argField(u, call, 1, "cb_id"),
			arg(u, call, 2), arg(u, call, 3), arg(u, call, 4))
	}
}

// bcast is _make_math_bcast_rule's shape: any_tiles_bcast<EltwiseBinaryType::op,
// BroadcastType::dim>(src0.cb_id, src1.cb_id, isrc0, isrc1, idst).
func bcast(op, dim string) mathRender {
	return func(u *tool.Unit, call *ast.CallExpr) string {
		return fmt.Sprintf("any_tiles_bcast<EltwiseBinaryType::%s, BroadcastType::%s>(%s, %s, %s, %s, %s);",
			op, dim,
			argField(u, call, 0, "cb_id"), argField(u, call, 1, "cb_id"),
			arg(u, call, 2), arg(u, call, 3), arg(u, call, 4))
	}
}

// reduce is _make_math_reduce_rule's shape: reduce_tile<PoolType::pool,
// ReduceDim::dim>(src0.cb_id, src1.cb_id, isrc0, isrc1, idst).
func reduce(pool, dim string) mathRender {
	return func(u *tool.Unit, call *ast.CallExpr) string {
		return fmt.Sprintf("reduce_tile<PoolType::%s, ReduceDim::%s>(%s, %s, %s, %s, %s);",
			pool, dim,
			argField(u, call, 0, "cb_id"), argField(u, call, 1, "cb_id"),
			arg(u, call, 2), arg(u, call, 3), arg(u, call, 4))
	}
}

// eltwiseBinaryDst is _make_math_eltwise_binary_dst_rule's shape:
// api(idst0, idst1) — the dst-only variants take raw register indices,
// never a .cb_id.
func eltwiseBinaryDst(api string) mathRender {
	return func(u *tool.Unit, call *ast.CallExpr) string {
		return fmt.Sprintf("%s(%s, %s);", api, arg(u, call, 0), arg(u, call, 1))
	}
}

// eltwiseUnary is _make_math_eltwise_unary_rule's shape: api(idst). The
// "_approx" variants fall back to this same shape in the original (the
// FAST_AND_APPROX flag is dead code there — see DESIGN.md).
func eltwiseUnary(api string) mathRender {
	return func(u *tool.Unit, call *ast.CallExpr) string {
		return fmt.Sprintf("%s(%s);", api, arg(u, call, 0))
	}
}

// eltwiseUnaryParam is _make_math_eltwise_unary_param_rule's shape:
// api(idst, param).
func eltwiseUnaryParam(api string) mathRender {
	return func(u *tool.Unit, call *ast.CallExpr) string {
		return fmt.Sprintf("%s(%s, %s);", api, arg(u, call, 0), arg(u, call, 1))
	}
}

func packRender(u *tool.Unit, call *ast.CallExpr) string {
	// self.pack[_row|_col|_scalar](isrc, dst) -> pack_tile(isrc, dst.cb_id);
	return fmt.Sprintf("pack_tile(%s, %s);", arg(u, call, 0), argField(u, call, 1, "cb_id"))
}

func copyRender(u *tool.Unit, call *ast.CallExpr) string {
	// self.copy(src, isrc, idst) -> copy_tile(src.cb_id, isrc, idst);
	return fmt.Sprintf("copy_tile(%s, %s, %s);", argField(u, call, 0, "cb_id"), arg(u, call, 1), arg(u, call, 2))
}

func matmulRender(u *tool.Unit, call *ast.CallExpr) string {
	// self.matmul(src0, src1, isrc0, isrc1, idst, transpose)
	//     -> matmul_tiles(src0.cb_id, src1.cb_id, isrc0, isrc1, idst, transpose);
	return fmt.Sprintf("matmul_tiles(%s, %s, %s, %s, %s, %s);",
		argField(u, call, 0, "cb_id"), argField(u, call, 1, "cb_id"),
		arg(u, call, 2), arg(u, call, 3), arg(u, call, 4), arg(u, call, 5))
}

func transposeRender(u *tool.Unit, call *ast.CallExpr) string {
	// self.transpose(src, isrc, idst) -> transpose_wh_tile(src.cb_id, isrc, idst);
	return fmt.Sprintf("transpose_wh_tile(%s, %s, %s);", argField(u, call, 0, "cb_id"), arg(u, call, 1), arg(u, call, 2))
}

// sfpuUnary lists every zero-extra-arg SFPU op (compute:math's "unary"
// and "unary_approx" families collapse to the same one-arg shape, since
// the approx flag is dead code in the original — rules_compute.cpp,
// _make_math_eltwise_unary_approx_rule).
var sfpuUnary = []struct{ method, api string }{
	{"abs", "abs_tile"},
	{"acos", "acos_tile"},
	{"asin", "asin_tile"},
	{"atan", "atan_tile"},
	{"cast_bf16_u16", "tanto_cast_bf16_u16"},
	{"cast_u16_bf16", "tanto_cast_u16_bf16"},
	{"ceil", "ceil_tile"},
	{"cos", "cos_tile"},
	{"eqz", "eqz_tile"},
	{"erf", "erf_tile"},
	{"erfc", "erfc_tile"},
	{"erfinv", "erfinv_tile"},
	{"exp", "exp_tile"},
	{"exp2", "exp2_tile"},
	{"expm1", "expm1_tile"},
	{"floor", "floor_tile"},
	{"gelu", "gelu_tile"},
	{"gez", "gez_tile"},
	{"gtz", "gtz_tile"},
	{"i0", "i0_tile"},
	{"isfinite", "isfinite_tile"},
	{"isinf", "isinf_tile"},
	{"isnan", "isnan_tile"},
	{"isneginf", "isneginf_tile"},
	{"isposinf", "isposinf_tile"},
	{"lez", "lez_tile"},
	{"log", "log_tile"},
	{"logical_not", "logical_not_tile"},
	{"ltz", "ltz_tile"},
	{"max", "tanto_max_tile"},
	{"nez", "nez_tile"},
	{"recip", "recip_tile"},
	{"relu", "relu_tile"},
	{"rsqrt", "rsqrt_tile"},
	{"sigmoid", "sigmoid_tile"},
	{"sign", "sign_tile"},
	{"signbit", "signbit_tile"},
	{"sin", "sin_tile"},
	{"sqrt", "sqrt_tile"},
	{"square", "square_tile"},
	{"tan", "tan_tile"},
	{"tanh", "tanh_tile"},
}

// sfpuUnaryParam lists every one-extra-arg SFPU op.
var sfpuUnaryParam = []struct{ method, api string }{
	{"add_scalar", "add_unary_tile"},
	{"div_scalar", "div_unary_tile"},
	{"elu", "elu_tile"},
	{"fill", "fill_tile_bitcast"},
	{"heaviside", "heaviside_tile"},
	{"leaky_relu", "leaky_relu_tile"},
	{"log_with_base", "log_with_base_tile"},
	{"mul_scalar", "mul_unary_tile"},
	{"power", "power_tile"},
	{"relu_max", "relu_max_tile"},
	{"relu_min", "relu_min_tile"},
	{"rsub_scalar", "rsub_unary_tile"},
	{"sub_scalar", "sub_unary_tile"},
}

// bcastOps lists the 9 add/sub/mul x rows/cols/scalar broadcast methods.
var bcastOps = []struct{ method, op, dim string }{
	{"add_bcast_rows", "ELWADD", "ROW"},
	{"sub_bcast_rows", "ELWSUB", "ROW"},
	{"mul_bcast_rows", "ELWMUL", "ROW"},
	{"add_bcast_cols", "ELWADD", "COL"},
	{"sub_bcast_cols", "ELWSUB", "COL"},
	{"mul_bcast_cols", "ELWMUL", "COL"},
	{"add_bcast_scalar", "ELWADD", "SCALAR"},
	{"sub_bcast_scalar", "ELWSUB", "SCALAR"},
	{"mul_bcast_scalar", "ELWMUL", "SCALAR"},
}

// reduceOps lists the 6 max/sum x rows/cols/scalar reduce methods.
var reduceOps = []struct{ method, pool, dim string }{
	{"reduce_max_rows", "MAX", "REDUCE_ROW"},
	{"reduce_max_cols", "MAX", "REDUCE_COL"},
	{"reduce_max_scalar", "MAX", "REDUCE_SCALAR"},
	{"reduce_sum_rows", "SUM", "REDUCE_ROW"},
	{"reduce_sum_cols", "SUM", "REDUCE_COL"},
	{"reduce_sum_scalar", "SUM", "REDUCE_SCALAR"},
}

// dstOps lists the 7 two-register dst-only math ops.
var dstOps = []struct{ method, api string }{
	{"copy_dst", "copy_dest_values"},
	{"add_dst", "add_binary_tile"},
	{"sub_dst", "sub_binary_tile"},
	{"rsub_dst", "rsub_binary_tile"},
	{"mul_dst", "mul_binary_tile"},
	{"div_dst", "div_binary_tile"},
	{"power_dst", "power_binary_tile"},
}

// mathOpTable assembles the full compute:math rule table in one place —
// grounded 1:1 on rules_compute.cpp's make_math_* methods.
func mathOpTable() map[string]mathOp {
	t := map[string]mathOp{
		"pack":        {2, packRender},
		"pack_row":    {2, packRender},
		"pack_col":    {2, packRender},
		"pack_scalar": {2, packRender},
		"copy":        {3, copyRender},
		"add":         {5, eltwiseBinary("add_tiles")},
		"sub":         {5, eltwiseBinary("sub_tiles")},
		"mul":         {5, eltwiseBinary("mul_tiles")},
		"matmul":      {6, matmulRender},
		"transpose":   {3, transposeRender},
	}
	for _, b := range bcastOps {
		t[b.method] = mathOp{5, bcast(b.op, b.dim)}
	}
	for _, r := range reduceOps {
		t[r.method] = mathOp{5, reduce(r.pool, r.dim)}
	}
	for _, d := range dstOps {
		t[d.method] = mathOp{2, eltwiseBinaryDst(d.api)}
	}
	for _, s := range sfpuUnary {
		t[s.method] = mathOp{1, eltwiseUnary(s.api)}
	}
	for _, s := range sfpuUnaryParam {
		t[s.method] = mathOp{2, eltwiseUnaryParam(s.api)}
	}
	return t
}

// mathOpRules turns mathOpTable into one tool.RuleCase per method.
func (f *Factory) mathOpRules() tool.Rule {
	var rule tool.Rule
	for method, op := range mathOpTable() {
		method, op := method, op
		rule = append(rule, tool.RuleCase{
			Name:  "math_" + method,
			Match: memberCallStmt("math", method, op.argc),
			Edit:  changeStmt(op.render),
		})
	}
	return rule
}

// mathDeclRule is make_math_decl_rule's Go-native analogue: a
// "var acc math[T]" declaration inside a compound statement becomes
// tile_regs_acquire/wait in its place, with tile_regs_commit/release
// inserted right before the enclosing block's closing brace.
//
// The original matches the var decl and the enclosing compoundStmt
// together (hasParent(compoundStmt().bind("parent"))); a raw go/ast walk
// sees the DeclStmt and its parent *ast.BlockStmt as two separate nodes,
// so this is expressed as a single case keyed off the DeclStmt that also
// reaches into its parent via the Stack.
func (f *Factory) mathDeclRule() tool.RuleCase {
	return tool.RuleCase{
		Name: "math_decl",
		Match: func(_ *tool.Unit, n ast.Node, stack tool.Stack) bool {
			decl, ok := n.(*ast.DeclStmt)
			if !ok {
				return false
			}
			gd, ok := decl.Decl.(*ast.GenDecl)
			if !ok {
				return false
			}
			for _, spec := range gd.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				if base, _ := baseTypeName(vs.Type); base == "math" {
					return true
				}
			}
			return false
		},
		Edit: func(_ *tool.Unit, n ast.Node, stack tool.Stack) ([]tool.Edit, error) {
			decl := n.(*ast.DeclStmt)
			block, ok := stack.Parent().(*ast.BlockStmt)
			if !ok {
				return nil, fmt.Errorf("math declaration outside a block")
			}
			edits := []tool.Edit{
				tool.ChangeTo(decl.Pos(), decl.End(), "tile_regs_acquire();tile_regs_wait();"),
				tool.InsertBefore(block.Rbrace, "tile_regs_commit();tile_regs_release();"),
			}
			return edits, nil
		},
	}
}

// mathArgRemovalRule is make_math_arg_rule's Go-native analogue: any call
// argument that is a bare identifier declared with dialect type math is
// removed outright — math has no runtime representation once its
// enclosing method calls have all been lowered. When the argument
// follows another one, the comma separating them is removed with it; in
// every dialect call shape this rule is grounded on, a math-typed
// argument is always the sole or last slot consumed by helper functions
// that otherwise take no trailing arguments, so no dangling comma is
// produced in practice.
func (f *Factory) mathArgRemovalRule() tool.RuleCase {
	return tool.RuleCase{
		Name: "math_arg_removal",
		Match: func(_ *tool.Unit, n ast.Node, stack tool.Stack) bool {
			id, ok := n.(*ast.Ident)
			if !ok {
				return false
			}
			if _, ok := stack.Parent().(*ast.CallExpr); !ok {
				return false
			}
			info, ok := resolveIdent(stack, id.Name)
			return ok && info.TypeName == "math"
		},
		Edit: func(_ *tool.Unit, n ast.Node, stack tool.Stack) ([]tool.Edit, error) {
			id := n.(*ast.Ident)
			call := stack.Parent().(*ast.CallExpr)
			for i, a := range call.Args {
				if a == id && i > 0 {
					return []tool.Edit{tool.Remove(call.Args[i-1].End(), id.End())}, nil
				}
			}
			return []tool.Edit{tool.Remove(id.Pos(), id.End())}, nil
		},
	}
}

// tilizeFuncRules lowers the two free-function compute:functions rules.
func (f *Factory) tilizeFuncRules() tool.Rule {
	return tool.Rule{
		{
			Name:  "func_tilize_block",
			Match: freeCallStmt("tilize_block", 3),
			Edit: changeStmt(func(u *tool.Unit, call *ast.CallExpr) string {
				return fmt.Sprintf("tilize_block(%s, %s, %s);",
					argField(u, call, 0, "cb_id"), arg(u, call, 1), argField(u, call, 2, "cb_id"))
			}),
		},
		{
			Name:  "func_untilize_block",
			Match: freeCallStmt("untilize_block", 3),
			Edit: changeStmt(func(u *tool.Unit, call *ast.CallExpr) string {
				return fmt.Sprintf("untilize_block<1>(%s, %s, %s);",
					argField(u, call, 0, "cb_id"), arg(u, call, 1), argField(u, call, 2, "cb_id"))
			}),
		},
	}
}
