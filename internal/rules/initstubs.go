package rules

import (
	"fmt"
	"go/ast"

	"github.com/tenstorrent/ronin-sub003/internal/tool"
)

// initShape renders one "__<name>_init(...)" stub call (synthesized by
// internal/mathinit's pass) into its final tanto_<name>_init(...) runtime
// call, grounded on rules_compute_init.cpp's seven local shape helpers.
type initShape func(api string, u *tool.Unit, call *ast.CallExpr) string

func initPlain(api string, u *tool.Unit, call *ast.CallExpr) string {
	// _make_math_init_rule: api();
	return api + "();"
}

func initParam1(api string, u *tool.Unit, call *ast.CallExpr) string {
	// _make_math_init_param_rule: api(arg0);
	return fmt.Sprintf("%s(%s);", api, arg(u, call, 0))
}

func initUnpackUnary(api string, u *tool.Unit, call *ast.CallExpr) string {
	// _make_unpack_unary_init_rule: api(arg0.cb_id);
	return fmt.Sprintf("%s(%s);", api, argField(u, call, 0, "cb_id"))
}

func initUnpackUnaryParam(api string, u *tool.Unit, call *ast.CallExpr) string {
	// _make_unpack_unary_init_param_rule: api(arg0.cb_id, arg1);
	return fmt.Sprintf("%s(%s, %s);", api, argField(u, call, 0, "cb_id"), arg(u, call, 1))
}

func initUnpackBinary(api string, u *tool.Unit, call *ast.CallExpr) string {
	// _make_unpack_binary_init_rule: api(arg0.cb_id, arg1.cb_id);
	return fmt.Sprintf("%s(%s, %s);", api, argField(u, call, 0, "cb_id"), argField(u, call, 1, "cb_id"))
}

func initUnpackBinaryParam(api string, u *tool.Unit, call *ast.CallExpr) string {
	// _make_unpack_binary_init_param_rule: api(arg0.cb_id, arg1.cb_id, arg2);
	return fmt.Sprintf("%s(%s, %s, %s);", api, argField(u, call, 0, "cb_id"), argField(u, call, 1, "cb_id"), arg(u, call, 2))
}

func initPack(api string, u *tool.Unit, call *ast.CallExpr) string {
	// _make_pack_init_rule: api(arg0.cb_id);
	return fmt.Sprintf("%s(%s);", api, argField(u, call, 0, "cb_id"))
}

// initStubTable maps every init-func stub name mathinit can emit
// (mathinit.InitFunc.Name(), see internal/mathinit/builtins.go's
// initFuncNames) to its argument count and lowering shape. Grounded 1:1
// on rules_compute_init.cpp; the original's two 0-arg
// tilize_block_init/untilize_block_init rules are omitted because
// math_init_builtin.cpp never routes BuiltinTilizeBlock/
// BuiltinUntilizeBlock to a dedicated Math-group InitFunc (they resolve
// to InitCopy/InitPack instead), so mathinit never emits those two stub
// names — see DESIGN.md.
var initStubTable = map[string]struct {
	argc  int
	shape initShape
}{
	"copy": {0, initPlain}, "add": {0, initPlain}, "sub": {0, initPlain}, "mul": {0, initPlain},
	"add_bcast_rows": {0, initPlain}, "sub_bcast_rows": {0, initPlain}, "mul_bcast_rows": {0, initPlain},
	"add_bcast_cols": {0, initPlain}, "sub_bcast_cols": {0, initPlain}, "mul_bcast_cols": {0, initPlain},
	"add_bcast_scalar": {0, initPlain}, "sub_bcast_scalar": {0, initPlain}, "mul_bcast_scalar": {0, initPlain},
	"reduce_max_rows": {0, initPlain}, "reduce_max_cols": {0, initPlain}, "reduce_max_scalar": {0, initPlain},
	"reduce_sum_rows": {0, initPlain}, "reduce_sum_cols": {0, initPlain}, "reduce_sum_scalar": {0, initPlain},
	"transpose": {0, initPlain},
	"copy_dst":  {0, initPlain}, "add_dst": {0, initPlain}, "sub_dst": {0, initPlain}, "rsub_dst": {0, initPlain},
	"mul_dst": {0, initPlain}, "div_dst": {0, initPlain}, "power_dst": {0, initPlain},
	"abs": {0, initPlain}, "acos": {0, initPlain}, "asin": {0, initPlain}, "atan": {0, initPlain},
	"binary_scalar": {0, initPlain}, "cast": {0, initPlain}, "ceil": {0, initPlain}, "cos": {0, initPlain},
	"elu": {0, initPlain}, "eqz": {0, initPlain}, "erf": {0, initPlain}, "erfc": {0, initPlain},
	"erfinv": {0, initPlain}, "exp": {0, initPlain}, "exp2": {0, initPlain}, "expm1": {0, initPlain},
	"fill": {0, initPlain}, "floor": {0, initPlain}, "gelu": {0, initPlain}, "gez": {0, initPlain},
	"gtz": {0, initPlain}, "heaviside": {0, initPlain}, "i0": {0, initPlain}, "isfinite": {0, initPlain},
	"isinf": {0, initPlain}, "isnan": {0, initPlain}, "isneginf": {0, initPlain}, "isposinf": {0, initPlain},
	"leaky_relu": {0, initPlain}, "lez": {0, initPlain}, "log": {0, initPlain}, "log_with_base": {0, initPlain},
	"logical_not": {0, initPlain}, "ltz": {0, initPlain}, "max": {0, initPlain}, "nez": {0, initPlain},
	"power": {0, initPlain}, "recip": {0, initPlain}, "relu": {0, initPlain}, "relu_max": {0, initPlain},
	"relu_min": {0, initPlain}, "rsqrt": {0, initPlain}, "sigmoid": {0, initPlain}, "sign": {0, initPlain},
	"signbit": {0, initPlain}, "sin": {0, initPlain}, "sqrt": {0, initPlain}, "square": {0, initPlain},
	"tan": {0, initPlain}, "tanh": {0, initPlain},

	"matmul": {1, initParam1},

	"unpack_unary": {1, initUnpackUnary}, "unpack_transpose": {1, initUnpackUnary}, "unpack_untilize_block": {1, initUnpackUnary},
	"unpack_tilize_block": {2, initUnpackUnaryParam},

	"unpack_binary": {2, initUnpackBinary}, "unpack_bcast_rows": {2, initUnpackBinary}, "unpack_bcast_cols": {2, initUnpackBinary},
	"unpack_bcast_scalar": {2, initUnpackBinary}, "unpack_reduce_rows": {2, initUnpackBinary}, "unpack_reduce_cols": {2, initUnpackBinary},
	"unpack_reduce_scalar": {2, initUnpackBinary},
	"unpack_matmul":        {3, initUnpackBinaryParam},

	"pack": {1, initPack}, "pack_row": {1, initPack}, "pack_col": {1, initPack}, "pack_scalar": {1, initPack},
}

// initStubRule is the single generic rule case that lowers every
// "__<name>_init(...)" stub mathinit.Apply may have inserted. One case
// suffices where the original needed ~60 make_*_init_rule methods
// because the stub's callee name already encodes which shape applies.
func (f *Factory) initStubRule() tool.RuleCase {
	return tool.RuleCase{
		Name: "init_stub_lowering",
		Match: func(_ *tool.Unit, n ast.Node, _ tool.Stack) bool {
			es, ok := n.(*ast.ExprStmt)
			if !ok {
				return false
			}
			call, ok := es.X.(*ast.CallExpr)
			if !ok {
				return false
			}
			id, ok := call.Fun.(*ast.Ident)
			if !ok {
				return false
			}
			name, ok := stubName(id.Name)
			if !ok {
				return false
			}
			entry, ok := initStubTable[name]
			return ok && len(call.Args) == entry.argc
		},
		Edit: changeStmt(func(u *tool.Unit, call *ast.CallExpr) string {
			id := call.Fun.(*ast.Ident)
			name, _ := stubName(id.Name)
			entry := initStubTable[name]
			return entry.shape("tanto_"+name+"_init", u, call)
		}),
	}
}

// stubName strips the "__" prefix and "_init" suffix mathinit.Apply's
// formatInsert wraps every init call name in, reporting ok=false for any
// other free-function call name.
func stubName(funcName string) (string, bool) {
	const prefix, suffix = "__", "_init"
	if len(funcName) <= len(prefix)+len(suffix) {
		return "", false
	}
	if funcName[:len(prefix)] != prefix || funcName[len(funcName)-len(suffix):] != suffix {
		return "", false
	}
	return funcName[len(prefix) : len(funcName)-len(suffix)], true
}
