// Package mathinit implements the math-init dataflow analysis and pass
// (spec.md §4.5, SPEC_FULL.md §5.5): for every call into one of the tile
// compute builtins, determine whether the matching low-level init
// sequence must be (re)emitted ahead of it, using a bounded-lattice
// summary propagated both within and across functions.
package mathinit

// BuiltinID names one recognized tile-compute primitive, the Go-native
// analogue of MathBuiltinId (math_init_builtin.hpp). Zero value is None:
// "not a recognized builtin", distinct from the init-state None meaning
// "no init required yet" (see state.go).
type BuiltinID int

const (
	BuiltinNone BuiltinID = iota
	BuiltinPack
	BuiltinPackRow
	BuiltinPackCol
	BuiltinPackScalar
	BuiltinCopy
	BuiltinAdd
	BuiltinSub
	BuiltinMul
	BuiltinAddBcastRows
	BuiltinSubBcastRows
	BuiltinMulBcastRows
	BuiltinAddBcastCols
	BuiltinSubBcastCols
	BuiltinMulBcastCols
	BuiltinAddBcastScalar
	BuiltinSubBcastScalar
	BuiltinMulBcastScalar
	BuiltinMatmul
	BuiltinReduceMaxRows
	BuiltinReduceMaxCols
	BuiltinReduceMaxScalar
	BuiltinReduceSumRows
	BuiltinReduceSumCols
	BuiltinReduceSumScalar
	BuiltinTranspose
	BuiltinTilizeBlock
	BuiltinUntilizeBlock
	BuiltinCopyDst
	BuiltinAddDst
	BuiltinSubDst
	BuiltinRsubDst
	BuiltinMulDst
	BuiltinDivDst
	BuiltinPowerDst
	BuiltinAbs
	BuiltinAcos
	BuiltinAddScalar
	BuiltinAsin
	BuiltinAtan
	BuiltinCastBf16U16
	BuiltinCastU16Bf16
	BuiltinCeil
	BuiltinCos
	BuiltinDivScalar
	BuiltinElu
	BuiltinEqz
	BuiltinErf
	BuiltinErfc
	BuiltinErfinv
	BuiltinExp
	BuiltinExp2
	BuiltinExpm1
	BuiltinFill
	BuiltinFloor
	BuiltinGelu
	BuiltinGez
	BuiltinGtz
	BuiltinHeaviside
	BuiltinI0
	BuiltinIsFinite
	BuiltinIsInf
	BuiltinIsNan
	BuiltinIsNegInf
	BuiltinIsPosInf
	BuiltinLeakyRelu
	BuiltinLez
	BuiltinLog
	BuiltinLogWithBase
	BuiltinLogicalNot
	BuiltinLtz
	BuiltinMax
	BuiltinMulScalar
	BuiltinNez
	BuiltinPower
	BuiltinRecip
	BuiltinRelu
	BuiltinReluMax
	BuiltinReluMin
	BuiltinRsqrt
	BuiltinRsubScalar
	BuiltinSigmoid
	BuiltinSign
	BuiltinSignbit
	BuiltinSin
	BuiltinSqrt
	BuiltinSquare
	BuiltinSubScalar
	BuiltinTan
	BuiltinTanh

	builtinCount
)

// Group is one of the four pipeline stages a builtin's init sequence can
// target, the Go-native analogue of MathInitFuncGroup.
type Group int

const (
	GroupUnpack Group = iota
	GroupMath
	GroupPack
	GroupSFPU

	groupCount
)

// InitFunc names the low-level init routine a (BuiltinID, Group) pair
// resolves to, the Go-native analogue of MathInitFunc. InitNone and
// InitUndef are the two special lattice values (see state.go); the rest
// name one concrete init routine each.
type InitFunc int

const (
	InitNone InitFunc = iota
	InitUndef

	// unpack
	InitUnpackBinary
	InitUnpackBcastRows
	InitUnpackBcastCols
	InitUnpackBcastScalar
	InitUnpackMatmul
	InitUnpackUnary
	InitUnpackReduceRows
	InitUnpackReduceCols
	InitUnpackReduceScalar
	InitUnpackTranspose
	InitUnpackTilizeBlock
	InitUnpackUntilizeBlock

	// pack
	InitPack
	InitPackRow
	InitPackCol
	InitPackScalar

	// math
	InitCopy
	InitAdd
	InitSub
	InitMul
	InitAddBcastRows
	InitSubBcastRows
	InitMulBcastRows
	InitAddBcastCols
	InitSubBcastCols
	InitMulBcastCols
	InitAddBcastScalar
	InitSubBcastScalar
	InitMulBcastScalar
	InitMatmul
	InitReduceMaxRows
	InitReduceMaxCols
	InitReduceMaxScalar
	InitReduceSumRows
	InitReduceSumCols
	InitReduceSumScalar
	InitTranspose

	// sfpu
	InitCopyDst
	InitAddDst
	InitSubDst
	InitRsubDst
	InitMulDst
	InitDivDst
	InitPowerDst
	InitAbs
	InitAcos
	InitAsin
	InitAtan
	InitBinaryScalar
	InitCast
	InitCeil
	InitCos
	InitElu
	InitEqz
	InitErf
	InitErfc
	InitErfinv
	InitExp
	InitExp2
	InitExpm1
	InitFill
	InitFloor
	InitGelu
	InitGez
	InitGtz
	InitHeaviside
	InitI0
	InitIsFinite
	InitIsInf
	InitIsNan
	InitIsNegInf
	InitIsPosInf
	InitLeakyRelu
	InitLez
	InitLog
	InitLogWithBase
	InitLogicalNot
	InitLtz
	InitMax
	InitNez
	InitPower
	InitRecip
	InitRelu
	InitReluMax
	InitReluMin
	InitRsqrt
	InitSigmoid
	InitSign
	InitSignbit
	InitSin
	InitSqrt
	InitSquare
	InitTan
	InitTanh
)

// initFuncNames mirrors get_math_init_func_name: the names render
// diagnostics and also form the "__<name>_init" stub calls the pass
// inserts (see formatInsert).
var initFuncNames = map[InitFunc]string{
	InitNone:  "[none]",
	InitUndef: "[undef]",

	InitUnpackBinary:       "unpack_binary",
	InitUnpackBcastRows:    "unpack_bcast_rows",
	InitUnpackBcastCols:    "unpack_bcast_cols",
	InitUnpackBcastScalar:  "unpack_bcast_scalar",
	InitUnpackMatmul:       "unpack_matmul",
	InitUnpackUnary:        "unpack_unary",
	InitUnpackReduceRows:   "unpack_reduce_rows",
	InitUnpackReduceCols:   "unpack_reduce_cols",
	InitUnpackReduceScalar: "unpack_reduce_scalar",
	InitUnpackTranspose:    "unpack_transpose",
	InitUnpackTilizeBlock:  "unpack_tilize_block",
	InitUnpackUntilizeBlock: "unpack_untilize_block",

	InitPack:       "pack",
	InitPackRow:    "pack_row",
	InitPackCol:    "pack_col",
	InitPackScalar: "pack_scalar",

	InitCopy:           "copy",
	InitAdd:            "add",
	InitSub:            "sub",
	InitMul:            "mul",
	InitAddBcastRows:   "add_bcast_rows",
	InitSubBcastRows:   "sub_bcast_rows",
	InitMulBcastRows:   "mul_bcast_rows",
	InitAddBcastCols:   "add_bcast_cols",
	InitSubBcastCols:   "sub_bcast_cols",
	InitMulBcastCols:   "mul_bcast_cols",
	InitAddBcastScalar: "add_bcast_scalar",
	InitSubBcastScalar: "sub_bcast_scalar",
	InitMulBcastScalar: "mul_bcast_scalar",
	InitMatmul:         "matmul",
	InitReduceMaxRows:   "reduce_max_rows",
	InitReduceMaxCols:   "reduce_max_cols",
	InitReduceMaxScalar: "reduce_max_scalar",
	InitReduceSumRows:   "reduce_sum_rows",
	InitReduceSumCols:   "reduce_sum_cols",
	InitReduceSumScalar: "reduce_sum_scalar",
	InitTranspose:       "transpose",

	InitCopyDst:  "copy_dst",
	InitAddDst:   "add_dst",
	InitSubDst:   "sub_dst",
	InitRsubDst:  "rsub_dst",
	InitMulDst:   "mul_dst",
	InitDivDst:   "div_dst",
	InitPowerDst: "power_dst",
	InitAbs:      "abs",
	InitAcos:     "acos",
	InitAsin:     "asin",
	InitAtan:     "atan",
	InitBinaryScalar: "binary_scalar",
	InitCast:     "cast",
	InitCeil:     "ceil",
	InitCos:      "cos",
	InitElu:      "elu",
	InitEqz:      "eqz",
	InitErf:      "erf",
	InitErfc:     "erfc",
	InitErfinv:   "erfinv",
	InitExp:      "exp",
	InitExp2:     "exp2",
	InitExpm1:    "expm1",
	InitFill:     "fill",
	InitFloor:    "floor",
	InitGelu:     "gelu",
	InitGez:      "gez",
	InitGtz:      "gtz",
	InitHeaviside: "heaviside",
	InitI0:       "i0",
	InitIsFinite: "isfinite",
	InitIsInf:    "isinf",
	InitIsNan:    "isnan",
	InitIsNegInf: "isneginf",
	InitIsPosInf: "isposinf",
	InitLeakyRelu: "leaky_relu",
	InitLez:      "lez",
	InitLog:      "log",
	InitLogWithBase: "log_with_base",
	InitLogicalNot:  "logical_not",
	InitLtz:      "ltz",
	InitMax:      "max",
	InitNez:      "nez",
	InitPower:    "power",
	InitRecip:    "recip",
	InitRelu:     "relu",
	InitReluMax:  "relu_max",
	InitReluMin:  "relu_min",
	InitRsqrt:    "rsqrt",
	InitSigmoid:  "sigmoid",
	InitSign:     "sign",
	InitSignbit:  "signbit",
	InitSin:      "sin",
	InitSqrt:     "sqrt",
	InitSquare:   "square",
	InitTan:      "tan",
	InitTanh:     "tanh",
}

// Name renders f for diagnostics and stub names, "[?]" if unknown — matching
// get_math_init_func_name's fallback.
func (f InitFunc) Name() string {
	if n, ok := initFuncNames[f]; ok {
		return n
	}
	return "[?]"
}

// builtinByName maps (class name, method name) to a BuiltinID, the
// Go-native analogue of MathInitBuiltinHandler::map. The free functions
// tilize_block/untilize_block have no receiver class in the dialect (they
// take the destination tile as their first argument, not a receiver).
var builtinByName = map[string]BuiltinID{
	"pack":              BuiltinPack,
	"pack_row":          BuiltinPackRow,
	"pack_col":          BuiltinPackCol,
	"pack_scalar":       BuiltinPackScalar,
	"copy":              BuiltinCopy,
	"add":               BuiltinAdd,
	"sub":               BuiltinSub,
	"mul":               BuiltinMul,
	"add_bcast_rows":    BuiltinAddBcastRows,
	"sub_bcast_rows":    BuiltinSubBcastRows,
	"mul_bcast_rows":    BuiltinMulBcastRows,
	"add_bcast_cols":    BuiltinAddBcastCols,
	"sub_bcast_cols":    BuiltinSubBcastCols,
	"mul_bcast_cols":    BuiltinMulBcastCols,
	"add_bcast_scalar":  BuiltinAddBcastScalar,
	"sub_bcast_scalar":  BuiltinSubBcastScalar,
	"mul_bcast_scalar":  BuiltinMulBcastScalar,
	"matmul":            BuiltinMatmul,
	"reduce_max_rows":   BuiltinReduceMaxRows,
	"reduce_max_cols":   BuiltinReduceMaxCols,
	"reduce_max_scalar": BuiltinReduceMaxScalar,
	"reduce_sum_rows":   BuiltinReduceSumRows,
	"reduce_sum_cols":   BuiltinReduceSumCols,
	"reduce_sum_scalar": BuiltinReduceSumScalar,
	"transpose":         BuiltinTranspose,
	"copy_dst":          BuiltinCopyDst,
	"add_dst":           BuiltinAddDst,
	"sub_dst":           BuiltinSubDst,
	"rsub_dst":          BuiltinRsubDst,
	"mul_dst":           BuiltinMulDst,
	"div_dst":           BuiltinDivDst,
	"power_dst":         BuiltinPowerDst,
	"abs":               BuiltinAbs,
	"acos":              BuiltinAcos,
	"add_scalar":        BuiltinAddScalar,
	"asin":              BuiltinAsin,
	"atan":              BuiltinAtan,
	"cast_bf16_u16":     BuiltinCastBf16U16,
	"cast_u16_bf16":     BuiltinCastU16Bf16,
	"ceil":              BuiltinCeil,
	"cos":               BuiltinCos,
	"div_scalar":        BuiltinDivScalar,
	"elu":               BuiltinElu,
	"eqz":               BuiltinEqz,
	"erf":               BuiltinErf,
	"erfc":              BuiltinErfc,
	"erfinv":            BuiltinErfinv,
	"exp":               BuiltinExp,
	"exp2":              BuiltinExp2,
	"expm1":             BuiltinExpm1,
	"fill":              BuiltinFill,
	"floor":             BuiltinFloor,
	"gelu":              BuiltinGelu,
	"gez":               BuiltinGez,
	"gtz":               BuiltinGtz,
	"heaviside":         BuiltinHeaviside,
	"i0":                BuiltinI0,
	"isfinite":          BuiltinIsFinite,
	"isinf":             BuiltinIsInf,
	"isnan":             BuiltinIsNan,
	"isneginf":          BuiltinIsNegInf,
	"isposinf":          BuiltinIsPosInf,
	"leaky_relu":        BuiltinLeakyRelu,
	"lez":               BuiltinLez,
	"log":               BuiltinLog,
	"log_with_base":     BuiltinLogWithBase,
	"logical_not":       BuiltinLogicalNot,
	"ltz":               BuiltinLtz,
	"max":               BuiltinMax,
	"mul_scalar":        BuiltinMulScalar,
	"nez":               BuiltinNez,
	"power":             BuiltinPower,
	"recip":             BuiltinRecip,
	"relu":              BuiltinRelu,
	"relu_max":          BuiltinReluMax,
	"relu_min":          BuiltinReluMin,
	"rsqrt":             BuiltinRsqrt,
	"rsub_scalar":       BuiltinRsubScalar,
	"sigmoid":           BuiltinSigmoid,
	"sign":              BuiltinSign,
	"signbit":           BuiltinSignbit,
	"sin":               BuiltinSin,
	"sqrt":              BuiltinSqrt,
	"square":            BuiltinSquare,
	"sub_scalar":        BuiltinSubScalar,
	"tan":               BuiltinTan,
	"tanh":              BuiltinTanh,
}

// LookupBuiltin resolves a member call's (receiver class, method) pair, or
// a free-function name with an empty class, to a BuiltinID.
func LookupBuiltin(className, methodName string) BuiltinID {
	if className == "" {
		switch methodName {
		case "tilize_block":
			return BuiltinTilizeBlock
		case "untilize_block":
			return BuiltinUntilizeBlock
		}
		return BuiltinNone
	}
	if className != "math" {
		return BuiltinNone
	}
	if id, ok := builtinByName[methodName]; ok {
		return id
	}
	return BuiltinNone
}

// initFuncTable is the (BuiltinID, Group) -> InitFunc table, the Go-native
// analogue of MathInitFuncHandler's m_map, built once at init time from
// the same per-group entries math_init_builtin.cpp's MathInitFuncHandler
// ::init() populates via enter_unpack/enter_math/enter_pack/enter_sfpu.
var initFuncTable [builtinCount][groupCount]InitFunc

func enter(id BuiltinID, group Group, f InitFunc) {
	initFuncTable[id][group] = f
}

func init() {
	// unpack
	enter(BuiltinCopy, GroupUnpack, InitUnpackUnary)
	enter(BuiltinAdd, GroupUnpack, InitUnpackBinary)
	enter(BuiltinSub, GroupUnpack, InitUnpackBinary)
	enter(BuiltinMul, GroupUnpack, InitUnpackBinary)
	enter(BuiltinAddBcastRows, GroupUnpack, InitUnpackBcastRows)
	enter(BuiltinSubBcastRows, GroupUnpack, InitUnpackBcastRows)
	enter(BuiltinMulBcastRows, GroupUnpack, InitUnpackBcastRows)
	enter(BuiltinAddBcastCols, GroupUnpack, InitUnpackBcastCols)
	enter(BuiltinSubBcastCols, GroupUnpack, InitUnpackBcastCols)
	enter(BuiltinMulBcastCols, GroupUnpack, InitUnpackBcastCols)
	enter(BuiltinAddBcastScalar, GroupUnpack, InitUnpackBcastScalar)
	enter(BuiltinSubBcastScalar, GroupUnpack, InitUnpackBcastScalar)
	enter(BuiltinMulBcastScalar, GroupUnpack, InitUnpackBcastScalar)
	enter(BuiltinMatmul, GroupUnpack, InitUnpackMatmul)
	enter(BuiltinReduceMaxRows, GroupUnpack, InitUnpackReduceRows)
	enter(BuiltinReduceMaxCols, GroupUnpack, InitUnpackReduceCols)
	enter(BuiltinReduceMaxScalar, GroupUnpack, InitUnpackReduceScalar)
	enter(BuiltinReduceSumRows, GroupUnpack, InitUnpackReduceRows)
	enter(BuiltinReduceSumCols, GroupUnpack, InitUnpackReduceCols)
	enter(BuiltinReduceSumScalar, GroupUnpack, InitUnpackReduceScalar)
	enter(BuiltinTranspose, GroupUnpack, InitUnpackTranspose)
	enter(BuiltinTilizeBlock, GroupUnpack, InitUnpackTilizeBlock)
	enter(BuiltinUntilizeBlock, GroupUnpack, InitUnpackUntilizeBlock)

	// math
	enter(BuiltinCopy, GroupMath, InitCopy)
	enter(BuiltinAdd, GroupMath, InitAdd)
	enter(BuiltinSub, GroupMath, InitSub)
	enter(BuiltinMul, GroupMath, InitMul)
	enter(BuiltinAddBcastRows, GroupMath, InitAddBcastRows)
	enter(BuiltinSubBcastRows, GroupMath, InitSubBcastRows)
	enter(BuiltinMulBcastRows, GroupMath, InitMulBcastRows)
	enter(BuiltinAddBcastCols, GroupMath, InitAddBcastCols)
	enter(BuiltinSubBcastCols, GroupMath, InitSubBcastCols)
	enter(BuiltinMulBcastCols, GroupMath, InitMulBcastCols)
	enter(BuiltinAddBcastScalar, GroupMath, InitAddBcastScalar)
	enter(BuiltinSubBcastScalar, GroupMath, InitSubBcastScalar)
	enter(BuiltinMulBcastScalar, GroupMath, InitMulBcastScalar)
	enter(BuiltinMatmul, GroupMath, InitMatmul)
	enter(BuiltinReduceMaxRows, GroupMath, InitReduceMaxRows)
	enter(BuiltinReduceMaxCols, GroupMath, InitReduceMaxCols)
	enter(BuiltinReduceMaxScalar, GroupMath, InitReduceMaxScalar)
	enter(BuiltinReduceSumRows, GroupMath, InitReduceSumRows)
	enter(BuiltinReduceSumCols, GroupMath, InitReduceSumCols)
	enter(BuiltinReduceSumScalar, GroupMath, InitReduceSumScalar)
	enter(BuiltinTranspose, GroupMath, InitTranspose)
	enter(BuiltinTilizeBlock, GroupMath, InitCopy)
	enter(BuiltinUntilizeBlock, GroupMath, InitCopy)

	// sfpu
	enter(BuiltinCopyDst, GroupSFPU, InitCopyDst)
	enter(BuiltinAddDst, GroupSFPU, InitAddDst)
	enter(BuiltinSubDst, GroupSFPU, InitSubDst)
	enter(BuiltinRsubDst, GroupSFPU, InitRsubDst)
	enter(BuiltinMulDst, GroupSFPU, InitMulDst)
	enter(BuiltinDivDst, GroupSFPU, InitDivDst)
	enter(BuiltinPowerDst, GroupSFPU, InitPowerDst)
	enter(BuiltinAbs, GroupSFPU, InitAbs)
	enter(BuiltinAcos, GroupSFPU, InitAcos)
	enter(BuiltinAddScalar, GroupSFPU, InitBinaryScalar)
	enter(BuiltinAsin, GroupSFPU, InitAsin)
	enter(BuiltinAtan, GroupSFPU, InitAtan)
	enter(BuiltinCastBf16U16, GroupSFPU, InitCast)
	enter(BuiltinCastU16Bf16, GroupSFPU, InitCast)
	enter(BuiltinCeil, GroupSFPU, InitCeil)
	enter(BuiltinCos, GroupSFPU, InitCos)
	enter(BuiltinDivScalar, GroupSFPU, InitBinaryScalar)
	enter(BuiltinElu, GroupSFPU, InitElu)
	enter(BuiltinEqz, GroupSFPU, InitEqz)
	enter(BuiltinErf, GroupSFPU, InitErf)
	enter(BuiltinErfc, GroupSFPU, InitErfc)
	enter(BuiltinErfinv, GroupSFPU, InitErfinv)
	enter(BuiltinExp, GroupSFPU, InitExp)
	enter(BuiltinExp2, GroupSFPU, InitExp2)
	enter(BuiltinExpm1, GroupSFPU, InitExpm1)
	enter(BuiltinFill, GroupSFPU, InitFill)
	enter(BuiltinFloor, GroupSFPU, InitFloor)
	enter(BuiltinGelu, GroupSFPU, InitGelu)
	enter(BuiltinGez, GroupSFPU, InitGez)
	enter(BuiltinGtz, GroupSFPU, InitGtz)
	enter(BuiltinHeaviside, GroupSFPU, InitHeaviside)
	enter(BuiltinI0, GroupSFPU, InitI0)
	enter(BuiltinIsFinite, GroupSFPU, InitIsFinite)
	enter(BuiltinIsInf, GroupSFPU, InitIsInf)
	enter(BuiltinIsNan, GroupSFPU, InitIsNan)
	enter(BuiltinIsNegInf, GroupSFPU, InitIsNegInf)
	enter(BuiltinIsPosInf, GroupSFPU, InitIsPosInf)
	enter(BuiltinLeakyRelu, GroupSFPU, InitLeakyRelu)
	enter(BuiltinLez, GroupSFPU, InitLez)
	enter(BuiltinLog, GroupSFPU, InitLog)
	enter(BuiltinLogWithBase, GroupSFPU, InitLogWithBase)
	enter(BuiltinLogicalNot, GroupSFPU, InitLogicalNot)
	enter(BuiltinLtz, GroupSFPU, InitLtz)
	enter(BuiltinMax, GroupSFPU, InitMax)
	enter(BuiltinMulScalar, GroupSFPU, InitBinaryScalar)
	enter(BuiltinNez, GroupSFPU, InitNez)
	enter(BuiltinPower, GroupSFPU, InitPower)
	enter(BuiltinRecip, GroupSFPU, InitRecip)
	enter(BuiltinRelu, GroupSFPU, InitRelu)
	enter(BuiltinReluMax, GroupSFPU, InitReluMax)
	enter(BuiltinReluMin, GroupSFPU, InitReluMin)
	enter(BuiltinRsqrt, GroupSFPU, InitRsqrt)
	enter(BuiltinRsubScalar, GroupSFPU, InitBinaryScalar)
	enter(BuiltinSigmoid, GroupSFPU, InitSigmoid)
	enter(BuiltinSign, GroupSFPU, InitSign)
	enter(BuiltinSignbit, GroupSFPU, InitSignbit)
	enter(BuiltinSin, GroupSFPU, InitSin)
	enter(BuiltinSqrt, GroupSFPU, InitSqrt)
	enter(BuiltinSquare, GroupSFPU, InitSquare)
	enter(BuiltinSubScalar, GroupSFPU, InitBinaryScalar)
	enter(BuiltinTan, GroupSFPU, InitTan)
	enter(BuiltinTanh, GroupSFPU, InitTanh)

	// pack
	enter(BuiltinPack, GroupPack, InitPack)
	enter(BuiltinPackRow, GroupPack, InitPackRow)
	enter(BuiltinPackCol, GroupPack, InitPackCol)
	enter(BuiltinPackScalar, GroupPack, InitPackScalar)
	enter(BuiltinTilizeBlock, GroupPack, InitPack)
	enter(BuiltinUntilizeBlock, GroupPack, InitPack)
}

// InitFuncFor resolves a (BuiltinID, Group) pair to its init routine.
// Unset entries default to InitNone (the table's zero value), meaning
// that builtin has no init obligation in that pipeline stage — e.g. a
// math-group SFPU op has no GroupPack entry.
func InitFuncFor(id BuiltinID, group Group) InitFunc {
	return initFuncTable[id][group]
}

// MaxArgs bounds the number of argument slots an init call can carry, the
// Go-native analogue of MathInitArgConst::MAX_ARGS.
const MaxArgs = 3

// ArgUndef marks an unpopulated argument slot (MathInitArgConst::ARG_UNDEF).
const ArgUndef = -1

// argDescTable is the (BuiltinID, Group) -> up to MaxArgs actual-argument
// positions table, the Go-native analogue of MathInitArgsBuilder's
// m_arg_desc, built from math_init_args.cpp's set_arg_desc_* calls. A
// descriptor position of ArgUndef (the table's zero-filled default)
// terminates the list early, matching the original's desc[i] < 0 break.
var argDescTable [builtinCount][groupCount][MaxArgs]int

func setArgDesc(id BuiltinID, group Group, positions ...int) {
	var d [MaxArgs]int
	for i := range d {
		d[i] = ArgUndef
	}
	copy(d[:], positions)
	argDescTable[id][group] = d
}

func init() {
	for i := range argDescTable {
		for g := range argDescTable[i] {
			for k := range argDescTable[i][g] {
				argDescTable[i][g][k] = ArgUndef
			}
		}
	}

	// unpack
	setArgDesc(BuiltinCopy, GroupUnpack, 0)
	setArgDesc(BuiltinAdd, GroupUnpack, 0, 1)
	setArgDesc(BuiltinSub, GroupUnpack, 0, 1)
	setArgDesc(BuiltinMul, GroupUnpack, 0, 1)
	setArgDesc(BuiltinAddBcastRows, GroupUnpack, 0, 1)
	setArgDesc(BuiltinSubBcastRows, GroupUnpack, 0, 1)
	setArgDesc(BuiltinMulBcastRows, GroupUnpack, 0, 1)
	setArgDesc(BuiltinAddBcastCols, GroupUnpack, 0, 1)
	setArgDesc(BuiltinSubBcastCols, GroupUnpack, 0, 1)
	setArgDesc(BuiltinMulBcastCols, GroupUnpack, 0, 1)
	setArgDesc(BuiltinAddBcastScalar, GroupUnpack, 0, 1)
	setArgDesc(BuiltinSubBcastScalar, GroupUnpack, 0, 1)
	setArgDesc(BuiltinMulBcastScalar, GroupUnpack, 0, 1)
	setArgDesc(BuiltinMatmul, GroupUnpack, 0, 1, 5)
	setArgDesc(BuiltinReduceMaxRows, GroupUnpack, 0, 1)
	setArgDesc(BuiltinReduceMaxCols, GroupUnpack, 0, 1)
	setArgDesc(BuiltinReduceMaxScalar, GroupUnpack, 0, 1)
	setArgDesc(BuiltinReduceSumRows, GroupUnpack, 0, 1)
	setArgDesc(BuiltinReduceSumCols, GroupUnpack, 0, 1)
	setArgDesc(BuiltinReduceSumScalar, GroupUnpack, 0, 1)
	setArgDesc(BuiltinTranspose, GroupUnpack, 0)
	setArgDesc(BuiltinTilizeBlock, GroupUnpack, 0, 1)
	setArgDesc(BuiltinUntilizeBlock, GroupUnpack, 0)

	// math
	setArgDesc(BuiltinMatmul, GroupMath, 5)

	// pack
	setArgDesc(BuiltinPack, GroupPack, 1)
	setArgDesc(BuiltinPackRow, GroupPack, 1)
	setArgDesc(BuiltinPackCol, GroupPack, 1)
	setArgDesc(BuiltinPackScalar, GroupPack, 1)
	setArgDesc(BuiltinTilizeBlock, GroupPack, 2)
	setArgDesc(BuiltinUntilizeBlock, GroupPack, 2)
}

// ArgDescFor returns the actual-argument positions build must read off
// the call's argument list (the call node's Args, in source order; the
// callee is not part of that list) to populate an InitCall's arguments
// for (id, group). A position of
// ArgUndef at index 0 means this (id, group) pair carries no init
// arguments at all.
func ArgDescFor(id BuiltinID, group Group) [MaxArgs]int {
	return argDescTable[id][group]
}
