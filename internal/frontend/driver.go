// Package frontend implements the compiler's single entry point
// (SPEC_FULL.md §5.6, spec.md §4.6/§6): lower one Go-native dialect
// translation unit into target-language kernel text for one of the
// three compile modes, the Go-native analogue of frontend.hpp/.cpp.
package frontend

import (
	"fmt"
	"go/ast"
	"strings"

	"github.com/tenstorrent/ronin-sub003/internal/deadcode"
	"github.com/tenstorrent/ronin-sub003/internal/graph"
	"github.com/tenstorrent/ronin-sub003/internal/mathinit"
	"github.com/tenstorrent/ronin-sub003/internal/rules"
	"github.com/tenstorrent/ronin-sub003/internal/tool"
)

// Mode selects which of the three compile pipelines Compile runs.
type Mode int

const (
	ModeCompute Mode = iota
	ModeRead
	ModeWrite
)

// Define is one "#define NAME VALUE" the caller wants emitted verbatim
// into the generated output, the Go-native analogue of
// Frontend::add_define.
type Define struct {
	Name, Value string
}

// ParamValue supplies the compile-time constant value for one top-level
// "param"-typed declaration, addressed by its 0-based source-order
// index, the Go-native analogue of Frontend::add_param.
type ParamValue struct {
	Index uint32
	Value uint32
}

// Compile lowers source (one Go-native dialect translation unit) into
// target kernel text for mode. Returns ok=false and a human-readable
// error list on any failure, with no partial output — the same
// all-or-nothing contract frontend.cpp's bool-returning pipeline
// enforces by threading a single ErrorHandler through every stage.
func Compile(mode Mode, defines []Define, params []ParamValue, source string) (output string, errs []string, ok bool) {
	paramValues, err := resolveParams(source, params)
	if err != nil {
		return "", []string{err.Error()}, false
	}

	var (
		out  []byte
		cerr error
	)
	switch mode {
	case ModeCompute:
		out, cerr = compileCompute(source, defines, paramValues)
	case ModeRead:
		out, cerr = compileDataflow(source, defines, paramValues, false)
	case ModeWrite:
		out, cerr = compileDataflow(source, defines, paramValues, true)
	default:
		return "", []string{"InputError: unrecognized mode"}, false
	}
	if cerr != nil {
		return "", []string{cerr.Error()}, false
	}
	return string(out), nil, true
}

// resolveParams validates params against spec.md's duplicate-index rule
// (Transform::add_param's m_param_map.emplace check) and orders them by
// source position. Every top-level param declaration needs a value: an
// undefined index is returned as an InputError, where the original's
// get_param_value reports "Undefined parameter #N" but still yields a
// substitute value (1 there).
func resolveParams(source string, params []ParamValue) ([]uint32, error) {
	byIndex := make(map[uint32]uint32, len(params))
	for _, p := range params {
		if _, dup := byIndex[p.Index]; dup {
			return nil, fmt.Errorf("InputError: duplicate value for parameter #%d", p.Index)
		}
		byIndex[p.Index] = p.Value
	}

	count := countTopLevelParams(source)
	values := make([]uint32, count)
	for i := 0; i < count; i++ {
		v, ok := byIndex[uint32(i)]
		if !ok {
			return nil, fmt.Errorf("InputError: undefined parameter #%d", i)
		}
		values[i] = v
	}
	return values, nil
}

// countTopLevelParams reports how many package-level "var name param"
// declarations source has — the number of values resolveParams requires.
// A supplied ParamValue.Index at or beyond this count is ignored.
func countTopLevelParams(source string) int {
	u, err := tool.Parse([]byte(source))
	if err != nil {
		return 0
	}
	n := 0
	for _, decl := range u.File.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, spec := range gd.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			if base, _ := baseTypeName(vs.Type); base == "param" {
				n++
			}
		}
	}
	return n
}

func compileCompute(source string, defines []Define, paramValues []uint32) ([]byte, error) {
	u, err := tool.Parse([]byte(source))
	if err != nil {
		return nil, err
	}

	deadOut, err := deadcode.Apply(u)
	if err != nil {
		return nil, err
	}

	u2, err := tool.Parse(deadOut)
	if err != nil {
		return nil, err
	}
	g2, err := graph.NewBuilder().Build(u2)
	if err != nil {
		return nil, err
	}
	initOut, err := mathinit.Apply(u2, g2)
	if err != nil {
		return nil, err
	}

	u3, err := tool.Parse(initOut)
	if err != nil {
		return nil, err
	}

	kernel := findKernel(u3.File)
	if kernel == nil {
		return nil, fmt.Errorf("InputError: no \"kernel\" function found")
	}
	params := kernelParams(kernel)

	factory := rules.New(rules.ModeCompute, false, paramValues)
	lowered, err := tool.Rewrite(u3, factory.Rules())
	if err != nil {
		return nil, err
	}

	return finalize(source, string(lowered), defines, params, true)
}

func compileDataflow(source string, defines []Define, paramValues []uint32, writeMode bool) ([]byte, error) {
	u, err := tool.Parse([]byte(source))
	if err != nil {
		return nil, err
	}
	kernel := findKernel(u.File)
	if kernel == nil {
		return nil, fmt.Errorf("InputError: no \"kernel\" function found")
	}
	params := kernelParams(kernel)

	mode := rules.ModeRead
	if writeMode {
		mode = rules.ModeWrite
	}
	factory := rules.New(mode, writeMode, paramValues)
	lowered, err := tool.Rewrite(u, factory.Rules())
	if err != nil {
		return nil, err
	}

	return finalize(source, string(lowered), defines, params, false)
}

// finalize assembles the target-language file: the original's leading
// SPDX header (if any), the mode-appropriate include, every #define,
// the lowered kernel source, and the generated entry-point body —
// the Go-native analogue of frontend.cpp's finalize_compute/
// finalize_dataflow.
func finalize(original, lowered string, defines []Define, params []kernelParam, compute bool) ([]byte, error) {
	spdx, _ := extractSPDXHeader(original)
	_, loweredNoSPDX := extractSPDXHeader(lowered)

	var b strings.Builder
	if spdx != "" {
		b.WriteString(spdx)
		b.WriteString("\n")
	}

	body := buildKernelMainBody(params, compute)

	if compute {
		b.WriteString("#include \"tanto/compute.h\"\n\n")
		b.WriteString(buildDefines(defines))
		b.WriteString("\n")
		b.WriteString("namespace NAMESPACE {\n")
		b.WriteString(loweredNoSPDX)
		b.WriteString("void MAIN {\n")
		b.WriteString(body)
		b.WriteString("}\n")
		b.WriteString("} // NAMESPACE\n")
	} else {
		b.WriteString("#include \"tanto/dataflow.h\"\n\n")
		b.WriteString(buildDefines(defines))
		b.WriteString("\n")
		b.WriteString(loweredNoSPDX)
		b.WriteString("void kernel_main() {\n")
		b.WriteString(body)
		b.WriteString("}\n")
	}

	return []byte(normalizeText(b.String())), nil
}

// normalizeText trims trailing whitespace from every line and ensures a
// single trailing newline. The original's final stage (format_code)
// runs the lowered text through clang-format; there is no Go-ecosystem
// equivalent for formatting arbitrary C++ text (go/format only
// understands Go), so this port does the same light cleanup
// go/printer would if the output were still Go, without attempting to
// reimplement a C++ pretty-printer — see DESIGN.md.
func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	out := strings.Join(lines, "\n")
	return strings.TrimRight(out, "\n") + "\n"
}
