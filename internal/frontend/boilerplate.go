package frontend

import (
	"fmt"
	"go/ast"
	"strings"
)

// dataType is the Go-native analogue of query.hpp's DataType: the
// runtime argument shape a "kernel" parameter reads from, used to build
// the generated kernel-entry body (frontend.cpp's
// build_kernel_main_body). math-typed parameters carry no runtime
// argument at all — they exist only to seed internal/rules' math-decl
// lowering inside the kernel body — so they have no dataType mapping
// and are skipped entirely when building the argument-reading prologue.
type dataType int

const (
	dtInt32 dataType = iota
	dtUint32
	dtFloat
	dtGlobal
	dtLocal
	dtSemaphore
	dtPipe
)

// kernelParam is one formal parameter of the dialect's "kernel" entry
// function, as found by findKernel.
type kernelParam struct {
	name string
	typ  dataType
	ok   bool // false for a math-typed parameter: no runtime argument
}

// findKernel locates the single function literally named "kernel" — the
// Go-native dialect's entry point, the analogue of the original's
// "void kernel(...)" convention that Query::query_kernel_params()
// matches on.
func findKernel(file *ast.File) *ast.FuncDecl {
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if ok && fd.Recv == nil && fd.Name.Name == "kernel" {
			return fd
		}
	}
	return nil
}

// kernelParams classifies every formal parameter of fd into the
// dataType switch frontend.cpp's build_kernel_main_body consumes.
func kernelParams(fd *ast.FuncDecl) []kernelParam {
	var params []kernelParam
	if fd.Type.Params == nil {
		return params
	}
	for _, field := range fd.Type.Params.List {
		base, _ := baseTypeName(field.Type)
		for _, id := range field.Names {
			dt, ok := classify(base)
			params = append(params, kernelParam{name: id.Name, typ: dt, ok: ok})
		}
	}
	return params
}

func classify(base string) (dataType, bool) {
	switch base {
	case "int32":
		return dtInt32, true
	case "uint32":
		return dtUint32, true
	case "float":
		return dtFloat, true
	case "global":
		return dtGlobal, true
	case "local":
		return dtLocal, true
	case "semaphore":
		return dtSemaphore, true
	case "pipe":
		return dtPipe, true
	default:
		return 0, false // math, or an unrecognized type: carries no runtime argument
	}
}

// buildKernelMainBody renders the generated argument-reading prologue
// and kernel(...) call frontend.cpp's build_kernel_main_body emits
// verbatim, minus the clang-specific #if-0'd dead branch it carries for
// DataType::SEMAPHORE (the original reads tanto_get_semaphore(...)
// unconditionally; the commented-out direct read was never live code and
// is not ported).
func buildKernelMainBody(params []kernelParam, compute bool) string {
	var b strings.Builder
	k := 0
	for _, p := range params {
		if !p.ok {
			continue
		}
		switch p.typ {
		case dtInt32:
			fmt.Fprintf(&b, "int32 %s = get_arg_val<int32>(%d);\n", p.name, k)
			k++
		case dtUint32:
			fmt.Fprintf(&b, "uint32 %s = get_arg_val<uint32>(%d);\n", p.name, k)
			k++
		case dtFloat:
			fmt.Fprintf(&b, "float %s = get_arg_val<float>(%d);\n", p.name, k)
			k++
		case dtGlobal:
			fmt.Fprintf(&b, "Global %s;\n", p.name)
			fmt.Fprintf(&b, "%s.addr = get_arg_val<uint32>(%d);\n", p.name, k)
			fmt.Fprintf(&b, "%s.log2_page_size = get_arg_val<uint32>(%d);\n", p.name, k+1)
			k += 2
		case dtLocal:
			fmt.Fprintf(&b, "Local %s;\n", p.name)
			fmt.Fprintf(&b, "%s.addr = get_arg_val<uint32>(%d);\n", p.name, k)
			k++
		case dtSemaphore:
			fmt.Fprintf(&b, "Semaphore %s;\n", p.name)
			fmt.Fprintf(&b, "%s.addr = tanto_get_semaphore(get_arg_val<uint32>(%d));\n", p.name, k)
			k++
		case dtPipe:
			fmt.Fprintf(&b, "Pipe %s;\n", p.name)
			fmt.Fprintf(&b, "%s.cb_id = get_arg_val<uint32>(%d);\n", p.name, k)
			fmt.Fprintf(&b, "%s.frame_size = get_arg_val<uint32>(%d);\n", p.name, k+1)
			k += 2
		}
	}

	if compute {
		b.WriteString("tanto_compute_init();\n")
	}

	b.WriteString("kernel(")
	first := true
	for _, p := range params {
		if !p.ok {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(p.name)
	}
	b.WriteString(");\n")
	return b.String()
}

// baseTypeName is a package-local copy of internal/rules' generic-type-
// argument extraction, duplicated rather than imported: internal/rules
// depends on internal/tool only, and this package has no other reason to
// import internal/rules (a rule catalog), so a tiny local helper avoids a
// needless cross-package dependency for one function.
func baseTypeName(t ast.Expr) (string, string) {
	switch n := t.(type) {
	case *ast.Ident:
		return n.Name, ""
	case *ast.IndexExpr:
		base, _ := baseTypeName(n.X)
		if id, ok := n.Index.(*ast.Ident); ok {
			return base, id.Name
		}
		return base, ""
	case *ast.IndexListExpr:
		base, _ := baseTypeName(n.X)
		return base, ""
	case *ast.StarExpr:
		return baseTypeName(n.X)
	default:
		return "", ""
	}
}

// buildDefines renders every #define line finalize prepends to the
// output, the Go-native analogue of frontend.cpp's build_defines. Define
// substitution is purely textual in the emitted C++, exactly as in the
// original; unlike the original's Clang pipeline, go/parser has no
// preprocessor phase, so a kernel condition referencing a #define name
// is not available to internal/deadcode's constant folding the way a
// clang getIntegerConstantExpr call can see through a real macro
// expansion — see DESIGN.md.
func buildDefines(defines []Define) string {
	var b strings.Builder
	for _, d := range defines {
		fmt.Fprintf(&b, "#define %s %s\n", d.Name, d.Value)
	}
	return b.String()
}

// extractSPDXHeader splits off a leading run of "// SPDX-..." comment
// lines the way frontend.cpp's extract_spdx_header does: blank lines are
// skipped first, then every subsequent line must start with "//" to
// remain part of the header.
func extractSPDXHeader(src string) (header, rest string) {
	i := 0
	for i < len(src) && src[i] == '\n' {
		i++
	}
	start := i
	if !strings.HasPrefix(src[i:], "// SPDX-") {
		return "", src
	}
	pos := i
	for {
		eol := strings.IndexByte(src[pos:], '\n')
		if eol < 0 {
			pos = len(src)
			break
		}
		pos += eol + 1
		if pos+1 >= len(src) || src[pos] != '/' || src[pos+1] != '/' {
			break
		}
	}
	if pos >= len(src) {
		return src, ""
	}
	return src[start:pos], src[pos:]
}
