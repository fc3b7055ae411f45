package frontend

import (
	"strings"
	"testing"
)

func TestCompileComputeAddKernel(t *testing.T) {
	src := `package k

func kernel(cb0 pipe, cb1 pipe, acc math) {
	acc.add(cb0, cb1, 0, 0, 0)
}
`
	out, errs, ok := Compile(ModeCompute, nil, nil, src)
	if !ok {
		t.Fatalf("Compile failed: %v", errs)
	}
	if !strings.Contains(out, "#include \"tanto/compute.h\"") {
		t.Errorf("expected compute include, got:\n%s", out)
	}
	if !strings.Contains(out, "tanto_unpack_binary_init(") {
		t.Errorf("expected init stub lowering, got:\n%s", out)
	}
	if !strings.Contains(out, "add_tiles(cb0.cb_id, cb1.cb_id, 0, 0, 0);") {
		t.Errorf("expected lowered math op, got:\n%s", out)
	}
	if !strings.Contains(out, "void MAIN {") {
		t.Errorf("expected generated entry point, got:\n%s", out)
	}
	if !strings.Contains(out, "kernel(cb0, cb1);") {
		t.Errorf("expected generated kernel call, got:\n%s", out)
	}
}

func TestCompileReadKernel(t *testing.T) {
	src := `package k

func kernel(dst local, src global) {
	dst.read(src, 0, 0, 1)
	read_barrier()
}
`
	out, errs, ok := Compile(ModeRead, nil, nil, src)
	if !ok {
		t.Fatalf("Compile failed: %v", errs)
	}
	if !strings.Contains(out, "noc_async_read_global_") {
		t.Errorf("expected lowered read call, got:\n%s", out)
	}
	if !strings.Contains(out, "noc_async_read_barrier();") {
		t.Errorf("expected lowered barrier call, got:\n%s", out)
	}
	if !strings.Contains(out, "void kernel_main() {") {
		t.Errorf("expected generated entry point, got:\n%s", out)
	}
}

func TestCompileUndefinedParamIsError(t *testing.T) {
	src := `package k

var n param

func kernel(a local) {
	a.set(0, 1)
}
`
	_, errs, ok := Compile(ModeCompute, nil, nil, src)
	if ok {
		t.Fatalf("expected failure for undefined parameter, got success")
	}
	if len(errs) == 0 || !strings.Contains(errs[0], "undefined parameter") {
		t.Errorf("expected undefined-parameter error, got %v", errs)
	}
}

func TestCompileMissingKernelIsError(t *testing.T) {
	src := `package k

func helper() {}
`
	_, errs, ok := Compile(ModeCompute, nil, nil, src)
	if ok {
		t.Fatalf("expected failure for missing kernel function, got success")
	}
	if len(errs) == 0 || !strings.Contains(errs[0], "kernel") {
		t.Errorf("expected missing-kernel error, got %v", errs)
	}
}
