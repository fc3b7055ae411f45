package rules

import (
	"strings"
	"testing"

	"github.com/tenstorrent/ronin-sub003/internal/tool"
)

func lower(t *testing.T, mode Mode, writeMode bool, paramValues []uint32, src string) string {
	t.Helper()
	u, err := tool.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := tool.Rewrite(u, New(mode, writeMode, paramValues).Rules())
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	return string(out)
}

func TestParamDeclLowering(t *testing.T) {
	out := lower(t, ModeCompute, false, []uint32{7}, `package k

var n param

func kernel(a local) {
	a.set(0, 1)
}
`)
	if !strings.Contains(out, "static constexpr uint32 n = uint32(7);") {
		t.Errorf("expected lowered param declaration, got:\n%s", out)
	}
}

func TestParmTypeLoweringAndMathRemoval(t *testing.T) {
	out := lower(t, ModeCompute, false, nil, `package k

func kernel(a local, acc math) {
	acc.add(a, a, 0, 0, 0)
}
`)
	if !strings.Contains(out, "Local a") {
		t.Errorf("expected \"local\" parameter lowered to \"Local a\", got:\n%s", out)
	}
	if strings.Contains(out, "math acc") || strings.Contains(out, "acc math") {
		t.Errorf("expected math-typed parameter to be removed, got:\n%s", out)
	}
}

func TestPipeCommonRules(t *testing.T) {
	out := lower(t, ModeCompute, false, nil, `package k

func kernel(cb pipe) {
	cb.wait_front()
	cb.pop_front()
	cb.reserve_back()
	cb.push_back()
}
`)
	for _, want := range []string{
		"cb_wait_front(cb.cb_id, cb.frame_size);",
		"cb_pop_front(cb.cb_id, cb.frame_size);",
		"cb_reserve_back(cb.cb_id, cb.frame_size);",
		"cb_push_back(cb.cb_id, cb.frame_size);",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q, got:\n%s", want, out)
		}
	}
}

func TestMathAddRule(t *testing.T) {
	out := lower(t, ModeCompute, false, nil, `package k

func kernel(cb0 pipe, cb1 pipe, acc math) {
	acc.add(cb0, cb1, 0, 0, 0)
}
`)
	if !strings.Contains(out, "add_tiles(cb0.cb_id, cb1.cb_id, 0, 0, 0);") {
		t.Errorf("expected lowered eltwise-binary add, got:\n%s", out)
	}
}

func TestMathUnaryRule(t *testing.T) {
	out := lower(t, ModeCompute, false, nil, `package k

func kernel(acc math) {
	acc.sqrt(0)
}
`)
	if !strings.Contains(out, "sqrt_tile(0);") {
		t.Errorf("expected lowered SFPU unary op, got:\n%s", out)
	}
}

func TestInitStubLowering(t *testing.T) {
	out := lower(t, ModeCompute, false, nil, `package k

func kernel(cb0 pipe, cb1 pipe) {
	__unpack_binary_init(cb0, cb1)
	__add_init()
}
`)
	if !strings.Contains(out, "tanto_unpack_binary_init(cb0.cb_id, cb1.cb_id);") {
		t.Errorf("expected lowered unpack-binary init stub, got:\n%s", out)
	}
	if !strings.Contains(out, "tanto_add_init();") {
		t.Errorf("expected lowered plain init stub, got:\n%s", out)
	}
}

func TestLocalReadGlobalRule(t *testing.T) {
	out := lower(t, ModeRead, false, nil, `package k

func kernel(dst local, src global) {
	dst.read(src, 0, 0, 1)
}
`)
	if !strings.Contains(out, "noc_async_read_global_l1(dst.addr") {
		t.Errorf("expected lowered local read-from-global call, got:\n%s", out)
	}
}

func TestWriteMcastRule(t *testing.T) {
	out := lower(t, ModeWrite, true, nil, `package k

func kernel(src local, dst local) {
	src.write_mcast(dst, 0, 1, 2, 3, 4)
}
`)
	if !strings.Contains(out, "noc_async_write_multicast(src.addr, get_noc_multicast_addr(0, 1, 2, 3, dst.addr), 4<<2);") {
		t.Errorf("expected lowered write_mcast call, got:\n%s", out)
	}
}

func TestSemaphoreAndBarrierRules(t *testing.T) {
	out := lower(t, ModeWrite, true, nil, `package k

func kernel(sem semaphore) {
	sem.inc(1)
	sem.wait(0)
	write_barrier()
}
`)
	if !strings.Contains(out, "noc_semaphore_inc(") {
		t.Errorf("expected lowered semaphore.inc, got:\n%s", out)
	}
	if !strings.Contains(out, "noc_semaphore_wait(") {
		t.Errorf("expected lowered semaphore.wait, got:\n%s", out)
	}
	if !strings.Contains(out, "noc_async_write_barrier();") {
		t.Errorf("expected lowered write_barrier, got:\n%s", out)
	}
}
