package mathinit

import "fmt"

// Arg is one actual argument captured for an InitCall, the Go-native
// analogue of math_init_args.hpp's per-slot {param, value} pair plus the
// call-site's raw source text, which the inserted init stub call uses as
// its argument text.
type Arg struct {
	// Param is the callee-local formal parameter index this argument
	// forwards, or ArgUndef if it isn't a bare parameter reference.
	Param int
	// Value is the argument's literal value (bool as 0/1, or a
	// non-negative int literal), or ArgUndef if it isn't a literal.
	Value int
	Code  string
}

// Call is one concrete init-routine invocation together with its
// arguments, the Go-native analogue of MathInitCall. The zero value is
// not meaningful on its own — use None() or Undef() for the two special
// lattice elements, or New for a concrete call.
type Call struct {
	Func     InitFunc
	ArgCount int
	Args     [MaxArgs]Arg
}

// None is the init-state lattice's bottom/neutral element: "no init call
// observed on this path yet". Composing None with any state x yields x
// (see Combine).
func None() Call {
	return Call{Func: InitNone}
}

// Undef is the lattice's top/dominant element: "two or more conflicting
// concrete init calls were observed on different paths, or input already
// arrived Undef". Once a state reaches Undef it stays Undef.
func Undef() Call {
	return Call{Func: InitUndef}
}

// New builds a concrete Call for the given init func and its captured
// argument slots (count may be 0..MaxArgs).
func New(f InitFunc, args []Arg) Call {
	c := Call{Func: f, ArgCount: len(args)}
	copy(c.Args[:], args)
	return c
}

// IsNone reports whether c is the bottom lattice element.
func (c Call) IsNone() bool { return c.Func == InitNone }

// IsUndef reports whether c is the top lattice element.
func (c Call) IsUndef() bool { return c.Func == InitUndef }

// Equal reports structural equality: same init func, same argument count,
// and every argument slot identical. Two concrete calls that invoke the
// same init routine with different arguments are NOT equal — the
// compiler must treat them as conflicting, since the low-level init call
// bakes its arguments in as immediates.
func (c Call) Equal(other Call) bool {
	if c.Func != other.Func || c.ArgCount != other.ArgCount {
		return false
	}
	for i := 0; i < c.ArgCount; i++ {
		p1, p2 := c.Args[i].Param, other.Args[i].Param
		v1, v2 := c.Args[i].Value, other.Args[i].Value
		switch {
		case p1 != ArgUndef || p2 != ArgUndef:
			if p1 != p2 {
				return false
			}
		case v1 != ArgUndef || v2 != ArgUndef:
			if v1 != v2 {
				return false
			}
		default:
			// Neither side resolved this argument to a known parameter
			// or literal: treat as a mismatch rather than a trivial
			// match, so composing two such calls is conservatively
			// Undef instead of silently assuming they agree.
			return false
		}
	}
	return true
}

func (c Call) String() string {
	if c.IsNone() {
		return "[none]"
	}
	if c.IsUndef() {
		return "[undef]"
	}
	return fmt.Sprintf("%s(%d args)", c.Func.Name(), c.ArgCount)
}

// Combine merges two states observed for the same Group at a join point
// (e.g. the two branches of an if, or re-entry to a loop), implementing
// the bounded semilattice spec.md §4.5 describes: None is the neutral
// element, Undef dominates, and two unequal concrete calls collapse to
// Undef — only two structurally equal concrete calls survive a join.
func Combine(a, b Call) Call {
	if a.IsNone() {
		return b
	}
	if b.IsNone() {
		return a
	}
	if a.IsUndef() || b.IsUndef() {
		return Undef()
	}
	if a.Equal(b) {
		return a
	}
	return Undef()
}

// State is the per-statement init-state summary: one Call slot per
// pipeline Group, the Go-native analogue of MathInitState's 4-slot array.
type State [groupCount]Call

// NewState returns a State with every slot at None.
func NewState() State {
	var s State
	for i := range s {
		s[i] = None()
	}
	return s
}

// Combine merges two States slot-wise.
func (s State) Combine(other State) State {
	var out State
	for i := range out {
		out[i] = Combine(s[i], other[i])
	}
	return out
}

// Mask records, per Group, whether an init call for that group is still
// pending (true) at a given program point — the Go-native analogue of
// MathInitMask, used to decide which groups the final pass must still
// satisfy when it reaches a statement that can use the pending value.
type Mask [groupCount]bool

// TopMask returns a Mask with every group pending, the starting point
// before any builtin call has been observed for a function entry.
func TopMask() Mask {
	var m Mask
	for i := range m {
		m[i] = true
	}
	return m
}

