package tool

import (
	"fmt"
	"go/ast"
	"go/token"
	"sort"

	"github.com/tenstorrent/ronin-sub003/internal/diag"
)

// Edit is one textual insertion/removal/replacement over a byte range of
// the original source, the Go-native analogue of clang::tooling::Replacement.
// Edits are collected across an entire rewrite pass and applied once,
// back-to-front by offset, onto the original bytes — never by mutating
// and re-printing the AST node-by-node, which is what would make ranges
// go non-monotone after aggressive rewrites (SPEC_FULL.md §5.1, §9).
type Edit struct {
	Start, End token.Pos // End == Start for a pure insertion
	Text       string
}

// ChangeTo replaces [start,end) with text.
func ChangeTo(start, end token.Pos, text string) Edit { return Edit{Start: start, End: end, Text: text} }

// InsertBefore inserts text immediately before pos.
func InsertBefore(pos token.Pos, text string) Edit { return Edit{Start: pos, End: pos, Text: text} }

// InsertAfter inserts text immediately after pos. Callers pass an
// end-exclusive position (e.g. ast.Node.End()), not the position of the
// last rune.
func InsertAfter(pos token.Pos, text string) Edit { return Edit{Start: pos, End: pos, Text: text} }

// Remove deletes [start,end).
func Remove(start, end token.Pos) Edit { return Edit{Start: start, End: end, Text: ""} }

// CaseFunc produces the edits for one matched node, or (nil, nil) to
// contribute no edits despite having matched.
type CaseFunc func(u *Unit, n ast.Node, stack Stack) ([]Edit, error)

// RuleCase is one pattern→rewrite entry of a Rule.
type RuleCase struct {
	Name  string // rule/primitive name, used in RuleError messages
	Match NodePredicate
	Edit  CaseFunc
}

// Rule is an ordered catalog of pattern→rewrite entries, composed with a
// first-match operator: for each visited node, the first case whose
// Match accepts it contributes the edits, and no other case is tried
// against that node. A node matched by no case passes through untouched.
// This is what internal/rules.Factory builds per mode.
type Rule []RuleCase

// Rewrite applies rule to u in a single traversal, collecting edits from
// every accepted node, then materializes one final text. Failure during
// matching is a RuleError; failure applying the collected edits is an
// ApplyError.
func Rewrite(u *Unit, rule Rule) ([]byte, error) {
	var edits []Edit
	var firstErr error
	var stack Stack
	ast.Inspect(u.File, func(n ast.Node) bool {
		if n == nil {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			return false
		}
		if firstErr != nil {
			return false
		}
		stack = append(stack, n)
		for _, c := range rule {
			if !c.Match(u, n, stack) {
				continue
			}
			got, err := c.Edit(u, n, stack)
			if err != nil {
				firstErr = fmt.Errorf("%s: rule %q: %w", diag.RuleError, c.Name, err)
				return false
			}
			edits = append(edits, got...)
			break
		}
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return Apply(u.Fset, u.Src, edits)
}

// Apply sorts edits into canonical order (highest start offset first,
// ties broken by insertion-before-deletion so that an InsertBefore at the
// same position as a Remove lands outside the removed range) and
// splices them onto src back-to-front. Overlapping edits are rejected
// with an ApplyError — the rewrite buffer has transactional semantics:
// either every edit lands cleanly, or none of the output is emitted.
func Apply(fset *token.FileSet, src []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		out := make([]byte, len(src))
		copy(out, src)
		return out, nil
	}

	type offsetEdit struct {
		start, end int
		text       string
	}
	offs := make([]offsetEdit, len(edits))
	for i, e := range edits {
		start := fset.Position(e.Start).Offset
		end := fset.Position(e.End).Offset
		if end < start {
			return nil, fmt.Errorf("%s: edit end precedes start", diag.ApplyError)
		}
		offs[i] = offsetEdit{start: start, end: end, text: e.Text}
	}

	sort.SliceStable(offs, func(i, j int) bool {
		if offs[i].start != offs[j].start {
			return offs[i].start > offs[j].start
		}
		// Pure insertions (start==end) sort after deletions/replacements
		// that start at the same point, so an InsertBefore lands before
		// text a sibling Remove/ChangeTo already displaced.
		iIns := offs[i].start == offs[i].end
		jIns := offs[j].start == offs[j].end
		if iIns != jIns {
			return jIns
		}
		return false
	})

	out := append([]byte(nil), src...)
	prevStart := len(src) + 1
	for _, e := range offs {
		if e.end > prevStart {
			return nil, fmt.Errorf("%s: overlapping edits at offset %d", diag.ApplyError, e.start)
		}
		if e.start < 0 || e.end > len(out) {
			return nil, fmt.Errorf("%s: edit out of range", diag.ApplyError)
		}
		out = append(out[:e.start], append([]byte(e.text), out[e.end:]...)...)
		prevStart = e.start
	}
	return out, nil
}
