// Package tool is the frontend's AST tooling facade. It wraps go/parser,
// go/ast and go/format the way the
// original frontend wraps clang's AST matchers and the Transformer
// rewrite-rule library: parse a translation unit, run matchers over it,
// apply rewrite rules transactionally, and reflow the result.
package tool

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"

	"github.com/tenstorrent/ronin-sub003/internal/diag"
)

// Unit is a parsed translation unit: the source bytes, its file set and
// the parsed *ast.File. Each pipeline stage in internal/frontend takes a
// Unit and returns rewritten source text, which the driver parses into a
// fresh Unit before the next stage.
type Unit struct {
	Fset *token.FileSet
	File *ast.File
	Src  []byte
}

// Parse parses src as a Go-native rendition of the tile-programming
// dialect (see SPEC_FULL.md §0). Diagnostics at error severity are
// reported as a ParseError and nil is returned.
func Parse(src []byte) (*Unit, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "kernel.tanto.go", src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", diag.ParseError, err)
	}
	return &Unit{Fset: fset, File: file, Src: src}, nil
}

// Stack is the chain of ancestor nodes from the file root (index 0) down
// to the node under the predicate (last element), the Go-native analogue
// of clang's ASTContext parent map used by "hasParent"/"hasAncestor"
// matchers.
type Stack []ast.Node

// Parent returns the immediate parent of the matched node, or nil at the
// file root.
func (s Stack) Parent() ast.Node {
	if len(s) < 2 {
		return nil
	}
	return s[len(s)-2]
}

// NodePredicate is the custom matcher extension point described in
// SPEC_FULL.md §5.1: a boolean predicate over an AST node and its
// ancestor stack.
type NodePredicate func(u *Unit, n ast.Node, stack Stack) bool

// BoundNode is one matcher hit together with the location info needed by
// callers that only see source positions (e.g. StmtKey lookups).
type BoundNode struct {
	Node  ast.Node
	Stack Stack
}

// Match runs pred over every node of u.File, in source order, and
// returns every node it accepts. There are no "implicit" nodes in a
// go/ast tree the way there are in a clang AST (no implicit casts,
// materialized temporaries, …), so the traversal needs no equivalent of
// the original "ignore implicit nodes" matcher mode.
func Match(u *Unit, pred NodePredicate) []BoundNode {
	var hits []BoundNode
	var stack Stack
	ast.Inspect(u.File, func(n ast.Node) bool {
		if n == nil {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			return false
		}
		stack = append(stack, n)
		if pred(u, n, stack) {
			hit := make(Stack, len(stack))
			copy(hit, stack)
			hits = append(hits, BoundNode{Node: n, Stack: hit})
		}
		return true
	})
	return hits
}

// Format reflows src to gofmt style. Failure is surfaced to the caller as
// a FormatError rather than emitting unformatted text, matching
// SPEC_FULL.md §5.1.
func Format(src []byte) ([]byte, error) {
	out, err := format.Source(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", diag.FormatError, err)
	}
	return out, nil
}

// Fprint prints file with tab indentation, used when a rewrite stage
// needs fresh, byte-accurate source text before further matching (the
// Go-native analogue of clang's Rewriter::getRewrittenText).
func Fprint(u *Unit) ([]byte, error) {
	var buf bytes.Buffer
	if err := format.Node(&buf, u.Fset, u.File); err != nil {
		return nil, fmt.Errorf("%s: %w", diag.FormatError, err)
	}
	return buf.Bytes(), nil
}
