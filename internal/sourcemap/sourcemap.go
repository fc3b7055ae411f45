// Package sourcemap generates and consumes Source Map v3 documents that
// relate tantoc's lowered kernel output back to the original dialect
// source. github.com/go-sourcemap/sourcemap only decodes, so the
// Base64-VLQ encoder on the producer side is implemented here directly
// against the v3 spec.
package sourcemap

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"go/token"
	"sort"

	"github.com/go-sourcemap/sourcemap"
)

// Mapping records one generated position's origin in the original
// kernel source.
type Mapping struct {
	GenLine, GenColumn       int // 1-based, generated (lowered) output
	SourceLine, SourceColumn int // 1-based, original kernel source
	Name                     string
}

// Generator accumulates Mappings for one lowered translation unit and
// renders them into a Source Map v3 document.
type Generator struct {
	sourceFile string
	genFile    string
	mappings   []Mapping
}

// NewGenerator returns a Generator for one (sourceFile, genFile) pair.
func NewGenerator(sourceFile, genFile string) *Generator {
	return &Generator{sourceFile: sourceFile, genFile: genFile}
}

// AddMapping records one position mapping.
func (g *Generator) AddMapping(src, gen token.Position) {
	g.mappings = append(g.mappings, Mapping{
		SourceLine: src.Line, SourceColumn: src.Column - 1,
		GenLine: gen.Line, GenColumn: gen.Column - 1,
	})
}

// AddMappingWithName records a position mapping carrying an identifier
// name (used when the lowering renames a symbol, e.g. a param constant).
func (g *Generator) AddMappingWithName(src, gen token.Position, name string) {
	g.mappings = append(g.mappings, Mapping{
		SourceLine: src.Line, SourceColumn: src.Column - 1,
		GenLine: gen.Line, GenColumn: gen.Column - 1,
		Name: name,
	})
}

// Generate renders g's accumulated mappings into a v3 source map
// document.
func (g *Generator) Generate() ([]byte, error) {
	doc := struct {
		Version    int      `json:"version"`
		File       string   `json:"file"`
		SourceRoot string   `json:"sourceRoot"`
		Sources    []string `json:"sources"`
		Names      []string `json:"names"`
		Mappings   string   `json:"mappings"`
	}{
		Version:  3,
		File:     g.genFile,
		Sources:  []string{g.sourceFile},
		Names:    g.collectNames(),
		Mappings: encodeMappings(g.mappings, g.collectNames()),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal source map: %w", err)
	}
	return data, nil
}

// GenerateInline renders g as a "//# sourceMappingURL=data:..." comment
// line, for config.FormatInline.
func (g *Generator) GenerateInline() (string, error) {
	data, err := g.Generate()
	if err != nil {
		return "", err
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf("//# sourceMappingURL=data:application/json;base64,%s", encoded), nil
}

func (g *Generator) collectNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range g.mappings {
		if m.Name != "" && !seen[m.Name] {
			seen[m.Name] = true
			names = append(names, m.Name)
		}
	}
	return names
}

func nameIndex(names []string, name string) (int, bool) {
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// encodeMappings renders mappings into the v3 "mappings" field: a
// ';'-separated list of generated lines, each holding a ','-separated
// list of Base64-VLQ segments, each segment's fields delta-encoded
// against the previous segment on the same line (column) or the
// previous mapping overall (source index, source line, source column,
// name index) per the Source Map v3 spec.
func encodeMappings(mappings []Mapping, names []string) string {
	if len(mappings) == 0 {
		return ""
	}
	sorted := make([]Mapping, len(mappings))
	copy(sorted, mappings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].GenLine != sorted[j].GenLine {
			return sorted[i].GenLine < sorted[j].GenLine
		}
		return sorted[i].GenColumn < sorted[j].GenColumn
	})

	var out []byte
	prevGenCol, prevSrcLine, prevSrcCol, prevName := 0, 0, 0, 0
	line := sorted[0].GenLine
	for i := 1; i < line; i++ {
		out = append(out, ';')
	}
	first := true
	for _, m := range sorted {
		for m.GenLine > line {
			out = append(out, ';')
			line++
			prevGenCol = 0
			first = true
		}
		if !first {
			out = append(out, ',')
		}
		first = false

		out = appendVLQ(out, m.GenColumn-prevGenCol)
		prevGenCol = m.GenColumn
		out = appendVLQ(out, 0) // single-source file: sourceIndex delta always 0
		out = appendVLQ(out, m.SourceLine-1-prevSrcLine)
		prevSrcLine = m.SourceLine - 1
		out = appendVLQ(out, m.SourceColumn-prevSrcCol)
		prevSrcCol = m.SourceColumn
		if m.Name != "" {
			idx, _ := nameIndex(names, m.Name)
			out = appendVLQ(out, idx-prevName)
			prevName = idx
		}
	}
	return string(out)
}

const vlqBase64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// appendVLQ appends n's Base64-VLQ encoding (sign in the low bit, 5 data
// bits per digit, continuation bit set on every digit but the last) to
// buf, per the Source Map v3 spec's VLQ scheme (shared with Closure
// Compiler's sourcemap format it was borrowed from).
func appendVLQ(buf []byte, n int) []byte {
	v := n << 1
	if n < 0 {
		v = (-n << 1) | 1
	}
	for {
		digit := v & 0x1f
		v >>= 5
		if v > 0 {
			digit |= 0x20
		}
		buf = append(buf, vlqBase64Chars[digit])
		if v == 0 {
			break
		}
	}
	return buf
}

// Consumer resolves a generated (lowered-output) position back to its
// original kernel source position, wrapping go-sourcemap/sourcemap's
// decoder (the one consumer-side library in the example pack).
type Consumer struct {
	sm *sourcemap.Consumer
}

// NewConsumer parses a v3 source map document.
func NewConsumer(data []byte) (*Consumer, error) {
	sm, err := sourcemap.Parse("", data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source map: %w", err)
	}
	return &Consumer{sm: sm}, nil
}

// Source resolves the 1-based (line, column) generated position to its
// original source position.
func (c *Consumer) Source(line, column int) (*token.Position, error) {
	file, _, srcLine, srcCol, ok := c.sm.Source(line-1, column-1)
	if !ok {
		return nil, fmt.Errorf("no mapping found for position %d:%d", line, column)
	}
	return &token.Position{Filename: file, Line: srcLine + 1, Column: srcCol + 1}, nil
}
