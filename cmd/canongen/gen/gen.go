// Package gen generates canonical map-key-order tables for Go structs
// tagged with `canon:"name"`, so callers building a canonical CBOR map
// with profile.MapEncoder can emit entries in the one order the Profile
// accepts without re-deriving it by hand for every struct.
//
// It is a deliberately small slice of what a full struct<->CBOR codegen
// tool would do (see DESIGN.md for why the rest was not carried over):
// it does not generate marshal/unmarshal methods, only the sorted key
// table, which is what canonical ordering actually depends on.
package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"reflect"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"
)

// Options configures how generation runs.
type Options struct {
	Verbose bool
	// Structs, if non-empty, restricts generation to the named struct
	// types. Names must match Go type names exactly (no qualification).
	Structs []string
}

type fieldSpec struct {
	CBORName string
}

type structSpec struct {
	Name   string
	Fields []fieldSpec // already sorted into canonical key order
}

var fileTemplate = template.Must(template.New("canongen").Parse(`// Code generated by canongen. DO NOT EDIT.

package {{.Package}}
{{range .Structs}}
// {{.Name}}CanonicalKeyOrder lists {{.Name}}'s CBOR map keys in the order
// the canonical Profile requires: primary by total encoded length,
// secondary lexicographic.
var {{.Name}}CanonicalKeyOrder = []string{
{{- range .Fields}}
	{{printf "%q" .CBORName}},
{{- end}}
}
{{end}}`))

// Run generates the canonical-key-order table for a single Go source
// file's tagged structs, writing it to outputPath.
func Run(inputPath, outputPath string, opts Options) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, inputPath, nil, parser.ParseComments)
	if err != nil {
		return fmt.Errorf("parse %q: %w", inputPath, err)
	}

	want := make(map[string]struct{}, len(opts.Structs))
	for _, s := range opts.Structs {
		want[s] = struct{}{}
	}

	var specs []structSpec
	ast.Inspect(file, func(n ast.Node) bool {
		ts, ok := n.(*ast.TypeSpec)
		if !ok {
			return true
		}
		st, ok := ts.Type.(*ast.StructType)
		if !ok {
			return true
		}
		if len(want) > 0 {
			if _, ok := want[ts.Name.Name]; !ok {
				return true
			}
		}
		spec, ok := extractStructSpec(ts.Name.Name, st)
		if !ok {
			return true
		}
		specs = append(specs, spec)
		return true
	})

	if len(specs) == 0 {
		if opts.Verbose {
			fmt.Fprintf(os.Stderr, "canongen: no tagged structs in %s, skipping\n", inputPath)
		}
		return nil
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, struct {
		Package string
		Structs []structSpec
	}{Package: file.Name.Name, Structs: specs}); err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	formatted, err := imports.Process(outputPath, buf.Bytes(), nil)
	if err != nil {
		return fmt.Errorf("format generated output: %w", err)
	}

	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "canongen: writing %s (%d struct(s))\n", outputPath, len(specs))
	}
	return os.WriteFile(outputPath, formatted, 0o644)
}

func extractStructSpec(name string, st *ast.StructType) (structSpec, bool) {
	var fields []fieldSpec
	for _, f := range st.Fields.List {
		if f.Tag == nil {
			continue
		}
		tagVal := strings.Trim(f.Tag.Value, "`")
		canonName, ok := reflect.StructTag(tagVal).Lookup("canon")
		if !ok || canonName == "-" {
			continue
		}
		fields = append(fields, fieldSpec{CBORName: canonName})
	}
	if len(fields) == 0 {
		return structSpec{}, false
	}
	sort.Slice(fields, func(i, j int) bool {
		return compareCanonicalKeys(fields[i].CBORName, fields[j].CBORName) < 0
	})
	return structSpec{Name: name, Fields: fields}, true
}

// compareCanonicalKeys mirrors the Profile's canonical key order: primary
// by the total encoded length a text item of this key would occupy on the
// wire (header + UTF-8 body), secondary by raw byte comparison. It is
// reimplemented here, rather than imported, because the comparator over
// already-encoded header bytes that the profile package uses internally
// is unexported — the generator only ever sees plain Go strings.
func compareCanonicalKeys(a, b string) int {
	la, lb := encodedTextLen(a), encodedTextLen(b)
	if la != lb {
		if la < lb {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func encodedTextLen(s string) int {
	n := len(s)
	switch {
	case n <= 23:
		return 1 + n
	case n <= 0xFF:
		return 2 + n
	case n <= 0xFFFF:
		return 3 + n
	case n <= 0xFFFFFFFF:
		return 5 + n
	default:
		return 9 + n
	}
}
