// Command canongen generates canonical CBOR map-key-order tables for Go
// structs tagged with `canon:"name"`.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/synadia-labs/canon-cbor/cmd/canongen/gen"
)

// CLI defines the canongen command-line interface.
//
// We deliberately keep it minimal:
//   - input: Go file or directory
//   - output: override for the generated file (file mode only)
//   - verbose: turn on diagnostic logging
type CLI struct {
	Input   string   `short:"i" help:"Input Go file or directory (recursive)" default:"."`
	Output  string   `short:"o" help:"Output file (file input only; defaults to {input}_canonkeys.go)"`
	Structs []string `short:"s" help:"Only generate for these struct types (may be repeated)"`
	Verbose bool     `short:"v" help:"Enable verbose diagnostics"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("canongen"),
		kong.Description("Generate canonical map-key-order tables for tagged structs."),
	)

	if err := run(&cli); err != nil {
		ctx.FatalIfErrorf(err)
	}
}

func run(cli *CLI) error {
	input := strings.TrimSpace(cli.Input)
	if input == "" {
		input = "."
	}

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}

	if info.IsDir() {
		if cli.Output != "" {
			return errors.New("--output is not allowed when input is a directory")
		}
		return runForDir(input, cli.Verbose, cli.Structs)
	}

	out := cli.Output
	if strings.TrimSpace(out) == "" {
		out = defaultOutputPath(input)
	}
	return gen.Run(input, out, gen.Options{Verbose: cli.Verbose, Structs: cli.Structs})
}

// runForDir walks a directory tree and generates a companion
// "*_canonkeys.go" file for each eligible Go source file.
func runForDir(dir string, verbose bool, structs []string) error {
	return filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %q: %w", path, err)
		}
		if entry.IsDir() {
			return nil
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".go") {
			return nil
		}
		if strings.HasSuffix(name, "_test.go") || strings.HasSuffix(name, "_canonkeys.go") {
			return nil
		}

		outPath := defaultOutputPath(path)
		return gen.Run(path, outPath, gen.Options{Verbose: verbose, Structs: structs})
	})
}

// defaultOutputPath derives the "*_canonkeys.go" filename for a given
// input Go file path.
func defaultOutputPath(inputPath string) string {
	dir := filepath.Dir(inputPath)
	base := filepath.Base(inputPath)
	if !strings.HasSuffix(base, ".go") {
		return filepath.Join(dir, base+"_canonkeys.go")
	}
	name := strings.TrimSuffix(base, ".go") + "_canonkeys.go"
	return filepath.Join(dir, name)
}
