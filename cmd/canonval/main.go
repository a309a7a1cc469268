// Command canonval validates, inspects, and hashes canonical CBOR Profile
// payloads from the command line.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/synadia-labs/canon-cbor/profile"
)

// CLI defines the canonval command-line interface.
//
// We deliberately keep it minimal: one subcommand per operation, each
// taking an input file and printing a single-line result or a formatted
// error to stderr with a non-zero exit code.
type CLI struct {
	Validate ValidateCmd `cmd:"" help:"Validate a file against the canonical Profile."`
	Diag     DiagCmd     `cmd:"" help:"Render a file's value in diagnostic notation."`
	Hash     HashCmd     `cmd:"" help:"Print the SHA-256 digest of a file's canonical bytes."`
	Get      GetCmd      `cmd:"" help:"Navigate a path within a file and print the value found."`
}

// ValidateCmd validates a file and reports the offset of the first rule
// violation, if any.
type ValidateCmd struct {
	File string `arg:"" help:"Path to the CBOR payload."`
}

func (c *ValidateCmd) Run() error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read %q: %w", c.File, err)
	}
	if _, err := profile.Validate(data, profile.DefaultLimits(len(data))); err != nil {
		return fmt.Errorf("invalid: %w", err)
	}
	fmt.Println("ok")
	return nil
}

// DiagCmd prints diagnostic notation for a validated file.
type DiagCmd struct {
	File string `arg:"" help:"Path to the CBOR payload."`
}

func (c *DiagCmd) Run() error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read %q: %w", c.File, err)
	}
	vb, err := profile.Validate(data, profile.DefaultLimits(len(data)))
	if err != nil {
		return fmt.Errorf("invalid: %w", err)
	}
	s, err := profile.Diag(vb)
	if err != nil {
		return fmt.Errorf("diag: %w", err)
	}
	fmt.Println(s)
	return nil
}

// HashCmd prints the hex-encoded SHA-256 digest of a validated file.
type HashCmd struct {
	File string `arg:"" help:"Path to the CBOR payload."`
}

func (c *HashCmd) Run() error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read %q: %w", c.File, err)
	}
	vb, err := profile.Validate(data, profile.DefaultLimits(len(data)))
	if err != nil {
		return fmt.Errorf("invalid: %w", err)
	}
	h := profile.HashCanonical(vb)
	fmt.Printf("%x\n", h)
	return nil
}

// GetCmd navigates a slash-separated path ("a/0/b") into a validated file
// and prints the value found, in diagnostic notation. A path element that
// parses as a non-negative integer is treated as an array index;
// otherwise it is treated as a map key.
type GetCmd struct {
	File string `arg:"" help:"Path to the CBOR payload."`
	Path string `arg:"" help:"Slash-separated path, e.g. metadata/0/id"`
}

func (c *GetCmd) Run() error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read %q: %w", c.File, err)
	}
	vb, err := profile.Validate(data, profile.DefaultLimits(len(data)))
	if err != nil {
		return fmt.Errorf("invalid: %w", err)
	}
	path, err := parsePath(c.Path)
	if err != nil {
		return err
	}
	v, err := profile.At(profile.Root(vb), path)
	if err != nil {
		return fmt.Errorf("get %q: %w", c.Path, err)
	}
	diagVB, err := profile.ValidateTrusted(v.Raw(), vb.Limits())
	if err != nil {
		return fmt.Errorf("diag: %w", err)
	}
	s, err := profile.Diag(diagVB)
	if err != nil {
		return fmt.Errorf("diag: %w", err)
	}
	fmt.Println(s)
	return nil
}

func parsePath(s string) (profile.Path, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "/")
	path := make(profile.Path, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			return nil, errors.New("empty path element")
		}
		if n, err := strconv.Atoi(p); err == nil && n >= 0 {
			path = append(path, profile.PI(n))
			continue
		}
		path = append(path, profile.PK(p))
	}
	return path, nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("canonval"),
		kong.Description("Validate, query, and inspect canonical CBOR Profile payloads."),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
