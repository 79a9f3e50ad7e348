// Package convert turns markup from one text format into another through an
// external converter.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/google/shlex"
	"github.com/japaniel/glossword/pkg/gloss"
)

// Format names an input or output format in pandoc's vocabulary.
type Format string

const (
	// HTML reads HTML with smart typography, keeping divs as plain blocks.
	HTML Format = "html+smart-native_divs"
	// Markdown is the line-oriented intermediate format.
	Markdown Format = "markdown"
	// Plain is plain text without markup.
	Plain Format = "plain"
)

// Options tweak a single conversion.
type Options struct {
	// NoWrap disables automatic line wrapping in the output.
	NoWrap bool
}

// Converter converts input from one format to another.
type Converter interface {
	Convert(ctx context.Context, input string, from, to Format, opts Options) (string, error)
}

// DefaultCommand is used when no converter command is configured.
const DefaultCommand = "pandoc"

// Pandoc runs the pandoc binary once per conversion.
type Pandoc struct {
	argv []string
}

// NewPandoc builds a converter from a command line such as "pandoc" or
// "docker run --rm -i pandoc/core". The input file path and format flags are
// appended to it.
func NewPandoc(command string) (*Pandoc, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		command = DefaultCommand
	}
	if strings.ContainsAny(command, "\r\n") {
		return nil, fmt.Errorf("converter command cannot contain newlines")
	}
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("parse converter command: %w", err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("converter command is empty")
	}
	return &Pandoc{argv: argv}, nil
}

// Args returns the argument list used for one conversion of the file at path.
func (p *Pandoc) Args(path string, from, to Format, opts Options) []string {
	args := append([]string{}, p.argv[1:]...)
	args = append(args, path, "-f", string(from), "-t", string(to))
	if opts.NoWrap {
		args = append(args, "--wrap=none")
	}
	return args
}

// Convert writes input to a temp file, runs the converter on it and returns
// its standard output. Every failure is reported as gloss.ErrConversion.
func (p *Pandoc) Convert(ctx context.Context, input string, from, to Format, opts Options) (string, error) {
	f, err := os.CreateTemp("", "glossword-*.txt")
	if err != nil {
		return "", fmt.Errorf("%w: create tempfile: %w", gloss.ErrConversion, err)
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString(input); err != nil {
		f.Close()
		return "", fmt.Errorf("%w: write tempfile: %w", gloss.ErrConversion, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: write tempfile: %w", gloss.ErrConversion, err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.argv[0], p.Args(f.Name(), from, to, opts)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %s exited with status %d: %s",
				gloss.ErrConversion, p.argv[0], exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%w: failed to execute %s: %w", gloss.ErrConversion, p.argv[0], err)
	}

	if !utf8.Valid(stdout.Bytes()) {
		return "", fmt.Errorf("%w: %s output is not valid UTF-8", gloss.ErrConversion, p.argv[0])
	}
	return stdout.String(), nil
}
