// Package compiler shells out to the project-local TypeScript compiler.
package compiler

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	// DefaultOutDir receives the emitted JavaScript.
	DefaultOutDir = "dist-src"
	// DefaultTypesDir receives the emitted declaration files.
	DefaultTypesDir = "dist-types"
)

// Options configures a single compiler invocation.
type Options struct {
	Dir       string   // project root; the compiler runs here
	OutDir    string   // JavaScript output directory
	TypesDir  string   // declaration output directory
	Target    string   // emit target, forced onto the command line
	ExtraArgs []string // user-supplied arguments, appended after the template

	Stdout io.Writer // defaults to os.Stdout
	Stderr io.Writer // defaults to os.Stderr
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.OutDir == "" {
		out.OutDir = DefaultOutDir
	}
	if out.TypesDir == "" {
		out.TypesDir = DefaultTypesDir
	}
	if out.Target == "" {
		out.Target = "es2020"
	}
	if out.Stdout == nil {
		out.Stdout = os.Stdout
	}
	if out.Stderr == nil {
		out.Stderr = os.Stderr
	}
	return out
}

// Args returns the full compiler argument list: the fixed template first,
// then any user-supplied extras. Extras can extend the template but never
// reorder it.
func (o *Options) Args() []string {
	opts := o.withDefaults()
	args := []string{
		"--outDir", opts.OutDir,
		"--declaration",
		"--declarationDir", opts.TypesDir,
		"--target", opts.Target,
		"--module", "esnext",
		"--sourceMap", "false",
	}
	return append(args, opts.ExtraArgs...)
}

// Run invokes the compiler binary and relays its stdout and stderr live.
// On failure it prints a blank separator line so the compiler's own error
// output stays visually detached from ours, then propagates the error.
func Run(ctx context.Context, bin string, opts Options) error {
	o := opts.withDefaults()

	cmd := exec.CommandContext(ctx, bin, o.Args()...)
	cmd.Dir = o.Dir
	cmd.Stdout = o.Stdout
	cmd.Stderr = o.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Fprintln(o.Stdout)
		return fmt.Errorf("tsc exited with an error: %w", err)
	}
	return nil
}

// Version asks the compiler binary for its version. tsc prints a single
// line of the form "Version 5.4.5".
func Version(ctx context.Context, bin string) (*semver.Version, error) {
	cmd := exec.CommandContext(ctx, bin, "--version")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run %s --version: %w", bin, err)
	}

	raw := strings.TrimSpace(string(out))
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Version"))
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("could not parse tsc version from %q: %w", strings.TrimSpace(string(out)), err)
	}
	return v, nil
}
