// Package pipeline drives the build lifecycle the way a host packaging
// tool would: configuration validation, layout validation, compilation,
// lint, then manifest patching. Each hook is independent and
// side-effecting; the first error stops the sequence and surfaces as-is.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tspack/tspack/pkg/compiler"
	"github.com/tspack/tspack/pkg/lint"
	"github.com/tspack/tspack/pkg/manifest"
	"github.com/tspack/tspack/pkg/project"
	"github.com/tspack/tspack/pkg/settings"
	"github.com/tspack/tspack/pkg/tsconfig"
)

// Pipeline holds everything one build run needs.
type Pipeline struct {
	Dir       string
	OutDir    string
	TypesDir  string
	ExtraArgs []string
	Linter    string
	LintArgs  []string
	SkipLint  bool
	DryRun    bool

	Logger *logrus.Logger
	Stdout io.Writer
	Stderr io.Writer

	expect      tsconfig.Expectation
	compilerBin string
}

// New builds a Pipeline from resolved settings.
func New(s *settings.Settings, log *logrus.Logger) *Pipeline {
	return &Pipeline{
		Dir:       s.Project,
		OutDir:    s.OutDir,
		TypesDir:  s.TypesDir,
		ExtraArgs: s.Args,
		Linter:    s.Linter,
		LintArgs:  s.LintArgs,
		SkipLint:  s.SkipLint,
		Logger:    log,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
}

// ValidateConfig is the pre-build hook: it loads tsconfig.json and warns
// about compiler options that differ from what the build will force. A
// missing compiler is tolerated here so validation can run before `npm
// install`; the build hook reports it properly.
func (p *Pipeline) ValidateConfig(ctx context.Context) error {
	exp := tsconfig.Expect(nil)
	if bin, err := project.Compiler.Resolve(p.Dir); err == nil {
		p.compilerBin = bin
		if v, err := compiler.Version(ctx, bin); err == nil {
			p.Logger.Debugf("detected tsc %s", v)
			exp = tsconfig.Expect(v)
		} else {
			p.Logger.WithError(err).Debug("could not detect compiler version")
		}
	}
	p.expect = exp

	f, err := tsconfig.Load(p.Dir)
	if err != nil {
		return err
	}
	for _, w := range tsconfig.Validate(f, exp) {
		p.Logger.Warn(w)
	}
	return nil
}

// ValidateLayout is the pre-job hook: src/ and an entry point must exist.
func (p *Pipeline) ValidateLayout() error {
	return project.ValidateLayout(p.Dir)
}

// ResolveCompiler returns the project-local tsc binary, caching the
// lookup across hooks.
func (p *Pipeline) ResolveCompiler() (string, error) {
	if p.compilerBin != "" {
		return p.compilerBin, nil
	}
	bin, err := project.Compiler.Resolve(p.Dir)
	if err != nil {
		return "", err
	}
	p.compilerBin = bin
	return bin, nil
}

// CompilerOptions returns the invocation options for the build hook,
// honoring the target fallback decided during config validation.
func (p *Pipeline) CompilerOptions() compiler.Options {
	target := p.expect.Target
	if target == "" {
		target = tsconfig.DefaultTarget
	}
	return compiler.Options{
		Dir:       p.Dir,
		OutDir:    p.OutDir,
		TypesDir:  p.TypesDir,
		Target:    target,
		ExtraArgs: p.ExtraArgs,
		Stdout:    p.Stdout,
		Stderr:    p.Stderr,
	}
}

// Build is the build hook: resolve the compiler and run it, relaying its
// output live. With DryRun set it prints the command line instead.
func (p *Pipeline) Build(ctx context.Context) error {
	bin, err := p.ResolveCompiler()
	if err != nil {
		return err
	}

	opts := p.CompilerOptions()
	if p.DryRun {
		fmt.Fprintf(p.Stdout, "%s %s\n", bin, strings.Join(opts.Args(), " "))
		return nil
	}

	p.Logger.Debugf("running %s %s", bin, strings.Join(opts.Args(), " "))
	return compiler.Run(ctx, bin, opts)
}

// Lint is the post-job hook: run the configured linter over the emitted
// JavaScript and print its summary.
func (p *Pipeline) Lint(ctx context.Context) error {
	if p.SkipLint {
		p.Logger.Debug("lint disabled, skipping")
		return nil
	}

	bin, err := project.Linter(p.Linter).Resolve(p.Dir)
	if err != nil {
		return err
	}

	_, err = lint.Run(ctx, bin, lint.Options{
		Dir:       p.Dir,
		Target:    p.OutDir,
		ExtraArgs: p.LintArgs,
		Output:    p.Stdout,
	})
	return err
}

// PatchManifest fills in the manifest's default entry-point fields.
func (p *Pipeline) PatchManifest() error {
	return manifest.Patch(p.Dir, p.OutDir, p.TypesDir)
}

// Run drives the full hook sequence in host order. A dry run stops after
// printing the build command: lint and manifest patching only make sense
// against real output.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.ValidateConfig(ctx); err != nil {
		return err
	}
	if err := p.ValidateLayout(); err != nil {
		return err
	}
	if err := p.Build(ctx); err != nil {
		return err
	}
	if p.DryRun {
		return nil
	}
	if err := p.Lint(ctx); err != nil {
		return err
	}
	return p.PatchManifest()
}
