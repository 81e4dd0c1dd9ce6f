// Package tsconfig loads and validates a project's tsconfig.json.
//
// Validation never fails the build: mismatched compiler options produce
// warnings, because the build forces the options it needs on the command
// line anyway. Only a missing or unparseable tsconfig.json is an error.
package tsconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/tailscale/hujson"
)

// FileName is the configuration file looked up at the project root.
const FileName = "tsconfig.json"

const (
	// DefaultTarget is the emit target forced by the build.
	DefaultTarget = "es2020"
	// FallbackTarget is used when the installed compiler predates es2020.
	FallbackTarget = "es2019"
	// DefaultModule is the module system forced by the build.
	DefaultModule = "esnext"
)

// es2020 target support landed in TypeScript 3.8.
var minES2020 = semver.MustParse("3.8.0")

// File represents the raw tsconfig.json as written by users.
// Pointer fields distinguish "not set" from "set to zero value".
type File struct {
	Extends         *string          `json:"extends,omitempty"`
	CompilerOptions *CompilerOptions `json:"compilerOptions,omitempty"`
	Include         []string         `json:"include,omitempty"`
	Exclude         []string         `json:"exclude,omitempty"`
}

// CompilerOptions carries the subset of compiler options tspack inspects.
type CompilerOptions struct {
	Target         *string `json:"target,omitempty"`
	Module         *string `json:"module,omitempty"`
	OutDir         *string `json:"outDir,omitempty"`
	Declaration    *bool   `json:"declaration,omitempty"`
	DeclarationDir *string `json:"declarationDir,omitempty"`
	SourceMap      *bool   `json:"sourceMap,omitempty"`
}

// Load reads tsconfig.json from projectDir. The file may contain comments
// and trailing commas, which tsc accepts; they are standardized away
// before decoding.
func Load(projectDir string) (*File, error) {
	path := filepath.Join(projectDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no %s found in %s: a TypeScript package needs one at its root", FileName, projectDir)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var f File
	if err := json.Unmarshal(std, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &f, nil
}

// Expectation holds the compiler options the build expects to find.
type Expectation struct {
	Target string
	Module string
	// Fallback is set when the installed compiler is too old for es2020
	// and the expected target dropped to es2019.
	Fallback bool
}

// Expect returns the expected options for the given compiler version.
// A nil version (compiler not resolved yet) yields the defaults.
func Expect(tscVersion *semver.Version) Expectation {
	exp := Expectation{Target: DefaultTarget, Module: DefaultModule}
	if tscVersion != nil && tscVersion.LessThan(minES2020) {
		exp.Target = FallbackTarget
		exp.Fallback = true
	}
	return exp
}

// Validate compares the file's compiler options against exp and returns
// one warning message per mismatch. Comparison is case-insensitive, the
// way tsc itself treats these values.
func Validate(f *File, exp Expectation) []string {
	var target, module string
	if f.CompilerOptions != nil {
		if f.CompilerOptions.Target != nil {
			target = *f.CompilerOptions.Target
		}
		if f.CompilerOptions.Module != nil {
			module = *f.CompilerOptions.Module
		}
	}

	var warnings []string
	if !strings.EqualFold(target, exp.Target) {
		if exp.Fallback {
			warnings = append(warnings, fmt.Sprintf(
				"tsconfig.json: \"target\" should be %q (the installed TypeScript compiler predates %q support), found %s",
				exp.Target, DefaultTarget, describe(target)))
		} else {
			warnings = append(warnings, fmt.Sprintf(
				"tsconfig.json: \"target\" should be %q, found %s", exp.Target, describe(target)))
		}
	}
	if !strings.EqualFold(module, exp.Module) {
		warnings = append(warnings, fmt.Sprintf(
			"tsconfig.json: \"module\" should be %q, found %s", exp.Module, describe(module)))
	}
	return warnings
}

func describe(v string) string {
	if v == "" {
		return "nothing"
	}
	return fmt.Sprintf("%q", v)
}
