// Package project validates a TypeScript package's on-disk layout and
// resolves its locally installed toolchain binaries.
package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// SourceDir is where a package keeps its TypeScript sources.
const SourceDir = "src"

// entryPoints lists the accepted package entry files, in lookup order.
var entryPoints = []string{"index.ts", "index.tsx"}

// ValidateLayout checks that dir contains a src/ directory with an
// index.ts or index.tsx entry point. It runs before a build job so the
// compiler is never invoked against a package that cannot produce output.
func ValidateLayout(dir string) error {
	srcPath := filepath.Join(dir, SourceDir)
	info, err := os.Stat(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no src/ directory found in %s: TypeScript sources must live under src/", dir)
		}
		return fmt.Errorf("failed to stat %s: %w", srcPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists but is not a directory", srcPath)
	}

	for _, entry := range entryPoints {
		if _, err := os.Stat(filepath.Join(srcPath, entry)); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no entry point found in %s: expected src/index.ts or src/index.tsx", dir)
}

// EntryPoint returns the entry file that ValidateLayout accepted, relative
// to dir, or an error when none exists.
func EntryPoint(dir string) (string, error) {
	for _, entry := range entryPoints {
		rel := filepath.Join(SourceDir, entry)
		if _, err := os.Stat(filepath.Join(dir, rel)); err == nil {
			return rel, nil
		}
	}
	return "", fmt.Errorf("no entry point found in %s: expected src/index.ts or src/index.tsx", dir)
}
