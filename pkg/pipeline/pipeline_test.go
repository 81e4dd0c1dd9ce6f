package pipeline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tspack/tspack/pkg/logger"
	"github.com/tspack/tspack/pkg/pipeline"
	"github.com/tspack/tspack/pkg/settings"
)

// newFixtureProject lays out a complete TypeScript package with stub tsc
// and eslint binaries. The tsc stub records its argv and emits the output
// files a real compile would produce.
func newFixtureProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "index.ts"), []byte("export const answer = 42\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tsconfig.json"),
		[]byte(`{"compilerOptions": {"target": "es2020", "module": "esnext"}}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"),
		[]byte(`{"name": "fixture", "version": "0.1.0"}`), 0644))

	binDir := filepath.Join(dir, "node_modules", ".bin")
	require.NoError(t, os.MkdirAll(binDir, 0755))

	tscScript := `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "Version 5.4.5"
  exit 0
fi
echo "$@" > tsc-argv.txt
mkdir -p dist-src dist-types
echo "export const answer = 42;" > dist-src/index.js
echo "export declare const answer: number;" > dist-types/index.d.ts
`
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "tsc"), []byte(tscScript), 0755))

	eslintScript := `#!/bin/sh
echo "eslint $@" > eslint-argv.txt
exit 0
`
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "eslint"), []byte(eslintScript), 0755))

	return dir
}

func newPipeline(t *testing.T, dir string) (*pipeline.Pipeline, *bytes.Buffer) {
	t.Helper()
	p := pipeline.New(&settings.Settings{
		Project:  dir,
		OutDir:   "dist-src",
		TypesDir: "dist-types",
		Linter:   "eslint",
	}, logger.Silent())

	var out bytes.Buffer
	p.Stdout = &out
	p.Stderr = &out
	return p, &out
}

func TestRun(t *testing.T) {
	t.Run("FullSequence", func(t *testing.T) {
		dir := newFixtureProject(t)
		p, _ := newPipeline(t, dir)

		require.NoError(t, p.Run(context.Background()))

		// Compiler got the fixed template with the forced options.
		argv, err := os.ReadFile(filepath.Join(dir, "tsc-argv.txt"))
		require.NoError(t, err)
		assert.Equal(t, "--outDir dist-src --declaration --declarationDir dist-types --target es2020 --module esnext --sourceMap false\n", string(argv))

		// Linter ran against the emitted directory.
		lintArgv, err := os.ReadFile(filepath.Join(dir, "eslint-argv.txt"))
		require.NoError(t, err)
		assert.Equal(t, "eslint dist-src\n", string(lintArgv))

		// Manifest got its entry points.
		data, err := os.ReadFile(filepath.Join(dir, "package.json"))
		require.NoError(t, err)
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &m))
		assert.Equal(t, "dist-src/index.js", m["source"])
		assert.Equal(t, "dist-types/index.d.ts", m["types"])
	})

	t.Run("MissingTsconfigStopsEarly", func(t *testing.T) {
		dir := newFixtureProject(t)
		require.NoError(t, os.Remove(filepath.Join(dir, "tsconfig.json")))
		p, _ := newPipeline(t, dir)

		err := p.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no tsconfig.json found")
		assert.NoFileExists(t, filepath.Join(dir, "tsc-argv.txt"))
	})

	t.Run("MissingEntryPointStopsBeforeBuild", func(t *testing.T) {
		dir := newFixtureProject(t)
		require.NoError(t, os.Remove(filepath.Join(dir, "src", "index.ts")))
		p, _ := newPipeline(t, dir)

		err := p.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "src/index.ts or src/index.tsx")
		assert.NoFileExists(t, filepath.Join(dir, "tsc-argv.txt"))
	})

	t.Run("MissingCompilerFailsBuild", func(t *testing.T) {
		dir := newFixtureProject(t)
		require.NoError(t, os.Remove(filepath.Join(dir, "node_modules", ".bin", "tsc")))
		p, _ := newPipeline(t, dir)

		err := p.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "npm install --save-dev typescript")
	})

	t.Run("CompilerFailurePropagates", func(t *testing.T) {
		dir := newFixtureProject(t)
		failing := `#!/bin/sh
if [ "$1" = "--version" ]; then echo "Version 5.4.5"; exit 0; fi
echo "src/index.ts(1,1): error TS1005"
exit 2
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", ".bin", "tsc"), []byte(failing), 0755))
		p, out := newPipeline(t, dir)

		err := p.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tsc exited with an error")
		// Blank separator line between compiler output and the error.
		assert.Contains(t, out.String(), "error TS1005\n\n")
		// Lint never ran.
		assert.NoFileExists(t, filepath.Join(dir, "eslint-argv.txt"))
	})

	t.Run("SkipLint", func(t *testing.T) {
		dir := newFixtureProject(t)
		p, _ := newPipeline(t, dir)
		p.SkipLint = true

		require.NoError(t, p.Run(context.Background()))
		assert.NoFileExists(t, filepath.Join(dir, "eslint-argv.txt"))
	})

	t.Run("DryRunPrintsCommandOnly", func(t *testing.T) {
		dir := newFixtureProject(t)
		p, out := newPipeline(t, dir)
		p.DryRun = true

		require.NoError(t, p.Run(context.Background()))
		assert.Contains(t, out.String(), "--outDir dist-src")
		assert.NoFileExists(t, filepath.Join(dir, "tsc-argv.txt"))
		assert.NoFileExists(t, filepath.Join(dir, "eslint-argv.txt"))

		// Manifest untouched on a dry run.
		data, err := os.ReadFile(filepath.Join(dir, "package.json"))
		require.NoError(t, err)
		assert.NotContains(t, string(data), "dist-src/index.js")
	})

	t.Run("ExtraArgsReachCompiler", func(t *testing.T) {
		dir := newFixtureProject(t)
		p, _ := newPipeline(t, dir)
		p.ExtraArgs = []string{"--strict"}

		require.NoError(t, p.Run(context.Background()))
		argv, err := os.ReadFile(filepath.Join(dir, "tsc-argv.txt"))
		require.NoError(t, err)
		assert.Contains(t, string(argv), "--sourceMap false --strict")
	})
}

func TestValidateConfigWarnings(t *testing.T) {
	t.Run("OldCompilerFallsBackToES2019", func(t *testing.T) {
		dir := newFixtureProject(t)
		old := `#!/bin/sh
if [ "$1" = "--version" ]; then echo "Version 3.7.5"; exit 0; fi
echo "$@" > tsc-argv.txt
mkdir -p dist-src dist-types
touch dist-src/index.js dist-types/index.d.ts
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", ".bin", "tsc"), []byte(old), 0755))
		p, _ := newPipeline(t, dir)
		p.SkipLint = true

		require.NoError(t, p.Run(context.Background()))

		argv, err := os.ReadFile(filepath.Join(dir, "tsc-argv.txt"))
		require.NoError(t, err)
		assert.Contains(t, string(argv), "--target es2019")
	})

	t.Run("MissingCompilerStillValidates", func(t *testing.T) {
		dir := newFixtureProject(t)
		require.NoError(t, os.Remove(filepath.Join(dir, "node_modules", ".bin", "tsc")))
		p, _ := newPipeline(t, dir)

		// The pre-build hook alone must not require the toolchain.
		require.NoError(t, p.ValidateConfig(context.Background()))
	})
}
