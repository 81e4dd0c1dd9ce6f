package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PipelineFileName is the optional per-project configuration file.
const PipelineFileName = "tspack.yml"

// FileConfig represents the raw tspack.yml as written by users.
// All fields are pointers/omitempty to distinguish "not set" from "set to
// zero value"; unset fields defer to user config, environment, and flags.
type FileConfig struct {
	OutDir   *string   `yaml:"outDir,omitempty" json:"outDir,omitempty" jsonschema:"description=Directory receiving emitted JavaScript,default=dist-src"`
	TypesDir *string   `yaml:"typesDir,omitempty" json:"typesDir,omitempty" jsonschema:"description=Directory receiving emitted type declarations,default=dist-types"`
	Args     []string  `yaml:"args,omitempty" json:"args,omitempty" jsonschema:"description=Extra arguments appended to the tsc invocation"`
	Lint     *LintFile `yaml:"lint,omitempty" json:"lint,omitempty"`
}

// LintFile is the lint section of tspack.yml.
type LintFile struct {
	Disable *bool    `yaml:"disable,omitempty" json:"disable,omitempty" jsonschema:"description=Skip the post-build lint step"`
	Command *string  `yaml:"command,omitempty" json:"command,omitempty" jsonschema:"description=Linter binary resolved from node_modules/.bin,default=eslint"`
	Args    []string `yaml:"args,omitempty" json:"args,omitempty" jsonschema:"description=Extra arguments passed to the linter"`
}

// LoadFile reads tspack.yml from projectDir. A missing file is not an
// error: it returns (nil, nil) and every setting falls through to the
// next configuration layer.
func LoadFile(projectDir string) (*FileConfig, error) {
	p := filepath.Join(projectDir, PipelineFileName)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}

	var f FileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", p, err)
	}
	return &f, nil
}

// flatten converts the set fields into koanf keys so the file slots into
// the layered load in Load.
func (f *FileConfig) flatten() map[string]interface{} {
	m := make(map[string]interface{})
	if f == nil {
		return m
	}
	if f.OutDir != nil {
		m["out-dir"] = *f.OutDir
	}
	if f.TypesDir != nil {
		m["types-dir"] = *f.TypesDir
	}
	if len(f.Args) > 0 {
		m["args"] = f.Args
	}
	if f.Lint != nil {
		if f.Lint.Disable != nil {
			m["skip-lint"] = *f.Lint.Disable
		}
		if f.Lint.Command != nil {
			m["linter"] = *f.Lint.Command
		}
		if len(f.Lint.Args) > 0 {
			m["lint-args"] = f.Lint.Args
		}
	}
	return m
}
