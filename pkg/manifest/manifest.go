// Package manifest patches a package.json with default entry-point fields.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// FileName is the npm package manifest.
const FileName = "package.json"

// Manifest is a package.json document. Fields tspack does not touch are
// carried through untouched.
type Manifest map[string]interface{}

// Load reads package.json from projectDir.
func Load(projectDir string) (Manifest, error) {
	p := filepath.Join(projectDir, FileName)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no %s found in %s", FileName, projectDir)
		}
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", p, err)
	}
	return m, nil
}

// ApplyDefaults fills in the "source" and "types" entry points when they
// are absent, pointing at the build output. Existing values are never
// overwritten. Returns true when the manifest changed.
func (m Manifest) ApplyDefaults(outDir, typesDir string) bool {
	changed := false
	if _, ok := m["source"]; !ok {
		// Manifest fields use forward slashes on every platform.
		m["source"] = path.Join(filepath.ToSlash(outDir), "index.js")
		changed = true
	}
	if _, ok := m["types"]; !ok {
		m["types"] = path.Join(filepath.ToSlash(typesDir), "index.d.ts")
		changed = true
	}
	return changed
}

// Save writes the manifest back with npm's conventional two-space indent
// and trailing newline.
func (m Manifest) Save(projectDir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", FileName, err)
	}
	data = append(data, '\n')

	p := filepath.Join(projectDir, FileName)
	if err := os.WriteFile(p, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

// Patch loads the manifest, applies the entry-point defaults, and writes
// it back only when something changed.
func Patch(projectDir, outDir, typesDir string) error {
	m, err := Load(projectDir)
	if err != nil {
		return err
	}
	if !m.ApplyDefaults(outDir, typesDir) {
		return nil
	}
	return m.Save(projectDir)
}
