package project

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Tool describes a binary a package is expected to carry in its local
// node_modules, along with the npm package that provides it. The package
// name only feeds the install hint in error messages.
type Tool struct {
	Name    string
	Package string
}

// Compiler is the TypeScript compiler binary.
var Compiler = Tool{Name: "tsc", Package: "typescript"}

// knownTools maps linter binaries to their providing packages so error
// messages can suggest the right install command.
var knownTools = map[string]string{
	"eslint":   "eslint",
	"standard": "standard",
	"xo":       "xo",
	"tsc":      "typescript",
}

// Linter returns the Tool for a linter binary selected by name.
func Linter(name string) Tool {
	pkg, ok := knownTools[name]
	if !ok {
		pkg = name
	}
	return Tool{Name: name, Package: pkg}
}

// Resolve returns the absolute path of the tool's binary under the
// project's node_modules/.bin. Resolution is deliberately local: a
// globally installed binary may be a different version than the one the
// package was developed against.
func (t Tool) Resolve(dir string) (string, error) {
	name := t.Name
	if runtime.GOOS == "windows" {
		name += ".cmd"
	}

	path := filepath.Join(dir, "node_modules", ".bin", name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s was not found in %s: install it locally with `npm install --save-dev %s`",
				t.Name, filepath.Join(dir, "node_modules", ".bin"), t.Package)
		}
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}
