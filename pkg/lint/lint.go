// Package lint runs an external linter over the build output and reports
// a one-line summary.
package lint

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strconv"
)

// Options configures a linter invocation.
type Options struct {
	Dir       string   // project root; the linter runs here
	Target    string   // path to lint, relative to Dir
	ExtraArgs []string // user-supplied linter arguments

	Output io.Writer // defaults to os.Stdout
}

// Result is the parsed outcome of a lint run.
type Result struct {
	Problems int
	Raw      []byte
}

// Summary returns the one-line report printed after a lint run.
func (r *Result) Summary() string {
	switch r.Problems {
	case 0:
		return "lint: no problems found"
	case 1:
		return "lint: 1 problem found"
	default:
		return fmt.Sprintf("lint: %d problems found", r.Problems)
	}
}

// ESLint and friends end their report with "✖ N problems (...)".
var problemsRe = regexp.MustCompile(`(\d+) problems?`)

// Run invokes the linter binary against opts.Target, prints its raw
// output followed by the summary, and returns the parsed result. A
// non-zero exit becomes an error after the summary is printed, so the
// caller sees the report before the failure surfaces.
func Run(ctx context.Context, bin string, opts Options) (*Result, error) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	args := append([]string{opts.Target}, opts.ExtraArgs...)
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = opts.Dir
	raw, runErr := cmd.CombinedOutput()

	if len(raw) > 0 {
		out.Write(raw)
	}

	result := &Result{Raw: raw, Problems: countProblems(raw)}
	fmt.Fprintln(out, result.Summary())

	if runErr != nil {
		if _, ok := runErr.(*exec.ExitError); ok {
			if result.Problems > 0 {
				return result, fmt.Errorf("lint failed with %d problem(s)", result.Problems)
			}
			return result, fmt.Errorf("linter exited with an error: %w", runErr)
		}
		return result, fmt.Errorf("failed to run %s: %w", bin, runErr)
	}
	return result, nil
}

func countProblems(raw []byte) int {
	m := problemsRe.FindSubmatch(raw)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0
	}
	return n
}
