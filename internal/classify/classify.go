// Package classify maps execution outcomes to caller-facing verdicts.
//
// Classification is substring-based on stderr: any error text containing
// a permission marker is treated as a permission denial, even when the
// marker appears in unrelated output. The markers cover Deno's
// PermissionDenied errors and OS-level "permission denied" messages.
package classify

import (
	"fmt"
	"strings"

	"github.com/deixis/tsrun/internal/runner"
)

// NoOutputText is the verdict text for a script that exits cleanly
// without writing to stdout.
const NoOutputText = "Code executed successfully with no output"

// PermissionGuidance tells the caller how to widen the capability set.
const PermissionGuidance = "To grant permissions, restart the MCP server with appropriate flags (e.g. --allow-read, --allow-net, --allow-run)."

// permissionMarkers are matched case-sensitively against stderr.
var permissionMarkers = []string{"PermissionDenied", "permission denied"}

// Verdict is the classified form of one execution, ready to be returned
// to the caller.
type Verdict struct {
	IsError bool
	Text    string
}

// Classify maps a completed execution, or the error that prevented one,
// to a Verdict. A non-nil err means no process completed (scratch or
// spawn failure); res is ignored in that case. stderr is discarded on
// success.
func Classify(res *runner.Result, err error) Verdict {
	if err != nil {
		return Verdict{IsError: true, Text: "Execution error: " + err.Error()}
	}

	if res.ExitCode == 0 {
		text := string(res.Stdout)
		if text == "" {
			text = NoOutputText
		}
		return Verdict{Text: withTruncationNote(text, res.Truncated)}
	}

	stderr := string(res.Stderr)

	if isPermissionDenial(stderr) {
		text := fmt.Sprintf("Permission denied error:\n%s\n%s", stderr, PermissionGuidance)
		return Verdict{IsError: true, Text: withTruncationNote(text, res.Truncated)}
	}

	text := fmt.Sprintf("Error (exit code %d):\n%s", res.ExitCode, stderr)
	return Verdict{IsError: true, Text: withTruncationNote(text, res.Truncated)}
}

func isPermissionDenial(stderr string) bool {
	for _, marker := range permissionMarkers {
		if strings.Contains(stderr, marker) {
			return true
		}
	}
	return false
}

func withTruncationNote(text string, truncated bool) string {
	if !truncated {
		return text
	}
	return text + "\n[output truncated]"
}
