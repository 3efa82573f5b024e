package classify

import (
	"errors"
	"strings"
	"testing"

	"github.com/deixis/tsrun/internal/runner"
)

func TestClassify_Success(t *testing.T) {
	v := Classify(&runner.Result{ExitCode: 0, Stdout: []byte("hello\n")}, nil)
	if v.IsError {
		t.Error("IsError = true, want false")
	}
	if v.Text != "hello\n" {
		t.Errorf("Text = %q, want %q", v.Text, "hello\n")
	}
}

func TestClassify_SuccessNoOutput(t *testing.T) {
	v := Classify(&runner.Result{ExitCode: 0}, nil)
	if v.IsError {
		t.Error("IsError = true, want false")
	}
	if v.Text != NoOutputText {
		t.Errorf("Text = %q, want %q", v.Text, NoOutputText)
	}
}

func TestClassify_SuccessDiscardsStderr(t *testing.T) {
	v := Classify(&runner.Result{
		ExitCode: 0,
		Stdout:   []byte("result"),
		Stderr:   []byte("warning: something noisy"),
	}, nil)
	if v.IsError {
		t.Error("IsError = true, want false")
	}
	if v.Text != "result" {
		t.Errorf("Text = %q, want stdout only", v.Text)
	}
}

func TestClassify_RuntimeFailure(t *testing.T) {
	v := Classify(&runner.Result{
		ExitCode: 1,
		Stderr:   []byte("error: Uncaught Error: boom\n"),
	}, nil)
	if !v.IsError {
		t.Error("IsError = false, want true")
	}
	if !strings.Contains(v.Text, "Error (exit code 1):") {
		t.Errorf("Text = %q, want exit code prefix", v.Text)
	}
	if !strings.Contains(v.Text, "Uncaught Error: boom") {
		t.Errorf("Text = %q, want full stderr", v.Text)
	}
}

func TestClassify_ExitCodeInPrefix(t *testing.T) {
	v := Classify(&runner.Result{ExitCode: 2, Stderr: []byte("syntax error")}, nil)
	if !strings.Contains(v.Text, "Error (exit code 2):") {
		t.Errorf("Text = %q, want exit code 2 in prefix", v.Text)
	}
}

func TestClassify_PermissionDenied(t *testing.T) {
	stderr := `error: Uncaught PermissionDenied: Requires read access to "/etc/passwd"`
	v := Classify(&runner.Result{ExitCode: 1, Stderr: []byte(stderr)}, nil)
	if !v.IsError {
		t.Error("IsError = false, want true")
	}
	if !strings.HasPrefix(v.Text, "Permission denied error:") {
		t.Errorf("Text = %q, want permission prefix", v.Text)
	}
	if !strings.Contains(v.Text, stderr) {
		t.Errorf("Text = %q, want full stderr", v.Text)
	}
	if !strings.Contains(v.Text, "To grant permissions, restart the MCP server with appropriate flags") {
		t.Errorf("Text = %q, want guidance text", v.Text)
	}
}

func TestClassify_PermissionDeniedLowercaseMarker(t *testing.T) {
	v := Classify(&runner.Result{
		ExitCode: 1,
		Stderr:   []byte("open /root/secret: permission denied"),
	}, nil)
	if !strings.HasPrefix(v.Text, "Permission denied error:") {
		t.Errorf("Text = %q, want permission prefix", v.Text)
	}
}

func TestClassify_MarkerIsCaseSensitive(t *testing.T) {
	v := Classify(&runner.Result{
		ExitCode: 1,
		Stderr:   []byte("PERMISSION DENIED"),
	}, nil)
	if strings.HasPrefix(v.Text, "Permission denied error:") {
		t.Errorf("Text = %q, want generic error for non-matching case", v.Text)
	}
	if !strings.Contains(v.Text, "Error (exit code 1):") {
		t.Errorf("Text = %q, want exit code prefix", v.Text)
	}
}

func TestClassify_MarkerAnywhereInStderr(t *testing.T) {
	// Substring matching is deliberate: any stderr mentioning the marker
	// classifies as a permission denial, even incidentally.
	v := Classify(&runner.Result{
		ExitCode: 1,
		Stderr:   []byte(`throw new Error("PermissionDenied is just a string here")`),
	}, nil)
	if !strings.HasPrefix(v.Text, "Permission denied error:") {
		t.Errorf("Text = %q, want permission classification", v.Text)
	}
}

func TestClassify_SetupError(t *testing.T) {
	err := &runner.SetupError{Err: errors.New("creating scratch directory: disk full")}
	v := Classify(nil, err)
	if !v.IsError {
		t.Error("IsError = false, want true")
	}
	if !strings.HasPrefix(v.Text, "Execution error: ") {
		t.Errorf("Text = %q, want execution error prefix", v.Text)
	}
	if !strings.Contains(v.Text, "disk full") {
		t.Errorf("Text = %q, want underlying message", v.Text)
	}
}

func TestClassify_TruncationNote(t *testing.T) {
	v := Classify(&runner.Result{
		ExitCode:  0,
		Stdout:    []byte("partial"),
		Truncated: true,
	}, nil)
	if !strings.Contains(v.Text, "[output truncated]") {
		t.Errorf("Text = %q, want truncation note", v.Text)
	}
}
