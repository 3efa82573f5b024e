package runner

// Result holds the outcome of one script execution.
type Result struct {
	RunID     string // unique identifier for this execution
	ExitCode  int    // child process exit code
	Stdout    []byte // captured stdout (may be truncated)
	Stderr    []byte // captured stderr (may be truncated)
	Truncated bool   // true if output exceeded the size cap
}
