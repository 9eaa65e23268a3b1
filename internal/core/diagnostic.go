package core

// Diagnostic describes an input line that was skipped while reading a file.
type Diagnostic struct {
	Line   int // zero-based
	Raw    string
	Reason string
}
