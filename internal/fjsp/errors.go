package fjsp

import "fmt"

// ResourceError reports an instance file that could not be opened or read.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("instance %s: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// FormatError reports instance content that does not match the instance grammar.
// Line is 1-based and counts every physical line, blank ones included; 0 means the
// problem is not tied to a single line.
type FormatError struct {
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Line <= 0 {
		return "malformed instance: " + e.Msg
	}
	return fmt.Sprintf("malformed instance: line %d: %s", e.Line, e.Msg)
}

func formatErrorf(line int, format string, args ...any) *FormatError {
	return &FormatError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
