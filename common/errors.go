package common

import (
	"fmt"
)

// FormatError reports a malformed record line. Line is 1-based and zero when
// the line number is unknown (e.g. a direct codec call).
type FormatError struct {
	Line   int
	Text   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	msg := "malformed record"
	if e.Line > 0 {
		msg = fmt.Sprintf("%s at line %d", msg, e.Line)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.Err }

// FileError reports a failed operation on a chunk, manifest or output file.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

func NewFileError(op, path string, err error) *FileError {
	return &FileError{Op: op, Path: path, Err: err}
}

// ConfigError reports an invalid caller-supplied setting.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

func NewConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}
