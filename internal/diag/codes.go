package diag

import "fmt"

// Code enumerates the reasons a diagnostic can be produced.
type Code uint16

const (
	UnknownCode Code = 0

	// Parse failures abort the whole invocation for that file.
	ParseFailed Code = 1001
	// LoadFailed reports an I/O error while reading a file from disk.
	LoadFailed Code = 1002

	// Rewrite warnings suppress the edit for one call site only.
	MissingArguments   Code = 2001
	InvalidBaseClasses Code = 2002
	UnknownVariant     Code = 2003
)

// ID returns the stable machine identifier, e.g. "TW1001".
func (c Code) ID() string {
	return fmt.Sprintf("TW%04d", uint16(c))
}

func (c Code) String() string {
	switch c {
	case ParseFailed:
		return "parse-failed"
	case LoadFailed:
		return "load-failed"
	case MissingArguments:
		return "missing-arguments"
	case InvalidBaseClasses:
		return "invalid-base-classes"
	case UnknownVariant:
		return "unknown-variant"
	}
	return "unknown"
}
