// Package codecerr defines the error taxonomy shared by the container
// codecs: fatal format/truncation errors that abort a decode or encode,
// and per-record warnings for recoverable invariant violations.
package codecerr

import "fmt"

// FormatError reports a structurally invalid container: bad magic or
// version, out-of-range counts, or inconsistent cross-references.
// Always fatal to the current decode/encode call.
type FormatError struct {
	Section string
	Offset  int
	Msg     string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error in %s at offset %d: %s", e.Section, e.Offset, e.Msg)
}

// Formatf builds a FormatError with a formatted message.
func Formatf(section string, offset int, format string, args ...any) *FormatError {
	return &FormatError{Section: section, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// TruncationError reports a buffer exhausted before a declared count was
// satisfied. Always fatal.
type TruncationError struct {
	Section string
	Offset  int
	Need    int
	Have    int
}

func (e *TruncationError) Error() string {
	return fmt.Sprintf("truncated container in %s at offset %d: need %d bytes, have %d",
		e.Section, e.Offset, e.Need, e.Have)
}

// Warning records a recoverable invariant violation. The decoder
// substitutes a documented default and continues; the caller decides
// whether and how to surface it.
type Warning struct {
	Section string
	Index   int
	Msg     string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s[%d]: %s", w.Section, w.Index, w.Msg)
}

// Warnf builds a Warning with a formatted message.
func Warnf(section string, index int, format string, args ...any) Warning {
	return Warning{Section: section, Index: index, Msg: fmt.Sprintf(format, args...)}
}
