package fontbin

import (
	"errors"
	"fmt"
	"math"
)

// ErrEndOfData is wrapped by every span read running past its span.
var ErrEndOfData = errors.New("unexpected end of data")

// ErrorKind classifies decoding errors.
type ErrorKind int

const (
	// KindStructural flags malformed container layout, e.g. a bad version tag,
	// an unknown sub-table format or an invalid operand.
	KindStructural ErrorKind = iota
	// KindUnsupported flags constructs which are recognized but not implemented,
	// e.g. font collections.
	KindUnsupported
)

// String returns a human-readable representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindStructural:
		return "STRUCTURAL"
	case KindUnsupported:
		return "UNSUPPORTED"
	default:
		return "UNKNOWN"
	}
}

// FontError represents an error encountered while decoding font data.
// Decoding does not recover from a FontError: the structure being decoded is
// unusable.
type FontError struct {
	Kind    ErrorKind // structural or unsupported
	Table   string    // table or container part, e.g. "cmap" or "CFF"
	Section string    // specific section within the table, e.g. "format4" or "Private"
	Issue   string    // human-readable description of the issue
	Offset  int       // byte offset where the error occurred (0 if unknown)
	Err     error     // underlying cause, may be nil
}

// Error implements the error interface.
func (e *FontError) Error() string {
	var msg string
	if e.Offset > 0 {
		msg = fmt.Sprintf("[%s] %s/%s at offset %d: %s", e.Kind, e.Table, e.Section, e.Offset, e.Issue)
	} else {
		msg = fmt.Sprintf("[%s] %s/%s: %s", e.Kind, e.Table, e.Section, e.Issue)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FontError) Unwrap() error {
	return e.Err
}

// Structural creates a structural decoding error.
func Structural(table, section string, format string, args ...any) *FontError {
	return &FontError{
		Kind:    KindStructural,
		Table:   table,
		Section: section,
		Issue:   fmt.Sprintf(format, args...),
	}
}

// Unsupported creates an error for a recognized but unsupported construct.
func Unsupported(table, section string, format string, args ...any) *FontError {
	return &FontError{
		Kind:    KindUnsupported,
		Table:   table,
		Section: section,
		Issue:   fmt.Sprintf(format, args...),
	}
}

// Wrap turns err into a structural FontError for table/section, unless err
// already is a FontError. A nil err stays nil.
func Wrap(err error, table, section string) error {
	if err == nil {
		return nil
	}
	var fe *FontError
	if errors.As(err, &fe) {
		return err
	}
	return &FontError{
		Kind:    KindStructural,
		Table:   table,
		Section: section,
		Issue:   "cannot decode",
		Err:     err,
	}
}

// At sets the byte offset of e and returns e.
func (e *FontError) At(offset int) *FontError {
	e.Offset = offset
	return e
}

// IsStructural is true if err flags malformed font data.
func IsStructural(err error) bool {
	var fe *FontError
	if errors.As(err, &fe) {
		return fe.Kind == KindStructural
	}
	return errors.Is(err, ErrEndOfData)
}

// IsUnsupported is true if err flags a recognized but unsupported construct.
func IsUnsupported(err error) bool {
	var fe *FontError
	if errors.As(err, &fe) {
		return fe.Kind == KindUnsupported
	}
	return false
}

// --- Checked arithmetic ----------------------------------------------------

// CheckedMulInt checks for overflow in multiplication of two integers.
func CheckedMulInt(a, b int) (int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > 0 && b > 0 && a > math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if a < 0 && b < 0 && a < math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if (a < 0 && b > 0 && a < math.MinInt/b) || (a > 0 && b < 0 && b < math.MinInt/a) {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return a * b, nil
}

// CheckedAddInt checks for overflow in addition of two integers.
func CheckedAddInt(a, b int) (int, error) {
	if b > 0 && a > math.MaxInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	if b < 0 && a < math.MinInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// CheckedAddUint32 checks for overflow in addition of two uint32 values.
func CheckedAddUint32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}
