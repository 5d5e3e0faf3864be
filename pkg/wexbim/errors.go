package wexbim

import (
	"errors"
	"fmt"

	"github.com/Faultbox/wexbim-go/pkg/binreader"
)

// Error categories. Every error returned by this package matches exactly one
// of them with errors.Is.
var (
	// ErrFormat marks a structurally invalid stream: bad magic, truncation,
	// trailing bytes or counts that do not fit the declared buffers.
	ErrFormat = errors.New("wexbim format error")
	// ErrReference marks an instance that refers to a style or product the
	// stream never declared.
	ErrReference = errors.New("wexbim reference error")
	// ErrArgument marks invalid input from the caller.
	ErrArgument = errors.New("wexbim argument error")
)

// Format errors.
var (
	ErrInvalidMagic   = fmt.Errorf("%w: magic number mismatch", ErrFormat)
	ErrTruncated      = fmt.Errorf("%w: truncated stream", ErrFormat)
	ErrTrailingData   = fmt.Errorf("%w: stream not exhausted", ErrFormat)
	ErrInvalidCount   = fmt.Errorf("%w: invalid element count", ErrFormat)
	ErrBufferOverflow = fmt.Errorf("%w: data exceeds declared buffer size", ErrFormat)
	ErrCursorMismatch = fmt.Errorf("%w: opaque and transparent regions do not meet", ErrFormat)
	ErrDuplicateID    = fmt.Errorf("%w: duplicate id", ErrFormat)
	ErrInvalidShape   = fmt.Errorf("%w: invalid shape geometry", ErrFormat)
)

// Reference errors.
var (
	ErrStyleNotFound   = fmt.Errorf("%w: style not found", ErrReference)
	ErrProductNotFound = fmt.Errorf("%w: product not found", ErrReference)
)

// Argument errors.
var (
	ErrInvalidDimension = fmt.Errorf("%w: invalid texture dimension arguments", ErrArgument)
)

// readErr annotates a failed read with the field being decoded.
func readErr(what string, err error) error {
	if errors.Is(err, binreader.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s: %w", ErrTruncated, what, err)
	}
	return fmt.Errorf("reading %s: %w", what, err)
}
