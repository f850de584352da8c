// Package taskerr defines the error taxonomy shared by every stage of the
// task card pipeline.
//
// All errors produced by the pipeline are unrecoverable for the current run.
// Callers classify them with errors.Is against the sentinel values:
//
//	if errors.Is(err, taskerr.ErrLookup) {
//	    // unknown task identifier
//	}
//
// or recover the kind with errors.As:
//
//	var te *taskerr.Error
//	if errors.As(err, &te) {
//	    os.Exit(te.Kind.ExitCode())
//	}
package taskerr

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	// Unknown is the zero Kind.
	Unknown Kind = iota
	// Configuration covers missing or invalid configuration, including an
	// empty factory set and margins that leave no room for card content.
	Configuration
	// Lookup covers unknown task identifiers.
	Lookup
	// Asset covers a missing or unreadable border template or other file.
	Asset
	// Render covers failures of the external typesetting or rasterization
	// processes, including missing or malformed output artifacts.
	Render
	// Upload covers failures of the remote image-hosting call.
	Upload
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration error"
	case Lookup:
		return "lookup error"
	case Asset:
		return "asset error"
	case Render:
		return "render error"
	case Upload:
		return "upload error"
	default:
		return "error"
	}
}

// ExitCode returns the process exit code used by the command line tool.
func (k Kind) ExitCode() int {
	switch k {
	case Configuration:
		return 2
	case Lookup:
		return 3
	case Asset:
		return 4
	case Render:
		return 5
	case Upload:
		return 6
	default:
		return 1
	}
}

// Sentinel values for errors.Is.
var (
	ErrConfiguration = &Error{Kind: Configuration}
	ErrLookup        = &Error{Kind: Lookup}
	ErrAsset         = &Error{Kind: Asset}
	ErrRender        = &Error{Kind: Render}
	ErrUpload        = &Error{Kind: Upload}
)

// Error is a classified pipeline error. Op names the operation that failed
// (for example "render" or "border.load").
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	default:
		return e.Kind.String()
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind. This lets the
// package sentinels match any error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// KindOf returns the Kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return Unknown
}

func newError(kind Kind, op string, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Configurationf returns a Configuration error for op.
func Configurationf(op, format string, args ...any) error {
	return newError(Configuration, op, format, args...)
}

// Lookupf returns a Lookup error for op.
func Lookupf(op, format string, args ...any) error {
	return newError(Lookup, op, format, args...)
}

// Assetf returns an Asset error for op.
func Assetf(op, format string, args ...any) error {
	return newError(Asset, op, format, args...)
}

// Renderf returns a Render error for op.
func Renderf(op, format string, args ...any) error {
	return newError(Render, op, format, args...)
}

// Uploadf returns an Upload error for op.
func Uploadf(op, format string, args ...any) error {
	return newError(Upload, op, format, args...)
}

// Wrap classifies err as kind. A nil err yields nil, and an err that already
// carries a Kind is returned unchanged.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != Unknown {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
