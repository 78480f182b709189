package shopsheet

import (
	"errors"
	"fmt"
)

// DecodeError indicates the uploaded bytes are not a recognizable raster
// image. It is returned before any row is touched, so the sheet is unchanged.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IOError indicates a backing-file read or write failure. In-memory sheet
// state may be inconsistent afterward and must be reloaded from disk on the
// next attempt, not reused.
type IOError struct {
	Path string
	Op   string // "open", "create", "save"
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is a DecodeError anywhere in its chain.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// IsIOError reports whether err is an IOError anywhere in its chain.
func IsIOError(err error) bool {
	var ioe *IOError
	return errors.As(err, &ioe)
}
