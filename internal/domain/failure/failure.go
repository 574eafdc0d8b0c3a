// Package failure classifies per-item errors into the kinds reported in run summaries.
package failure

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	xhttp "FinMerge/pkg/http"
)

type Kind string

const (
	// KindNetwork covers transport failures, timeouts and non-2xx responses.
	KindNetwork Kind = "network"
	// KindParse covers responses or files with an unexpected shape.
	KindParse Kind = "parse"
	// KindEmpty is a valid response with zero records. It is not an error in itself.
	KindEmpty   Kind = "empty"
	KindUnknown Kind = "unknown"
)

// Error attaches a Kind and the failing operation to an underlying error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func Network(op string, err error) *Error { return &Error{Kind: KindNetwork, Op: op, Err: err} }

func Parse(op string, err error) *Error { return &Error{Kind: KindParse, Op: op, Err: err} }

func Parsef(op, format string, a ...interface{}) *Error {
	return Parse(op, fmt.Errorf(format, a...))
}

// Empty marks a successful call that returned no records.
func Empty(op string) *Error { return &Error{Kind: KindEmpty, Op: op} }

// Classify returns the kind of err. Untyped transport errors are recognized as network failures.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}

	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}

	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return KindNetwork
	}
	if xhttp.IsDecodeError(err) {
		return KindParse
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return KindNetwork
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return KindNetwork
	}
	return KindUnknown
}

// IsEmpty reports whether err marks an empty result.
func IsEmpty(err error) bool { return Classify(err) == KindEmpty }

// Wrap classifies err and attaches op, keeping an existing kind.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: Classify(err), Op: op, Err: err}
}
