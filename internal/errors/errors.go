// internal/errors/errors.go - Failure taxonomy for the scrape pipeline
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by how the pipeline reacts to it.
type Kind int

const (
	// KindInternal is anything not classified below.
	KindInternal Kind = iota
	// KindLaunch means the browser process could not start. Fatal for the process.
	KindLaunch
	// KindAuthentication means the post-login marker never became visible.
	// Wrong credentials and a slow portal are indistinguishable here.
	KindAuthentication
	// KindStructural means an expected navigation element was missing.
	KindStructural
	// KindRecordExtraction is a malformed course record. Recovered inside the extractor.
	KindRecordExtraction
	// KindTransientTimeout is a best-effort wait that expired. Recovered inside the driver.
	KindTransientTimeout
	// KindUnavailable means the browser is not running or no permit could be obtained.
	KindUnavailable
)

var kindNames = map[Kind]string{
	KindInternal:         "internal",
	KindLaunch:           "launch",
	KindAuthentication:   "authentication",
	KindStructural:       "structural",
	KindRecordExtraction: "record_extraction",
	KindTransientTimeout: "transient_timeout",
	KindUnavailable:      "unavailable",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error carries a Kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// New wraps err with a kind and operation name.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf builds an Error from a formatted message.
func Newf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
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

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: KindStructural}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrLaunch         = &Error{Kind: KindLaunch}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrStructural     = &Error{Kind: KindStructural}
	ErrUnavailable    = &Error{Kind: KindUnavailable}
)

// KindOf returns the kind of the outermost *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsRequestFailure reports whether err should surface to a caller as the
// uniform "login failed or could not fetch data" result.
func IsRequestFailure(err error) bool {
	if err == nil {
		return false
	}
	switch KindOf(err) {
	case KindLaunch, KindUnavailable:
		return false
	default:
		return true
	}
}
