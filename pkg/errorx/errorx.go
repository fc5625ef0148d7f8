// Package errorx carries business error codes across the HTTP boundary.
// Handlers register Coders (code, HTTP status, message) at init time and
// wrap service errors with WithCode/WrapC; the response writer looks the
// code back up to pick the status and public message.
package errorx

import (
	"fmt"
	"net/http"
	"sync"
)

// Coder describes one registered business error code.
type Coder interface {
	// Code returns the integer business code.
	Code() int
	// HTTPStatus returns the HTTP status associated with the code.
	HTTPStatus() int
	// String returns the external, user-facing message.
	String() string
	// Reference returns a document link for the error, if any.
	Reference() string
}

var (
	mu     sync.Mutex
	coders = map[int]Coder{}
)

// Register registers a Coder; a later registration for the same code
// overwrites the earlier one.
func Register(coder Coder) {
	if coder.Code() == 0 {
		panic("code `0` is reserved as unknownCode")
	}
	mu.Lock()
	defer mu.Unlock()
	coders[coder.Code()] = coder
}

// MustRegister registers a Coder and panics if the code is taken.
func MustRegister(coder Coder) {
	if coder.Code() == 0 {
		panic("code `0` is reserved as unknownCode")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := coders[coder.Code()]; ok {
		panic(fmt.Sprintf("code %d already registered", coder.Code()))
	}
	coders[coder.Code()] = coder
}

type defaultCoder struct {
	code int
	http int
	msg  string
}

func (c defaultCoder) Code() int         { return c.code }
func (c defaultCoder) HTTPStatus() int   { return c.http }
func (c defaultCoder) String() string    { return c.msg }
func (c defaultCoder) Reference() string { return "" }

var unknownCoder = defaultCoder{
	code: 1,
	http: http.StatusInternalServerError,
	msg:  "An internal server error occurred",
}

// withCode is an error carrying a business code and an optional cause.
type withCode struct {
	err   error
	code  int
	cause error
}

func (w *withCode) Error() string { return w.err.Error() }
func (w *withCode) Unwrap() error { return w.cause }

// WithCode creates an error with the given code.
func WithCode(code int, format string, args ...interface{}) error {
	return &withCode{
		err:  fmt.Errorf(format, args...),
		code: code,
	}
}

// WrapC wraps err with a code and an additional message.
func WrapC(err error, code int, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &withCode{
		err:   fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err),
		code:  code,
		cause: err,
	}
}

// ParseCoder resolves the Coder for err. Errors without a registered
// code map to the unknown coder (HTTP 500).
func ParseCoder(err error) Coder {
	if err == nil {
		return nil
	}
	if w, ok := err.(*withCode); ok { //nolint:errorlint // top-level inspection by design of withCode
		mu.Lock()
		defer mu.Unlock()
		if coder, found := coders[w.code]; found {
			return coder
		}
	}
	return unknownCoder
}

// IsCode reports whether err (at its top level) carries the given code.
func IsCode(err error, code int) bool {
	w, ok := err.(*withCode) //nolint:errorlint
	return ok && w.code == code
}
