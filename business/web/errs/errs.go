// Package errs separates the errors the node is willing to show a client
// from everything else. Handlers wrap expected failures in a Trusted error
// carrying the HTTP status; the error middleware shields the rest behind a
// generic 500.
package errs

import "errors"

// Response is the envelope every failed API call answers with.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted marks an error whose message is safe to return to the caller,
// together with the status code it maps to.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps an expected handler error with its HTTP status code.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface with the wrapped error's message.
func (t *Trusted) Error() string {
	return t.Err.Error()
}

// IsTrusted reports whether a Trusted error exists in the chain.
func IsTrusted(err error) bool {
	var t *Trusted
	return errors.As(err, &t)
}

// GetTrusted pulls the Trusted error out of the chain, or nil.
func GetTrusted(err error) *Trusted {
	var t *Trusted
	if !errors.As(err, &t) {
		return nil
	}
	return t
}
