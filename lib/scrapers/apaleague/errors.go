package apaleague

import (
	"fmt"

	"apastats/lib/retryutil"
)

type sentinelError struct {
	msg  string
	kind retryutil.Kind
}

func (e sentinelError) Error() string             { return e.msg }
func (e sentinelError) RetryKind() retryutil.Kind { return e.kind }

// SessionRequired means there is no usable saved session, the caller
// has to run login before extracting anything.
var SessionRequired error = sentinelError{
	msg:  "no valid session, run login first",
	kind: retryutil.KindFatal,
}

// NoRows means a harvest found a page without a single valid table
// row. The page may simply still be loading, so it retries.
var NoRows error = sentinelError{
	msg:  "no rows harvested",
	kind: retryutil.KindTransient,
}

// AuthError is a login flow failure. State names how far the flow got
// before it fell over.
type AuthError struct {
	State  LoginState
	Reason string
}

func (e AuthError) Error() string {
	return fmt.Sprintf("auth failed at %s: %s", e.State, e.Reason)
}

func (e AuthError) RetryKind() retryutil.Kind { return retryutil.KindFatal }

// NavigationError is a page that would not settle, a loop that would
// not converge or a url that did not land where it should.
type NavigationError struct {
	URL    string
	Detail string
}

func (e NavigationError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("navigation failed: %s", e.Detail)
	}
	return fmt.Sprintf("navigation failed at %s: %s", e.URL, e.Detail)
}

func (e NavigationError) RetryKind() retryutil.Kind { return retryutil.KindTransient }

// ParseError is structurally broken page content. Retrying the same
// page would parse the same garbage, so it is fatal.
type ParseError struct {
	What   string
	Detail string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s: %s", e.What, e.Detail)
}

func (e ParseError) RetryKind() retryutil.Kind { return retryutil.KindFatal }
