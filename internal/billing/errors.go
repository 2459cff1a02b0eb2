package billing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// Kind classifies a usage fetch failure. The evaluator folds every kind into
// "no evidence of cost", but kinds stay distinct for logs and metrics.
type Kind string

const (
	KindTransport Kind = "transport" // network unreachable, refused, TLS, non-auth HTTP errors
	KindAuth      Kind = "auth"      // credential rejected by the billing source
	KindParse     Kind = "parse"     // response payload does not match the expected shape
	KindTimeout   Kind = "timeout"   // fetch deadline exceeded; transport-equivalent for policy
)

// FetchError is the typed failure returned by a usage fetch. Callers always
// receive one of these (or nil), never an unclassified fault.
type FetchError struct {
	Kind Kind
	Day  string // UTC calendar day the fetch was for, YYYY-MM-DD
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("usage fetch %s (%s): %v", e.Day, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err, or "" if err is not a FetchError.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// classify maps a raw transport error to its kind. Deadline and client
// timeouts become KindTimeout, everything else at this layer is KindTransport.
// http.Client timeouts surface as a url.Error with Timeout()=true rather
// than a context error, so both shapes are checked.
func classify(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return KindTimeout
	}
	return KindTransport
}
