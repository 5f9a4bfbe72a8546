package acquirer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind is the failure category of an acquisition.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindAccessDenied Kind = "access_denied"
	KindRateLimited  Kind = "rate_limited"
	KindTimeout      Kind = "timeout"
	KindServerDown   Kind = "server_down"
	KindUnknown      Kind = "unknown"
)

var messages = map[Kind]string{
	KindNotFound:     "Website not found. Please check the URL and try again.",
	KindAccessDenied: "Access denied. The website blocks scraping requests.",
	KindRateLimited:  "Rate limit exceeded. Please wait a moment before trying again.",
	KindTimeout:      "Request timeout. The website took too long to respond.",
	KindServerDown:   "The website appears to be down. Please try again later.",
	KindUnknown:      "Failed to scrape the website. Please verify the URL and try again.",
}

// Error is a classified acquisition failure. Error returns the user-facing
// message; the underlying cause is available through Unwrap.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if msg, ok := messages[e.Kind]; ok {
		return msg
	}
	return messages[KindUnknown]
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the user-facing message for kind.
func Message(kind Kind) string {
	if msg, ok := messages[kind]; ok {
		return msg
	}
	return messages[KindUnknown]
}

// StatusError reports a non-2xx response from the target or a proxy.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
}

// errUnusableBody marks a response that carried no HTML.
var errUnusableBody = errors.New("response body is not usable page content")

// Classify maps err to a typed acquisition error. Already classified errors
// are returned unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return &Error{Kind: KindNotFound, Err: err}
	}

	var status *StatusError
	if errors.As(err, &status) {
		switch {
		case status.Code == http.StatusForbidden:
			return &Error{Kind: KindAccessDenied, Err: err}
		case status.Code == http.StatusTooManyRequests:
			return &Error{Kind: KindRateLimited, Err: err}
		case status.Code >= http.StatusInternalServerError:
			return &Error{Kind: KindServerDown, Err: err}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}

	return &Error{Kind: KindUnknown, Err: err}
}

// KindOf returns the failure kind of err, or KindUnknown when err is not an
// acquisition error.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindUnknown
}
