package pipeline

import "strconv"

// busyError signals admission rejection for 429 mapping. It is a load-shedding
// signal, not a failure: callers simply retry later.
type busyError struct{}

func (busyError) Error() string { return "busy: another generation is in flight" }

// ErrBusy constructs a busyError.
func ErrBusy() error { return busyError{} }

// IsBusy reports whether err indicates backpressure (return 429).
func IsBusy(err error) bool {
	_, ok := err.(busyError)
	return ok
}

// validationError signals rejected caller input before any outbound work.
type validationError struct{ msg string }

func (e validationError) Error() string { return e.msg }

// ErrValidation constructs a validationError.
func ErrValidation(msg string) error { return validationError{msg: msg} }

// IsValidation reports whether err indicates invalid caller input (return 400).
func IsValidation(err error) bool {
	_, ok := err.(validationError)
	return ok
}

// configError signals a fatal operator-visible misconfiguration, such as a
// missing provider credential. Never retried.
type configError struct{ msg string }

func (e configError) Error() string { return "configuration: " + e.msg }

// ErrConfiguration constructs a configError.
func ErrConfiguration(msg string) error { return configError{msg: msg} }

// IsConfiguration reports whether err indicates server misconfiguration.
func IsConfiguration(err error) bool {
	_, ok := err.(configError)
	return ok
}

// timeoutError signals that a provider call exceeded its deadline.
type timeoutError struct{}

func (timeoutError) Error() string { return "provider call timed out" }

// ErrTimeout constructs a timeoutError.
func ErrTimeout() error { return timeoutError{} }

// IsTimeout reports whether err indicates a provider deadline exceeded.
func IsTimeout(err error) bool {
	_, ok := err.(timeoutError)
	return ok
}

// rateLimitError signals provider quota exhaustion. RetryAfter is the hint in
// seconds surfaced to the caller.
type rateLimitError struct{ retryAfter int }

func (e rateLimitError) Error() string {
	return "provider rate limit exceeded, retry after " + strconv.Itoa(e.retryAfter) + "s"
}

// ErrRateLimit constructs a rateLimitError with the given retry-after hint.
func ErrRateLimit(retryAfterSeconds int) error { return rateLimitError{retryAfter: retryAfterSeconds} }

// IsRateLimit reports whether err indicates provider rate/quota exhaustion.
func IsRateLimit(err error) bool {
	_, ok := err.(rateLimitError)
	return ok
}

// RetryAfterSeconds returns the retry-after hint carried by a rate-limit
// error, or 0 for any other error.
func RetryAfterSeconds(err error) int {
	if e, ok := err.(rateLimitError); ok {
		return e.retryAfter
	}
	return 0
}

// providerError is any other non-success provider response.
type providerError struct {
	status int
	msg    string
}

func (e providerError) Error() string {
	s := "provider error"
	if e.status != 0 {
		s += " (status " + strconv.Itoa(e.status) + ")"
	}
	if e.msg != "" {
		s += ": " + e.msg
	}
	return s
}

// ErrProvider constructs a providerError.
func ErrProvider(status int, msg string) error { return providerError{status: status, msg: msg} }

// IsProvider reports whether err is a non-success provider response that is
// neither a rate limit nor a timeout.
func IsProvider(err error) bool {
	_, ok := err.(providerError)
	return ok
}

// malformedResponseError signals that the provider succeeded but its message
// content failed structural or type-tag validation. The raw text is retained
// for diagnostics only and must never reach the external caller.
type malformedResponseError struct {
	reason string
	raw    string
}

func (e malformedResponseError) Error() string { return "malformed model response: " + e.reason }

// ErrMalformedResponse constructs a malformedResponseError.
func ErrMalformedResponse(reason, raw string) error {
	return malformedResponseError{reason: reason, raw: raw}
}

// IsMalformedResponse reports whether err indicates unusable model output.
func IsMalformedResponse(err error) bool {
	_, ok := err.(malformedResponseError)
	return ok
}

// MalformedRaw returns the raw model output retained on a malformed-response
// error, for logging. ok is false for any other error.
func MalformedRaw(err error) (raw string, ok bool) {
	e, ok := err.(malformedResponseError)
	return e.raw, ok
}
