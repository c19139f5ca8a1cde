package engine

import "errors"

// Error taxonomy shared by every stage. Wrap with fmt.Errorf("...: %w", ErrX)
// and test with errors.Is.
var (
	// ErrMissingParameter aborts a run immediately.
	ErrMissingParameter = errors.New("missing parameter")
	// ErrUpstreamUnavailable covers network failures and non-success statuses.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrEmptyUpstreamResponse means the call succeeded but carried no usable content.
	ErrEmptyUpstreamResponse = errors.New("empty upstream response")
	// ErrSafetyBlocked means the text-generation capability refused the content.
	ErrSafetyBlocked = errors.New("content blocked by safety filter")
	// ErrMalformedOutput means the response text held no parseable JSON object.
	ErrMalformedOutput = errors.New("malformed output")
	// ErrNoCaptionsFound is an expected branch, not a failure.
	ErrNoCaptionsFound = errors.New("no captions found")
)

// ErrorKind returns a short stable label for err, used in logs and metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrMissingParameter):
		return "missing_parameter"
	case errors.Is(err, ErrSafetyBlocked):
		return "safety_blocked"
	case errors.Is(err, ErrEmptyUpstreamResponse):
		return "empty_upstream_response"
	case errors.Is(err, ErrMalformedOutput):
		return "malformed_output"
	case errors.Is(err, ErrNoCaptionsFound):
		return "no_captions_found"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	default:
		return "unknown"
	}
}
