package pipeline

import "net/http"

// Outcome is the terminal state of one event. Exactly three outcomes
// exist; the webhook caller sees nothing finer-grained.
type Outcome int

const (
	// OutcomeSuccess means the primary submission was accepted (or
	// deliberately skipped in forgiving mode).
	OutcomeSuccess Outcome = iota
	// OutcomeUnauthenticated means the signature check rejected the
	// event before anything else ran.
	OutcomeUnauthenticated
	// OutcomeError covers a malformed payload or a primary-provider
	// failure.
	OutcomeError
)

// String returns the outcome label used in logs, metrics, and the
// journal.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeUnauthenticated:
		return "unauthenticated"
	default:
		return "error"
	}
}

// HTTPStatus maps the outcome to its response status.
func (o Outcome) HTTPStatus() int {
	switch o {
	case OutcomeSuccess:
		return http.StatusOK
	case OutcomeUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
