package extract

import "fmt"

// FailureReason tells the caller what kind of extraction failure happened so
// it can present an actionable message.
type FailureReason string

const (
	ReasonNetwork      FailureReason = "network"
	ReasonNotFound     FailureReason = "not_found"
	ReasonUnrecognized FailureReason = "unrecognized_page"
)

// Error is a terminal extraction failure for one attempt.
type Error struct {
	Reason FailureReason
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extract failed (%s)", e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }
