package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidIssueURL      = errors.New("invalid issue URL")
	ErrInvalidThreadURL     = errors.New("invalid thread URL")
	ErrEmptyThread          = errors.New("no messages found in thread")
	ErrConfigurationMissing = errors.New("required configuration missing")
)

// RemoteRejectedError is returned when the issue tracker refuses a comment.
// Body is the raw response body as sent by the tracker.
type RemoteRejectedError struct {
	Status int
	Body   string
}

func (e *RemoteRejectedError) Error() string {
	return fmt.Sprintf("issue tracker rejected comment (status %d): %s", e.Status, e.Body)
}

// IsRemoteRejected reports whether err carries a tracker rejection.
func IsRemoteRejected(err error) (*RemoteRejectedError, bool) {
	var rejected *RemoteRejectedError
	if errors.As(err, &rejected) {
		return rejected, true
	}
	return nil, false
}
