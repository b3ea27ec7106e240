package session

import (
	"errors"
	"fmt"
)

// RemoteError reports a failed exchange with the endpoint: transport or
// quota failures, cancellation, or an unusable reply.
type RemoteError struct {
	ModelID string
	Err     error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote call to %s failed: %v", e.ModelID, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsRemote reports whether err came from the remote endpoint.
func IsRemote(err error) bool {
	var remoteErr *RemoteError
	return errors.As(err, &remoteErr)
}

// DisplayText renders err the way it is shown in place of a reply:
// "Error: " followed by the underlying cause.
func DisplayText(err error) string {
	if err == nil {
		return ""
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) && remoteErr.Err != nil {
		return "Error: " + remoteErr.Err.Error()
	}
	return "Error: " + err.Error()
}
