package poolapi

import (
	"errors"
	"fmt"
)

// ErrUnsuccessful is wrapped by TransportError when the API answers with
// success=false.
var ErrUnsuccessful = errors.New("pool api: unsuccessful response")

// TransportError is a network failure, a non-2xx status or an unsuccessful
// envelope. Status is zero when no response was received.
type TransportError struct {
	URL     string
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("pool api: GET %s: %v", e.URL, e.Err)
	case e.Message != "":
		return fmt.Sprintf("pool api: GET %s: status %d: %s", e.URL, e.Status, e.Message)
	default:
		return fmt.Sprintf("pool api: GET %s: status %d", e.URL, e.Status)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
