package eversolo

import "fmt"

// NetworkError reports a call that never produced a usable response:
// connection refused, DNS failure or timeout.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("eversolo: network error calling %s: %s", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a response the control API should never produce:
// unparseable JSON, a missing identity, or a non-200 embedded status.
type ProtocolError struct {
	URL    string
	Status int
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("eversolo: invalid response from %s: %s", e.URL, e.Err)
	}
	return fmt.Sprintf("eversolo: device returned status %d for %s", e.Status, e.URL)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
