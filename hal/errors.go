package hal

import (
	"fmt"
	"net/http"
)

// RemoteFetchError reports a failed exchange with the remote server: a
// transport failure, an authentication failure, or an error document.
type RemoteFetchError struct {
	Href    string
	Status  int
	Message string
	Err     error
}

func (e *RemoteFetchError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %d %s: %s", e.Href, e.Status, http.StatusText(e.Status), msg)
	}
	return fmt.Sprintf("fetch %s: %s", e.Href, msg)
}

func (e *RemoteFetchError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the server answered 404.
func (e *RemoteFetchError) NotFound() bool {
	return e.Status == http.StatusNotFound
}
