package httpclient

import (
	"net/http"
	"time"
)

// New creates an HTTP client with the given timeout. All outbound calls in
// this service go through bounded-timeout clients so a slow collaborator
// stalls only its own request handler.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
