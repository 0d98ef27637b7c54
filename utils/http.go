// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// NewServiceClient returns the client used for calls to sibling services.
// Idle connections are kept per host since the sync worker polls one endpoint.
func NewServiceClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 4
	transport.IdleConnTimeout = 90 * time.Second
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
