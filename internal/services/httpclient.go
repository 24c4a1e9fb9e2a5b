package services

import (
	"crypto/tls"
	"net/http"
	"time"
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// NewHTTPClient builds the client shared by the source and target catalog
// integrations. insecure disables certificate verification for servers with
// self-signed certificates.
func NewHTTPClient(timeout time.Duration, insecure bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via --insecure
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
