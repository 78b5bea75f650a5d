package ports

import "net/http"

// HTTPClient executes requests against the cluster REST API.
// *http.Client satisfies it; tests substitute a recording transport.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
