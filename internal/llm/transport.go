package llm

import "net/http"

// RequestIDHeader carries the caller's request ID to upstream providers so
// their logs can be joined with ours.
const RequestIDHeader = "X-Request-ID"

// headerTransport sets fixed headers plus the request ID found on the
// request context.
type headerTransport struct {
	base   http.RoundTripper
	static map[string]string
}

func newHeaderClient(static map[string]string) *http.Client {
	return &http.Client{Transport: &headerTransport{base: http.DefaultTransport, static: static}}
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := RequestIDFrom(req.Context())
	if id == "" && len(t.static) == 0 {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	for k, v := range t.static {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	if id != "" {
		req.Header.Set(RequestIDHeader, id)
	}
	return t.base.RoundTrip(req)
}
