package httputil

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// ErrBodyTooLarge is returned by ReadBody when MaxBytesMiddleware's limit is hit
var ErrBodyTooLarge = errors.New("request body too large")

// ReadBody reads the whole request body
func ReadBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxErr.Limit)
		}
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return data, nil
}

// ClientIP returns the caller address. The first X-Forwarded-For entry wins
// when trustProxy is set.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
