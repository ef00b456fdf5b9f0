package middleware

import (
	"net/http"
)

const (
	// DefaultMaxBodySize is 1MB for JSON endpoints
	DefaultMaxBodySize int64 = 1 << 20 // 1MB

	// UploadMaxBodySize covers the multipart informe upload: up to five
	// images at 5MB plus videos at 50MB, with headroom for form framing
	UploadMaxBodySize int64 = 60 << 20 // 60MB
)

// RequestSize limits the size of incoming request bodies.
//
// It wraps the request body with http.MaxBytesReader to enforce the limit.
// If the body exceeds maxBytes, it returns 413 Payload Too Large.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

			next.ServeHTTP(w, r)
		})
	}
}

// JSONRequestSize limits request bodies to 1MB for JSON endpoints.
func JSONRequestSize() func(http.Handler) http.Handler {
	return RequestSize(DefaultMaxBodySize)
}

// UploadRequestSize limits request bodies to 60MB for multipart uploads.
func UploadRequestSize() func(http.Handler) http.Handler {
	return RequestSize(UploadMaxBodySize)
}
