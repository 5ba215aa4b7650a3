// Package requestid assigns a correlation ID to every request. Incoming
// X-Request-ID headers are honored so upstream proxies can thread their own
// IDs through.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"paylane/pkg/requestcontext"
)

const headerName = "X-Request-ID"

// Middleware ensures a request ID is present in the context and echoed on
// the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(headerName)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		w.Header().Set(headerName, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
