package trace

import "net/http"

// Middleware attaches a trace context to each request, continuing the caller's
// trace when the request carries one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc := Context{
			TraceID:      r.Header.Get(TraceIDKey),
			SpanID:       newID(8),
			ParentSpanID: r.Header.Get(SpanIDKey),
		}
		if tc.TraceID == "" {
			tc.TraceID = newID(16)
		}
		w.Header().Set(TraceIDKey, tc.TraceID)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), tc)))
	})
}
