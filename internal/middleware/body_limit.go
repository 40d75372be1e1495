package middleware

import "net/http"

// BodyLimit caps request bodies on mutating methods. An oversized body
// surfaces as a read error in the handler via http.MaxBytesReader; photo
// uploads on the scan endpoint fall under the same cap. Reads on other
// methods pass through untouched.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 {
				switch r.Method {
				case http.MethodPost, http.MethodPut, http.MethodPatch:
					r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
