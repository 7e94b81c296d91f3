package middleware

import (
	"net/http"

	"hike.io/web/internal/handlers"
	"hike.io/web/internal/useragent"
)

// Capability classifies the client from its User-Agent and stores the result
// in the request context. Responses vary on User-Agent because icon markup
// depends on it.
func Capability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.UserAgent()
		c := handlers.Client{
			VectorIcons: useragent.SupportsVectorIcons(ua),
			IPhone:      useragent.IsIPhone(ua),
		}
		w.Header().Add("Vary", "User-Agent")
		next.ServeHTTP(w, r.WithContext(WithClient(r.Context(), c)))
	})
}
