package cache

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

const headerCache = "X-Cache"

// Middleware serves successful GET responses from c, keyed by request URI.
func Middleware(c Cache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := r.URL.RequestURI()

			if body, ok := c.Get(r.Context(), key); ok {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set(headerCache, "HIT")
				w.WriteHeader(http.StatusOK)
				w.Write(body)
				return
			}

			w.Header().Set(headerCache, "MISS")

			var buf bytes.Buffer
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&buf)

			next.ServeHTTP(ww, r)

			if ww.Status() == http.StatusOK && buf.Len() > 0 {
				c.Set(r.Context(), key, buf.Bytes())
			}
		})
	}
}
