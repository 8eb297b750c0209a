package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ayush/blog-api/internal/apperr"
	"github.com/ayush/blog-api/internal/web"
)

// LogErrors logs every response that ends with a 4xx or 5xx status.
func LogErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		if status := ww.Status(); status >= http.StatusBadRequest {
			log.Printf("[%s] %s %s -> %d", chimw.GetReqID(r.Context()), r.Method, r.URL.String(), status)
		}
	})
}

// Recover turns a panic into the uniform 500 body and logs the stack.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Printf("panic: %v\n%s", rec, debug.Stack())
			web.WriteError(w, apperr.Internal())
		}()
		next.ServeHTTP(w, r)
	})
}
