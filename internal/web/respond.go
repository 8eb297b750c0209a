// Package web holds the JSON request/response helpers shared by handlers.
package web

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/ayush/blog-api/internal/apperr"
)

// errorBody is the uniform failure shape. Message is a string, or a list of
// strings for validation failures.
type errorBody struct {
	StatusCode int `json:"statusCode"`
	Message    any `json:"message"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

// WriteError maps err to the uniform error body. Anything that is not an
// *apperr.Error becomes a 500 and its cause is only logged.
func WriteError(w http.ResponseWriter, err error) {
	e, ok := apperr.As(err)
	if !ok {
		log.Printf("internal error: %v", err)
		e = apperr.Internal()
	}
	var msg any = e.Message
	if len(e.Details) > 0 {
		msg = e.Details
	}
	WriteJSON(w, e.Status, errorBody{StatusCode: e.Status, Message: msg})
}

// NotFoundHandler answers unknown routes with the uniform body.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, apperr.NotFound("Cannot "+r.Method+" "+r.URL.Path))
}

// MethodNotAllowedHandler answers known routes hit with the wrong method.
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, apperr.New(http.StatusMethodNotAllowed, "Method Not Allowed"))
}
