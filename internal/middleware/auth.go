// Package middleware holds the request guards and the logging and recovery
// wrappers mounted on the router.
package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/blog-api/internal/apperr"
	"github.com/ayush/blog-api/internal/auth"
	"github.com/ayush/blog-api/internal/models"
	"github.com/ayush/blog-api/internal/web"
)

const (
	msgUnauthorized = "Unauthorized"
	msgNotOwner     = "User not authorized to perform this action"
)

type contextKey string

const (
	claimsKey contextKey = "claims"
	postKey   contextKey = "post"
)

// Guard inspects a request and either rejects it or returns the request to
// pass on, possibly with values added to its context.
type Guard func(r *http.Request) (*http.Request, error)

// Chain runs guards in order and stops at the first failure, which is written
// as the response. The handler only runs when every guard passed.
func Chain(guards ...Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, g := range guards {
				var err error
				if r, err = g(r); err != nil {
					web.WriteError(w, err)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*auth.Claims, error)
}

// PostFinder loads a post by id. Its errors reach the client unchanged.
type PostFinder interface {
	GetPost(ctx context.Context, id string) (*models.Post, error)
}

// Authenticate resolves the bearer token into the caller's identity. Every
// failure, including a backend error during verification, is reported as a
// plain 401.
func Authenticate(v TokenVerifier) Guard {
	return func(r *http.Request) (*http.Request, error) {
		token, ok := auth.ExtractToken(r)
		if !ok {
			return nil, apperr.Unauthorized(msgUnauthorized)
		}
		claims, err := v.VerifyToken(r.Context(), token)
		if err != nil {
			return nil, apperr.Unauthorized(msgUnauthorized)
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		return r.WithContext(ctx), nil
	}
}

// OwnsPost lets the request through only when the post named by the {id}
// route parameter belongs to the authenticated caller. It must run after
// Authenticate. The loaded post is kept on the context for the handler.
func OwnsPost(posts PostFinder) Guard {
	return func(r *http.Request) (*http.Request, error) {
		userID := UserID(r.Context())
		if userID == "" {
			return nil, apperr.Unauthorized(msgUnauthorized)
		}
		post, err := posts.GetPost(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			return nil, err
		}
		if post.Author != userID {
			return nil, apperr.Forbidden(msgNotOwner)
		}
		ctx := context.WithValue(r.Context(), postKey, post)
		return r.WithContext(ctx), nil
	}
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return Chain(Authenticate(v))
}

// RequireOwner authenticates first and only then looks the post up, so an
// anonymous caller cannot learn which post ids exist.
func RequireOwner(v TokenVerifier, posts PostFinder) func(http.Handler) http.Handler {
	return Chain(Authenticate(v), OwnsPost(posts))
}

// UserID returns the authenticated caller's id, or "" outside a guarded route.
func UserID(ctx context.Context) string {
	if c := ClaimsFrom(ctx); c != nil {
		return c.UserID
	}
	return ""
}

func ClaimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey).(*auth.Claims)
	return c
}

// PostFrom returns the post loaded by OwnsPost.
func PostFrom(ctx context.Context) *models.Post {
	p, _ := ctx.Value(postKey).(*models.Post)
	return p
}
