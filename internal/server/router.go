// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/blog-api/internal/auth"
	"github.com/ayush/blog-api/internal/middleware"
	"github.com/ayush/blog-api/internal/posts"
	"github.com/ayush/blog-api/internal/store"
	"github.com/ayush/blog-api/internal/users"
	"github.com/ayush/blog-api/internal/web"
)

var (
	_ users.Store   = (*store.MongoStore)(nil)
	_ users.Store   = (*store.PostgresStore)(nil)
	_ users.Store   = (*store.MemoryStore)(nil)
	_ posts.Authors = (*store.MongoStore)(nil)
	_ posts.Authors = (*store.PostgresStore)(nil)
	_ posts.Store   = (*store.MongoStore)(nil)
	_ posts.Store   = (*store.MemoryStore)(nil)

	_ posts.CoverStore = (*store.MinioStore)(nil)
	_ auth.Revocations = (*auth.RevocationStore)(nil)
)

// UserBackend is a user store that can also resolve post authors.
type UserBackend interface {
	users.Store
	posts.Authors
}

// Deps are the collaborators the router needs. Covers may be nil.
type Deps struct {
	Auth        *auth.Service
	Users       UserBackend
	Posts       posts.Store
	Covers      posts.CoverStore
	CORSOrigins []string
}

// NewRouter builds the full route table.
func NewRouter(d Deps) http.Handler {
	userSvc := users.NewService(d.Users, d.Auth)
	postSvc := posts.NewService(d.Posts, d.Users, d.Covers)
	userHandler := users.NewHandler(userSvc)
	postHandler := posts.NewHandler(postSvc)

	requireAuth := middleware.RequireAuth(d.Auth)
	requireOwner := middleware.RequireOwner(d.Auth, postSvc)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(middleware.LogErrors)
	r.Use(middleware.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.NotFound(web.NotFoundHandler)
	r.MethodNotAllowed(web.MethodNotAllowedHandler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		web.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", userHandler.Logout)
			r.Get("/profile", userHandler.Profile)
			r.Put("/update", userHandler.Update)
			r.Delete("/delete", userHandler.Delete)
		})
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/latest", postHandler.Latest)
		r.With(requireAuth).Post("/", postHandler.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", postHandler.Get)
			r.Get("/cover", postHandler.Cover)

			r.Group(func(r chi.Router) {
				r.Use(requireOwner)
				r.Put("/", postHandler.Update)
				r.Delete("/", postHandler.Delete)
				r.Put("/cover", postHandler.UploadCover)
			})
		})
	})

	return r
}
