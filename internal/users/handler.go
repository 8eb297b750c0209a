package users

import (
	"net/http"

	"github.com/ayush/blog-api/internal/middleware"
	"github.com/ayush/blog-api/internal/models"
	"github.com/ayush/blog-api/internal/web"
)

type tokenResponse struct {
	Token string `json:"token"`
}

type registerResponse struct {
	Token string           `json:"token"`
	User  *models.UserView `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Handler holds the /users HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserDto
	if err := web.Decode(r, &req); err != nil {
		web.WriteError(w, err)
		return
	}

	token, user, err := h.svc.Register(r.Context(), req)
	if err != nil {
		web.WriteError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, registerResponse{Token: token, User: models.NewUserView(user)})
}

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginUserDto
	if err := web.Decode(r, &req); err != nil {
		web.WriteError(w, err)
		return
	}

	token, err := h.svc.Login(r.Context(), req)
	if err != nil {
		web.WriteError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// Logout revokes the token the request was made with.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), middleware.ClaimsFrom(r.Context())); err != nil {
		web.WriteError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

// Profile returns the authenticated user.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetProfile(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		web.WriteError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, models.NewUserView(user))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateUserDto
	if err := web.Decode(r, &req); err != nil {
		web.WriteError(w, err)
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		web.WriteError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, models.NewUserView(user))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.DeleteProfile(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		web.WriteError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, models.NewUserView(user))
}
