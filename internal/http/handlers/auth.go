package handlers

import (
	"errors"
	"net/http"

	"thumbgen/internal/auth"
	"thumbgen/internal/domain"
)

type userResponse struct {
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user"`
}

func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterInput
	if !a.decode(w, r, &req) {
		return
	}
	user, err := a.Auth.Register(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Sessions.Start(r.Context(), w, user.ID); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, userResponse{Message: "Account created successfully", User: user})
}

func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginInput
	if !a.decode(w, r, &req) {
		return
	}
	user, err := a.Auth.Login(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Sessions.Start(r.Context(), w, user.ID); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, userResponse{Message: "Login successful", User: user})
}

func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.Sessions.End(r.Context(), w, r); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, messageResponse{Message: "Logout successful"})
}

func (a *App) Verify(w http.ResponseWriter, r *http.Request) {
	user, err := a.Auth.Verify(r.Context(), a.currentUserID(r))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusBadRequest, "Invalid user")
			return
		}
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, userResponse{User: user})
}
