package controllers

import (
	"net/http"

	"github.com/pixelvault/arttoys-backend/api/middleware"
	"github.com/pixelvault/arttoys-backend/api/responses"
	"github.com/pixelvault/arttoys-backend/api/validators"
	usersvc "github.com/pixelvault/arttoys-backend/internal/users"
	pkgerrors "github.com/pixelvault/arttoys-backend/pkg/errors"
	"github.com/pixelvault/arttoys-backend/pkg/logger"
)

// Register creates a member account.
func Register(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return registerHandler(svc, logg, false)
}

// RegisterAdmin creates an admin account. The service rejects the call
// outside dev environments.
func RegisterAdmin(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return registerHandler(svc, logg, true)
}

func registerHandler(svc usersvc.Service, logg *logger.Logger, admin bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := usersvc.RegisterInput{
			Email:    payload.Email,
			Password: payload.Password,
			Name:     payload.Name,
		}

		var (
			user *usersvc.UserDTO
			err  error
		)
		if admin {
			user, err = svc.RegisterAdmin(r.Context(), input)
		} else {
			user, err = svc.Register(r.Context(), input)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

// Login checks credentials and returns an access token.
func Login(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), usersvc.LoginInput{
			Email:    payload.Email,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// Logout revokes the caller's session.
func Logout(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		if err := svc.Logout(r.Context(), middleware.AccessIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, "logged out")
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
