package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ahsanfayaz52/noteservice/internal/auth"
	"github.com/ahsanfayaz52/noteservice/internal/workspace"
)

var validate = validator.New()

type CredentialsRequest struct {
	Username string `json:"username" validate:"required,notblank,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

type SessionResponse struct {
	Username  string `json:"username"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type CookieOptions struct {
	Secure bool
}

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		Expires:  expires,
	})
}

func clearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (CredentialsRequest, bool) {
	var req CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return req, false
	}
	if err := validate.Struct(req); err != nil {
		fail(w, http.StatusBadRequest, "username and password are required")
		return req, false
	}
	return req, true
}

// startSession issues a token for username and sets it as the session cookie.
func startSession(w http.ResponseWriter, jwtService *auth.JWTService, username string, opts CookieOptions) (SessionResponse, bool) {
	token, session, err := jwtService.GenerateToken(username)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		fail(w, http.StatusInternalServerError, "failed to generate token")
		return SessionResponse{}, false
	}
	setSessionCookie(w, token, session.ExpiresAt, opts)
	return SessionResponse{Username: username, Token: token, ExpiresAt: session.ExpiresAt.UnixMilli()}, true
}

func RegisterHandler(authSvc *auth.Service, jwtService *auth.JWTService, opts CookieOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeCredentials(w, r)
		if !ok {
			return
		}

		user, err := authSvc.Register(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrUserExists) {
				fail(w, http.StatusConflict, "user exists")
				return
			}
			if errors.Is(err, auth.ErrInvalidUsername) {
				fail(w, http.StatusBadRequest, "username and password are required")
				return
			}
			log.Printf("Registration error: %v", err)
			fail(w, http.StatusInternalServerError, "error creating user")
			return
		}

		resp, ok := startSession(w, jwtService, user.Username, opts)
		if !ok {
			return
		}
		created(w, resp)
	}
}

func LoginHandler(authSvc *auth.Service, jwtService *auth.JWTService, opts CookieOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeCredentials(w, r)
		if !ok {
			return
		}

		user, err := authSvc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				fail(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			log.Printf("Login error: %v", err)
			fail(w, http.StatusInternalServerError, "login failed")
			return
		}

		resp, ok := startSession(w, jwtService, user.Username, opts)
		if !ok {
			return
		}
		success(w, resp)
	}
}

// LogoutHandler revokes the session token and forgets the user's workspace.
func LogoutHandler(jwtService *auth.JWTService, spaces *workspace.Manager, opts CookieOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := auth.SessionFromContext(r.Context())
		if !ok {
			fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if err := jwtService.RevokeToken(r.Context(), session); err != nil {
			log.Printf("Error revoking token: %v", err)
		}
		spaces.Drop(r.Context(), session.Username)
		clearSessionCookie(w, opts)

		writeJSON(w, http.StatusOK, Response{Message: "logged out"})
	}
}

func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		success(w, map[string]string{"username": auth.UsernameFromContext(r.Context())})
	}
}
