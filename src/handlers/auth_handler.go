package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"mpdee-accounts/src/middleware"
	"mpdee-accounts/src/util"
)

// AuthConfig describes the single administrator account.
type AuthConfig struct {
	Username     string
	PasswordHash string
	Secret       []byte
	SessionTTL   time.Duration
}

func Login(cfg AuthConfig, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Info().Err(err).Msg("Failed to decode login request body")
			util.WriteError(w, http.StatusBadRequest, "invalid request")
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" || req.Password == "" {
			util.WriteError(w, http.StatusBadRequest, "username and password are required")
			return
		}

		userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(cfg.Username)) == 1
		passErr := bcrypt.CompareHashAndPassword([]byte(cfg.PasswordHash), []byte(req.Password))
		if !userOK || passErr != nil {
			log.Warn().Str("username", req.Username).Msg("Invalid login attempt")
			util.WriteError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		now := time.Now()
		token, err := middleware.IssueToken(cfg.Secret, req.Username, cfg.SessionTTL, now)
		if err != nil {
			log.Error().Err(err).Msg("Failed to sign session token")
			util.WriteError(w, http.StatusInternalServerError, "internal error")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    token,
			Path:     "/",
			Expires:  now.Add(cfg.SessionTTL),
			MaxAge:   int(cfg.SessionTTL.Seconds()),
			HttpOnly: true,
			Secure:   isSecure(r),
			SameSite: http.SameSiteLaxMode,
		})
		log.Info().Str("username", req.Username).Msg("User logged in")
		util.WriteJSON(w, http.StatusOK, map[string]string{"username": req.Username})
	}
}

func Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   isSecure(r),
			SameSite: http.SameSiteLaxMode,
		})
		util.WriteJSON(w, http.StatusOK, nil)
	}
}

// CheckAuth reports whether the request carries a valid session. It never
// fails; an invalid session is reported as unauthenticated.
func CheckAuth(secret []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := struct {
			Authenticated bool   `json:"authenticated"`
			Username      string `json:"username,omitempty"`
		}{}
		if claims, err := middleware.ParseTokenFromRequest(r, secret); err == nil {
			resp.Authenticated = true
			resp.Username = claims.Username
		}
		util.WriteJSON(w, http.StatusOK, resp)
	}
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
