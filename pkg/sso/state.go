package sso

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"
)

const (
	stateCookieName = "pdfgpt_oauth_state"
	stateTTL        = 10 * time.Minute
)

// NewState generates a CSRF state token and sets it as a short-lived
// cookie
func NewState(w http.ResponseWriter, secure bool) (string, error) {
	stateBytes := make([]byte, 32)
	if _, err := rand.Read(stateBytes); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := base64.URLEncoding.EncodeToString(stateBytes)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return state, nil
}

// VerifyState checks the callback's state parameter against the
// cookie and clears the cookie
func VerifyState(w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		return fmt.Errorf("missing state cookie")
	}

	http.SetCookie(w, &http.Cookie{Name: stateCookieName, MaxAge: -1, Path: "/"})

	if param := r.URL.Query().Get("state"); param == "" || param != cookie.Value {
		return fmt.Errorf("invalid state parameter")
	}
	return nil
}
