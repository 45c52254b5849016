// Package auth gates the solve API behind a static bearer token.
package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"os"
	"strings"
)

// Verifier checks Authorization headers. Mode "none" admits every request;
// mode "token" requires a bearer token matching the configured value.
type Verifier struct {
	Mode  string
	Token string
}

var ErrUnauthorized = errors.New("unauthorized")

// NewVerifier builds a verifier from the configured token. AUTH_MODE=none
// disables checks even when a token is set.
func NewVerifier(token string) *Verifier {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE")))
	if mode == "" {
		if token == "" {
			mode = "none"
		} else {
			mode = "token"
		}
	}
	return &Verifier{Mode: mode, Token: token}
}

func (v *Verifier) Verify(r *http.Request) error {
	if v.Mode == "none" {
		return nil
	}
	if v.Token == "" {
		return errors.New("auth token not configured")
	}
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ErrUnauthorized
	}
	got := strings.TrimSpace(strings.TrimPrefix(h, prefix))
	if subtle.ConstantTimeCompare([]byte(got), []byte(v.Token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}
