package security

import (
	"context"
	"strings"

	"firebase.google.com/go/v4/auth"

	"clubhub-backend/internal/logger"
)

// IDTokenVerifier is the part of the Firebase auth client used here.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type firebaseAuthenticator struct {
	verifier    IDTokenVerifier
	adminEmails []string
}

// NewFirebaseAuthenticator verifies Firebase ID tokens. A caller is an admin
// when the token carries the custom claim admin=true or the email is listed
// in adminEmails.
func NewFirebaseAuthenticator(verifier IDTokenVerifier, adminEmails []string) Authenticator {
	return &firebaseAuthenticator{verifier: verifier, adminEmails: adminEmails}
}

func (a *firebaseAuthenticator) Authenticate(ctx context.Context, token string) (*Principal, error) {
	tok, err := a.verifier.VerifyIDToken(ctx, token)
	if err != nil {
		logger.Debug("Firebase ID token rejected", "error", err)
		if auth.IsIDTokenExpired(err) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	email, _ := tok.Claims["email"].(string)
	isAdmin, _ := tok.Claims["admin"].(bool)
	if !isAdmin && email != "" {
		for _, e := range a.adminEmails {
			if strings.EqualFold(strings.TrimSpace(e), email) {
				isAdmin = true
				break
			}
		}
	}

	return &Principal{UserID: tok.UID, Email: email, Admin: isAdmin}, nil
}
