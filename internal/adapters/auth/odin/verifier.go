package odin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clinic-referrals/internal/ports/auth"
)

var (
	ErrTokenEmpty    = errors.New("token is empty")
	ErrMissingUserID = errors.New("odin claims missing user id")
)

// Verifier implementa auth.AuthVerifier sobre Odin. Se usa con AUTH_MODE=odin.
type Verifier struct {
	client *Client
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrOdinNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	claims, err := v.client.VerifyToken(ctx, token)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("odin verify failed: %w", err)
	}
	if claims.UserID == "" {
		return auth.Claims{}, ErrMissingUserID
	}
	return claims, nil
}
