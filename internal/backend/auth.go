package backend

import (
	"context"
	"net/http"
	"strings"
)

// Admin is the signed-in console user as reported by the backend.
type Admin struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Tokens are the credentials issued at login.
type Tokens struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken"`
	Admin        Admin  `json:"admin" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges admin credentials for tokens. The call is anonymous.
func (c *Client) Login(ctx context.Context, email, password string) (Tokens, error) {
	const path = "/auth/admin/login"
	anon := c.WithCredentials(nil)
	body := loginRequest{Email: strings.TrimSpace(email), Password: password}
	raw, err := anon.Do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return Tokens{}, err
	}
	return DecodeItem[Tokens](path, raw)
}
