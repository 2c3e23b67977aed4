package api

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/weighin/weighin-go/session"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates against the backend and, on success, stores the
// returned tokens and user id as the current session. The session write
// completes before Login returns, so a subsequent request is guaranteed
// to carry the new token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", credentialsRequest{Email: email, Password: password}, &out, true)
	if err != nil {
		return nil, err
	}

	sess := session.Session{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		UserID:       out.User.ID,
	}
	if err := c.store.Set(ctx, sess); err != nil {
		return nil, errors.Wrap(err, "[Client.Login] store session")
	}
	return &out, nil
}

// Register creates a new account. The backend does not log the user in;
// a Login call follows on success.
func (c *Client) Register(ctx context.Context, email, password string) (*RegisterResponse, error) {
	var out RegisterResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", credentialsRequest{Email: email, Password: password}, &out, true)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout clears the current session. No network call is made; the
// backend's tokens simply expire on their own.
func (c *Client) Logout(ctx context.Context) error {
	return c.store.Clear(ctx)
}
