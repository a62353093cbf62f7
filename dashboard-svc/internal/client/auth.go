package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"restodash/dashboard-svc/internal/domain"
)

// Session is what a successful login hands back.
type Session struct {
	User  domain.User
	Token string
}

type AuthClient struct {
	c    *Client
	path string
}

func NewAuthClient(c *Client, basePath string) *AuthClient {
	return &AuthClient{c: c, path: strings.TrimRight(basePath, "/")}
}

// Login reads {"data": {"user", "token"}}; some deployments put the token
// at the top level instead.
func (a *AuthClient) Login(ctx context.Context, creds domain.Credentials) (*Session, error) {
	data, err := a.c.do(ctx, call{resource: "users", method: http.MethodPost, path: a.path + "/login", body: jsonBody{value: creds}})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Token string `json:"token"`
		Data  struct {
			User  *domain.User `json:"user"`
			Token string       `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}

	token := resp.Data.Token
	if token == "" {
		token = resp.Token
	}
	if token == "" || resp.Data.User == nil {
		return nil, &APIError{Kind: KindServer, StatusCode: http.StatusOK, Message: "login response carried no session"}
	}
	return &Session{User: *resp.Data.User, Token: token}, nil
}

func (a *AuthClient) Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	data, err := a.c.do(ctx, call{resource: "users", method: http.MethodPost, path: a.path + "/signup", body: jsonBody{value: req}})
	if err != nil {
		return nil, err
	}
	return decodeUser(data)
}

// Me checks the stored token against the server.
func (a *AuthClient) Me(ctx context.Context) (*domain.User, error) {
	data, err := a.c.do(ctx, call{resource: "users", method: http.MethodGet, path: a.path + "/me"})
	if err != nil {
		return nil, err
	}
	return decodeUser(data)
}

// decodeUser accepts {"user": U} and {"data": {"user": U}}.
func decodeUser(data []byte) (*domain.User, error) {
	var resp struct {
		User *domain.User `json:"user"`
		Data struct {
			User *domain.User `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	switch {
	case resp.User != nil:
		return resp.User, nil
	case resp.Data.User != nil:
		return resp.Data.User, nil
	}
	return nil, &APIError{Kind: KindServer, StatusCode: http.StatusOK, Message: "response carried no user"}
}
