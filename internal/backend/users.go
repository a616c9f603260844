package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/peatergripin/ecocommute/internal/models"
)

// UserInput is the body for registration and profile updates
type UserInput struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password,omitempty"`
}

// ListUsers returns every user. A non-array body yields an empty list.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	body, err := c.do(ctx, http.MethodGet, "/users", nil, nil, "")
	if err != nil {
		return nil, err
	}
	return decodeUsers(rows(body))
}

// GetUser returns the user with id, or nil when absent
func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	body, err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, "")
	if err != nil {
		return nil, err
	}
	return firstUser(rows(body))
}

// RegisterUser creates an account
func (c *Client) RegisterUser(ctx context.Context, in UserInput) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/users", nil, in)
	return err
}

// UpdateUser replaces the profile fields of user id
func (c *Client) UpdateUser(ctx context.Context, id string, in UserInput) error {
	_, err := c.doJSON(ctx, http.MethodPut, "/users/"+url.PathEscape(id), nil, in)
	return err
}

// Login checks credentials. A nil user with a nil error means they did not
// match any account.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	body, err := c.doJSON(ctx, http.MethodPost, "/login", nil, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return firstUser(rows(body))
}

func decodeUsers(raw []json.RawMessage) ([]models.User, error) {
	users := make([]models.User, 0, len(raw))
	for _, r := range raw {
		u, err := decodeUser(r)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func firstUser(raw []json.RawMessage) (*models.User, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	u, err := decodeUser(raw[0])
	if err != nil {
		return nil, err
	}
	return &u, nil
}
