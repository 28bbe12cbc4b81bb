package userdirectory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUserNotFound is returned when the user service has no such user.
var ErrUserNotFound = errors.New("user not found")

// Profile is the subset of a user record used to enrich booking views.
type Profile struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	City        string `json:"city"`
	State       string `json:"state"`
	Role        string `json:"role"`
	Status      string `json:"status"`
}

// DisplayName joins first and last name.
func (p *Profile) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Directory looks up user profiles.
type Directory interface {
	GetUser(ctx context.Context, userID string) (*Profile, error)
}

// Client calls the user service's internal lookup endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client. timeout bounds each lookup.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetUser fetches a profile by user ID.
func (c *Client) GetUser(ctx context.Context, userID string) (*Profile, error) {
	endpoint := c.baseURL + "/api/v1/internal/users/" + url.PathEscape(userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("user service returned status %d for user %s", resp.StatusCode, userID)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", userID, err)
	}
	return &profile, nil
}

var _ Directory = (*Client)(nil)
