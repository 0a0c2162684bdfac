package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	errs "github.com/platewise/platewise/client/internal/errors"
	"github.com/platewise/platewise/client/internal/types"
)

// The login exchange is the one HTTP interaction; everything after it goes
// over the event channel.

type loginRequest struct {
	DisplayName   string `json:"displayName"`
	Email         string `json:"email,omitempty"`
	HouseholdName string `json:"householdName,omitempty"`
}

type loginUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

type loginResponse struct {
	AccessToken  string              `json:"accessToken"`
	RefreshToken string              `json:"refreshToken"`
	User         loginUser           `json:"user"`
	Household    *types.HouseholdDTO `json:"household,omitempty"`
}

// exchangeCredentials performs POST /auth/dev and returns the issued
// tokens, user identity and optional household binding.
func (c *Client) exchangeCredentials(ctx context.Context, reqBody loginRequest) (*loginResponse, error) {
	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode login request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/dev", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errs.IsCancellation(err) {
			return nil, err
		}
		return nil, errs.NewTransport("login request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errs.NewTransport("read login response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return nil, errs.NewDomain(e.Error, "")
		}
		return nil, errs.NewDomain(fmt.Sprintf("login failed with status %d", resp.StatusCode), "")
	}

	var out loginResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errs.NewTransport("malformed login response", err)
	}
	if out.AccessToken == "" || out.User.ID == "" {
		return nil, errs.NewTransport("login response missing tokens or user", nil)
	}
	return &out, nil
}
