package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	portalerrors "github.com/jrsteele09/eshtarek-portal/internal/errors"
)

// RefreshPath is the users API endpoint that exchanges a refresh token for a new access token
const RefreshPath = "/users/token/refresh/"

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshAccessToken exchanges refresh for a new access token. The request is
// marked as already retried so an intercepting transport never refreshes in
// response to its own refresh call.
func RefreshAccessToken(ctx context.Context, client *http.Client, baseURL, refresh string) (string, error) {
	payload, err := json.Marshal(refreshRequest{Refresh: refresh})
	if err != nil {
		return "", fmt.Errorf("[auth RefreshAccessToken] marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(markRetried(ctx), http.MethodPost, baseURL+RefreshPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("[auth RefreshAccessToken] new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("[auth RefreshAccessToken] %w: %v", portalerrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("[auth RefreshAccessToken] read body: %w: %v", portalerrors.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := gjson.GetBytes(body, "detail").String()
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrRefreshRejected, resp.StatusCode, detail)
	}

	access := gjson.GetBytes(body, "access").String()
	if access == "" {
		return "", ErrMissingAccessToken
	}
	return access, nil
}
