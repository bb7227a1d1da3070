package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jrsteele09/eshtarek-portal/auth"
	portalerrors "github.com/jrsteele09/eshtarek-portal/internal/errors"
	"github.com/jrsteele09/eshtarek-portal/subscriptions"
	"github.com/jrsteele09/eshtarek-portal/users"
)

// Users API endpoints, relative to the base URL
const (
	PathRegister          = "/users/register/"
	PathLogin             = "/users/login/"
	PathLogout            = "/users/logout/"
	PathSubscriptionPlans = "/users/subscription-plans/"
	PathSubscriptions     = "/users/subscriptions/"
)

const (
	registrationFailed = "Registration failed. Please try again."
	invalidCredentials = "Invalid credentials. Please try again."
	serviceUnavailable = "Unable to reach the server. Please try again later."
)

// TokenPair is the login response of the users API
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Client talks to the users API. Authentication is left to the transport of
// the http.Client, normally a session manager transport.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// WithHTTPClient returns a copy of c sending requests through httpClient
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	return NewClient(c.baseURL, httpClient)
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Register creates a user account. A 400 carries the field errors of the form.
func (c *Client) Register(ctx context.Context, reg users.Registration) error {
	err := c.do(ctx, http.MethodPost, PathRegister, reg, nil)

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err
	}

	msg := firstOf(apiErr.Body, "username.0", "email.0", "tenant_name.0", "password.0", "non_field_errors.0", "0")
	if msg == "" && gjson.ParseBytes(apiErr.Body).Type == gjson.String {
		msg = gjson.ParseBytes(apiErr.Body).Str
	}
	if msg == "" {
		msg = registrationFailed
	}

	kind := portalerrors.ErrValidation
	if apiErr.Status >= http.StatusInternalServerError {
		kind = portalerrors.ErrInternal
	}
	return portalerrors.NewUserError(kind, msg, apiErr)
}

// Login exchanges credentials for a token pair
func (c *Client) Login(ctx context.Context, creds users.Credentials) (*TokenPair, error) {
	var pair TokenPair
	err := c.do(ctx, http.MethodPost, PathLogin, creds, &pair)

	var apiErr *Error
	if errors.As(err, &apiErr) {
		msg := firstOf(apiErr.Body, "detail")
		if msg == "" {
			msg = invalidCredentials
		}
		return nil, portalerrors.NewUserError(portalerrors.ErrAuthentication, msg, apiErr)
	}
	if err != nil {
		return nil, err
	}
	if pair.Access == "" || pair.Refresh == "" {
		return nil, portalerrors.NewUserError(portalerrors.ErrAuthentication, invalidCredentials, errors.New("login response carries no token pair"))
	}
	return &pair, nil
}

// Logout blacklists refresh on the users API
func (c *Client) Logout(ctx context.Context, refresh string) error {
	return c.do(ctx, http.MethodPost, PathLogout, map[string]string{"refresh": refresh}, nil)
}

// SubscriptionPlans lists the plan catalogue in API order
func (c *Client) SubscriptionPlans(ctx context.Context) ([]subscriptions.Plan, error) {
	var plans []subscriptions.Plan
	if err := c.do(ctx, http.MethodGet, PathSubscriptionPlans, nil, &plans); err != nil {
		return nil, withMessage(err, "Failed to load subscription plans")
	}
	return plans, nil
}

// CreateSubscription moves the tenant to planID, paid by paymentID
func (c *Client) CreateSubscription(ctx context.Context, planID int, paymentID string) (*subscriptions.Result, error) {
	payload := struct {
		Plan      int    `json:"plan"`
		PaymentID string `json:"payment_id"`
	}{Plan: planID, PaymentID: paymentID}

	var result subscriptions.Result
	if err := c.do(ctx, http.MethodPost, PathSubscriptions, payload, &result); err != nil {
		return nil, withMessage(err, "")
	}
	return &result, nil
}

// withMessage classifies an API error, using the message found in the body or fallback
func withMessage(err error, fallback string) error {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err
	}

	msg := apiErr.Message
	kind := portalerrors.ErrValidation
	switch {
	case apiErr.Status == http.StatusUnauthorized:
		kind = portalerrors.ErrAuthentication
	case apiErr.Status == http.StatusNotFound:
		kind = portalerrors.ErrNotFound
	case apiErr.Status >= http.StatusInternalServerError:
		// 5xx bodies are proxy or debug pages, not messages
		kind = portalerrors.ErrInternal
		msg = ""
	}
	if msg == "" {
		msg = fallback
	}
	return portalerrors.NewUserError(kind, msg, apiErr)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("[api %s %s] marshal: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("[api %s %s] new request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var expired *auth.SessionExpiredError
		if errors.As(err, &expired) {
			return fmt.Errorf("[api %s %s] %w", method, path, expired)
		}
		return portalerrors.NewUserError(portalerrors.ErrNetwork, serviceUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return portalerrors.NewUserError(portalerrors.ErrNetwork, serviceUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("[api %s %s] decode response: %w", method, path, err)
	}
	return nil
}
