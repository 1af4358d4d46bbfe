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
	"time"

	"github.com/google/uuid"

	"github.com/litspark/portalauth/session"
)

// ErrUnreachable is wrapped into errors returned for transport-level
// failures (DNS, connect, timeout), as opposed to HTTP error responses.
var ErrUnreachable = errors.New("auth api unreachable")

const defaultRequestTimeout = 15 * time.Second

// Error is an HTTP error response from the authentication API.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("auth api: %s (status %d)", e.Message, e.StatusCode)
}

// IsStatus reports whether err is an API [*Error] with the given HTTP
// status code.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// RegisterInput is the request body for POST /auth/register.
type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// AuthPayload is the response body of the register and login endpoints:
// the user record plus a fresh token pair.
type AuthPayload struct {
	User         *session.User `json:"user"`
	Token        string        `json:"token"`
	RefreshToken string        `json:"refreshToken"`
}

// TokenPair is the response body of the refresh endpoint.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Message is the response body of the verification and password-flow
// endpoints.
type Message struct {
	Message string `json:"message"`
}

// Client calls the portal's remote authentication API. It is stateless and
// safe for concurrent use; credentials are supplied per call.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a [Client] for the API at baseURL. When httpClient is
// nil a client with a default timeout is used; timeouts beyond that are the
// caller's transport concern.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Register creates a new portal account and returns the signed-in payload.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*AuthPayload, error) {
	var out AuthPayload
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for the signed-in payload.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthPayload, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var out AuthPayload
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout notifies the server that the session behind accessToken is ending.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", accessToken, struct{}{}, nil)
}

// RefreshToken exchanges a refresh token for a new token pair.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	body := map[string]string{
		"refreshToken": refreshToken,
	}

	var out TokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/refresh-token", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyEmail redeems an email verification token.
func (c *Client) VerifyEmail(ctx context.Context, token string) (*Message, error) {
	body := map[string]string{
		"token": token,
	}

	var out Message
	if err := c.do(ctx, http.MethodPost, "/auth/verify-email", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword requests a password-reset email for the given address.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*Message, error) {
	body := map[string]string{
		"email": email,
	}

	var out Message
	if err := c.do(ctx, http.MethodPost, "/auth/forgot-password", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword redeems a reset token and sets a new password. The caller
// must still log in afterwards.
func (c *Client) ResetPassword(ctx context.Context, token, password string) (*Message, error) {
	body := map[string]string{
		"token":    token,
		"password": password,
	}

	var out Message
	if err := c.do(ctx, http.MethodPost, "/auth/reset-password", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser applies a partial profile update and returns the server's
// representation of the user.
func (c *Client) UpdateUser(ctx context.Context, accessToken, userID string, fields map[string]any) (*session.User, error) {
	var out struct {
		User *session.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/users/"+userID, accessToken, fields, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUnreachable, err)
	}

	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{
		StatusCode: resp.StatusCode,
		Message:    fallbackMessage(resp.StatusCode),
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
	}

	return apiErr
}

func fallbackMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "authentication required"
	case http.StatusForbidden:
		return "access denied"
	case http.StatusNotFound:
		return "not found"
	default:
		return "request failed"
	}
}
