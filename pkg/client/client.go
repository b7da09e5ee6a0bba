// Package client is a typed SDK over the HTTP API. It authenticates through
// an injected Session, refreshes an expired access token once per call, and
// keeps transport failures distinguishable from server-returned errors.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/taskforge/backend/api/transport"
	"github.com/taskforge/backend/domain"
)

// ErrUnreachable wraps transport-level failures: the server never produced a
// response envelope.
var ErrUnreachable = errors.New("server unreachable")

// APIError is a failure envelope returned by the server.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []domain.FieldViolation
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// ListOptions narrows a task listing.
type ListOptions struct {
	Search    string
	Priority  string
	Completed *bool
	Limit     int
	Offset    int
}

// Client issues API calls with the tokens held by its Session.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	session *Session
	timeout time.Duration
}

// New builds a Client for baseURL. A nil session starts unauthenticated.
func New(baseURL string, session *Session) *Client {
	if session == nil {
		session = &Session{}
	}
	return &Client{
		baseURL: baseURL,
		http:    &fasthttp.Client{},
		session: session,
		timeout: 10 * time.Second,
	}
}

// Session exposes the injected session, e.g. for persistence by a CLI.
func (c *Client) Session() *Session { return c.session }

// Signup registers a new account.
func (c *Client) Signup(req transport.SignupRequest) (*domain.User, error) {
	var payload struct {
		User *domain.User `json:"user"`
	}
	if err := c.do(http.MethodPost, "/api/v1/auth/signup", req, &payload, false); err != nil {
		return nil, err
	}
	return payload.User, nil
}

// Login authenticates and stores the issued token pair in the session.
func (c *Client) Login(identifier, password string) (*domain.User, error) {
	var payload transport.AuthPayload
	req := transport.LoginRequest{Identifier: identifier, Password: password}
	if err := c.do(http.MethodPost, "/api/v1/auth/login", req, &payload, false); err != nil {
		return nil, err
	}
	c.session.Update(payload.AccessToken, payload.RefreshToken)
	return payload.User, nil
}

// Logout closes the server-side session and clears the local one regardless
// of the outcome.
func (c *Client) Logout() error {
	err := c.do(http.MethodPost, "/api/v1/auth/logout", nil, nil, true)
	c.session.Clear()
	return err
}

// CurrentUser fetches the authenticated user.
func (c *Client) CurrentUser() (*domain.User, error) {
	var payload struct {
		User *domain.User `json:"user"`
	}
	if err := c.do(http.MethodGet, "/api/v1/auth/current-user", nil, &payload, true); err != nil {
		return nil, err
	}
	return payload.User, nil
}

// UpdateUser changes the supplied profile fields.
func (c *Client) UpdateUser(req transport.UpdateUserRequest) (*domain.User, error) {
	var payload struct {
		User *domain.User `json:"user"`
	}
	if err := c.do(http.MethodPut, "/api/v1/auth/update-user", req, &payload, true); err != nil {
		return nil, err
	}
	return payload.User, nil
}

// ChangePassword rotates the account password.
func (c *Client) ChangePassword(oldPassword, newPassword string) error {
	req := transport.ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}
	return c.do(http.MethodPut, "/api/v1/auth/change-password", req, nil, true)
}

// Tasks lists the caller's tasks, newest first.
func (c *Client) Tasks(opts ListOptions) ([]domain.Task, error) {
	query := url.Values{}
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}
	if opts.Priority != "" {
		query.Set("priority", opts.Priority)
	}
	if opts.Completed != nil {
		query.Set("completed", strconv.FormatBool(*opts.Completed))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}

	path := "/api/v1/tasks"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var tasks []domain.Task
	if err := c.do(http.MethodGet, path, nil, &tasks, true); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task owned by the caller.
func (c *Client) CreateTask(req transport.TaskCreateRequest) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(http.MethodPost, "/api/v1/tasks", req, &task, true); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask fetches one owned task.
func (c *Client) GetTask(id string) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(http.MethodGet, "/api/v1/tasks/"+id, nil, &task, true); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial update.
func (c *Client) UpdateTask(id string, req transport.TaskUpdateRequest) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(http.MethodPut, "/api/v1/tasks/"+id, req, &task, true); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes one owned task.
func (c *Client) DeleteTask(id string) error {
	return c.do(http.MethodDelete, "/api/v1/tasks/"+id, nil, nil, true)
}

// ToggleTask flips the completion flag.
func (c *Client) ToggleTask(id string) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(http.MethodPost, "/api/v1/tasks/"+id+"/toggle", nil, &task, true); err != nil {
		return nil, err
	}
	return &task, nil
}

// Stats fetches completion statistics.
func (c *Client) Stats() (*domain.TaskStats, error) {
	var stats domain.TaskStats
	if err := c.do(http.MethodGet, "/api/v1/tasks/stats", nil, &stats, true); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Activity fetches the recent task mutation journal.
func (c *Client) Activity(limit int) ([]domain.ActivityEntry, error) {
	path := "/api/v1/tasks/activity"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var entries []domain.ActivityEntry
	if err := c.do(http.MethodGet, path, nil, &entries, true); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) do(method, path string, body, out interface{}, authed bool) error {
	status, data, err := c.roundTrip(method, path, body, authed)
	if err != nil {
		return err
	}

	// One refresh attempt per call when the access token no longer verifies.
	if status == http.StatusUnauthorized && authed {
		if refreshed := c.refresh(); refreshed {
			status, data, err = c.roundTrip(method, path, body, authed)
			if err != nil {
				return err
			}
		}
	}

	return decodeEnvelope(status, data, out)
}

func (c *Client) roundTrip(method, path string, body interface{}, authed bool) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")

	if authed {
		if access, _ := c.session.Tokens(); access != "" {
			req.Header.Set("Authorization", "Bearer "+access)
		}
	}

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		req.SetBody(payload)
	}

	if err := c.http.DoTimeout(req, resp, c.timeout); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	data := make([]byte, len(resp.Body()))
	copy(data, resp.Body())
	return resp.StatusCode(), data, nil
}

func (c *Client) refresh() bool {
	_, refreshToken := c.session.Tokens()
	if refreshToken == "" {
		return false
	}

	status, data, err := c.roundTrip(http.MethodPost, "/api/v1/auth/refresh-token", transport.RefreshRequest{RefreshToken: refreshToken}, false)
	if err != nil {
		return false
	}

	var payload transport.AuthPayload
	if err := decodeEnvelope(status, data, &payload); err != nil {
		c.session.Clear()
		return false
	}

	c.session.Update(payload.AccessToken, payload.RefreshToken)
	return true
}

func decodeEnvelope(status int, data []byte, out interface{}) error {
	var envelope struct {
		StatusCode int                     `json:"statusCode"`
		Data       json.RawMessage         `json:"data"`
		Message    string                  `json:"message"`
		Errors     []domain.FieldViolation `json:"errors"`
		Success    bool                    `json:"success"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("malformed response (status %d): %w", status, err)
	}

	if !envelope.Success {
		return &APIError{
			StatusCode: status,
			Message:    envelope.Message,
			Errors:     envelope.Errors,
		}
	}

	if out != nil && len(envelope.Data) > 0 {
		return json.Unmarshal(envelope.Data, out)
	}
	return nil
}
