// Package client talks to the calldesk JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/templui/calldesk/internal/model"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.token = token
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// CreateCall mirrors the create-call request body.
type CreateCall struct {
	CallerName      string `json:"callerName"`
	CallerNumber    string `json:"callerNumber"`
	PersonToContact string `json:"personToContact"`
	OperatorName    string `json:"operatorName"`
	Priority        string `json:"priority"`
	Note            string `json:"note,omitempty"`
	FollowUpDate    string `json:"followUpDate,omitempty"`
}

type message struct {
	Message string `json:"message"`
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	var out AuthResult
	body := map[string]string{"username": username, "email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/api/users/register", body, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	var out AuthResult
	body := map[string]string{"username": username, "password": password}
	err := c.do(ctx, http.MethodPost, "/api/users/login", body, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var out model.User
	err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DropdownOptions(ctx context.Context) (*model.DropdownOptions, error) {
	var out model.DropdownOptions
	err := c.do(ctx, http.MethodGet, "/api/users/dropdown-options", nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

var lookupPaths = map[string]string{
	model.LookupContactPerson: "/api/users/contact-persons",
	model.LookupOperator:      "/api/users/operators",
}

func (c *Client) AddLookup(ctx context.Context, kind, name string) (*model.LookupEntry, error) {
	p, ok := lookupPaths[kind]
	if !ok {
		return nil, fmt.Errorf("unknown lookup kind %q", kind)
	}
	var out model.LookupEntry
	err := c.do(ctx, http.MethodPost, p, map[string]string{"name": name}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLookup(ctx context.Context, kind, name string) error {
	p, ok := lookupPaths[kind]
	if !ok {
		return fmt.Errorf("unknown lookup kind %q", kind)
	}
	return c.do(ctx, http.MethodDelete, p+"/"+url.PathEscape(name), nil, &message{})
}

func (c *Client) Calls(ctx context.Context) ([]*model.Call, error) {
	var out []*model.Call
	err := c.do(ctx, http.MethodGet, "/api/calls", nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCall(ctx context.Context, in CreateCall) (*model.Call, error) {
	var out model.Call
	err := c.do(ctx, http.MethodPost, "/api/calls", in, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateStatus(ctx context.Context, callID, status string) (*model.Call, error) {
	var out model.Call
	err := c.do(ctx, http.MethodPatch, "/api/calls/"+url.PathEscape(callID)+"/status", map[string]string{"status": status}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCall(ctx context.Context, callID string) error {
	return c.do(ctx, http.MethodDelete, "/api/calls/"+url.PathEscape(callID), nil, &message{})
}

func (c *Client) AddComment(ctx context.Context, callID, text string) (*model.Comment, error) {
	var out model.Comment
	err := c.do(ctx, http.MethodPost, "/api/calls/"+url.PathEscape(callID)+"/comments", map[string]string{"text": text}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context) (*model.CallStats, error) {
	var out model.CallStats
	err := c.do(ctx, http.MethodGet, "/api/calls/stats", nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadAttachment sends content as the multipart "file" field.
func (c *Client) UploadAttachment(ctx context.Context, commentID, filename string, content io.Reader) (*model.Attachment, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	_, err = io.Copy(part, content)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	err = mw.Close()
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/attachments/"+url.PathEscape(commentID), &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out model.Attachment
	err = c.send(req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Attachments(ctx context.Context, commentID string) ([]*model.Attachment, error) {
	var out []*model.Attachment
	err := c.do(ctx, http.MethodGet, "/api/attachments/comment/"+url.PathEscape(commentID), nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteAttachment(ctx context.Context, attachmentID string) error {
	return c.do(ctx, http.MethodDelete, "/api/attachments/"+url.PathEscape(attachmentID), nil, &message{})
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var body struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Error != "" {
			apiErr.Message = body.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
