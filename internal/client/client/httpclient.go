package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/authdash/internal/client/models"
	"github.com/dmitrijs2005/authdash/internal/common"
	"github.com/dmitrijs2005/authdash/internal/logging"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient talks to the JSON auth API mounted under a base path.
type HTTPClient struct {
	doer    httpDoer
	baseURL *url.URL
	log     logging.Logger
}

type tokenResponse struct {
	Token string `json:"token"`
}

type fieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

type errorResponse struct {
	Message string       `json:"message"`
	Errors  []fieldError `json:"errors"`
}

// NewHTTPClient builds a client for endpoint (scheme optional, "http://" is
// assumed) with every call rooted at basePath. A zero timeout means calls
// wait as long as the server does.
func NewHTTPClient(endpoint, basePath string, timeout time.Duration, log logging.Logger) (*HTTPClient, error) {
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "http://" + endpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	if basePath == "" {
		basePath = common.DefaultBasePath
	}
	u = u.JoinPath(basePath)

	return &HTTPClient{
		doer:    &http.Client{Timeout: timeout},
		baseURL: u,
		log:     log,
	}, nil
}

// BaseURL returns the URL every call is rooted at.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL.String()
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "login", "", creds)
	if err != nil {
		return "", transportError(MsgLoginFailed, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		body := readErrorBody(resp.Body)
		return "", statusError(resp.StatusCode, body.Message, MsgLoginFailed)
	}

	return decodeToken(resp.Body, MsgLoginFailed)
}

// Register creates an account. A rejection listing field errors comes back as
// *ValidationFailure, anything else as *AuthError.
func (c *HTTPClient) Register(ctx context.Context, creds models.Credentials) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "register", "", creds)
	if err != nil {
		return "", transportError(MsgRegisterFailed, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		body := readErrorBody(resp.Body)
		if len(body.Errors) > 0 {
			fields := make([]models.ValidationError, 0, len(body.Errors))
			for _, fe := range body.Errors {
				fields = append(fields, models.ValidationError{Field: fe.Param, Message: fe.Msg})
			}
			return "", &ValidationFailure{Errors: fields, Message: body.Message}
		}
		return "", statusError(resp.StatusCode, body.Message, MsgRegisterFailed)
	}

	return decodeToken(resp.Body, MsgRegisterFailed)
}

func (c *HTTPClient) GetCurrentUser(ctx context.Context, token string) (*models.UserRecord, error) {
	var user models.UserRecord
	if err := c.getJSON(ctx, "me", token, MsgMeFailed, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) ListUsers(ctx context.Context, token string) ([]models.UserRecord, error) {
	users := make([]models.UserRecord, 0)
	if err := c.getJSON(ctx, "users", token, MsgUsersFailed, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path, token, fallback string, target any) error {
	resp, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return transportError(fallback, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		body := readErrorBody(resp.Body)
		return statusError(resp.StatusCode, body.Message, fallback)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return &AuthError{Message: fallback, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	target := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerValue(token))
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		c.log.Debug(ctx, "api call failed", "method", method, "path", target.Path, "request_id", requestID, "error", err)
		return nil, err
	}
	c.log.Debug(ctx, "api call", "method", method, "path", target.Path, "request_id", requestID,
		"status", resp.StatusCode, "latency", time.Since(start))
	return resp, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func transportError(fallback string, err error) error {
	return &AuthError{Message: fallback, Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
}

func statusError(status int, message, fallback string) error {
	if message == "" {
		message = fallback
	}
	e := &AuthError{Message: message, Status: status}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Err = ErrUnauthorized
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		e.Err = ErrUnavailable
	}
	return e
}

// readErrorBody decodes a failure body. Unparsable or empty bodies yield the
// zero value so callers fall back to their default message.
func readErrorBody(r io.Reader) errorResponse {
	var body errorResponse
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return body
	}
	_ = json.Unmarshal(data, &body)
	return body
}

func decodeToken(r io.Reader, fallback string) (string, error) {
	var tr tokenResponse
	if err := json.NewDecoder(r).Decode(&tr); err != nil {
		return "", &AuthError{Message: fallback, Err: fmt.Errorf("decode response: %w", err)}
	}
	if tr.Token == "" {
		return "", &AuthError{Message: fallback, Err: errors.New("response carries no token")}
	}
	return tr.Token, nil
}
