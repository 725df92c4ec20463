// Package client implements the storefront's client core: auth-aware
// session state, the filtered/paginated catalog view, the remote-backed
// cart store and the checkout flow. All state is (re)derived from the
// server after every mutation; nothing is updated optimistically.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
)

// ErrUnauthenticated means the server rejected the session. Callers send
// the user to the login flow instead of retrying.
var ErrUnauthenticated = errors.New("not authenticated")

// AppError is a failure the server reported (`ok:false`). Its message is
// shown to the user verbatim when present.
type AppError struct {
	Message string
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Request failed, please try again."
}

// ValidationError is a client-side input rejection; the request is never
// sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// envelope is the server's standard response shape.
type envelope struct {
	OK      bool            `json:"ok"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// API is the thin JSON client the stores share. The cookie jar carries the
// session across calls.
type API struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) (*API, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar},
	}, nil
}

// do sends one request and decodes the envelope into out. Transport and
// decode problems wrap the cause; `ok:false` becomes an AppError; a 401
// becomes ErrUnauthenticated.
func (a *API) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthenticated
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.OK {
		return &AppError{Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

// userMessage maps an error to what the user should see: server messages
// verbatim, everything else a generic retry prompt.
func userMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	if errors.Is(err, ErrUnauthenticated) {
		return "Please log in first."
	}
	return "Something went wrong, please try again."
}
