package client

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"wheelstore/internal/models"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NavState says which navigation entries are visible. It is derived from
// the auth state and nowhere else.
type NavState struct {
	ShowLogin   bool
	ShowLogout  bool
	ShowAccount bool
}

// Session tracks the authenticated user for this client.
type Session struct {
	api     *API
	confirm Confirmer
	notify  Notifier
	user    *models.User
}

func NewSession(api *API, confirm Confirmer, notify Notifier) *Session {
	return &Session{api: api, confirm: confirm, notify: notify}
}

// CurrentUser asks the server who is logged in. Absence of a session is
// not an error: the caller gets (nil, nil) and guest navigation.
func (s *Session) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	err := s.api.do(ctx, http.MethodGet, "/api/user", nil, &user)
	if errors.Is(err, ErrUnauthenticated) {
		s.user = nil
		return nil, nil
	}
	if err != nil {
		s.user = nil
		return nil, err
	}
	s.user = &user
	return s.user, nil
}

// User returns the cached user from the last CurrentUser/Login call.
func (s *Session) User() *models.User { return s.user }

// Nav derives navigation visibility from the auth state.
func (s *Session) Nav() NavState {
	loggedIn := s.user != nil
	return NavState{
		ShowLogin:   !loggedIn,
		ShowLogout:  loggedIn,
		ShowAccount: loggedIn,
	}
}

// Login authenticates and caches the user. Empty fields are rejected
// before any request is sent.
func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, &ValidationError{Message: "Enter all fields!"}
	}

	var user models.User
	payload := map[string]string{"email": email, "password": password}
	if err := s.api.do(ctx, http.MethodPost, "/api/login", payload, &user); err != nil {
		return nil, err
	}
	s.user = &user
	s.notify.Success("Welcome back!")
	return s.user, nil
}

// Register creates an account. Malformed input blocks the request.
func (s *Session) Register(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return &ValidationError{Message: "Enter all fields!"}
	}
	if !emailRegex.MatchString(email) {
		return &ValidationError{Message: "Enter a valid email address."}
	}
	if len(password) < 6 {
		return &ValidationError{Message: "Password must be at least 6 characters long."}
	}

	payload := map[string]string{"email": email, "password": password}
	if err := s.api.do(ctx, http.MethodPost, "/api/register", payload, nil); err != nil {
		return err
	}
	s.notify.Success("Registered! You can now log in with your credentials.")
	return nil
}

// Orders fetches the logged-in user's order history, newest first.
func (s *Session) Orders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.api.do(ctx, http.MethodGet, "/api/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Logout asks for confirmation, then invalidates the session. Returns true
// when the user is actually logged out (the shop then returns home).
func (s *Session) Logout(ctx context.Context) (bool, error) {
	if !s.confirm.Confirm("Log out?") {
		return false, nil
	}

	if err := s.api.do(ctx, http.MethodPost, "/api/logout", nil, nil); err != nil {
		s.notify.Error(userMessage(err))
		return false, err
	}
	s.user = nil
	s.notify.Success("Logged out")
	return true, nil
}
