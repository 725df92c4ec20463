package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionGuestByDefault(t *testing.T) {
	srv := newShopServer(t)
	c := newShopClient(t, srv.URL)

	user, err := c.session.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)

	nav := c.session.Nav()
	assert.True(t, nav.ShowLogin)
	assert.False(t, nav.ShowLogout)
	assert.False(t, nav.ShowAccount)
}

func TestSessionLoginFlow(t *testing.T) {
	srv := newShopServer(t)
	c := newShopClient(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, c.session.Register(ctx, "shopper@example.com", "secret123"))

	user, err := c.session.Login(ctx, "shopper@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "shopper@example.com", user.Email)

	nav := c.session.Nav()
	assert.False(t, nav.ShowLogin)
	assert.True(t, nav.ShowLogout)
	assert.True(t, nav.ShowAccount)

	// The cookie survives a fresh CurrentUser round-trip.
	user, err = c.session.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "shopper@example.com", user.Email)
}

func TestSessionLoginRejectsEmptyFields(t *testing.T) {
	srv := newShopServer(t)
	c := newShopClient(t, srv.URL)

	_, err := c.session.Login(context.Background(), "", "")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestSessionLoginWrongPassword(t *testing.T) {
	srv := newShopServer(t)
	c := newShopClient(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, c.session.Register(ctx, "shopper@example.com", "secret123"))

	_, err := c.session.Login(ctx, "shopper@example.com", "wrong-password")
	require.Error(t, err)
	assert.Nil(t, c.session.User())
}

func TestSessionRegisterValidation(t *testing.T) {
	srv := newShopServer(t)
	c := newShopClient(t, srv.URL)
	ctx := context.Background()

	var vErr *ValidationError

	err := c.session.Register(ctx, "not-an-email", "secret123")
	require.ErrorAs(t, err, &vErr)

	err = c.session.Register(ctx, "shopper@example.com", "short")
	require.ErrorAs(t, err, &vErr)
}

func TestSessionRegisterDuplicateEmail(t *testing.T) {
	srv := newShopServer(t)
	c := newShopClient(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, c.session.Register(ctx, "shopper@example.com", "secret123"))

	err := c.session.Register(ctx, "shopper@example.com", "secret123")
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Email already registered", appErr.Message)
}

func TestSessionLogoutNeedsConfirmation(t *testing.T) {
	srv := newShopServer(t)
	c := newShopClient(t, srv.URL)
	ctx := context.Background()
	c.login(t, ctx)

	c.confirm.answer = false
	loggedOut, err := c.session.Logout(ctx)
	require.NoError(t, err)
	assert.False(t, loggedOut)
	assert.NotNil(t, c.session.User())

	c.confirm.answer = true
	loggedOut, err = c.session.Logout(ctx)
	require.NoError(t, err)
	assert.True(t, loggedOut)
	assert.Nil(t, c.session.User())

	// Server side forgot the session too.
	user, err := c.session.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}
