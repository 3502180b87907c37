package shop

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"coffee-shop/internal/usecase"
)

func newTestAccounts(t *testing.T, store *memStore, admins ...string) *Accounts {
	t.Helper()
	a, err := NewAccounts(store, admins)
	require.NoError(t, err)
	a.cost = bcrypt.MinCost
	return a
}

func TestNewAccounts_NilStore(t *testing.T) {
	_, err := NewAccounts(nil, nil)
	require.Error(t, err)
}

func TestSignupAndLogin(t *testing.T) {
	store := newMemStore()
	a := newTestAccounts(t, store)

	u, err := a.Signup(context.Background(), SignupInput{Name: " Ada ", Email: "Ada@Example.com", Password: "s3cret"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, "Ada", u.Name)
	require.Equal(t, "ada@example.com", u.Email)
	require.NotEqual(t, "s3cret", u.PasswordHash)

	out, err := a.Login(context.Background(), "ADA@example.com", "s3cret")
	require.NoError(t, err)
	require.Equal(t, u.ID, out.User.ID)
	require.Equal(t, RoleUser, out.Role)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	a := newTestAccounts(t, newMemStore())

	_, err := a.Signup(context.Background(), SignupInput{Name: "A", Email: "a@b.co", Password: "x"})
	require.NoError(t, err)
	_, err = a.Signup(context.Background(), SignupInput{Name: "B", Email: "A@b.co", Password: "y"})
	require.Equal(t, usecase.ErrorConflict, usecase.CodeOf(err))
}

func TestSignup_Validation(t *testing.T) {
	a := newTestAccounts(t, newMemStore())
	cases := []SignupInput{
		{Email: "a@b.co", Password: "x"},
		{Name: "A", Email: "not-an-email", Password: "x"},
		{Name: "A", Email: "a@b.co"},
		{Name: "A", Email: "a@b.co", Password: strings.Repeat("x", 73)},
	}
	for _, in := range cases {
		_, err := a.Signup(context.Background(), in)
		require.Equal(t, usecase.ErrorInvalidInput, usecase.CodeOf(err), "%+v", in)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	a := newTestAccounts(t, newMemStore())
	_, err := a.Signup(context.Background(), SignupInput{Name: "A", Email: "a@b.co", Password: "right"})
	require.NoError(t, err)

	_, err = a.Login(context.Background(), "a@b.co", "wrong")
	require.Equal(t, usecase.ErrorUnauthorized, usecase.CodeOf(err))
	_, err = a.Login(context.Background(), "nobody@b.co", "right")
	require.Equal(t, usecase.ErrorUnauthorized, usecase.CodeOf(err))
	_, err = a.Login(context.Background(), "", "")
	require.Equal(t, usecase.ErrorInvalidInput, usecase.CodeOf(err))
}

func TestLogin_AdminRole(t *testing.T) {
	a := newTestAccounts(t, newMemStore(), " Boss@Shop.io ")
	_, err := a.Signup(context.Background(), SignupInput{Name: "Boss", Email: "boss@shop.io", Password: "pw"})
	require.NoError(t, err)

	out, err := a.Login(context.Background(), "boss@shop.io", "pw")
	require.NoError(t, err)
	require.Equal(t, RoleAdmin, out.Role)
}
