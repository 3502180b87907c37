package shop

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"coffee-shop/internal/domain"
	"coffee-shop/internal/repository"
	"coffee-shop/internal/usecase"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	// bcrypt ignores input beyond 72 bytes.
	maxPasswordBytes = 72
)

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

type LoginOutput struct {
	User domain.User
	Role string
}

// Accounts registers and authenticates users.
type Accounts struct {
	users  UserStore
	admins map[string]struct{}
	cost   int
	newID  func() string
}

// NewAccounts creates the account service. Users whose email is listed in
// adminEmails log in with the admin role.
func NewAccounts(users UserStore, adminEmails []string) (*Accounts, error) {
	if users == nil {
		return nil, errors.New("shop: user store must not be nil")
	}
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &Accounts{users: users, admins: admins, cost: bcrypt.DefaultCost, newID: newID}, nil
}

func (a *Accounts) Signup(ctx context.Context, in SignupInput) (domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case name == "":
		return domain.User{}, invalid("name_required")
	case !validEmail(email):
		return domain.User{}, invalid("invalid_email")
	case in.Password == "":
		return domain.User{}, invalid("password_required")
	case len(in.Password) > maxPasswordBytes:
		return domain.User{}, invalid("password_too_long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.cost)
	if err != nil {
		return domain.User{}, usecase.NewError(usecase.ErrorInternal, "password_hash_error", err)
	}
	u := domain.User{ID: a.newID(), Name: name, Email: email, PasswordHash: string(hash)}
	if err := a.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.User{}, usecase.NewError(usecase.ErrorConflict, "email_exists", err)
		}
		return domain.User{}, storeError("user", err)
	}
	log.Info().Str("component", "accounts").Str("user_id", u.ID).Msg("user registered")
	return u, nil
}

// Login verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (a *Accounts) Login(ctx context.Context, email, password string) (LoginOutput, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginOutput{}, invalid("credentials_required")
	}
	u, err := a.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return LoginOutput{}, usecase.NewError(usecase.ErrorUnauthorized, "invalid_credentials", nil)
	}
	if err != nil {
		return LoginOutput{}, storeError("user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return LoginOutput{}, usecase.NewError(usecase.ErrorUnauthorized, "invalid_credentials", nil)
	}

	role := RoleUser
	if _, ok := a.admins[email]; ok {
		role = RoleAdmin
	}
	return LoginOutput{User: u, Role: role}, nil
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
