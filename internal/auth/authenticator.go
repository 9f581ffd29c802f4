package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/nlachan/movie-api/internal/data"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers both an unknown username and a wrong password.
var ErrInvalidCredentials = errors.New("invalid authentication credentials")

// dummyHash is compared against when the username does not exist.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("myflix-timing-equalizer"), 12)

type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (*data.User, error)
}

type Authenticator struct {
	users UserFinder
}

func NewAuthenticator(users UserFinder) *Authenticator {
	return &Authenticator{users: users}
}

// Authenticate returns the user when password matches the stored hash.
// Failures are ErrInvalidCredentials, or a wrapped store/hash error.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*data.User, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		default:
			return nil, fmt.Errorf("lookup user: %w", err)
		}
	}

	match, err := user.Password.Matches(password)
	if err != nil {
		return nil, fmt.Errorf("compare password: %w", err)
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
