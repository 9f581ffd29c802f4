package data

import (
	"errors"
	"time"

	"github.com/nlachan/movie-api/internal/validator"
	"golang.org/x/crypto/bcrypt"
)

const passwordCost = 12

var birthdayLayouts = []string{"2006-01-02", time.RFC3339}

type password struct {
	hash []byte
}

type User struct {
	ID             string     `json:"_id"`
	Username       string     `json:"Username"`
	Password       password   `json:"-"`
	Email          string     `json:"Email"`
	Birthday       *time.Time `json:"Birthday,omitempty"`
	FavoriteMovies []string   `json:"FavoriteMovies"`
	Version        int        `json:"-"`
}

// Set replaces the stored hash. An empty plaintext is a caller bug: input
// validation must reject it before a hash is ever computed.
func (p *password) Set(plaintextPassword string) error {
	if plaintextPassword == "" {
		panic("data: empty password passed to Set")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), passwordCost)
	if err != nil {
		return err
	}

	p.hash = hash

	return nil
}

func (p *password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(p.hash, []byte(plaintextPassword))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}
	return true, nil
}

func (p *password) IsSet() bool {
	return len(p.hash) > 0
}

// HasFavorite reports whether movieID is already in the user's favorites.
func (u *User) HasFavorite(movieID string) bool {
	for _, id := range u.FavoriteMovies {
		if id == movieID {
			return true
		}
	}
	return false
}

func ValidateUsername(v *validator.Validator, username string) {
	v.Check(username != "", "Username", "Username is required")
	v.Check(validator.MinChars(username, 5), "Username", "Username is required to have at least 5 characters")
	v.Check(validator.Alphanumeric(username), "Username", "Username contains non alphanumeric characters - not allowed")
}

func ValidateEmail(v *validator.Validator, email string) {
	v.Check(email != "", "Email", "Email is required")
	v.Check(validator.Matches(email, validator.EmailRX), "Email", "Email does not appear to be valid")
	v.Check(validator.MaxChars(email, 254), "Email", "Email must not be more than 254 characters")
}

func ValidatePlainText(v *validator.Validator, plaintext string) {
	v.Check(plaintext != "", "Password", "Password is required")
	v.Check(len(plaintext) <= 72, "Password", "Password must not be more than 72 bytes long")
}

// ValidateBirthday parses an optional birthday. It returns nil when raw is empty
// or does not parse; the latter also records a validation error.
func ValidateBirthday(v *validator.Validator, raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range birthdayLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			v.Check(t.Before(time.Now()), "Birthday", "Birthday must be in the past")
			return &t
		}
	}
	v.AddError("Birthday", "Birthday must be a valid date (YYYY-MM-DD)")
	return nil
}

func ValidateUser(v *validator.Validator, user *User) {
	ValidateUsername(v, user.Username)
	ValidateEmail(v, user.Email)

	if !user.Password.IsSet() {
		panic("missing password hash for user")
	}
}
