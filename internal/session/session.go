// Package session owns the authentication state of the storefront client:
// it logs in, persists the credential record, answers whether the user is
// logged in and refreshes the bearer token when the API rejects it.
package session

import (
	"strings"
	"time"

	"github.com/pomerium/storefront/pkg/authtoken"
)

// A Session is a view of the current authentication state.
type Session struct {
	Token  string
	Claims *authtoken.Claims
	User   *User
	Active bool
}

// A User is the profile of the logged in user.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// FullName returns the first and last name of u.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName returns the full name of u, or the username if u has no name.
func (u *User) DisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Username
}

// CreatedTime parses CreatedAt.
func (u *User) CreatedTime() (time.Time, bool) {
	return parseTimestamp(u.CreatedAt)
}

// UpdatedTime parses UpdatedAt.
func (u *User) UpdatedTime() (time.Time, bool) {
	return parseTimestamp(u.UpdatedAt)
}

// the API sends microsecond timestamps without an offset
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999Z",
	time.RFC3339Nano,
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func userFromClaims(claims *authtoken.Claims) *User {
	return &User{
		ID:       claims.SubjectID,
		Username: claims.Username,
		Email:    claims.Email,
	}
}

// A State is the authentication state of a Manager.
type State int

// States.
const (
	StateLoggedOut State = iota
	StateLoggedIn
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateLoggedIn:
		return "logged_in"
	case StateRefreshing:
		return "refreshing"
	default:
		return "logged_out"
	}
}

// A RegisterRequest is the data needed to create an account.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// A RegisterAck is the server's answer to a successful registration.
type RegisterAck struct {
	Message string `json:"message"`
}

// A CredentialStore persists the credential record.
type CredentialStore interface {
	Save(token string) error
	Get() (string, bool)
	Delete() error
	SaveUser(user any) error
	GetUser(dst any) bool
	DeleteUser() error
	IsLoggedIn() bool
	SetLoggedIn(loggedIn bool) error
	SetTokenExpiry(expiry time.Time) error
	TokenExpiry() (time.Time, bool)
	Clear() error
}
