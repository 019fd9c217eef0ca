package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"github.com/pomerium/storefront/internal/apiclient"
	"github.com/pomerium/storefront/internal/log"
	"github.com/pomerium/storefront/pkg/apierror"
)

// MinPasswordLength is the shortest password accepted by Register.
const MinPasswordLength = 8

var (
	emailPattern    = regexp.MustCompile(`^[A-Z0-9a-z._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,64}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
)

type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

type tokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}

// Login exchanges credentials for a token and stores the new credential
// record.
func (m *Manager) Login(ctx context.Context, usernameOrEmail, password string) (*Session, error) {
	usernameOrEmail = strings.TrimSpace(usernameOrEmail)
	if usernameOrEmail == "" || password == "" {
		return nil, apierror.New(apierror.KindInvalidRequest, "username and password are required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	res, body, err := m.api.Send(ctx, apiclient.Login(loginRequest{
		UsernameOrEmail: usernameOrEmail,
		Password:        password,
	}))
	if err != nil {
		return nil, fmt.Errorf("session: login: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, apierror.WithRequestID(
			apierror.FromStatus(res.StatusCode, apierror.ReadMessage(bytes.NewReader(body))), res.Header)
	}

	var out tokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, apierror.Unknown("failed to decode login response", err)
	}

	s, err := m.storeLocked(ctx, out)
	if err != nil {
		return nil, err
	}
	log.Info(ctx).
		Str("username", s.User.Username).
		Str("token_id", log.TokenID(s.Token)).
		Time("expires", s.Claims.Expiry()).
		Msg("session: logged in")
	return s, nil
}

// storeLocked validates the token of a login or refresh response and
// persists the credential record. Nothing is persisted for an invalid token.
func (m *Manager) storeLocked(ctx context.Context, out tokenResponse) (*Session, error) {
	claims, ok := m.codec.Decode(out.Token)
	if !ok {
		return nil, apierror.New(apierror.KindInvalidToken, "server returned a malformed token")
	}
	if m.codec.IsExpired(out.Token) {
		return nil, apierror.New(apierror.KindInvalidToken, "server returned an expired token")
	}
	user := out.User
	if user == nil {
		user = userFromClaims(claims)
	}

	err := m.store.Save(out.Token)
	if err == nil {
		err = m.store.SaveUser(user)
	}
	if err == nil {
		err = m.store.SetTokenExpiry(claims.Expiry())
	}
	if err == nil {
		err = m.store.SetLoggedIn(true)
	}
	if err != nil {
		_ = m.clearLocked(ctx, "store_failed")
		return nil, fmt.Errorf("session: failed to store credentials: %w", err)
	}

	return &Session{Token: out.Token, Claims: claims, User: user, Active: true}, nil
}

// Register creates an account. It does not log the new user in.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) (*RegisterAck, error) {
	if err := validateRegistration(&req); err != nil {
		return nil, err
	}

	res, body, err := m.api.Send(ctx, apiclient.Register(req))
	if err != nil {
		return nil, fmt.Errorf("session: register: %w", err)
	}

	msg := apierror.ReadMessage(bytes.NewReader(body))
	switch res.StatusCode {
	case http.StatusCreated:
	case http.StatusUnprocessableEntity:
		if msg == "" {
			msg = "Registration failed"
		}
		return nil, apierror.WithRequestID(apierror.Registration(msg), res.Header)
	case http.StatusBadRequest:
		e := apierror.New(apierror.KindInvalidRequest, msg)
		e.StatusCode = res.StatusCode
		return nil, apierror.WithRequestID(e, res.Header)
	default:
		return nil, apierror.WithRequestID(apierror.FromStatus(res.StatusCode, msg), res.Header)
	}

	var ack RegisterAck
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &ack); err != nil {
			return nil, apierror.Unknown("failed to decode register response", err)
		}
	}
	log.Info(ctx).Str("username", req.Username).Msg("session: registered")
	return &ack, nil
}

func validateRegistration(req *RegisterRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	switch {
	case req.FirstName == "" || req.LastName == "" || req.Username == "" ||
		req.Email == "" || req.Password == "":
		return apierror.New(apierror.KindInvalidRequest, "all fields are required")
	case !usernamePattern.MatchString(req.Username):
		return apierror.New(apierror.KindInvalidRequest,
			"username can only contain letters, numbers and underscores (3-20 characters)")
	case !emailPattern.MatchString(req.Email):
		return apierror.ErrInvalidEmail
	case !isStrongPassword(req.Password):
		return apierror.ErrWeakPassword
	}
	return nil
}

func isStrongPassword(password string) bool {
	if len([]rune(password)) < MinPasswordLength {
		return false
	}
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// LogoutRemote tells the server to revoke the token and then clears the
// credential record. A failure to reach the server does not prevent the
// local logout.
func (m *Manager) LogoutRemote(ctx context.Context) error {
	if token, ok := m.store.Get(); ok {
		ep := apiclient.Logout()
		ep.Headers = bearer(token)
		res, _, err := m.api.Send(ctx, ep)
		switch {
		case err != nil:
			log.Warn(ctx).Err(err).Msg("session: remote logout failed")
		case res.StatusCode >= 300:
			log.Warn(ctx).Int("status", res.StatusCode).Msg("session: remote logout rejected")
		}
	}
	return m.Logout(ctx)
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
