package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/valter-silva-au/taskdeck/pkg/models"
)

// AuthService manages the local session: login, signup, logout and
// retrieval of the current session for other services.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Signup(ctx context.Context, name, email, password string) (*models.Session, error)
	Logout() error
	Current() (*models.Session, error)
	Expire() error
}

type authService struct {
	api    TaskAPI
	store  SessionStore
	events EventLogger
	now    func() time.Time
}

// NewAuthService creates an AuthService. events may be nil.
func NewAuthService(api TaskAPI, store SessionStore, events EventLogger) AuthService {
	return &authService{
		api:    api,
		store:  store,
		events: events,
		now:    time.Now,
	}
}

// Login validates the credentials, authenticates against the backend and
// stores the resulting session.
func (s *authService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if errs := ValidateCredentials(email, password); len(errs) > 0 {
		return nil, errs
	}
	res, err := s.api.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}
	return s.establish(res)
}

// Signup validates the form, registers the account and stores the session.
func (s *authService) Signup(ctx context.Context, name, email, password string) (*models.Session, error) {
	if errs := ValidateSignup(name, email, password); len(errs) > 0 {
		return nil, errs
	}
	res, err := s.api.Signup(ctx, strings.TrimSpace(name), strings.TrimSpace(email), password)
	if err != nil {
		return nil, fmt.Errorf("signing up: %w", err)
	}
	return s.establish(res)
}

func (s *authService) establish(res *models.AuthResult) (*models.Session, error) {
	if res == nil || res.Token == "" || res.User.ID == 0 {
		return nil, fmt.Errorf("backend returned an incomplete session")
	}
	sess := &models.Session{
		Token:      res.Token,
		User:       res.User,
		LoggedInAt: s.now().UTC(),
	}
	if err := s.store.Save(sess); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	s.logEvent(EventSessionLogin, map[string]any{"user_id": sess.User.ID, "email": sess.User.Email})
	return sess, nil
}

// Logout removes the stored session. Logging out without a session is not
// an error.
func (s *authService) Logout() error {
	sess, _ := s.store.Load()
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	if sess != nil {
		s.logEvent(EventSessionLogout, map[string]any{"user_id": sess.User.ID})
	}
	return nil
}

// Current returns the stored session. A missing or malformed session
// yields ErrNotLoggedIn; a JWT whose exp claim has passed is cleared and
// yields ErrSessionExpired.
func (s *authService) Current() (*models.Session, error) {
	sess, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if !sess.Valid() {
		if sess != nil {
			_ = s.store.Clear()
		}
		return nil, ErrNotLoggedIn
	}
	if exp, ok := TokenExpiry(sess.Token); ok && !s.now().Before(exp) {
		_ = s.Expire()
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Expire force-logs-out after the backend rejected the session.
func (s *authService) Expire() error {
	sess, _ := s.store.Load()
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clearing expired session: %w", err)
	}
	data := map[string]any{}
	if sess != nil {
		data["user_id"] = sess.User.ID
	}
	s.logEvent(EventSessionExpired, data)
	return nil
}

func (s *authService) logEvent(eventType string, data map[string]any) {
	if s.events != nil {
		_ = s.events.LogEvent(eventType, data)
	}
}

// TokenExpiry reads the exp claim of a JWT bearer token without verifying
// its signature. Opaque tokens and JWTs without exp report ok=false.
func TokenExpiry(token string) (time.Time, bool) {
	if strings.Count(token, ".") != 2 {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
