package models

import "time"

// User is the account identity returned by the backend on login or signup.
type User struct {
	ID    int64  `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// AuthResult is the backend's response to a successful login or signup.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Session is the locally cached authentication token and user identity. It
// is passed explicitly to every backend call.
type Session struct {
	Token      string    `yaml:"token"`
	User       User      `yaml:"user"`
	LoggedInAt time.Time `yaml:"logged_in_at"`
}

// Valid reports whether the session carries a token and a user id.
func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.User.ID != 0
}
