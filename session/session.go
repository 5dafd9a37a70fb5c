// Package session carries the authenticated identity of the caller. A Session
// is passed explicitly into every service operation; there is no process-wide
// "current user".
package session

import "peer-delivery-api/models"

type Session struct {
	UserID  uint
	Email   string
	IsAdmin bool
}

// FromUser builds the session for a freshly authenticated user.
func FromUser(u *models.User) Session {
	return Session{UserID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}
}

// Authenticated reports whether the session identifies a user.
func (s Session) Authenticated() bool {
	return s.UserID != 0
}

// Require returns ErrUnauthenticated for an empty session.
func (s Session) Require() error {
	if !s.Authenticated() {
		return models.ErrUnauthenticated
	}
	return nil
}

// RequireAdmin returns ErrForbidden unless the session belongs to an administrator.
func (s Session) RequireAdmin() error {
	if err := s.Require(); err != nil {
		return err
	}
	if !s.IsAdmin {
		return models.ErrForbidden
	}
	return nil
}
