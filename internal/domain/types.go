package domain

import "time"

// Identity is the authenticated caller. It is resolved once per request by
// the auth middleware and passed explicitly to services and the workflow.
type Identity struct {
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// Authenticated reports whether the identity belongs to a signed-in user.
func (i Identity) Authenticated() bool {
	return i.UserID > 0
}

// RequireIdentity returns ErrUnauthenticated for an anonymous identity.
func RequireIdentity(id Identity) error {
	if !id.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}
