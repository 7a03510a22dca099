package membership

import "fmt"

// Actor identifies a human or service user. Actors are created by the
// external user-management collaborator and are read-only to this core.
type Actor struct {
	id       uint
	username string
	admin    bool
}

// NewActor creates an actor identity.
func NewActor(id uint, username string, admin bool) (*Actor, error) {
	if id == 0 {
		return nil, fmt.Errorf("actor ID cannot be zero")
	}
	if username == "" {
		return nil, fmt.Errorf("actor username is required")
	}
	return &Actor{
		id:       id,
		username: username,
		admin:    admin,
	}, nil
}

// ID returns the actor ID
func (a *Actor) ID() uint {
	return a.id
}

// Username returns the actor username
func (a *Actor) Username() string {
	return a.username
}

// IsAdmin reports whether the actor carries the global admin flag. Admins
// bypass role checks entirely.
func (a *Actor) IsAdmin() bool {
	return a.admin
}
