package user

import (
	"errors"
	"strings"
)

// Actor identifies who performs a mutating operation. Status updates and
// rating submissions carry an explicit actor rather than reading identity
// from ambient state.
type Actor struct {
	ID   string
	Role Role
}

var ErrActorRequired = errors.New("actor id and a valid role are required")

// NewActor validates and builds an Actor.
func NewActor(id string, role Role) (Actor, error) {
	if id = strings.TrimSpace(id); id == "" || !role.Valid() {
		return Actor{}, ErrActorRequired
	}
	return Actor{ID: id, Role: role}, nil
}
