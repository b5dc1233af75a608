package kernel

import (
	"fmt"
	"strings"

	"deliverytracker/internal/pkg/errs"
)

// Role is the access level of a user in the directory.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCourier Role = "courier"
	RoleSeller  Role = "seller"
)

func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if err := role.Validate(); err != nil {
		return "", err
	}
	return role, nil
}

func (r Role) Validate() error {
	switch r {
	case RoleAdmin, RoleCourier, RoleSeller:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", string(r)))
	}
}

func (r Role) String() string {
	return string(r)
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	userID UUID
	role   Role
}

func NewActor(userID UUID, role Role) (Actor, error) {
	if err := userID.Validate(); err != nil {
		return Actor{}, err
	}
	if err := role.Validate(); err != nil {
		return Actor{}, err
	}
	return Actor{userID: userID, role: role}, nil
}

func (a Actor) UserID() UUID {
	return a.userID
}

func (a Actor) Role() Role {
	return a.role
}

func (a Actor) IsAdmin() bool {
	return a.role == RoleAdmin
}

// Validate reports an actor that was never authenticated.
func (a Actor) Validate() error {
	if a.userID.Validate() != nil || a.role.Validate() != nil {
		return errs.NewUnauthenticatedError("no authenticated actor")
	}
	return nil
}

// RequireAdmin fails with an access error unless the actor is an administrator.
func (a Actor) RequireAdmin(action string) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if !a.IsAdmin() {
		return errs.NewUnauthorizedError(a.role.String(), action)
	}
	return nil
}
