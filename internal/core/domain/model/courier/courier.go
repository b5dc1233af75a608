package courier

import (
	"errors"
	"fmt"
	"strings"

	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/errs"
	"deliverytracker/internal/pkg/guard"
)

// Domain errors for courier operations.
var (
	// ErrNameIsRequired is returned when a user has no name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")
)

// Courier is a user of the directory as seen by the delivery tracker. Users are
// owned by an external directory, so the aggregate is read-only reference data:
// the lifecycle engine resolves the name it denormalizes onto a delivery and
// checks that the target of an assignment really is a courier.
//
// Business rules:
//   - Must have a valid UUID, a non-empty name and a known role
//   - Only users with the courier role can receive deliveries
type Courier struct {
	// id uniquely identifies the user
	id kernel.UUID
	// name is shown on deliveries assigned to the courier
	name string
	// role is the directory role (admin, courier or seller)
	role kernel.Role
	// guard ensures the courier was properly constructed
	guard guard.ConstructorGuard
}

// NewCourier creates a Courier after validating every field. Errors are joined.
//
// Example:
//
//	c, err := courier.NewCourier(kernel.NewUUID(), "Maria", kernel.RoleCourier)
func NewCourier(id kernel.UUID, name string, role kernel.Role) (*Courier, error) {
	c := &Courier{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setRole(role),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// RestoreCourier rebuilds a Courier read from the user directory.
func RestoreCourier(id kernel.UUID, name string, role kernel.Role) (*Courier, error) {
	return NewCourier(id, name, role)
}

func (c *Courier) IsEqual(other *Courier) bool {
	return other != nil && c.id.IsEqual(other.id)
}

// Validate returns ErrCourierIsNotConstructed if c was not built by a constructor.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

func (c *Courier) ID() kernel.UUID {
	return c.id
}

func (c *Courier) Name() string {
	return c.name
}

func (c *Courier) Role() kernel.Role {
	return c.role
}

// EnsureCanReceiveDeliveries fails with *errs.ValueIsInvalidError unless the user
// has the courier role.
func (c *Courier) EnsureCanReceiveDeliveries() error {
	if c.role != kernel.RoleCourier {
		return errs.NewValueIsInvalidErrorWithCause(
			"courier",
			fmt.Errorf("user %s has role %s and cannot receive deliveries", c.id, c.role),
		)
	}
	return nil
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Courier) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}

func (c *Courier) setRole(role kernel.Role) error {
	if err := role.Validate(); err != nil {
		return err
	}
	c.role = role
	return nil
}
