// Package courierrepo reads couriers from the user directory table. Users are
// created and managed by the login service; this package only maps their rows
// to courier.Courier.
package courierrepo

import (
	"deliverytracker/internal/core/domain/model/courier"
	"deliverytracker/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// UserDTO is the part of a users row the delivery tracker reads.
type UserDTO struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"type:varchar(255);not null"`
	Role string    `gorm:"type:varchar(16);not null;index"`
}

func (UserDTO) TableName() string {
	return "users"
}

func fromDomain(c *courier.Courier) UserDTO {
	return UserDTO{
		ID:   c.ID().Bytes(),
		Name: c.Name(),
		Role: c.Role().String(),
	}
}

func toDomain(dto UserDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	role, err := kernel.ParseRole(dto.Role)
	if err != nil {
		return nil, err
	}

	return courier.RestoreCourier(id, dto.Name, role)
}
