package queries

import (
	"context"
	"errors"

	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/errs"
	"deliverytracker/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrGetDeliveryQueryIsNotConstructed = errors.New(
	"GetDeliveryQuery must be created via NewGetDeliveryQuery constructor",
)

type GetDeliveryQuery struct {
	id    kernel.UUID
	guard guard.ConstructorGuard
}

func NewGetDeliveryQuery(id kernel.UUID) (GetDeliveryQuery, error) {
	if err := id.Validate(); err != nil {
		return GetDeliveryQuery{}, err
	}
	return GetDeliveryQuery{id: id, guard: guard.NewConstructorGuard()}, nil
}

func (q GetDeliveryQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryQueryIsNotConstructed)
}

func (q GetDeliveryQuery) ID() kernel.UUID {
	return q.id
}

// GetDeliveryQueryHandler reads one delivery. An unknown id yields
// *errs.ObjectNotFoundError.
type GetDeliveryQueryHandler struct {
	db *gorm.DB
}

func NewGetDeliveryQueryHandler(db *gorm.DB) GetDeliveryQueryHandler {
	return GetDeliveryQueryHandler{db: db}
}

func (h GetDeliveryQueryHandler) Handle(ctx context.Context, query GetDeliveryQuery) (DeliveryView, error) {
	if err := query.Validate(); err != nil {
		return DeliveryView{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
	SELECT`+deliveryColumns+`
	FROM deliveries
	WHERE id = ?
	`, query.ID().Bytes()).Rows()
	if err != nil {
		return DeliveryView{}, err
	}
	defer rows.Close()

	views, err := scanDeliveries(rows)
	if err != nil {
		return DeliveryView{}, err
	}
	if len(views) == 0 {
		return DeliveryView{}, errs.NewObjectNotFoundError("delivery", query.ID().String())
	}

	return views[0], nil
}
