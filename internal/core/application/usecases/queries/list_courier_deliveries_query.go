package queries

import (
	"context"
	"errors"
	"time"

	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/errs"
	"deliverytracker/internal/pkg/guard"

	"gorm.io/gorm"
)

// RecentlyDeliveredWindow is how long a completed delivery stays on the
// courier's own list.
const RecentlyDeliveredWindow = 12 * time.Hour

var ErrListCourierDeliveriesQueryIsNotConstructed = errors.New(
	"ListCourierDeliveriesQuery must be created via NewListCourierDeliveriesQuery constructor",
)

// ListCourierDeliveriesQuery is the work list of the calling courier: every
// pending delivery assigned to them and the ones they completed recently.
type ListCourierDeliveriesQuery struct {
	actor kernel.Actor
	now   time.Time
	guard guard.ConstructorGuard
}

func NewListCourierDeliveriesQuery(actor kernel.Actor, now time.Time) (ListCourierDeliveriesQuery, error) {
	if err := actor.Validate(); err != nil {
		return ListCourierDeliveriesQuery{}, err
	}
	if actor.Role() != kernel.RoleCourier {
		return ListCourierDeliveriesQuery{}, errs.NewUnauthorizedError(actor.Role().String(), "list own deliveries")
	}
	if now.IsZero() {
		return ListCourierDeliveriesQuery{}, errs.NewValueIsRequiredError("now")
	}

	return ListCourierDeliveriesQuery{
		actor: actor,
		now:   now.UTC(),
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (q ListCourierDeliveriesQuery) Validate() error {
	return q.guard.Validate(ErrListCourierDeliveriesQueryIsNotConstructed)
}

func (q ListCourierDeliveriesQuery) CourierID() kernel.UUID {
	return q.actor.UserID()
}

func (q ListCourierDeliveriesQuery) Now() time.Time {
	return q.now
}

type ListCourierDeliveriesQueryHandler struct {
	db *gorm.DB
}

func NewListCourierDeliveriesQueryHandler(db *gorm.DB) ListCourierDeliveriesQueryHandler {
	return ListCourierDeliveriesQueryHandler{db: db}
}

// Handle lists pending deliveries first, then the recently delivered ones, each
// group by issue date desc.
func (h ListCourierDeliveriesQueryHandler) Handle(
	ctx context.Context,
	query ListCourierDeliveriesQuery,
) ([]DeliveryView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
	SELECT`+deliveryColumns+`
	FROM deliveries
	WHERE courier_id = ?
	  AND (status = ? OR (status = ? AND delivered_at >= ?))
	ORDER BY CASE WHEN status = ? THEN 0 ELSE 1 END, issue_date DESC, id DESC
	`,
		query.CourierID().Bytes(),
		pendingValue,
		deliveredValue,
		query.Now().Add(-RecentlyDeliveredWindow),
		pendingValue,
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDeliveries(rows)
}

var (
	pendingValue   = statusValue(delivery.Pending)
	deliveredValue = statusValue(delivery.Delivered)
)
