package queries

import (
	"errors"
	"fmt"
	"time"

	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/core/domain/services"
	"deliverytracker/internal/pkg/errs"
	"deliverytracker/internal/pkg/guard"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

var ErrListDeliveriesQueryIsNotConstructed = errors.New(
	"ListDeliveriesQuery must be created via NewListDeliveriesQuery constructor",
)

// DeliveryFilter narrows the delivery list. Zero fields do not filter.
type DeliveryFilter struct {
	Status         *delivery.Status
	CourierID      *kernel.UUID
	WithoutCourier bool
	IssuedFrom     *time.Time
	IssuedTo       *time.Time
	Search         string
	Limit          int
	Offset         int
}

// ListDeliveriesQuery lists deliveries newest issue date first.
//
// Example:
//
//	pending := delivery.Pending
//	query, err := NewListDeliveriesQuery(DeliveryFilter{Status: &pending, Search: "acme"})
//	views, err := handler.Handle(ctx, query)
type ListDeliveriesQuery struct {
	filter DeliveryFilter
	search services.Search
	guard  guard.ConstructorGuard
}

func NewListDeliveriesQuery(filter DeliveryFilter) (ListDeliveriesQuery, error) {
	if filter.Status != nil {
		if err := filter.Status.Validate(); err != nil {
			return ListDeliveriesQuery{}, err
		}
	}

	if filter.CourierID != nil {
		if filter.WithoutCourier {
			return ListDeliveriesQuery{}, errs.NewValueIsInvalidErrorWithCause(
				"courier filter", errors.New("courier id and without courier are exclusive"),
			)
		}
		if err := filter.CourierID.Validate(); err != nil {
			return ListDeliveriesQuery{}, err
		}
	}

	if filter.IssuedFrom != nil && filter.IssuedTo != nil && filter.IssuedTo.Before(*filter.IssuedFrom) {
		return ListDeliveriesQuery{}, errs.NewValueIsInvalidErrorWithCause(
			"issue date range",
			fmt.Errorf("%s is before %s", filter.IssuedTo.Format(time.DateOnly), filter.IssuedFrom.Format(time.DateOnly)),
		)
	}

	if filter.Limit == 0 {
		filter.Limit = DefaultPageSize
	}
	if filter.Limit < 1 || filter.Limit > MaxPageSize {
		return ListDeliveriesQuery{}, errs.NewValueIsOutOfRangeError("limit", filter.Limit, 1, MaxPageSize)
	}
	if filter.Offset < 0 {
		return ListDeliveriesQuery{}, errs.NewValueIsOutOfRangeError("offset", filter.Offset, 0, "unbounded")
	}

	return ListDeliveriesQuery{
		filter: filter,
		search: services.ClassifySearch(filter.Search),
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (q ListDeliveriesQuery) Validate() error {
	return q.guard.Validate(ErrListDeliveriesQueryIsNotConstructed)
}

func (q ListDeliveriesQuery) Filter() DeliveryFilter {
	return q.filter
}

// Search returns how the free-text part of the filter is matched.
func (q ListDeliveriesQuery) Search() services.Search {
	return q.search
}
