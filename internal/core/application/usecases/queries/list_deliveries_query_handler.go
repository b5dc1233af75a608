package queries

import (
	"context"
	"strings"
	"time"

	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/services"

	"gorm.io/gorm"
)

// ListDeliveriesQueryHandler reads the delivery list with plain SQL. The
// statement sticks to syntax shared by PostgreSQL and SQLite.
type ListDeliveriesQueryHandler struct {
	db *gorm.DB
}

func NewListDeliveriesQueryHandler(db *gorm.DB) ListDeliveriesQueryHandler {
	return ListDeliveriesQueryHandler{db: db}
}

// Handle returns one page of deliveries ordered by issue date desc, id desc.
func (h ListDeliveriesQueryHandler) Handle(ctx context.Context, query ListDeliveriesQuery) ([]DeliveryView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	where, args := buildDeliveryFilter(query)

	var sb strings.Builder
	sb.WriteString("SELECT")
	sb.WriteString(deliveryColumns)
	sb.WriteString("\n\tFROM deliveries")
	if len(where) > 0 {
		sb.WriteString("\n\tWHERE ")
		sb.WriteString(strings.Join(where, "\n\t  AND "))
	}
	sb.WriteString("\n\tORDER BY issue_date DESC, id DESC\n\tLIMIT ? OFFSET ?")
	args = append(args, query.Filter().Limit, query.Filter().Offset)

	rows, err := h.db.WithContext(ctx).Raw(sb.String(), args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDeliveries(rows)
}

func buildDeliveryFilter(query ListDeliveriesQuery) ([]string, []any) {
	filter := query.Filter()
	where := make([]string, 0, 6)
	args := make([]any, 0, 6)

	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, statusValue(*filter.Status))
	}

	switch {
	case filter.WithoutCourier:
		where = append(where, "courier_id IS NULL")
	case filter.CourierID != nil:
		where = append(where, "courier_id = ?")
		args = append(args, filter.CourierID.Bytes())
	}

	if filter.IssuedFrom != nil {
		where = append(where, "issue_date >= ?")
		args = append(args, startOfDay(*filter.IssuedFrom))
	}
	if filter.IssuedTo != nil {
		where = append(where, "issue_date < ?")
		args = append(args, startOfDay(*filter.IssuedTo).AddDate(0, 0, 1))
	}

	search := query.Search()
	switch search.Kind {
	case services.SearchTaxID:
		where = append(where, "LTRIM(client_tax_id, '0') = ?")
		args = append(args, search.Value)
	case services.SearchInvoiceNumber:
		where = append(where, "invoice_number = ?")
		args = append(args, search.Value)
	case services.SearchClientName:
		where = append(where, `LOWER(client_name) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(search.Value)+"%")
	case services.SearchNone:
	}

	return where, args
}

// statusValue is the persisted form of a status.
func statusValue(s delivery.Status) string {
	return strings.ToLower(s.String())
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
