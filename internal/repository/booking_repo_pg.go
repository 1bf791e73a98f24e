package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/ticketmail/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingDetailsSQL = `SELECT b.name, b.email, s.starts_at, b.show_id, d.code, d.percentage
	FROM bookings b
	JOIN shows s ON s.id = b.show_id
	LEFT JOIN discounts d ON d.id = b.discount_id
	WHERE b.id = $1`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PGBookingDetailsRepository reads booking details from a Postgres mirror of the content backend.
type PGBookingDetailsRepository struct {
	db querier
}

func NewBookingDetailsRepository(db *pgxpool.Pool) *PGBookingDetailsRepository {
	return &PGBookingDetailsRepository{db: db}
}

func (r *PGBookingDetailsRepository) QueryBookingDetails(ctx context.Context, bookingID string) ([]domain.BookingDetails, error) {
	rows, err := r.db.Query(ctx, bookingDetailsSQL, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]domain.BookingDetails, 0, 1)
	for rows.Next() {
		var (
			d            domain.BookingDetails
			date         time.Time
			discountCode *string
			discountPct  *float64
		)
		if err := rows.Scan(&d.Name, &d.Email, &date, &d.Show, &discountCode, &discountPct); err != nil {
			return nil, err
		}
		d.Date = date
		if discountCode != nil {
			d.Discount = &domain.Discount{Code: *discountCode}
			if discountPct != nil {
				d.Discount.Percentage = *discountPct
			}
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
