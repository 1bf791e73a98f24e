package content

import (
	"context"
	"fmt"

	"github.com/Domenick1991/ticketmail/internal/domain"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Fetcher loads the site configuration and a booking side by side.
type Fetcher struct {
	config   ConfigSource
	bookings BookingSource
	logger   *logrus.Logger
}

func NewFetcher(config ConfigSource, bookings BookingSource, logger *logrus.Logger) *Fetcher {
	return &Fetcher{config: config, bookings: bookings, logger: logger}
}

// Fetch fails as a whole when either lookup fails or the booking has no record.
func (f *Fetcher) Fetch(ctx context.Context, bookingID string) (domain.Configuration, domain.BookingDetails, error) {
	var (
		cfg     domain.Configuration
		records []domain.BookingDetails
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cfg, err = f.config.FetchConfiguration(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = f.bookings.QueryBookingDetails(gctx, bookingID)
		if err != nil {
			return fmt.Errorf("query booking %s: %w", bookingID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Configuration{}, domain.BookingDetails{}, err
	}

	if len(records) == 0 {
		return domain.Configuration{}, domain.BookingDetails{}, fmt.Errorf("booking %s: %w", bookingID, domain.ErrBookingNotFound)
	}
	if len(records) > 1 {
		f.logger.WithContext(ctx).WithFields(logrus.Fields{
			"booking_id": bookingID,
			"records":    len(records),
		}).Warn("booking query matched more than one record, using the first")
	}
	return cfg, records[0], nil
}
