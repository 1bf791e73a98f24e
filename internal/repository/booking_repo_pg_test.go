package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Domenick1991/ticketmail/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	called := m.Called(ctx, sql, args)
	if called.Get(0) == nil {
		return nil, called.Error(1)
	}
	return called.Get(0).(pgx.Rows), called.Error(1)
}

func TestNewBookingDetailsRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewBookingDetailsRepository(pool)
	assert.NotNil(t, repo)
}

func TestQueryBookingDetails_QueryError(t *testing.T) {
	db := &mockQuerier{}
	ctx := context.Background()
	db.On("Query", ctx, bookingDetailsSQL, []any{"b1"}).Return(nil, errors.New("connection refused")).Once()

	repo := &PGBookingDetailsRepository{db: db}
	details, err := repo.QueryBookingDetails(ctx, "b1")

	assert.Nil(t, details)
	assert.EqualError(t, err, "connection refused")
	db.AssertExpectations(t)
}

type fakeRows struct {
	rows [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.rows[r.pos-1], nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *time.Time:
			*p = row[i].(time.Time)
		case **string:
			if row[i] != nil {
				v := row[i].(string)
				*p = &v
			}
		case **float64:
			if row[i] != nil {
				v := row[i].(float64)
				*p = &v
			}
		default:
			return fmt.Errorf("unsupported scan target %T", d)
		}
	}
	return nil
}

func TestQueryBookingDetails_ScansRows(t *testing.T) {
	db := &mockQuerier{}
	ctx := context.Background()
	date := time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC)
	rows := &fakeRows{rows: [][]any{
		{`Anna Maria Lee "Max"`, "a@x.com", date, "s1", "FRIENDS", 10.0},
		{"Bob", "b@x.com", date, "s1", nil, nil},
	}}
	db.On("Query", ctx, bookingDetailsSQL, []any{"b1"}).Return(rows, nil).Once()

	repo := &PGBookingDetailsRepository{db: db}
	details, err := repo.QueryBookingDetails(ctx, "b1")

	assert.NoError(t, err)
	assert.Equal(t, []domain.BookingDetails{
		{
			Name:     `Anna Maria Lee "Max"`,
			Email:    "a@x.com",
			Date:     date,
			Show:     "s1",
			Discount: &domain.Discount{Code: "FRIENDS", Percentage: 10},
		},
		{Name: "Bob", Email: "b@x.com", Date: date, Show: "s1"},
	}, details)
	db.AssertExpectations(t)
}

func TestQueryBookingDetails_NoRows(t *testing.T) {
	db := &mockQuerier{}
	ctx := context.Background()
	db.On("Query", ctx, bookingDetailsSQL, []any{"missing"}).Return(&fakeRows{}, nil).Once()

	repo := &PGBookingDetailsRepository{db: db}
	details, err := repo.QueryBookingDetails(ctx, "missing")

	assert.NoError(t, err)
	assert.Empty(t, details)
}
