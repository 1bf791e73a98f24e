package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var ErrBookingNotFound = errors.New("booking not found")

// BookingRequest is the body posted by the checkout flow once a booking is paid.
type BookingRequest struct {
	BookingID string   `json:"bookingId" binding:"required"`
	Tickets   []Ticket `json:"tickets" binding:"required"`
}

// Ticket is owned by the shared schema. Fields holds the decoded object as received and is
// what gets encoded again; the named fields are string views of the keys the emails read.
type Ticket struct {
	ID      string
	Section string
	Row     string
	Seat    string
	Tier    string
	Fields  map[string]any
}

func (t *Ticket) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return fmt.Errorf("ticket: %w", err)
	}
	if fields == nil {
		return nil
	}

	*t = Ticket{
		ID:      scalarString(fields["_key"]),
		Section: scalarString(fields["section"]),
		Row:     scalarString(fields["row"]),
		Seat:    scalarString(fields["seat"]),
		Tier:    scalarString(fields["tier"]),
		Fields:  fields,
	}
	return nil
}

func (t Ticket) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.Fields)+5)
	for k, v := range t.Fields {
		out[k] = v
	}
	for key, value := range map[string]string{
		"_key":    t.ID,
		"section": t.Section,
		"row":     t.Row,
		"seat":    t.Seat,
		"tier":    t.Tier,
	} {
		if _, ok := out[key]; !ok && value != "" {
			out[key] = value
		}
	}
	return json.Marshal(out)
}

// scalarString renders strings, numbers and booleans; anything else reads as empty.
func scalarString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

type Discount struct {
	Code       string  `json:"code"`
	Percentage float64 `json:"percentage"`
}

type BookingDetails struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Date     time.Time `json:"date"`
	Show     string    `json:"show"`
	Discount *Discount `json:"discount,omitempty"`
}
