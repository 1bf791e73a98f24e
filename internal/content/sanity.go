package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/Domenick1991/ticketmail/internal/domain"
	"github.com/sirupsen/logrus"
)

// BookingDetailsQuery selects the buyer and show of a booking together with any discount applied.
const BookingDetailsQuery = `*[_type == "booking" && _id == $bookingId]{
  name,
  email,
  "date": show->date,
  "show": show._ref,
  discount->{ code, percentage }
}`

type BookingSource interface {
	QueryBookingDetails(ctx context.Context, bookingID string) ([]domain.BookingDetails, error)
}

type SanityOptions struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool
	// BaseURL overrides the project host, mainly for tests.
	BaseURL string
}

// SanityClient runs GROQ queries against the content backend's HTTP query API.
type SanityClient struct {
	opts   SanityOptions
	hc     *http.Client
	logger *logrus.Logger
}

func NewSanityClient(opts SanityOptions, hc *http.Client, logger *logrus.Logger) *SanityClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &SanityClient{opts: opts, hc: hc, logger: logger}
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

type queryError struct {
	Error struct {
		Description string `json:"description"`
	} `json:"error"`
}

// Query runs a GROQ query with the given parameters and decodes its result into dst.
func (c *SanityClient) Query(ctx context.Context, query string, params map[string]any, dst any) error {
	endpoint, err := c.queryURL(query, params)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build query request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Error("content query failed")
		return fmt.Errorf("content query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read query response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var qe queryError
		if json.Unmarshal(body, &qe) == nil && qe.Error.Description != "" {
			return fmt.Errorf("content query: status %d: %s", resp.StatusCode, qe.Error.Description)
		}
		return fmt.Errorf("content query: status %d: %s", resp.StatusCode, string(body))
	}

	var qr queryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return fmt.Errorf("decode query response: %w", err)
	}
	if len(qr.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(qr.Result, dst); err != nil {
		return fmt.Errorf("decode query result: %w", err)
	}
	return nil
}

func (c *SanityClient) QueryBookingDetails(ctx context.Context, bookingID string) ([]domain.BookingDetails, error) {
	var details []domain.BookingDetails
	if err := c.Query(ctx, BookingDetailsQuery, map[string]any{"bookingId": bookingID}, &details); err != nil {
		return nil, err
	}
	return details, nil
}

func (c *SanityClient) queryURL(query string, params map[string]any) (string, error) {
	base := c.opts.BaseURL
	if base == "" {
		host := "api.sanity.io"
		if c.opts.UseCDN {
			host = "apicdn.sanity.io"
		}
		base = fmt.Sprintf("https://%s.%s", c.opts.ProjectID, host)
	}

	values := url.Values{}
	values.Set("query", query)
	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("encode query param %s: %w", name, err)
		}
		values.Set("$"+name, string(encoded))
	}
	return fmt.Sprintf("%s/v%s/data/query/%s?%s", base, c.opts.APIVersion, url.PathEscape(c.opts.Dataset), values.Encode()), nil
}

var _ BookingSource = (*SanityClient)(nil)
