package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Domenick1991/ticketmail/internal/domain"
	"github.com/sirupsen/logrus"
)

type ConfigSource interface {
	FetchConfiguration(ctx context.Context) (domain.Configuration, error)
}

// ConfigClient reads the site configuration from the sibling /api/config endpoint.
type ConfigClient struct {
	url    string
	hc     *http.Client
	logger *logrus.Logger
}

func NewConfigClient(url string, hc *http.Client, logger *logrus.Logger) *ConfigClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &ConfigClient{url: url, hc: hc, logger: logger}
}

func (c *ConfigClient) FetchConfiguration(ctx context.Context) (domain.Configuration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("build config request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Error("config request failed")
		return domain.Configuration{}, fmt.Errorf("fetch config: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("read config: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.Configuration{}, fmt.Errorf("fetch config: status %d: %s", resp.StatusCode, string(body))
	}

	var cfg domain.Configuration
	if err := json.Unmarshal(body, &cfg); err != nil {
		return domain.Configuration{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

var _ ConfigSource = (*ConfigClient)(nil)
