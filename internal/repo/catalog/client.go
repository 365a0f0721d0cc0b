package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/nguyentranbao-ct/swipe-preview/internal/config"
	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
	"github.com/nguyentranbao-ct/swipe-preview/pkg/util"
)

// ErrNotConfigured is returned when no catalog base url is set.
var ErrNotConfigured = errors.New("catalog base url is not configured")

// ProductsResponse is the payload of the host catalog's product endpoints.
type ProductsResponse struct {
	Products []models.Product `json:"products"`
}

// Client fetches product snapshots from the host catalog.
type Client interface {
	ListProducts(ctx context.Context, feed models.Feed) ([]models.Product, error)
}

type client struct {
	http    *resty.Client
	baseURL string
}

func NewClient(cfg *config.Config) Client {
	return &client{
		http:    util.NewRestyClient(cfg.Catalog.Timeout),
		baseURL: strings.TrimRight(cfg.Catalog.BaseURL, "/"),
	}
}

func (c *client) ListProducts(ctx context.Context, feed models.Feed) ([]models.Product, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	if !feed.Valid() {
		return nil, fmt.Errorf("unknown feed %q", feed)
	}

	var body ProductsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		Get(c.baseURL + "/products/" + url.PathEscape(string(feed)))
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode())
	}

	return models.Identified(body.Products), nil
}
