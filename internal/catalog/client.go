// Package catalog is the HTTP client for the upstream catalog service.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/RSO-bookstore/bookstore-cart/internal/config"
)

// ErrUnavailable marks any failure to fetch a book from the catalog:
// transport errors, timeouts and non-200 responses alike. Handlers map it
// to a 502 instead of letting the request die.
var ErrUnavailable = errors.New("catalog unavailable")

// Book is fetched from the catalog, never stored locally.
type Book struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Genre         string  `json:"genre"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	StockQuantity int64   `json:"stock_quantity"`
}

type Client struct {
	cfg  *config.Provider
	http *http.Client
}

// NewClient builds a catalog client. The base URL is read from the config
// provider on every call, so reloads take effect without restarting.
func NewClient(cfg *config.Provider) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 5 * time.Second},
	}
}

// GetBook fetches one book by id, forwarding the request correlation id in
// the rid header.
func (c *Client) GetBook(ctx context.Context, rid string, bookID int64) (Book, error) {
	url := fmt.Sprintf("%s/books/%d", c.cfg.Current().CatalogURL(), bookID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Book{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("rid", rid)

	resp, err := c.http.Do(req)
	if err != nil {
		return Book{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Book{}, fmt.Errorf("%w: GET %s returned %d", ErrUnavailable, url, resp.StatusCode)
	}

	var book Book
	if err := json.NewDecoder(resp.Body).Decode(&book); err != nil {
		return Book{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return book, nil
}
