// Package cartview joins cart rows with catalog lookups to produce the
// priced views returned by the cart and order endpoints.
package cartview

import (
	"context"
	"fmt"

	"github.com/RSO-bookstore/bookstore-cart/internal/catalog"
	"github.com/RSO-bookstore/bookstore-cart/internal/store"
)

// BookFetcher is what the builder needs from the catalog client.
type BookFetcher interface {
	GetBook(ctx context.Context, rid string, bookID int64) (catalog.Book, error)
}

// Item is a cart line annotated with its fetched book.
type Item struct {
	ID       int64        `json:"id"`
	UserID   int64        `json:"user_id"`
	Quantity int64        `json:"quantity"`
	Book     catalog.Book `json:"book"`
}

// PricedLine adds the line price, quantity times unit price.
type PricedLine struct {
	Item
	Price float64 `json:"price"`
}

// PricedCart is a user's cart with its total.
type PricedCart struct {
	Cart  []PricedLine `json:"cart"`
	Price float64      `json:"price"`
}

// PricedOrder is an order re-priced against the user's current cart.
type PricedOrder struct {
	store.Order
	Price float64      `json:"price"`
	Cart  []PricedLine `json:"cart"`
}

type Builder struct {
	carts store.CartRepository
	books BookFetcher
}

func NewBuilder(carts store.CartRepository, books BookFetcher) *Builder {
	return &Builder{carts: carts, books: books}
}

// AllLines returns every cart line with its book, fetched one by one from
// the catalog.
func (b *Builder) AllLines(ctx context.Context, rid string) ([]Item, error) {
	lines, err := b.carts.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		book, err := b.books.GetBook(ctx, rid, l.BookID)
		if err != nil {
			return nil, fmt.Errorf("book %d: %w", l.BookID, err)
		}
		items = append(items, Item{ID: l.ID, UserID: l.UserID, Quantity: l.Quantity, Book: book})
	}
	return items, nil
}

// UserCart returns a user's priced cart. An empty cart yields an empty
// line list and a total of zero, not an error.
func (b *Builder) UserCart(ctx context.Context, rid string, userID int64) (PricedCart, error) {
	lines, err := b.carts.ListForUser(ctx, userID)
	if err != nil {
		return PricedCart{}, err
	}

	view := PricedCart{Cart: make([]PricedLine, 0, len(lines))}
	for _, l := range lines {
		book, err := b.books.GetBook(ctx, rid, l.BookID)
		if err != nil {
			return PricedCart{}, fmt.Errorf("book %d: %w", l.BookID, err)
		}
		price := float64(l.Quantity) * book.Price
		view.Cart = append(view.Cart, PricedLine{
			Item:  Item{ID: l.ID, UserID: l.UserID, Quantity: l.Quantity, Book: book},
			Price: price,
		})
		view.Price += price
	}
	return view, nil
}

// PricedOrders re-prices each order against its user's current cart. The
// displayed price can therefore change after creation if the cart does.
func (b *Builder) PricedOrders(ctx context.Context, rid string, orders []store.Order) ([]PricedOrder, error) {
	out := make([]PricedOrder, 0, len(orders))
	for _, o := range orders {
		cart, err := b.UserCart(ctx, rid, o.UserID)
		if err != nil {
			return nil, err
		}
		out = append(out, PricedOrder{Order: o, Price: cart.Price, Cart: cart.Cart})
	}
	return out, nil
}
