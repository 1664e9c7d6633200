package cartview

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RSO-bookstore/bookstore-cart/internal/catalog"
	"github.com/RSO-bookstore/bookstore-cart/internal/store"
)

type fakeCatalog struct {
	books   map[int64]catalog.Book
	lastRID string
}

func (f *fakeCatalog) GetBook(_ context.Context, rid string, bookID int64) (catalog.Book, error) {
	f.lastRID = rid
	book, ok := f.books[bookID]
	if !ok {
		return catalog.Book{}, fmt.Errorf("%w: book %d", catalog.ErrUnavailable, bookID)
	}
	return book, nil
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(context.Background(), db))
	return db
}

func twoBookCatalog() *fakeCatalog {
	return &fakeCatalog{books: map[int64]catalog.Book{
		1: {ID: 1, Title: "Dune", Price: 10},
		2: {ID: 2, Title: "Neuromancer", Price: 20},
	}}
}

func TestUserCartTotal(t *testing.T) {
	carts := store.NewCartRepository(openTestDB(t))
	ctx := context.Background()

	_, err := carts.AddItem(ctx, 1, 1, 2)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, 1, 2, 3)
	require.NoError(t, err)

	books := twoBookCatalog()
	b := NewBuilder(carts, books)

	view, err := b.UserCart(ctx, "rid-1", 1)
	require.NoError(t, err)

	// 2*10 + 3*20
	assert.Equal(t, 80.0, view.Price)
	require.Len(t, view.Cart, 2)
	assert.Equal(t, 20.0, view.Cart[0].Price)
	assert.Equal(t, 60.0, view.Cart[1].Price)
	assert.Equal(t, "Dune", view.Cart[0].Book.Title)
	assert.Equal(t, "rid-1", books.lastRID)
}

func TestUserCartEmpty(t *testing.T) {
	carts := store.NewCartRepository(openTestDB(t))
	b := NewBuilder(carts, twoBookCatalog())

	view, err := b.UserCart(context.Background(), "rid-1", 99)
	require.NoError(t, err)

	assert.Zero(t, view.Price)
	assert.NotNil(t, view.Cart)
	assert.Empty(t, view.Cart)
}

func TestAllLines(t *testing.T) {
	carts := store.NewCartRepository(openTestDB(t))
	ctx := context.Background()

	_, err := carts.AddItem(ctx, 1, 1, 2)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, 5, 2, 1)
	require.NoError(t, err)

	b := NewBuilder(carts, twoBookCatalog())
	items, err := b.AllLines(ctx, "rid-1")
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "Dune", items[0].Book.Title)
	assert.Equal(t, int64(5), items[1].UserID)
}

func TestCatalogFailurePropagates(t *testing.T) {
	carts := store.NewCartRepository(openTestDB(t))
	ctx := context.Background()

	_, err := carts.AddItem(ctx, 1, 7, 1) // book 7 unknown to the catalog
	require.NoError(t, err)

	b := NewBuilder(carts, twoBookCatalog())
	_, err = b.UserCart(ctx, "rid-1", 1)
	require.ErrorIs(t, err, catalog.ErrUnavailable)
}

func TestPricedOrdersRepriceAgainstCurrentCart(t *testing.T) {
	db := openTestDB(t)
	carts := store.NewCartRepository(db)
	orders := store.NewOrderRepository(db)
	ctx := context.Background()

	_, err := carts.AddItem(ctx, 1, 1, 2)
	require.NoError(t, err)
	created, err := orders.Create(ctx, store.Order{UserID: 1, Name: "Ada", Surname: "Lovelace"})
	require.NoError(t, err)

	b := NewBuilder(carts, twoBookCatalog())

	priced, err := b.PricedOrders(ctx, "rid-1", []store.Order{created})
	require.NoError(t, err)
	require.Len(t, priced, 1)
	assert.Equal(t, 20.0, priced[0].Price)

	// The cart changes after creation; the order's displayed price follows.
	_, err = carts.AddItem(ctx, 1, 2, 1)
	require.NoError(t, err)

	priced, err = b.PricedOrders(ctx, "rid-1", []store.Order{created})
	require.NoError(t, err)
	assert.Equal(t, 40.0, priced[0].Price)
}
