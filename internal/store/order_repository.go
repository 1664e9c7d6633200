// Order row operations.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

type OrderRepository interface {
	ListAll(ctx context.Context) ([]Order, error)
	ListForUser(ctx context.Context, userID int64) ([]Order, error)
	Get(ctx context.Context, orderID int64) (Order, error)
	Create(ctx context.Context, o Order) (Order, error)
	// Update replaces all shipping fields of an existing order.
	Update(ctx context.Context, orderID int64, o Order) (Order, error)
	// Delete is idempotent: deleting an absent order succeeds.
	Delete(ctx context.Context, orderID int64) error
}

type orderRepo struct{ db *sql.DB }

func NewOrderRepository(db *sql.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT id, user_id, name, surname, post_code, address, city FROM orders`)
}

func (r *orderRepo) ListForUser(ctx context.Context, userID int64) ([]Order, error) {
	return r.list(ctx,
		`SELECT id, user_id, name, surname, post_code, address, city FROM orders WHERE user_id=?`,
		userID)
}

func (r *orderRepo) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Name, &o.Surname, &o.PostCode, &o.Address, &o.City); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *orderRepo) Get(ctx context.Context, orderID int64) (Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, surname, post_code, address, city FROM orders WHERE id=?`,
		orderID).
		Scan(&o.ID, &o.UserID, &o.Name, &o.Surname, &o.PostCode, &o.Address, &o.City)
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("query order: %w", err)
	}
	return o, nil
}

func (r *orderRepo) Create(ctx context.Context, o Order) (Order, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO orders(user_id, name, surname, post_code, address, city) VALUES (?, ?, ?, ?, ?, ?)`,
		o.UserID, o.Name, o.Surname, o.PostCode, o.Address, o.City)
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	o.ID, err = res.LastInsertId()
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *orderRepo) Update(ctx context.Context, orderID int64, o Order) (Order, error) {
	existing, err := r.Get(ctx, orderID)
	if err != nil {
		return Order{}, err
	}

	existing.Name = o.Name
	existing.Surname = o.Surname
	existing.PostCode = o.PostCode
	existing.Address = o.Address
	existing.City = o.City

	if _, err := r.db.ExecContext(ctx,
		`UPDATE orders SET name=?, surname=?, post_code=?, address=?, city=? WHERE id=?`,
		existing.Name, existing.Surname, existing.PostCode, existing.Address, existing.City, orderID); err != nil {
		return Order{}, fmt.Errorf("update order: %w", err)
	}
	return existing, nil
}

func (r *orderRepo) Delete(ctx context.Context, orderID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id=?`, orderID); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}
