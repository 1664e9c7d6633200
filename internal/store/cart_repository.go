// Cart line operations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

type CartRepository interface {
	ListAll(ctx context.Context) ([]CartLine, error)
	ListForUser(ctx context.Context, userID int64) ([]CartLine, error)
	// AddItem increments the existing (user, book) line by qty, or creates
	// it with exactly qty.
	AddItem(ctx context.Context, userID, bookID, qty int64) (CartLine, error)
	// RemoveOne decrements the matching line by one unit, deleting it when
	// the quantity reaches zero. An absent line is a successful no-op and
	// returns nil.
	RemoveOne(ctx context.Context, userID, bookID int64) (*CartLine, error)
}

type cartRepo struct{ db *sql.DB }

func NewCartRepository(db *sql.DB) CartRepository { return &cartRepo{db: db} }

func (r *cartRepo) ListAll(ctx context.Context) ([]CartLine, error) {
	return r.list(ctx, `SELECT id, user_id, book_id, quantity FROM cart`)
}

func (r *cartRepo) ListForUser(ctx context.Context, userID int64) ([]CartLine, error) {
	return r.list(ctx, `SELECT id, user_id, book_id, quantity FROM cart WHERE user_id=?`, userID)
}

func (r *cartRepo) list(ctx context.Context, query string, args ...any) ([]CartLine, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}
	defer rows.Close()

	var lines []CartLine
	for rows.Next() {
		var l CartLine
		if err := rows.Scan(&l.ID, &l.UserID, &l.BookID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *cartRepo) get(ctx context.Context, userID, bookID int64) (CartLine, error) {
	var l CartLine
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, book_id, quantity FROM cart WHERE user_id=? AND book_id=?`,
		userID, bookID).
		Scan(&l.ID, &l.UserID, &l.BookID, &l.Quantity)
	if err == sql.ErrNoRows {
		return CartLine{}, ErrNotFound
	}
	if err != nil {
		return CartLine{}, fmt.Errorf("query cart line: %w", err)
	}
	return l, nil
}

func (r *cartRepo) AddItem(ctx context.Context, userID, bookID, qty int64) (CartLine, error) {
	line, err := r.get(ctx, userID, bookID)
	switch {
	case err == nil:
		line.Quantity += qty
		if _, err := r.db.ExecContext(ctx,
			`UPDATE cart SET quantity=? WHERE id=?`, line.Quantity, line.ID); err != nil {
			return CartLine{}, fmt.Errorf("update cart line: %w", err)
		}
		return line, nil

	case errors.Is(err, ErrNotFound):
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO cart(user_id, book_id, quantity) VALUES (?, ?, ?)`,
			userID, bookID, qty)
		if err != nil {
			return CartLine{}, fmt.Errorf("insert cart line: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return CartLine{}, err
		}
		return CartLine{ID: id, UserID: userID, BookID: bookID, Quantity: qty}, nil

	default:
		return CartLine{}, err
	}
}

func (r *cartRepo) RemoveOne(ctx context.Context, userID, bookID int64) (*CartLine, error) {
	line, err := r.get(ctx, userID, bookID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	line.Quantity--
	if line.Quantity <= 0 {
		line.Quantity = 0
		if _, err := r.db.ExecContext(ctx, `DELETE FROM cart WHERE id=?`, line.ID); err != nil {
			return nil, fmt.Errorf("delete cart line: %w", err)
		}
		return &line, nil
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE cart SET quantity=? WHERE id=?`, line.Quantity, line.ID); err != nil {
		return nil, fmt.Errorf("update cart line: %w", err)
	}
	return &line, nil
}
