package store

// CartLine is one (user, book, quantity) record. Quantity is always > 0 in
// the store; a line decremented to zero is deleted instead.
type CartLine struct {
	ID       int64 `json:"id"`
	UserID   int64 `json:"user_id"`
	BookID   int64 `json:"book_id"`
	Quantity int64 `json:"quantity"`
}

// Order holds the shipping fields captured at creation time. Pricing is
// derived later by re-joining against the user's current cart.
type Order struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	PostCode int64  `json:"post_code"`
	Address  string `json:"address"`
	City     string `json:"city"`
}
