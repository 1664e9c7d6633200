package httpapi

import (
	"net/http"

	"github.com/rs/cors"
)

// NewRouter registers the HTTP routes and wraps them with CORS and the
// correlation/logging middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", app.root)

	mux.HandleFunc("GET /cart", app.listCarts)
	mux.HandleFunc("GET /cart/{user_id}", app.getUserCart)
	mux.HandleFunc("POST /cart/{user_id}", app.addCartItem)
	mux.HandleFunc("DELETE /cart/{user_id}/{book_id}", app.removeCartItem)

	mux.HandleFunc("GET /orders", app.listOrders)
	mux.HandleFunc("GET /orders/{user_id}", app.listUserOrders)
	mux.HandleFunc("POST /orders/{user_id}", app.createOrder)
	mux.HandleFunc("PUT /orders/{order_id}", app.updateOrder)
	mux.HandleFunc("DELETE /orders/{order_id}", app.deleteOrder)

	mux.HandleFunc("GET /health/live", app.healthLive)
	mux.HandleFunc("GET /health/ready", app.healthReady)
	mux.HandleFunc("POST /broken", app.setBroken)

	return app.logRequests(cors.AllowAll().Handler(mux))
}
