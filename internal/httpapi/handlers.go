package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/RSO-bookstore/bookstore-cart/internal/cartview"
	"github.com/RSO-bookstore/bookstore-cart/internal/catalog"
	"github.com/RSO-bookstore/bookstore-cart/internal/config"
	"github.com/RSO-bookstore/bookstore-cart/internal/events"
	"github.com/RSO-bookstore/bookstore-cart/internal/health"
	"github.com/RSO-bookstore/bookstore-cart/internal/store"
)

// EventPublisher is satisfied by events.Publisher. A nil publisher
// disables messaging.
type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}

type App struct {
	cfg    *config.Provider
	carts  store.CartRepository
	orders store.OrderRepository
	views  *cartview.Builder
	health *health.Reporter
	events EventPublisher
}

func NewApp(cfg *config.Provider, carts store.CartRepository, orders store.OrderRepository,
	views *cartview.Builder, reporter *health.Reporter, publisher EventPublisher) *App {
	return &App{
		cfg:    cfg,
		carts:  carts,
		orders: orders,
		views:  views,
		health: reporter,
		events: publisher,
	}
}

type newItem struct {
	BookID   int64 `json:"book_id"`
	Quantity int64 `json:"quantity"`
}

type newOrder struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	PostCode int64  `json:"post_code"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", name+" must be an integer")
		return 0, false
	}
	return id, true
}

func (a *App) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnavailable):
		WriteJSONError(w, http.StatusBadGateway, "catalog_unavailable", err.Error())
	case errors.Is(err, store.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
	default:
		log.Error().Err(err).Msg("request failed")
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func (a *App) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"Hello":    "World",
		"app_name": a.cfg.Current().AppName,
	})
}

func (a *App) listCarts(w http.ResponseWriter, r *http.Request) {
	items, err := a.views.AllLines(r.Context(), RequestID(r.Context()))
	if err != nil {
		a.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *App) getUserCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	view, err := a.views.UserCart(r.Context(), RequestID(r.Context()), userID)
	if err != nil {
		a.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *App) addCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	var item newItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if item.Quantity <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "quantity must be > 0")
		return
	}

	line, err := a.carts.AddItem(r.Context(), userID, item.BookID, item.Quantity)
	if err != nil {
		a.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

func (a *App) removeCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	bookID, ok := pathID(w, r, "book_id")
	if !ok {
		return
	}

	line, err := a.carts.RemoveOne(r.Context(), userID, bookID)
	if err != nil {
		a.respondError(w, err)
		return
	}
	// Absent line: still a success, body is null.
	writeJSON(w, http.StatusOK, line)
}

func (a *App) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := a.orders.ListAll(r.Context())
	if err != nil {
		a.respondError(w, err)
		return
	}
	priced, err := a.views.PricedOrders(r.Context(), RequestID(r.Context()), orders)
	if err != nil {
		a.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, priced)
}

func (a *App) listUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	orders, err := a.orders.ListForUser(r.Context(), userID)
	if err != nil {
		a.respondError(w, err)
		return
	}
	priced, err := a.views.PricedOrders(r.Context(), RequestID(r.Context()), orders)
	if err != nil {
		a.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, priced)
}

func (a *App) createOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	var body newOrder
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	lines, err := a.carts.ListForUser(r.Context(), userID)
	if err != nil {
		a.respondError(w, err)
		return
	}
	if len(lines) == 0 {
		// No order for an empty cart; the repository stays unchanged.
		writeJSON(w, http.StatusOK, nil)
		return
	}

	order, err := a.orders.Create(r.Context(), store.Order{
		UserID:   userID,
		Name:     body.Name,
		Surname:  body.Surname,
		PostCode: body.PostCode,
		Address:  body.Address,
		City:     body.City,
	})
	if err != nil {
		a.respondError(w, err)
		return
	}

	a.publishOrderCreated(r, order)
	writeJSON(w, http.StatusCreated, order)
}

// publishOrderCreated emits order.created with the order's current priced
// total. Publish problems are logged, never surfaced to the client.
func (a *App) publishOrderCreated(r *http.Request, order store.Order) {
	if a.events == nil {
		return
	}
	rid := RequestID(r.Context())

	cart, err := a.views.UserCart(r.Context(), rid, order.UserID)
	if err != nil {
		log.Warn().Err(err).Str("rid", rid).Msg("skipping order.created event, cart pricing failed")
		return
	}
	payload := events.OrderCreatedPayload{
		OrderID: order.ID,
		UserID:  order.UserID,
		Price:   cart.Price,
	}
	if err := a.events.PublishJSON(r.Context(), events.RKOrderCreated, payload); err != nil {
		log.Warn().Err(err).Str("rid", rid).Msg("publish order.created failed")
	}
}

func (a *App) updateOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "order_id")
	if !ok {
		return
	}
	var body newOrder
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	order, err := a.orders.Update(r.Context(), orderID, store.Order{
		Name:     body.Name,
		Surname:  body.Surname,
		PostCode: body.PostCode,
		Address:  body.Address,
		City:     body.City,
	})
	if err != nil {
		a.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (a *App) deleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "order_id")
	if !ok {
		return
	}
	if err := a.orders.Delete(r.Context(), orderID); err != nil {
		a.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type healthStatus struct {
	State string `json:"State"`
}

func (a *App) healthLive(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, a.health.Live(r.Context()))
}

func (a *App) healthReady(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, a.health.Ready())
}

func writeHealth(w http.ResponseWriter, healthy bool) {
	if healthy {
		writeJSON(w, http.StatusOK, healthStatus{State: "UP"})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, healthStatus{State: "DOWN"})
}

func (a *App) setBroken(w http.ResponseWriter, r *http.Request) {
	a.health.MarkBroken()
	w.WriteHeader(http.StatusCreated)
}
