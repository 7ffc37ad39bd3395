package pages

import (
	"fmt"
	"math/rand/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"foodreel/internal/backend"
)

// shuffled returns the feed in a fresh random order without touching items.
func shuffled(items []backend.Item) []backend.Item {
	out := make([]backend.Item, len(items))
	copy(out, items)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func (h *Handler) handleRestaurantProfile(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.api.Restaurant(r.Context(), chi.URLParam(r, "restaurantId"))
	if err != nil {
		h.fail(w, r, err, "restaurant")
		return
	}
	if restaurant.Items == nil {
		restaurant.Items = []backend.Item{}
	}
	h.render(w, "restaurant_profile", restaurant)
}

func (h *Handler) handleItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.api.Item(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, "item")
		return
	}
	h.render(w, "item", itemView{Item: item})
}

// handleNotifications derives the customer's notifications from order status.
func (h *Handler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	orders, err := h.api.Orders(r.Context())
	if err != nil {
		h.fail(w, r, err, "notifications")
		return
	}
	view := notificationsView{Notifications: make([]notification, 0, len(orders))}
	for _, o := range orders {
		view.Notifications = append(view.Notifications, notification{
			OrderID: o.ID,
			Status:  o.Status,
			Message: fmt.Sprintf("Order %s is %s", o.ID, o.Status),
			Read:    o.Status == backend.StatusDelivered,
		})
	}
	h.render(w, "notifications", view)
}

func (h *Handler) handleCustomerDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.api.Dashboard(r.Context())
	if err != nil {
		h.fail(w, r, err, "dashboard")
		return
	}
	h.render(w, "customer_dashboard", dashboard)
}

func (h *Handler) handleSaved(w http.ResponseWriter, r *http.Request) {
	items, err := h.api.SavedItems(r.Context())
	if err != nil {
		h.fail(w, r, err, "saved items")
		return
	}
	if items == nil {
		items = []backend.Item{}
	}
	h.render(w, "saved", savedView{Items: items})
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := h.api.SaveItem(r.Context(), chi.URLParam(r, "itemId")); err != nil {
		h.fail(w, r, err, "saving the item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUnsave(w http.ResponseWriter, r *http.Request) {
	if err := h.api.UnsaveItem(r.Context(), chi.URLParam(r, "itemId")); err != nil {
		h.fail(w, r, err, "removing the saved item")
		return
	}
	h.redirect(w, r, "/saved")
}

// handleCheckoutSaved orders one saved item and moves on to the order list.
func (h *Handler) handleCheckoutSaved(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "itemId")
	item, err := h.api.Item(ctx, id)
	if err != nil {
		h.fail(w, r, err, "item")
		return
	}
	if err := h.api.CheckoutSaved(ctx, item); err != nil {
		h.fail(w, r, err, "checkout")
		return
	}
	h.redirect(w, r, "/orders/list")
}

func (h *Handler) handleCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.api.Cart(r.Context())
	if err != nil {
		h.fail(w, r, err, "cart")
		return
	}
	h.render(w, "cart", cartView{Cart: cart})
}

func (h *Handler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	if err := h.api.AddToCart(r.Context(), chi.URLParam(r, "itemId")); err != nil {
		h.fail(w, r, err, "adding to cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type quantityForm struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleUpdateCart(w http.ResponseWriter, r *http.Request) {
	var form quantityForm
	if !h.bind(w, r, &form) {
		return
	}
	if err := h.api.UpdateCart(r.Context(), chi.URLParam(r, "itemId"), form.Quantity); err != nil {
		h.fail(w, r, err, "updating the cart")
		return
	}
	h.redirect(w, r, "/cart")
}

func (h *Handler) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	if err := h.api.RemoveFromCart(r.Context(), chi.URLParam(r, "itemId")); err != nil {
		h.fail(w, r, err, "removing from cart")
		return
	}
	h.redirect(w, r, "/cart")
}

// handleCheckout checks out the cart as the backend currently holds it.
func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cart, err := h.api.Cart(ctx)
	if err != nil {
		h.fail(w, r, err, "cart")
		return
	}
	if _, err := h.api.Checkout(ctx, cart); err != nil {
		h.fail(w, r, err, "checkout")
		return
	}
	h.redirect(w, r, "/orders/list")
}

func (h *Handler) handleOrderList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.api.Orders(r.Context())
	if err != nil {
		h.fail(w, r, err, "orders")
		return
	}
	h.render(w, "order_list", ordersView{Orders: orders})
}

type placeOrderForm struct {
	Items []backend.OrderLine `json:"items"`
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var form placeOrderForm
	if !h.bind(w, r, &form) {
		return
	}
	if err := h.api.PlaceOrder(r.Context(), form.Items); err != nil {
		h.fail(w, r, err, "placing the order")
		return
	}
	h.redirect(w, r, "/orders/list")
}

func (h *Handler) handleOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.api.Order(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		h.fail(w, r, err, "order")
		return
	}
	h.render(w, "order", orderView{
		Order:          order,
		PaymentMethods: []string{backend.PaymentCard, backend.PaymentUPI, backend.PaymentWallet},
	})
}

type paymentForm struct {
	PaymentMethod string `json:"paymentMethod"`
}

func (h *Handler) handlePayOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var form paymentForm
	if !h.bind(w, r, &form) {
		return
	}
	if form.PaymentMethod == "" {
		form.PaymentMethod = backend.PaymentCard
	}
	orderID := chi.URLParam(r, "orderId")
	order, err := h.api.Order(ctx, orderID)
	if err != nil {
		h.fail(w, r, err, "order")
		return
	}
	if err := h.api.PayOrder(ctx, order, form.PaymentMethod); err != nil {
		h.fail(w, r, err, "payment")
		return
	}
	h.redirect(w, r, "/orders/"+orderID)
}

func (h *Handler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.api.DeleteOrder(r.Context(), chi.URLParam(r, "orderId")); err != nil {
		h.fail(w, r, err, "deleting the order")
		return
	}
	h.redirect(w, r, "/orders/list")
}

func (h *Handler) handleRemoveOrderItem(w http.ResponseWriter, r *http.Request) {
	err := h.api.RemoveOrderItem(r.Context(), chi.URLParam(r, "orderId"), chi.URLParam(r, "itemId"))
	if err != nil {
		h.fail(w, r, err, "removing the order item")
		return
	}
	h.redirect(w, r, "/orders/list")
}
