package pages

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"foodreel/internal/backend"
	"foodreel/internal/navigation"
	"foodreel/pkg/requestcontext"
)

// handleRestaurantDashboard shows the operator's profile and menu. Analytics
// are optional: the dashboard renders without them.
func (h *Handler) handleRestaurantDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile, err := h.profiles.Profile(ctx)
	if err != nil {
		h.fail(w, r, err, "restaurant profile")
		return
	}

	view := restaurantDashboardView{Profile: profile}
	analytics, err := h.api.Analytics(ctx)
	switch {
	case err == nil:
		view.Analytics = analytics
	case hasPending(r):
		h.fail(w, r, err, "analytics")
		return
	default:
		h.logger.WarnContext(ctx, "analytics unavailable",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	h.render(w, "restaurant_dashboard", view)
}

func hasPending(r *http.Request) bool {
	_, ok := navigation.Pending(r.Context())
	return ok
}

func (h *Handler) handleAddItemView(w http.ResponseWriter, r *http.Request) {
	h.render(w, "add_item", addItemView{Categories: itemCategories})
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var form backend.NewItem
	if !h.bind(w, r, &form) {
		return
	}
	if err := h.api.AddItem(r.Context(), form); err != nil {
		h.fail(w, r, err, "adding the item")
		return
	}
	h.profiles.Forget()
	h.redirect(w, r, restaurantDashboard)
}

// handleEditItemView prefills the edit form from the current item.
func (h *Handler) handleEditItemView(w http.ResponseWriter, r *http.Request) {
	item, err := h.api.Item(r.Context(), chi.URLParam(r, "itemId"))
	if err != nil {
		h.fail(w, r, err, "item")
		return
	}
	h.render(w, "edit_item", map[string]any{"item": item, "categories": itemCategories})
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.api.DeleteItem(r.Context(), chi.URLParam(r, "itemId")); err != nil {
		h.fail(w, r, err, "deleting the item")
		return
	}
	h.profiles.Forget()
	h.redirect(w, r, restaurantDashboard)
}

func (h *Handler) handleReels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := h.api.Items(ctx)
	if err != nil {
		h.fail(w, r, err, "reels")
		return
	}
	view := reelsView{Items: shuffled(items)}
	orders, err := h.api.RestaurantOrders(ctx)
	switch {
	case err == nil:
		view.OrderCount = len(orders)
	case hasPending(r):
		h.fail(w, r, err, "orders")
		return
	}
	h.render(w, "reels", view)
}

func (h *Handler) handleRestaurantOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.api.RestaurantOrders(r.Context())
	if err != nil {
		h.fail(w, r, err, "orders")
		return
	}
	counts := make(map[string]int, len(backend.OrderStatuses))
	for _, status := range backend.OrderStatuses {
		counts[status] = 0
	}
	for _, o := range orders {
		counts[o.Status]++
	}
	h.render(w, "restaurant_orders", restaurantOrdersView{
		Orders:   orders,
		Statuses: backend.OrderStatuses,
		Counts:   counts,
	})
}

type statusForm struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var form statusForm
	if !h.bind(w, r, &form) {
		return
	}
	if err := h.api.UpdateOrderStatus(r.Context(), chi.URLParam(r, "orderId"), form.Status); err != nil {
		h.fail(w, r, err, "updating the order")
		return
	}
	h.redirect(w, r, "/restaurant/orders")
}
