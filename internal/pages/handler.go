// Package pages holds the views of the client shell. Each handler loads its
// data through the backend call sites and renders a JSON view model.
package pages

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"foodreel/internal/backend"
	"foodreel/internal/gateway"
	"foodreel/internal/guard"
	"foodreel/internal/navigation"
	"foodreel/internal/session"
	"foodreel/pkg/platform/httputil"
	"foodreel/pkg/requestcontext"
)

const maxFormBytes = 1 << 20

// API is the backend surface the views call.
type API interface {
	Login(ctx context.Context, role session.Role, creds backend.Credentials) (string, error)
	RegisterCustomer(ctx context.Context, reg backend.CustomerRegistration) error
	RegisterRestaurant(ctx context.Context, reg backend.RestaurantRegistration) error
	SendOTP(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, userID, otp string) error
	ResetPassword(ctx context.Context, userID, password, confirm string) error

	Items(ctx context.Context) ([]backend.Item, error)
	Item(ctx context.Context, id string) (backend.Item, error)
	Restaurant(ctx context.Context, id string) (backend.Restaurant, error)

	Dashboard(ctx context.Context) (backend.Dashboard, error)
	SavedItems(ctx context.Context) ([]backend.Item, error)
	SaveItem(ctx context.Context, itemID string) error
	UnsaveItem(ctx context.Context, itemID string) error
	CheckoutSaved(ctx context.Context, item backend.Item) error
	Cart(ctx context.Context) (backend.Cart, error)
	AddToCart(ctx context.Context, itemID string) error
	UpdateCart(ctx context.Context, itemID string, quantity int) error
	RemoveFromCart(ctx context.Context, itemID string) error
	Checkout(ctx context.Context, cart backend.Cart) (string, error)

	Orders(ctx context.Context) ([]backend.Order, error)
	Order(ctx context.Context, id string) (backend.Order, error)
	PlaceOrder(ctx context.Context, items []backend.OrderLine) error
	DeleteOrder(ctx context.Context, orderID string) error
	RemoveOrderItem(ctx context.Context, orderID, itemID string) error
	PayOrder(ctx context.Context, order backend.Order, method string) error

	Analytics(ctx context.Context) (backend.Analytics, error)
	RestaurantOrders(ctx context.Context) ([]backend.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
	AddItem(ctx context.Context, item backend.NewItem) error
	DeleteItem(ctx context.Context, itemID string) error
}

// Sessions is the holder as the views see it: read, plus the login and
// logout transitions.
type Sessions interface {
	Read() session.State
	Login(ctx context.Context, credential string, role session.Role) error
	Logout(ctx context.Context) error
}

// Profiles serves the operator's own profile from a cache.
type Profiles interface {
	Profile(ctx context.Context) (backend.Restaurant, error)
	Forget()
}

// Handler renders the shell's views.
type Handler struct {
	logger   *slog.Logger
	api      API
	sessions Sessions
	profiles Profiles
	policy   guard.Policy
}

// New creates the views handler. policy supplies the login entry points used
// after a logout.
func New(api API, sessions Sessions, profiles Profiles, policy guard.Policy, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		api:      api,
		sessions: sessions,
		profiles: profiles,
		policy:   policy,
	}
}

// RegisterPublic mounts the views anyone may see.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/home", h.handleHome)
	r.Get("/login", h.handleLoginView)
	r.Get("/restaurant/login", h.handleLoginView)
	r.Post("/login", h.handleLogin)
	r.Post("/restaurant/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/register", h.handleRegisterView)
	r.Post("/register", h.handleRegister)
	r.Get("/forgot-password", h.handleForgotPasswordView)
	r.Post("/forgot-password/otp", h.handleSendOTP)
	r.Post("/forgot-password/verify", h.handleVerifyOTP)
	r.Post("/forgot-password/reset", h.handleResetPassword)
}

// RegisterProtected mounts the views that sit behind the route guard. The
// caller installs the guard on r.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/restaurants/profile/{restaurantId}", h.handleRestaurantProfile)
	r.Get("/notifications", h.handleNotifications)
	r.Get("/item/{id}", h.handleItem)

	r.Get("/saved", h.handleSaved)
	r.Post("/saved/{itemId}", h.handleSave)
	r.Post("/saved/{itemId}/delete", h.handleUnsave)
	r.Post("/saved/{itemId}/checkout", h.handleCheckoutSaved)

	r.Get("/cart", h.handleCart)
	r.Post("/cart/checkout", h.handleCheckout)
	r.Post("/cart/{itemId}", h.handleAddToCart)
	r.Post("/cart/{itemId}/quantity", h.handleUpdateCart)
	r.Post("/cart/{itemId}/delete", h.handleRemoveFromCart)

	r.Get("/orders/list", h.handleOrderList)
	r.Post("/orders/list", h.handlePlaceOrder)
	r.Get("/orders/{orderId}", h.handleOrder)
	r.Post("/orders/{orderId}/pay", h.handlePayOrder)
	r.Post("/orders/{orderId}/delete", h.handleDeleteOrder)
	r.Post("/orders/{orderId}/items/{itemId}/delete", h.handleRemoveOrderItem)

	r.Get("/customer/dashboard", h.handleCustomerDashboard)

	r.Get("/restaurant/dashboard", h.handleRestaurantDashboard)
	r.Get("/restaurant/items/add", h.handleAddItemView)
	r.Post("/restaurant/items/add", h.handleAddItem)
	r.Get("/restaurant/items/edit/{itemId}", h.handleEditItemView)
	r.Post("/restaurant/items/{itemId}/delete", h.handleDeleteItem)
	r.Get("/restaurant/reels", h.handleReels)
	r.Get("/restaurant/orders", h.handleRestaurantOrders)
	r.Post("/restaurant/orders/{orderId}/status", h.handleUpdateOrderStatus)
}

// render writes a view model together with the session it was rendered for.
func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	state := h.sessions.Read()
	httputil.WriteJSON(w, http.StatusOK, View{
		Name:    name,
		Session: SessionView{Flag: state.Flag.String(), Role: state.Role.String()},
		Data:    data,
	})
}

// redirect ends a successful action with a see-other to the next view.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes)).Decode(v)
}

// bind decodes the request body and writes a 400 when it is malformed.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decode(w, r, v); err != nil {
		h.logger.WarnContext(r.Context(), "malformed form body",
			"path", r.URL.Path,
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return false
	}
	return true
}

// fail renders a failed backend call. A navigation requested during the call
// (the session was invalidated) takes precedence over any error view.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, action string) {
	ctx := r.Context()
	if navigation.Apply(w, r) {
		return
	}

	requestID := requestcontext.RequestID(ctx)
	switch {
	case errors.Is(err, gateway.ErrValidation):
		fields := map[string]string{}
		for _, fe := range backend.FieldErrors(err) {
			fields[fe.Field] = fe.Message
		}
		httputil.WriteFieldErrors(w, message(err, "please correct the highlighted fields"), fields)
	case errors.Is(err, gateway.ErrUnauthorized):
		http.Redirect(w, r, h.policy.Target(h.sessions.Read().Role), http.StatusSeeOther)
	case errors.Is(err, gateway.ErrForbidden):
		httputil.WriteError(w, http.StatusForbidden, "forbidden", "you do not have access to "+action)
	case errors.Is(err, gateway.ErrNotFound):
		httputil.WriteError(w, http.StatusNotFound, "not_found", message(err, action+" not found"))
	case errors.Is(err, backend.ErrRejected), errors.Is(err, backend.ErrNoToken):
		httputil.WriteError(w, http.StatusBadRequest, "rejected", message(err, action+" failed"))
	case errors.Is(err, gateway.ErrNetwork):
		h.logger.ErrorContext(ctx, "backend unreachable", "action", action, "error", err, "request_id", requestID)
		httputil.WriteError(w, http.StatusGatewayTimeout, "backend_unreachable", "")
	default:
		h.logger.ErrorContext(ctx, "backend call failed", "action", action, "error", err, "request_id", requestID)
		httputil.WriteError(w, http.StatusBadGateway, "backend_error", "")
	}
}

// message prefers the backend's own wording.
func message(err error, fallback string) string {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		return gwErr.Message
	}
	if errors.Is(err, backend.ErrRejected) {
		return err.Error()
	}
	return fallback
}
