package pages

import "foodreel/internal/backend"

// View is the envelope every page renders.
type View struct {
	Name    string      `json:"view"`
	Session SessionView `json:"session"`
	Data    any         `json:"data,omitempty"`
}

// SessionView is the session as a view sees it.
type SessionView struct {
	Flag string `json:"flag"`
	Role string `json:"role,omitempty"`
}

type homeView struct {
	Items    []backend.Item `json:"items"`
	SavedIDs []string       `json:"savedIds"`
}

type loginView struct {
	Role  string   `json:"role"`
	Roles []string `json:"roles"`
}

type itemView struct {
	Item backend.Item `json:"item"`
}

type savedView struct {
	Items []backend.Item `json:"items"`
}

type cartView struct {
	Cart backend.Cart `json:"cart"`
}

type ordersView struct {
	Orders []backend.Order `json:"orders"`
}

type orderView struct {
	Order          backend.Order `json:"order"`
	PaymentMethods []string      `json:"paymentMethods"`
}

type notification struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Read    bool   `json:"read"`
}

type notificationsView struct {
	Notifications []notification `json:"notifications"`
}

type restaurantDashboardView struct {
	Profile   backend.Restaurant `json:"profile"`
	Analytics backend.Analytics  `json:"analytics,omitempty"`
}

type addItemView struct {
	Categories []string `json:"categories"`
}

type reelsView struct {
	Items      []backend.Item `json:"items"`
	OrderCount int            `json:"orderCount"`
}

type restaurantOrdersView struct {
	Orders   []backend.Order `json:"orders"`
	Statuses []string        `json:"statuses"`
	Counts   map[string]int  `json:"counts"`
}

// Categories offered on the add-item form.
var itemCategories = []string{
	"Main Course", "Appetizers", "Beverages", "Desserts", "Snacks",
	"Pizza", "Burgers", "Chinese", "Indian", "Italian",
}
