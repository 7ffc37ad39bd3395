package backend

import (
	"bytes"
	"encoding/json"
	"time"
)

// Ref is a reference the backend sends either as a bare id or as a populated
// document.
type Ref struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	type plain Ref
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Ref(p)
	return nil
}

// Item is a menu item with its short video.
type Item struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	VideoURL    string  `json:"videoUrl"`
	Restaurant  Ref     `json:"resturantId"`
	Quantity    int     `json:"quantity"`
}

// Restaurant is the public profile of an operator.
type Restaurant struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Type    string `json:"type,omitempty"`
	Items   []Item `json:"items"`
}

// CartLine is one item in the cart.
type CartLine struct {
	ID       string  `json:"_id"`
	Item     Ref     `json:"itemId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Category string  `json:"category,omitempty"`
	VideoURL string  `json:"videoUrl,omitempty"`
}

// Cart is the customer's cart with backend-computed totals.
type Cart struct {
	Items       []CartLine `json:"items"`
	TotalItems  int        `json:"totalItems"`
	TotalAmount float64    `json:"totalAmount"`
}

// OrderLine is one item in an order.
type OrderLine struct {
	ID       string  `json:"_id"`
	Item     Ref     `json:"item"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order statuses the operator can move an order through.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusDelivered = "delivered"
)

// OrderStatuses lists the statuses in workflow order.
var OrderStatuses = []string{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusDelivered}

// Order is a placed order.
type Order struct {
	ID            string      `json:"_id"`
	Items         []OrderLine `json:"items"`
	Status        string      `json:"status"`
	TotalAmount   float64     `json:"totalAmount"`
	PaymentStatus string      `json:"paymentStatus,omitempty"`
	Address       string      `json:"address,omitempty"`
	User          Ref         `json:"user"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Payment methods offered at checkout.
const (
	PaymentCard   = "card"
	PaymentUPI    = "upi"
	PaymentWallet = "wallet"
)

// Payment is the request to settle an order.
type Payment struct {
	OrderID       string  `json:"orderId"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
	Currency      string  `json:"currency"`
}

// Analytics is the operator dashboard summary. Its shape is owned by the
// backend and passed through.
type Analytics map[string]any

// NewItem is the operator's form for adding a menu item.
type NewItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl"`
	VideoURL    string  `json:"videoUrl"`
	Quantity    int     `json:"quantity"`
}

// Credentials are what both login endpoints accept.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CustomerRegistration is the customer sign-up form.
type CustomerRegistration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RestaurantRegistration is the operator sign-up form.
type RestaurantRegistration struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Type     string `json:"type"`
	Password string `json:"password"`
}

// DashboardStats are the headline numbers on the customer dashboard.
type DashboardStats struct {
	TotalOrders  int     `json:"totalOrders"`
	FavoriteFood string  `json:"favoriteFood"`
	SavedAmount  float64 `json:"savedAmount"`
}

// Dashboard is the customer dashboard. Everything beyond the user and stats
// is passed through as the backend sends it.
type Dashboard struct {
	User struct {
		Name    string `json:"name"`
		Avatar  string `json:"avatar,omitempty"`
		Address string `json:"address,omitempty"`
	} `json:"user"`
	RecentOrders  []Order         `json:"recentOrders"`
	PopularHotels []Restaurant    `json:"popularHotels"`
	FoodAnalytics json.RawMessage `json:"foodAnalytics,omitempty"`
	Stats         DashboardStats  `json:"stats"`
}
