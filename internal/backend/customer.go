package backend

import (
	"context"
	"net/http"

	"foodreel/internal/gateway"
)

// SavedItems lists the customer's saved items.
func (a *API) SavedItems(ctx context.Context) ([]Item, error) {
	res, err := a.get(ctx, "/user/savedItems")
	if err != nil {
		return nil, err
	}
	return gateway.Decode[[]Item](res)
}

// SaveItem bookmarks an item.
func (a *API) SaveItem(ctx context.Context, itemID string) error {
	_, err := a.send(ctx, http.MethodPost, "/user/save/"+pathID(itemID), nil)
	return err
}

// UnsaveItem removes a bookmark.
func (a *API) UnsaveItem(ctx context.Context, itemID string) error {
	_, err := a.send(ctx, http.MethodPost, "/user/saved/delete/"+pathID(itemID), nil)
	return err
}

// CheckoutSaved orders a single saved item.
func (a *API) CheckoutSaved(ctx context.Context, item Item) error {
	_, err := a.send(ctx, http.MethodPost, "/user/checkout/saved/"+pathID(item.ID), map[string]any{
		"itemId":   item.ID,
		"name":     item.Name,
		"price":    item.Price,
		"quantity": 1,
		"category": item.Category,
	})
	return err
}

// Cart fetches the cart. An empty cart has zero totals.
func (a *API) Cart(ctx context.Context) (Cart, error) {
	res, err := a.get(ctx, "/user/cartItems")
	if err != nil {
		return Cart{}, err
	}
	cart, err := gateway.Decode[Cart](res)
	if err != nil {
		return Cart{}, err
	}
	if cart.Items == nil {
		cart.Items = []CartLine{}
	}
	return cart, nil
}

// AddToCart adds one unit of an item.
func (a *API) AddToCart(ctx context.Context, itemID string) error {
	_, err := a.send(ctx, http.MethodPost, "/user/cart/"+pathID(itemID), nil)
	return err
}

// UpdateCart sets a line's quantity; zero or less removes the line.
func (a *API) UpdateCart(ctx context.Context, itemID string, quantity int) error {
	if quantity <= 0 {
		return a.RemoveFromCart(ctx, itemID)
	}
	_, err := a.send(ctx, http.MethodPost, "/user/updateCart/"+pathID(itemID), map[string]int{"quantity": quantity})
	return err
}

// RemoveFromCart drops a line.
func (a *API) RemoveFromCart(ctx context.Context, itemID string) error {
	_, err := a.send(ctx, http.MethodPost, "/user/cart/delete/"+pathID(itemID), nil)
	return err
}

// Checkout turns the cart into an order and returns its id.
func (a *API) Checkout(ctx context.Context, cart Cart) (string, error) {
	if len(cart.Items) == 0 {
		return "", &InputError{Fields: []gateway.FieldError{{Field: "items", Message: "Cart is empty"}}}
	}
	res, err := a.send(ctx, http.MethodPost, "/user/checkout", map[string]any{
		"items":       cart.Items,
		"totalAmount": cart.TotalAmount,
		"totalItems":  cart.TotalItems,
	})
	if err != nil {
		return "", err
	}
	var body struct {
		OrderID string `json:"orderId"`
		ID      string `json:"_id"`
	}
	if err := res.DecodeRaw(&body); err != nil {
		return "", err
	}
	if body.OrderID == "" {
		body.OrderID = body.ID
	}
	if body.OrderID == "" {
		return "", ErrRejected
	}
	return body.OrderID, nil
}

// Dashboard fetches the customer dashboard.
func (a *API) Dashboard(ctx context.Context) (Dashboard, error) {
	res, err := a.get(ctx, "/user/dashboard")
	if err != nil {
		return Dashboard{}, err
	}
	return gateway.Decode[Dashboard](res)
}
