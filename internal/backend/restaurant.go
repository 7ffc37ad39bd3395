package backend

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"foodreel/internal/gateway"
)

// Profile fetches the signed-in operator's restaurant with its menu.
func (a *API) Profile(ctx context.Context) (Restaurant, error) {
	res, err := a.get(ctx, "/resturants/profile")
	if err != nil {
		return Restaurant{}, err
	}
	profile, err := gateway.Decode[Restaurant](res)
	if err != nil {
		return Restaurant{}, err
	}
	if profile.Items == nil {
		profile.Items = []Item{}
	}
	return profile, nil
}

// Analytics fetches the operator dashboard summary.
func (a *API) Analytics(ctx context.Context) (Analytics, error) {
	res, err := a.get(ctx, "/resturants/analytics")
	if err != nil {
		return nil, err
	}
	return gateway.Decode[Analytics](res)
}

// RestaurantOrders lists orders placed with the operator.
func (a *API) RestaurantOrders(ctx context.Context) ([]Order, error) {
	res, err := a.get(ctx, "/resturants/orders")
	if err != nil {
		return nil, err
	}
	orders, err := gateway.Decode[[]Order](res)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

// UpdateOrderStatus moves an order to status.
func (a *API) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	var check fieldCheck
	check.require(slices.Contains(OrderStatuses, status), "status", "Unknown order status")
	if err := check.err(); err != nil {
		return err
	}
	_, err := a.send(ctx, http.MethodPut, "/orders/status/"+pathID(orderID), map[string]string{"status": status})
	return err
}

// AddItem validates and submits a new menu item.
func (a *API) AddItem(ctx context.Context, item NewItem) error {
	var check fieldCheck
	check.require(strings.TrimSpace(item.Name) != "", "name", "Item name is required")
	check.require(strings.TrimSpace(item.Description) != "", "description", "Description is required")
	check.require(item.Price > 0, "price", "Valid price is required")
	check.require(item.Category != "", "category", "Category is required")
	check.require(strings.TrimSpace(item.VideoURL) != "", "videoUrl", "Video URL is required")
	if err := check.err(); err != nil {
		return err
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	_, err := a.send(ctx, http.MethodPost, "/restaurant/items", item)
	return err
}

// DeleteItem removes a menu item.
func (a *API) DeleteItem(ctx context.Context, itemID string) error {
	_, err := a.send(ctx, http.MethodDelete, "/restaurant/items/"+pathID(itemID), nil)
	return err
}
