package backend

import (
	"context"
	"net/http"
	"slices"

	"foodreel/internal/gateway"
)

// Orders lists the customer's orders.
func (a *API) Orders(ctx context.Context) ([]Order, error) {
	res, err := a.get(ctx, "/orders")
	if err != nil {
		return nil, err
	}
	var body struct {
		Orders []Order `json:"orders"`
	}
	if err := res.DecodeRaw(&body); err != nil {
		return nil, err
	}
	if body.Orders == nil {
		body.Orders = []Order{}
	}
	return body.Orders, nil
}

// Order finds one of the customer's orders. The backend has no single-order
// endpoint, so the list is filtered.
func (a *API) Order(ctx context.Context, id string) (Order, error) {
	orders, err := a.Orders(ctx)
	if err != nil {
		return Order{}, err
	}
	i := slices.IndexFunc(orders, func(o Order) bool { return o.ID == id })
	if i < 0 {
		return Order{}, &gateway.Error{
			Outcome: gateway.OutcomeNotFound,
			Status:  http.StatusNotFound,
			Method:  http.MethodGet,
			Path:    "/orders",
			Message: "order not found",
		}
	}
	return orders[i], nil
}

// PlaceOrder places an order for the given lines.
func (a *API) PlaceOrder(ctx context.Context, items []OrderLine) error {
	if len(items) == 0 {
		return &InputError{Fields: []gateway.FieldError{{Field: "items", Message: "Select at least one item"}}}
	}
	res, err := a.send(ctx, http.MethodPost, "/orders/place", map[string]any{"items": items})
	if err != nil {
		return err
	}
	return accepted(res)
}

// DeleteOrder cancels an order.
func (a *API) DeleteOrder(ctx context.Context, orderID string) error {
	_, err := a.send(ctx, http.MethodDelete, "/orders/delete/"+pathID(orderID), nil)
	return err
}

// RemoveOrderItem drops one line from an order.
func (a *API) RemoveOrderItem(ctx context.Context, orderID, itemID string) error {
	_, err := a.send(ctx, http.MethodPost, "/orders/remove/"+pathID(orderID)+"/"+pathID(itemID), nil)
	return err
}

// PayOrder settles an order in INR.
func (a *API) PayOrder(ctx context.Context, order Order, method string) error {
	var check fieldCheck
	check.require(order.ID != "", "orderId", "Order is required")
	check.require(slices.Contains([]string{PaymentCard, PaymentUPI, PaymentWallet}, method), "paymentMethod", "Choose card, upi or wallet")
	if err := check.err(); err != nil {
		return err
	}
	res, err := a.send(ctx, http.MethodPost, "/payment/process", Payment{
		OrderID:       order.ID,
		Amount:        order.TotalAmount,
		PaymentMethod: method,
		Currency:      "INR",
	})
	if err != nil {
		return err
	}
	return accepted(res)
}
