package backend

import (
	"context"

	"foodreel/internal/gateway"
)

// Items lists every menu item across restaurants.
func (a *API) Items(ctx context.Context) ([]Item, error) {
	res, err := a.get(ctx, "/items")
	if err != nil {
		return nil, err
	}
	return gateway.Decode[[]Item](res)
}

// Item fetches one menu item.
func (a *API) Item(ctx context.Context, id string) (Item, error) {
	res, err := a.get(ctx, "/items/item/"+pathID(id))
	if err != nil {
		return Item{}, err
	}
	return gateway.Decode[Item](res)
}

// Restaurant fetches a restaurant's public profile with its menu.
func (a *API) Restaurant(ctx context.Context, id string) (Restaurant, error) {
	res, err := a.get(ctx, "/resturants/"+pathID(id))
	if err != nil {
		return Restaurant{}, err
	}
	return gateway.Decode[Restaurant](res)
}
