package client

import (
	"context"
	"net/http"

	"restodash/dashboard-svc/internal/domain"
)

// OrderClient has no Create: orders are placed outside the dashboard.
type OrderClient struct {
	c    *Client
	path string
}

func NewOrderClient(c *Client, basePath string) *OrderClient {
	return &OrderClient{c: c, path: basePath}
}

func (o *OrderClient) List(ctx context.Context, filter ListFilter) ([]domain.Order, error) {
	data, err := o.c.do(ctx, call{resource: "orders", method: http.MethodGet, path: o.path, query: filter.query()})
	if err != nil {
		return nil, err
	}
	orders, err := unwrap[[]domain.Order](data)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (o *OrderClient) Get(ctx context.Context, id string) (*domain.Order, error) {
	data, err := o.c.do(ctx, call{resource: "orders", method: http.MethodGet, path: resourcePath(o.path, id)})
	if err != nil {
		return nil, err
	}
	order, err := unwrap[domain.Order](data)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (o *OrderClient) Update(ctx context.Context, id string, upd domain.OrderUpdate) (*domain.Order, error) {
	data, err := o.c.do(ctx, call{resource: "orders", method: http.MethodPatch, path: resourcePath(o.path, id), body: jsonBody{value: upd}})
	if err != nil {
		return nil, err
	}
	order, err := unwrap[domain.Order](data)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (o *OrderClient) Delete(ctx context.Context, id string) error {
	_, err := o.c.do(ctx, call{resource: "orders", method: http.MethodDelete, path: resourcePath(o.path, id)})
	return err
}
