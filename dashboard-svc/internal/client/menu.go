package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"restodash/dashboard-svc/internal/domain"
)

// imageField is the menu attribute the server fills from an uploaded file.
const imageField = "image"

type MenuClient struct {
	c    *Client
	path string
}

func NewMenuClient(c *Client, basePath string) *MenuClient {
	return &MenuClient{c: c, path: basePath}
}

func (m *MenuClient) List(ctx context.Context, filter ListFilter) ([]domain.MenuItem, error) {
	data, err := m.c.do(ctx, call{resource: "menus", method: http.MethodGet, path: m.path, query: filter.query()})
	if err != nil {
		return nil, err
	}
	items, err := unwrap[[]domain.MenuItem](data)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.MenuItem{}
	}
	return items, nil
}

func (m *MenuClient) Get(ctx context.Context, id string) (*domain.MenuItem, error) {
	data, err := m.c.do(ctx, call{resource: "menus", method: http.MethodGet, path: resourcePath(m.path, id)})
	if err != nil {
		return nil, err
	}
	item, err := unwrap[domain.MenuItem](data)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (m *MenuClient) Create(ctx context.Context, in domain.MenuItemInput) (*domain.MenuItem, error) {
	payload, err := encodeMenuInput(in)
	if err != nil {
		return nil, err
	}
	data, err := m.c.do(ctx, call{resource: "menus", method: http.MethodPost, path: m.path, body: payload})
	if err != nil {
		return nil, err
	}
	item, err := unwrap[domain.MenuItem](data)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Update sends a partial update. Multipart answers are wrapped one level
// less than JSON ones.
func (m *MenuClient) Update(ctx context.Context, id string, in domain.MenuItemInput) (*domain.MenuItem, error) {
	payload, err := encodeMenuInput(in)
	if err != nil {
		return nil, err
	}
	data, err := m.c.do(ctx, call{resource: "menus", method: http.MethodPatch, path: resourcePath(m.path, id), body: payload})
	if err != nil {
		return nil, err
	}

	var item domain.MenuItem
	if _, isMultipart := payload.(multipartBody); isMultipart {
		item, err = unwrapShallow[domain.MenuItem](data)
	} else {
		item, err = unwrap[domain.MenuItem](data)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (m *MenuClient) Delete(ctx context.Context, id string) error {
	_, err := m.c.do(ctx, call{resource: "menus", method: http.MethodDelete, path: resourcePath(m.path, id)})
	return err
}

// encodeMenuInput picks multipart when a file is attached and JSON
// otherwise, whatever the caller intended.
func encodeMenuInput(in domain.MenuItemInput) (body, error) {
	if !in.Upload.Present() {
		in.Upload = nil
		return jsonBody{value: in}, nil
	}

	upload := in.Upload
	in.Upload = nil
	in.Image = nil

	raw, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode menu fields: %w", err)
	}
	var attrs map[string]json.RawMessage
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, fmt.Errorf("encode menu fields: %w", err)
	}

	fields := make(map[string]string, len(attrs))
	for name, value := range attrs {
		fields[name] = formValue(value)
	}
	return multipartBody{fields: fields, fieldName: imageField, upload: upload}, nil
}

// formValue renders a JSON value as a form field: strings bare, everything
// else as its JSON text.
func formValue(value json.RawMessage) string {
	var s string
	if strings.HasPrefix(string(value), `"`) && json.Unmarshal(value, &s) == nil {
		return s
	}
	return string(value)
}
