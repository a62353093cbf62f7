// Package mocks holds testify mocks of the service interfaces, written in
// the shape mockery produces.
package mocks

import (
	"context"

	"restodash/dashboard-svc/internal/client"
	"restodash/dashboard-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MenuAPI is a mock type for the MenuAPI type
type MenuAPI struct {
	mock.Mock
}

func (_m *MenuAPI) List(ctx context.Context, filter client.ListFilter) ([]domain.MenuItem, error) {
	ret := _m.Called(ctx, filter)

	var r0 []domain.MenuItem
	if rf, ok := ret.Get(0).(func(context.Context, client.ListFilter) []domain.MenuItem); ok {
		r0 = rf(ctx, filter)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.MenuItem)
	}
	return r0, ret.Error(1)
}

func (_m *MenuAPI) Get(ctx context.Context, id string) (*domain.MenuItem, error) {
	ret := _m.Called(ctx, id)

	var r0 *domain.MenuItem
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.MenuItem)
	}
	return r0, ret.Error(1)
}

func (_m *MenuAPI) Create(ctx context.Context, in domain.MenuItemInput) (*domain.MenuItem, error) {
	ret := _m.Called(ctx, in)

	var r0 *domain.MenuItem
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.MenuItem)
	}
	return r0, ret.Error(1)
}

func (_m *MenuAPI) Update(ctx context.Context, id string, in domain.MenuItemInput) (*domain.MenuItem, error) {
	ret := _m.Called(ctx, id, in)

	var r0 *domain.MenuItem
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.MenuItem)
	}
	return r0, ret.Error(1)
}

func (_m *MenuAPI) Delete(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

// NewMenuAPI creates a new instance of MenuAPI. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMenuAPI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MenuAPI {
	m := &MenuAPI{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// OrderAPI is a mock type for the OrderAPI type
type OrderAPI struct {
	mock.Mock
}

func (_m *OrderAPI) List(ctx context.Context, filter client.ListFilter) ([]domain.Order, error) {
	ret := _m.Called(ctx, filter)

	var r0 []domain.Order
	if rf, ok := ret.Get(0).(func(context.Context, client.ListFilter) []domain.Order); ok {
		r0 = rf(ctx, filter)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Order)
	}
	return r0, ret.Error(1)
}

func (_m *OrderAPI) Get(ctx context.Context, id string) (*domain.Order, error) {
	ret := _m.Called(ctx, id)

	var r0 *domain.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Order)
	}
	return r0, ret.Error(1)
}

func (_m *OrderAPI) Update(ctx context.Context, id string, upd domain.OrderUpdate) (*domain.Order, error) {
	ret := _m.Called(ctx, id, upd)

	var r0 *domain.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Order)
	}
	return r0, ret.Error(1)
}

func (_m *OrderAPI) Delete(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

// NewOrderAPI creates a new instance of OrderAPI. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewOrderAPI(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderAPI {
	m := &OrderAPI{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// AuthAPI is a mock type for the AuthAPI type
type AuthAPI struct {
	mock.Mock
}

func (_m *AuthAPI) Login(ctx context.Context, creds domain.Credentials) (*client.Session, error) {
	ret := _m.Called(ctx, creds)

	var r0 *client.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*client.Session)
	}
	return r0, ret.Error(1)
}

func (_m *AuthAPI) Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	ret := _m.Called(ctx, req)

	var r0 *domain.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.User)
	}
	return r0, ret.Error(1)
}

func (_m *AuthAPI) Me(ctx context.Context) (*domain.User, error) {
	ret := _m.Called(ctx)

	var r0 *domain.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.User)
	}
	return r0, ret.Error(1)
}

// NewAuthAPI creates a new instance of AuthAPI. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewAuthAPI(t interface {
	mock.TestingT
	Cleanup(func())
}) *AuthAPI {
	m := &AuthAPI{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
