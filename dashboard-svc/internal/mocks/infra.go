package mocks

import (
	"context"

	"restodash/dashboard-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

// TokenStore is a mock type for the TokenStore type
type TokenStore struct {
	mock.Mock
}

func (_m *TokenStore) Set(ctx context.Context, token string) error {
	ret := _m.Called(ctx, token)
	return ret.Error(0)
}

func (_m *TokenStore) Get(ctx context.Context) (string, bool, error) {
	ret := _m.Called(ctx)
	return ret.String(0), ret.Bool(1), ret.Error(2)
}

func (_m *TokenStore) Clear(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

// NewTokenStore creates a new instance of TokenStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewTokenStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *TokenStore {
	m := &TokenStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// ChangePublisher is a mock type for the ChangePublisher type
type ChangePublisher struct {
	mock.Mock
}

func (_m *ChangePublisher) PublishChange(ctx context.Context, event domain.ChangeEvent) error {
	ret := _m.Called(ctx, event)
	return ret.Error(0)
}

// NewChangePublisher creates a new instance of ChangePublisher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewChangePublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *ChangePublisher {
	m := &ChangePublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// QRGenerator is a mock type for the QRGenerator type
type QRGenerator struct {
	mock.Mock
}

func (_m *QRGenerator) Generate(orderID string) ([]byte, error) {
	ret := _m.Called(orderID)

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}
	return r0, ret.Error(1)
}

// NewQRGenerator creates a new instance of QRGenerator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewQRGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *QRGenerator {
	m := &QRGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
