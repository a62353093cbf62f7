package service

import (
	"context"

	"restodash/dashboard-svc/internal/client"
	"restodash/dashboard-svc/internal/domain"
	"restodash/dashboard-svc/internal/view"
)

// Cache keys. Mutations invalidate the collection key, which also covers
// the per-entity keys below it.
const (
	KeyMenus  = "menus"
	KeyOrders = "orders"
	KeyUser   = "user"
)

type TokenStore interface {
	Set(ctx context.Context, token string) error
	Get(ctx context.Context) (string, bool, error)
	Clear(ctx context.Context) error
}

type MenuAPI interface {
	List(ctx context.Context, filter client.ListFilter) ([]domain.MenuItem, error)
	Get(ctx context.Context, id string) (*domain.MenuItem, error)
	Create(ctx context.Context, in domain.MenuItemInput) (*domain.MenuItem, error)
	Update(ctx context.Context, id string, in domain.MenuItemInput) (*domain.MenuItem, error)
	Delete(ctx context.Context, id string) error
}

type OrderAPI interface {
	List(ctx context.Context, filter client.ListFilter) ([]domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, id string, upd domain.OrderUpdate) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
}

type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*client.Session, error)
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error)
	Me(ctx context.Context) (*domain.User, error)
}

type ChangePublisher interface {
	PublishChange(ctx context.Context, event domain.ChangeEvent) error
}

type Notifier interface {
	Success(msg string)
	Info(msg string)
	Error(msg string)
}

type QRGenerator interface {
	Generate(orderID string) ([]byte, error)
}

// SessionProvider resolves the signed-in account.
type SessionProvider interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
}

type MenuServiceInterface interface {
	List(ctx context.Context, owner string) ([]domain.MenuItem, error)
	Get(ctx context.Context, id string) (*domain.MenuItem, error)
	Create(ctx context.Context, in domain.MenuItemInput) (*domain.MenuItem, error)
	Update(ctx context.Context, id string, in domain.MenuItemInput) (*domain.MenuItem, error)
	Delete(ctx context.Context, id string) error
	Table(ctx context.Context) (view.TableView, error)
	Lookup(id string) (domain.MenuItem, bool)
}

type OrderServiceInterface interface {
	List(ctx context.Context) ([]domain.Order, error)
	Board(ctx context.Context) (view.Board, error)
	Details(ctx context.Context, id string, page int) (*OrderDetails, error)
	Update(ctx context.Context, id string, upd domain.OrderUpdate) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
	Table(ctx context.Context) (view.TableView, error)
	QRCode(ctx context.Context, id string) ([]byte, error)
	Lookup(id string) (domain.Order, bool)
}

type AuthServiceInterface interface {
	SessionProvider
	Login(ctx context.Context, creds domain.Credentials) (*domain.User, error)
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error)
	IsAuthenticated(ctx context.Context) bool
	Logout(ctx context.Context) error
}

var (
	_ MenuServiceInterface  = (*MenuService)(nil)
	_ OrderServiceInterface = (*OrderService)(nil)
	_ AuthServiceInterface  = (*AuthService)(nil)
)
