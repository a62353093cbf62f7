package service

import (
	"context"
	"fmt"
	"time"

	"restodash/dashboard-svc/internal/cache"
	"restodash/dashboard-svc/internal/client"
	"restodash/dashboard-svc/internal/domain"
	"restodash/dashboard-svc/internal/view"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// OrderDetails is one page of an order's resolved line items.
type OrderDetails struct {
	Order         domain.Order    `json:"order"`
	DisplayTime   string          `json:"displayTime"`
	Lines         []view.Line     `json:"lines"`
	Page          view.PagerState `json:"page"`
	TotalQuantity int             `json:"totalQuantity"`
	ComputedTotal string          `json:"computedTotal"`
	Unresolved    []string        `json:"unresolved"`
}

type OrderService struct {
	api       OrderAPI
	menus     MenuServiceInterface
	session   SessionProvider
	cache     *cache.Cache
	publisher ChangePublisher
	notifier  Notifier
	qr        QRGenerator
	validate  *validator.Validate
	loc       *time.Location
	pageSize  int
	log       *zap.Logger
}

type OrderServiceDeps struct {
	API       OrderAPI
	Menus     MenuServiceInterface
	Session   SessionProvider
	Cache     *cache.Cache
	Publisher ChangePublisher
	Notifier  Notifier
	QR        QRGenerator
	Location  *time.Location
	PageSize  int
	Logger    *zap.Logger
}

func NewOrderService(deps OrderServiceDeps) *OrderService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.PageSize < 1 {
		deps.PageSize = view.DetailPageSize
	}
	return &OrderService{
		api:       deps.API,
		menus:     deps.Menus,
		session:   deps.Session,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		notifier:  deps.Notifier,
		qr:        deps.QR,
		validate:  newValidator(),
		loc:       deps.Location,
		pageSize:  deps.PageSize,
		log:       deps.Logger.Named("order"),
	}
}

// List returns the orders of the signed-in account.
func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	user, err := s.session.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return cache.Query(ctx, s.cache, KeyOrders, func(ctx context.Context) ([]domain.Order, error) {
		return s.api.List(ctx, client.ListFilter{Owner: user.ID})
	})
}

func (s *OrderService) Board(ctx context.Context) (view.Board, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return view.Board{}, err
	}
	return view.Partition(orders, s.loc), nil
}

func (s *OrderService) Table(ctx context.Context) (view.TableView, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return view.TableView{}, err
	}
	return view.Table(orders, view.OrderColumns)
}

// Lookup reads the cached order collection without fetching.
func (s *OrderService) Lookup(id string) (domain.Order, bool) {
	orders, ok := cache.Peek[[]domain.Order](s.cache, KeyOrders)
	if !ok {
		return domain.Order{}, false
	}
	for _, o := range orders {
		if o.ID == id {
			return o, true
		}
	}
	return domain.Order{}, false
}

// find prefers the account's order list and falls back to a direct fetch.
func (s *OrderService) find(ctx context.Context, id string) (*domain.Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return cache.Query(ctx, s.cache, KeyOrders+"/"+id, func(ctx context.Context) (*domain.Order, error) {
		return s.api.Get(ctx, id)
	})
}

// Details resolves the order's items against the menu and returns the
// requested page. Items the menu no longer has are listed, not fatal.
func (s *OrderService) Details(ctx context.Context, id string, page int) (*OrderDetails, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	menu, err := s.menus.List(ctx, "")
	if err != nil {
		return nil, err
	}

	lines := view.ResolveLineItems(menu, *order)
	pager := view.NewPager(len(lines.Lines), s.pageSize)
	pager.Go(page)

	return &OrderDetails{
		Order:         *order,
		DisplayTime:   view.FormatDateTime(order.CreatedAt, s.loc),
		Lines:         view.PageOf(lines.Lines, pager),
		Page:          pager.State(),
		TotalQuantity: lines.TotalQuantity,
		ComputedTotal: lines.ComputedTotal.StringFixed(2),
		Unresolved:    lines.Unresolved,
	}, nil
}

func (s *OrderService) Update(ctx context.Context, id string, upd domain.OrderUpdate) (*domain.Order, error) {
	if err := s.validate.Struct(upd); err != nil {
		err = validationError(err)
		s.notifier.Error(err.Error())
		return nil, err
	}

	order, err := s.api.Update(ctx, id, upd)
	if err != nil {
		s.notifier.Error(fmt.Sprintf("Failed to update order: %s", client.MessageOf(err)))
		return nil, err
	}

	s.notifier.Success("Order updated successfully")
	s.afterMutation(ctx, id, order.Owner)
	return order, nil
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		s.notifier.Error(fmt.Sprintf("Failed to delete order: %s", client.MessageOf(err)))
		return err
	}

	s.notifier.Success("Order deleted successfully")
	s.afterMutation(ctx, id, "")
	return nil
}

func (s *OrderService) afterMutation(ctx context.Context, id, owner string) {
	event := domain.ChangeEvent{Type: domain.EventOrderChanged, EntityID: id, Owner: owner}
	if err := s.publisher.PublishChange(ctx, event); err != nil {
		s.log.Warn("publish order change", zap.String("id", id), zap.Error(err))
	}
	s.cache.Invalidate(KeyOrders)
}

// QRCode encodes the tracking link of an order the account can see.
func (s *OrderService) QRCode(ctx context.Context, id string) ([]byte, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	return s.qr.Generate(id)
}
