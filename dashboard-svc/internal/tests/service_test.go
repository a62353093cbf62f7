package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"restodash/dashboard-svc/internal/cache"
	"restodash/dashboard-svc/internal/client"
	"restodash/dashboard-svc/internal/domain"
	"restodash/dashboard-svc/internal/mocks"
	"restodash/dashboard-svc/internal/notify"
	"restodash/dashboard-svc/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func lastMessage(feed *notify.Feed) notify.Notification {
	all := feed.Since(time.Time{})
	if len(all) == 0 {
		return notify.Notification{}
	}
	return all[len(all)-1]
}

// longCache keeps values fresh for an hour so only invalidation forces a refetch.
func longCache() *cache.Cache {
	return cache.New(cache.Options{StaleTime: time.Hour})
}

func TestMenuService_CreateInvalidatesList(t *testing.T) {
	api := mocks.NewMenuAPI(t)
	publisher := mocks.NewChangePublisher(t)
	feed := notify.NewFeed(10, nil)
	svc := service.NewMenuService(api, longCache(), publisher, feed, nil)

	soup := domain.MenuItem{ID: "m1", Name: "Soup"}
	tea := domain.MenuItem{ID: "m2", Name: "Tea", Owner: "r1"}

	api.On("List", mock.Anything, client.ListFilter{}).Return([]domain.MenuItem{soup}, nil).Once()
	api.On("Create", mock.Anything, mock.AnythingOfType("domain.MenuItemInput")).Return(&tea, nil).Once()
	publisher.On("PublishChange", mock.Anything, mock.MatchedBy(func(e domain.ChangeEvent) bool {
		return e.Type == domain.EventMenuChanged && e.EntityID == "m2" && e.Owner == "r1"
	})).Return(nil).Once()
	api.On("List", mock.Anything, client.ListFilter{}).Return([]domain.MenuItem{soup, tea}, nil).Once()

	items, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	created, err := svc.Create(context.Background(), domain.MenuItemInput{Name: ptr("Tea")})
	require.NoError(t, err)
	assert.Equal(t, "m2", created.ID)
	assert.Equal(t, notify.LevelSuccess, lastMessage(feed).Level)

	items, err = svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestMenuService_FailedUpdateKeepsCache(t *testing.T) {
	api := mocks.NewMenuAPI(t)
	publisher := mocks.NewChangePublisher(t)
	feed := notify.NewFeed(10, nil)
	svc := service.NewMenuService(api, longCache(), publisher, feed, nil)

	soup := domain.MenuItem{ID: "m1", Name: "Soup", Stock: 3}
	api.On("List", mock.Anything, client.ListFilter{}).Return([]domain.MenuItem{soup}, nil).Once()
	api.On("Update", mock.Anything, "m1", mock.Anything).
		Return(nil, &client.APIError{Kind: client.KindValidation, StatusCode: 400, Message: "Stock cannot exceed 999"}).Once()

	_, err := svc.List(context.Background(), "")
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), "m1", domain.MenuItemInput{Stock: ptr(5000)})
	require.Error(t, err)
	assert.Equal(t, "Stock cannot exceed 999", client.MessageOf(err))

	msg := lastMessage(feed)
	assert.Equal(t, notify.LevelError, msg.Level)
	assert.Contains(t, msg.Message, "Stock cannot exceed 999")

	cached, ok := svc.Lookup("m1")
	require.True(t, ok)
	assert.Equal(t, 3, cached.Stock)

	items, err := svc.List(context.Background(), "")
	require.NoError(t, err, "list is still served from cache, no refetch expected")
	assert.Equal(t, []domain.MenuItem{soup}, items)
}

func TestMenuService_Validation(t *testing.T) {
	tests := []struct {
		name       string
		input      domain.MenuItemInput
		wantFields []string
	}{
		{
			name:       "negative price",
			input:      domain.MenuItemInput{Price: ptr(decimal.RequireFromString("-1"))},
			wantFields: []string{"price"},
		},
		{
			name:       "negative stock and preparation time",
			input:      domain.MenuItemInput{Stock: ptr(-1), PreparationTime: ptr(-5)},
			wantFields: []string{"stock", "preparationTime"},
		},
		{
			name:       "unknown category",
			input:      domain.MenuItemInput{Category: ptr(domain.Category("brunch"))},
			wantFields: []string{"category"},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			api := mocks.NewMenuAPI(t)
			svc := service.NewMenuService(api, longCache(), mocks.NewChangePublisher(t), notify.NewFeed(10, nil), nil)

			_, err := svc.Create(context.Background(), testCase.input)
			require.ErrorIs(t, err, service.ErrInvalidInput)

			var verr *service.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, testCase.wantFields, verr.Fields)
		})
	}
}

func TestMenuService_ValidInputPasses(t *testing.T) {
	api := mocks.NewMenuAPI(t)
	publisher := mocks.NewChangePublisher(t)
	svc := service.NewMenuService(api, longCache(), publisher, notify.NewFeed(10, nil), nil)

	in := domain.MenuItemInput{
		Name:            ptr("Tea"),
		Price:           ptr(decimal.Zero),
		Stock:           ptr(0),
		PreparationTime: ptr(2),
		Category:        ptr(domain.CategoryBeverages),
	}
	api.On("Create", mock.Anything, in).Return(&domain.MenuItem{ID: "m9"}, nil).Once()
	publisher.On("PublishChange", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	_, err := svc.Create(context.Background(), in)
	assert.NoError(t, err, "a publish failure does not fail the mutation")
}

func newAuth(t *testing.T, c *cache.Cache, token string) (*service.AuthService, *mocks.AuthAPI, *mocks.TokenStore) {
	t.Helper()
	api := mocks.NewAuthAPI(t)
	tokens := mocks.NewTokenStore(t)
	tokens.On("Get", mock.Anything).Return(token, token != "", nil).Maybe()
	return service.NewAuthService(api, tokens, c, notify.NewFeed(10, nil), nil), api, tokens
}

func TestAuthService_NoTokenIsUnauthenticated(t *testing.T) {
	auth, _, _ := newAuth(t, longCache(), "")

	_, err := auth.CurrentUser(context.Background())
	assert.ErrorIs(t, err, client.ErrUnauthenticated)
	assert.False(t, auth.IsAuthenticated(context.Background()))
}

func TestAuthService_RejectedTokenIsUnauthenticated(t *testing.T) {
	auth, api, _ := newAuth(t, longCache(), "expired")
	api.On("Me", mock.Anything).Return(nil, &client.APIError{Kind: client.KindUnauthenticated, StatusCode: 401}).Twice()

	assert.False(t, auth.IsAuthenticated(context.Background()))
	_, err := auth.CurrentUser(context.Background())
	assert.ErrorIs(t, err, client.ErrUnauthenticated)
}

func TestAuthService_LoginAndLogout(t *testing.T) {
	c := longCache()
	api := mocks.NewAuthAPI(t)
	tokens := mocks.NewTokenStore(t)
	auth := service.NewAuthService(api, tokens, c, notify.NewFeed(10, nil), nil)

	creds := domain.Credentials{Email: "chef@example.com", Password: "secret"}
	api.On("Login", mock.Anything, creds).Return(&client.Session{User: domain.User{ID: "u1", Email: creds.Email}, Token: "abc"}, nil).Once()
	tokens.On("Set", mock.Anything, "abc").Return(nil).Once()
	tokens.On("Clear", mock.Anything).Return(nil).Once()

	user, err := auth.Login(context.Background(), creds)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	require.NoError(t, auth.Logout(context.Background()))
	_, ok := cache.Peek[*domain.User](c, service.KeyUser)
	assert.False(t, ok)
}

func TestAuthService_LoginValidation(t *testing.T) {
	auth, _, _ := newAuth(t, longCache(), "")

	_, err := auth.Login(context.Background(), domain.Credentials{Email: "not-an-email"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = auth.Signup(context.Background(), domain.SignupRequest{Email: "a@b.co", Password: "longenough", ConfirmPassword: "different"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

type orderFixture struct {
	svc       *service.OrderService
	orders    *mocks.OrderAPI
	menus     *mocks.MenuAPI
	publisher *mocks.ChangePublisher
	qr        *mocks.QRGenerator
	feed      *notify.Feed
}

func newOrderFixture(t *testing.T) orderFixture {
	t.Helper()
	c := longCache()
	auth, authAPI, _ := newAuth(t, c, "tok")
	authAPI.On("Me", mock.Anything).Return(&domain.User{ID: "rest-1"}, nil).Maybe()

	f := orderFixture{
		orders:    mocks.NewOrderAPI(t),
		menus:     mocks.NewMenuAPI(t),
		publisher: mocks.NewChangePublisher(t),
		qr:        mocks.NewQRGenerator(t),
		feed:      notify.NewFeed(10, nil),
	}
	menuSvc := service.NewMenuService(f.menus, c, f.publisher, f.feed, nil)
	f.svc = service.NewOrderService(service.OrderServiceDeps{
		API:       f.orders,
		Menus:     menuSvc,
		Session:   auth,
		Cache:     c,
		Publisher: f.publisher,
		Notifier:  f.feed,
		QR:        f.qr,
		Location:  time.UTC,
	})
	return f
}

func TestOrderService_ListScopedToAccount(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.On("List", mock.Anything, client.ListFilter{Owner: "rest-1"}).Return([]domain.Order{
		{ID: "o1", Status: domain.StatusNew},
		{ID: "o2", Status: domain.StatusCancelled},
	}, nil).Once()

	board, err := f.svc.Board(context.Background())
	require.NoError(t, err)
	assert.Len(t, board.New, 1)
	assert.Len(t, board.Done, 1)
}

func TestOrderService_Details(t *testing.T) {
	f := newOrderFixture(t)
	order := domain.Order{
		ID:        "o1",
		CreatedAt: &domain.Timestamp{Time: time.Date(2025, 4, 28, 12, 30, 0, 0, time.UTC)},
		Items: []domain.OrderItem{
			{MenuItem: "a", Quantity: 1}, {MenuItem: "b", Quantity: 2}, {MenuItem: "c", Quantity: 1},
			{MenuItem: "d", Quantity: 1}, {MenuItem: "ghost", Quantity: 9},
		},
	}
	menu := []domain.MenuItem{
		{ID: "a", Price: decimal.NewFromInt(1)},
		{ID: "b", Price: decimal.NewFromInt(2)},
		{ID: "c", Price: decimal.NewFromInt(3)},
		{ID: "d", Price: decimal.NewFromInt(4)},
	}
	f.orders.On("List", mock.Anything, client.ListFilter{Owner: "rest-1"}).Return([]domain.Order{order}, nil).Once()
	f.menus.On("List", mock.Anything, client.ListFilter{}).Return(menu, nil).Once()

	details, err := f.svc.Details(context.Background(), "o1", 1)
	require.NoError(t, err)

	assert.Equal(t, "12:30 28/04", details.DisplayTime)
	assert.Equal(t, 2, details.Page.TotalPages)
	assert.Equal(t, 1, details.Page.Current)
	require.Len(t, details.Lines, 1)
	assert.Equal(t, "d", details.Lines[0].Item.ID)
	assert.Equal(t, 5, details.TotalQuantity)
	assert.Equal(t, "12.00", details.ComputedTotal)
	assert.Equal(t, []string{"ghost"}, details.Unresolved)
}

func TestOrderService_DetailsFallsBackToGet(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.On("List", mock.Anything, client.ListFilter{Owner: "rest-1"}).Return([]domain.Order{}, nil).Once()
	f.orders.On("Get", mock.Anything, "missing").Return(nil, &client.APIError{Kind: client.KindNotFound, StatusCode: 404}).Once()

	_, err := f.svc.Details(context.Background(), "missing", 0)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestOrderService_Update(t *testing.T) {
	tests := []struct {
		name        string
		update      domain.OrderUpdate
		setup       func(f orderFixture, upd domain.OrderUpdate)
		wantErr     error
		wantLevel   notify.Level
		wantMessage string
	}{
		{
			name:   "status change",
			update: domain.OrderUpdate{Status: ptr(domain.StatusPreparing)},
			setup: func(f orderFixture, upd domain.OrderUpdate) {
				f.orders.On("Update", mock.Anything, "o1", upd).Return(&domain.Order{ID: "o1", Owner: "rest-1"}, nil).Once()
				f.publisher.On("PublishChange", mock.Anything, domain.ChangeEvent{Type: domain.EventOrderChanged, EntityID: "o1", Owner: "rest-1"}).Return(nil).Once()
			},
			wantLevel:   notify.LevelSuccess,
			wantMessage: "Order updated successfully",
		},
		{
			name:        "unknown payment status",
			update:      domain.OrderUpdate{PaymentStatus: ptr(domain.PaymentStatus("refunded"))},
			setup:       func(orderFixture, domain.OrderUpdate) {},
			wantErr:     service.ErrInvalidInput,
			wantLevel:   notify.LevelError,
			wantMessage: "paymentStatus must be one of pending, paid, failed",
		},
		{
			name:   "server rejects",
			update: domain.OrderUpdate{Status: ptr(domain.StatusCompleted)},
			setup: func(f orderFixture, upd domain.OrderUpdate) {
				f.orders.On("Update", mock.Anything, "o1", upd).
					Return(nil, &client.APIError{Kind: client.KindNotFound, StatusCode: 404, Message: "Order not found"}).Once()
			},
			wantErr:     client.ErrNotFound,
			wantLevel:   notify.LevelError,
			wantMessage: "Failed to update order: Order not found",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newOrderFixture(t)
			testCase.setup(f, testCase.update)

			_, err := f.svc.Update(context.Background(), "o1", testCase.update)
			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
			} else {
				assert.NoError(t, err)
			}

			msg := lastMessage(f.feed)
			assert.Equal(t, testCase.wantLevel, msg.Level)
			assert.Equal(t, testCase.wantMessage, msg.Message)
		})
	}
}

func TestOrderService_QRCode(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.On("List", mock.Anything, client.ListFilter{Owner: "rest-1"}).Return([]domain.Order{{ID: "o1"}}, nil).Once()
	f.qr.On("Generate", "o1").Return([]byte("png"), nil).Once()

	png, err := f.svc.QRCode(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), png)
}

func TestDefaultQRGenerator(t *testing.T) {
	gen := service.DefaultQRGenerator{PublicURL: "https://dash.example.com/"}
	assert.Equal(t, "https://dash.example.com/orders/o%201", gen.Link("o 1"))

	png, err := gen.Generate("o1")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}

func TestConsumer_Process(t *testing.T) {
	c := longCache()
	feed := notify.NewFeed(10, nil)
	consumer := service.NewConsumer(nil, c, feed, "dash-1", nil)

	fetches := 0
	load := func() {
		_, err := cache.Query(context.Background(), c, service.KeyOrders, func(context.Context) ([]domain.Order, error) {
			fetches++
			return nil, nil
		})
		require.NoError(t, err)
	}

	load()
	consumer.Process(domain.ChangeEvent{Type: domain.EventOrderChanged, EntityID: "o1", Source: "dash-1"})
	load()
	assert.Equal(t, 1, fetches, "own events are skipped")

	consumer.Process(domain.ChangeEvent{Type: domain.EventOrderCreated, EntityID: "o2", RecipientName: "Ada", TotalAmount: decimal.RequireFromString("12.5")})
	load()
	assert.Equal(t, 2, fetches)
	assert.Equal(t, "New order from Ada: 12.50", lastMessage(feed).Message)
	assert.Equal(t, notify.LevelInfo, lastMessage(feed).Level)

	consumer.Process(domain.ChangeEvent{Type: "review.created"})
	load()
	assert.Equal(t, 2, fetches)
}
