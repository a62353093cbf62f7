package service

import (
	"context"
	"fmt"
	"net/url"

	"restodash/dashboard-svc/internal/cache"
	"restodash/dashboard-svc/internal/client"
	"restodash/dashboard-svc/internal/domain"
	"restodash/dashboard-svc/internal/view"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type MenuService struct {
	api       MenuAPI
	cache     *cache.Cache
	publisher ChangePublisher
	notifier  Notifier
	validate  *validator.Validate
	log       *zap.Logger
}

func NewMenuService(api MenuAPI, c *cache.Cache, publisher ChangePublisher, notifier Notifier, log *zap.Logger) *MenuService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MenuService{
		api:       api,
		cache:     c,
		publisher: publisher,
		notifier:  notifier,
		validate:  newValidator(),
		log:       log.Named("menu"),
	}
}

func menuListKey(owner string) string {
	if owner == "" {
		return KeyMenus
	}
	return KeyMenus + "?owner=" + url.QueryEscape(owner)
}

func menuKey(id string) string {
	return KeyMenus + "/" + id
}

func (s *MenuService) List(ctx context.Context, owner string) ([]domain.MenuItem, error) {
	return cache.Query(ctx, s.cache, menuListKey(owner), func(ctx context.Context) ([]domain.MenuItem, error) {
		return s.api.List(ctx, client.ListFilter{Owner: owner})
	})
}

func (s *MenuService) Get(ctx context.Context, id string) (*domain.MenuItem, error) {
	return cache.Query(ctx, s.cache, menuKey(id), func(ctx context.Context) (*domain.MenuItem, error) {
		return s.api.Get(ctx, id)
	})
}

// Lookup reads the cached menu collections without fetching, the unscoped
// list and every owner-scoped one.
func (s *MenuService) Lookup(id string) (domain.MenuItem, bool) {
	for _, items := range cache.PeekCovered[[]domain.MenuItem](s.cache, KeyMenus) {
		for _, item := range items {
			if item.ID == id {
				return item, true
			}
		}
	}
	return domain.MenuItem{}, false
}

func (s *MenuService) Table(ctx context.Context) (view.TableView, error) {
	items, err := s.List(ctx, "")
	if err != nil {
		return view.TableView{}, err
	}
	return view.Table(items, view.MenuColumns)
}

func (s *MenuService) Create(ctx context.Context, in domain.MenuItemInput) (*domain.MenuItem, error) {
	if err := s.validate.Struct(in); err != nil {
		err = validationError(err)
		s.notifier.Error(err.Error())
		return nil, err
	}

	item, err := s.api.Create(ctx, in)
	if err != nil {
		s.notifier.Error(fmt.Sprintf("Failed to create menu item: %s", client.MessageOf(err)))
		return nil, err
	}

	s.notifier.Success("Menu item created successfully")
	s.afterMutation(ctx, item.ID, item.Owner)
	return item, nil
}

func (s *MenuService) Update(ctx context.Context, id string, in domain.MenuItemInput) (*domain.MenuItem, error) {
	if err := s.validate.Struct(in); err != nil {
		err = validationError(err)
		s.notifier.Error(err.Error())
		return nil, err
	}

	item, err := s.api.Update(ctx, id, in)
	if err != nil {
		s.notifier.Error(fmt.Sprintf("Failed to update menu item: %s", client.MessageOf(err)))
		return nil, err
	}

	s.notifier.Success("Menu item updated successfully")
	s.afterMutation(ctx, id, item.Owner)
	return item, nil
}

func (s *MenuService) Delete(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		s.notifier.Error(fmt.Sprintf("Failed to delete menu item: %s", client.MessageOf(err)))
		return err
	}

	s.notifier.Success("Menu item deleted successfully")
	s.afterMutation(ctx, id, "")
	return nil
}

// afterMutation tells the other dashboard instances and then invalidates,
// which stays the last step of every successful mutation.
func (s *MenuService) afterMutation(ctx context.Context, id, owner string) {
	event := domain.ChangeEvent{Type: domain.EventMenuChanged, EntityID: id, Owner: owner}
	if err := s.publisher.PublishChange(ctx, event); err != nil {
		s.log.Warn("publish menu change", zap.String("id", id), zap.Error(err))
	}
	s.cache.Invalidate(KeyMenus)
}
