package service

import (
	"context"

	"restodash/dashboard-svc/internal/dialog"
	"restodash/dashboard-svc/internal/domain"

	"go.uber.org/zap"
)

type (
	MenuDialog  = dialog.Controller[domain.MenuItem, domain.MenuItemInput]
	OrderDialog = dialog.Controller[domain.Order, domain.OrderUpdate]
)

type DialogOptions struct {
	StrictEdit bool
	PreviewDir string
	Notifier   Notifier
	Logger     *zap.Logger
}

func NewMenuDialog(menus MenuServiceInterface, opts DialogOptions) *MenuDialog {
	return dialog.New(dialog.Options[domain.MenuItem, domain.MenuItemInput]{
		Name:    "menu item",
		Backend: menus,
		IDOf:    func(item domain.MenuItem) string { return item.ID },
		Attach: func(in domain.MenuItemInput, upload *domain.Upload) domain.MenuItemInput {
			in.Upload = upload
			return in
		},
		AllowCreate: true,
		StrictEdit:  opts.StrictEdit,
		PreviewDir:  opts.PreviewDir,
		Notifier:    opts.Notifier,
		Logger:      opts.Logger,
	})
}

// Orders come from the ordering system, so the order dialog only edits.
func NewOrderDialog(orders OrderServiceInterface, opts DialogOptions) *OrderDialog {
	return dialog.New(dialog.Options[domain.Order, domain.OrderUpdate]{
		Name:       "order",
		Backend:    orderDialogBackend{orders},
		IDOf:       func(o domain.Order) string { return o.ID },
		StrictEdit: opts.StrictEdit,
		PreviewDir: opts.PreviewDir,
		Notifier:   opts.Notifier,
		Logger:     opts.Logger,
	})
}

type orderDialogBackend struct {
	OrderServiceInterface
}

func (orderDialogBackend) Create(context.Context, domain.OrderUpdate) (*domain.Order, error) {
	return nil, dialog.ErrCreateUnsupported
}
