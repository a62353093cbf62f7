package view

import (
	"restodash/dashboard-svc/internal/domain"

	"github.com/shopspring/decimal"
)

type Line struct {
	Item     domain.MenuItem `json:"item"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// LineItems is an order's item list matched against the menu.
type LineItems struct {
	Lines         []Line          `json:"lines"`
	TotalQuantity int             `json:"totalQuantity"`
	ComputedTotal decimal.Decimal `json:"computedTotal"`
	// Unresolved lists referenced ids the menu no longer has.
	Unresolved []string `json:"unresolved"`

	quantities map[string]int
}

// QuantityOf is the quantity of the first order line naming id, 0 when the
// order does not reference it.
func (l LineItems) QuantityOf(id string) int {
	return l.quantities[id]
}

// Items returns the resolved menu items in menu order.
func (l LineItems) Items() []domain.MenuItem {
	items := make([]domain.MenuItem, len(l.Lines))
	for i, line := range l.Lines {
		items[i] = line.Item
	}
	return items
}

// ResolveLineItems keeps the menu items an order references, in menu order.
// Dangling references are reported, never an error.
func ResolveLineItems(menu []domain.MenuItem, order domain.Order) LineItems {
	quantities := make(map[string]int, len(order.Items))
	for _, it := range order.Items {
		if _, seen := quantities[it.MenuItem]; !seen {
			quantities[it.MenuItem] = it.Quantity
		}
	}

	out := LineItems{
		Lines:         []Line{},
		Unresolved:    []string{},
		ComputedTotal: decimal.Zero,
		quantities:    quantities,
	}

	found := make(map[string]bool, len(quantities))
	for _, item := range menu {
		qty, ok := quantities[item.ID]
		if !ok || found[item.ID] {
			continue
		}
		found[item.ID] = true
		subtotal := item.Price.Mul(decimal.NewFromInt(int64(qty)))
		out.Lines = append(out.Lines, Line{Item: item, Quantity: qty, Subtotal: subtotal})
		out.TotalQuantity += qty
		out.ComputedTotal = out.ComputedTotal.Add(subtotal)
	}

	for _, it := range order.Items {
		if !found[it.MenuItem] && !contains(out.Unresolved, it.MenuItem) {
			out.Unresolved = append(out.Unresolved, it.MenuItem)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
