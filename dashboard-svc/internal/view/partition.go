// Package view derives display-ready projections from cached collections.
// Everything here is a pure function of its inputs.
package view

import (
	"time"

	"restodash/dashboard-svc/internal/domain"
)

// OrderCard is an order as the board shows it.
type OrderCard struct {
	domain.Order
	DisplayTime string `json:"displayTime"`
}

// Board splits orders into the dashboard columns. Done holds completed and
// cancelled orders; Other catches statuses outside the known set so nothing
// is silently dropped.
type Board struct {
	New       []OrderCard `json:"new"`
	Preparing []OrderCard `json:"preparing"`
	Done      []OrderCard `json:"done"`
	Other     []OrderCard `json:"other,omitempty"`
}

func (b Board) Len() int {
	return len(b.New) + len(b.Preparing) + len(b.Done) + len(b.Other)
}

// Partition keeps the relative order of the input inside every column.
func Partition(orders []domain.Order, loc *time.Location) Board {
	board := Board{
		New:       []OrderCard{},
		Preparing: []OrderCard{},
		Done:      []OrderCard{},
	}
	for _, o := range orders {
		card := OrderCard{Order: o, DisplayTime: FormatDateTime(o.CreatedAt, loc)}
		switch o.Status {
		case domain.StatusNew:
			board.New = append(board.New, card)
		case domain.StatusPreparing:
			board.Preparing = append(board.Preparing, card)
		case domain.StatusCompleted, domain.StatusCancelled:
			board.Done = append(board.Done, card)
		default:
			board.Other = append(board.Other, card)
		}
	}
	return board
}
