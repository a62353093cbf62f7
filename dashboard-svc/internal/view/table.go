package view

import (
	"encoding/json"
	"fmt"

	"restodash/dashboard-svc/internal/domain"
)

// Column maps a table heading to a JSON field of the row entity.
type Column struct {
	Label string `json:"label"`
	Field string `json:"field"`
}

var (
	MenuColumns = []Column{
		{Label: "Name", Field: "name"},
		{Label: "Category", Field: "category"},
		{Label: "Preparation Time", Field: "preparationTime"},
		{Label: "Price", Field: "price"},
		{Label: "Stock", Field: "stock"},
	}
	OrderColumns = []Column{
		{Label: "Delivery", Field: "delivery"},
		{Label: "Payment Status", Field: "paymentStatus"},
		{Label: "Payment Method", Field: "paymentMethod"},
		{Label: "Status", Field: "status"},
		{Label: "Amount", Field: "totalAmount"},
	}
)

type Row struct {
	ID    string   `json:"id"`
	Cells []string `json:"cells"`
}

type TableView struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Table renders rows through their JSON form so the field mapping uses the
// same names the API does. Missing fields render as "".
func Table[T any](rows []T, columns []Column) (TableView, error) {
	out := TableView{Columns: columns, Rows: make([]Row, 0, len(rows))}
	for i, row := range rows {
		raw, err := json.Marshal(row)
		if err != nil {
			return TableView{}, fmt.Errorf("row %d: %w", i, err)
		}
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return TableView{}, fmt.Errorf("row %d: %w", i, err)
		}

		r := Row{Cells: make([]string, len(columns))}
		if id, ok := fields["_id"].(string); ok {
			r.ID = id
		}
		for j, col := range columns {
			r.Cells[j] = cell(fields[col.Field])
		}
		out.Rows = append(out.Rows, r)
	}
	return out, nil
}

func cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return fmt.Sprintf("%v", val)
	case bool:
		return fmt.Sprintf("%t", val)
	case map[string]any:
		// address objects read as their one-line form
		raw, _ := json.Marshal(val)
		var d domain.Delivery
		if err := json.Unmarshal(raw, &d); err == nil && d.Address != "" {
			return d.Address
		}
		return string(raw)
	default:
		raw, _ := json.Marshal(val)
		return string(raw)
	}
}
