package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Delivery is either a plain address string or an object the remote API
// attaches to an order. The raw object is kept so it round-trips.
type Delivery struct {
	Address string
	raw     json.RawMessage
}

func NewDelivery(address string) Delivery {
	return Delivery{Address: address}
}

func (d Delivery) String() string {
	return d.Address
}

func (d *Delivery) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		return json.Unmarshal(b, &d.Address)
	}

	var fields struct {
		Address    string `json:"address"`
		Street     string `json:"street"`
		City       string `json:"city"`
		PostalCode string `json:"postalCode"`
	}
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	d.raw = append(json.RawMessage(nil), b...)
	if fields.Address != "" {
		d.Address = fields.Address
		return nil
	}
	var parts []string
	for _, p := range []string{fields.Street, fields.City, fields.PostalCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	d.Address = strings.Join(parts, ", ")
	return nil
}

func (d Delivery) MarshalJSON() ([]byte, error) {
	if len(d.raw) > 0 {
		return d.raw, nil
	}
	return json.Marshal(d.Address)
}
