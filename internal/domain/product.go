package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidPrice = errors.New("price must be a number")

// Product is a catalog entry as stored by the remote product API.
// ID is assigned by the remote store and never changes afterwards.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Image string
}

type productJSON struct {
	ID    json.RawMessage `json:"id,omitempty"`
	Name  string          `json:"name"`
	Price json.Number     `json:"price"`
	Image string          `json:"image"`
}

// PriceText renders the price the way cards display it.
func (p Product) PriceText() string {
	return "$ " + FormatPrice(p.Price)
}

func (p Product) MarshalJSON() ([]byte, error) {
	out := productJSON{
		Name:  p.Name,
		Price: json.Number(p.Price.String()),
		Image: p.Image,
	}
	if p.ID != "" {
		raw, err := json.Marshal(p.ID)
		if err != nil {
			return nil, err
		}
		out.ID = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts ids sent either as JSON strings or numbers, and
// prices sent either as numbers or numeric strings.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    json.RawMessage `json:"id"`
		Name  string          `json:"name"`
		Price json.RawMessage `json:"price"`
		Image string          `json:"image"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}
	price := decimal.Zero
	if len(raw.Price) > 0 && !bytes.Equal(raw.Price, []byte("null")) {
		if err := price.UnmarshalJSON(raw.Price); err != nil {
			return fmt.Errorf("decode price: %w", err)
		}
	}
	*p = Product{ID: id, Name: raw.Name, Price: price, Image: raw.Image}
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode id: %w", err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("decode id: %w", err)
	}
	return n.String(), nil
}

// ParsePrice coerces raw form text into a price rounded to cents.
func ParsePrice(raw string) (decimal.Decimal, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return decimal.Zero, ErrInvalidPrice
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	return d.Round(2), nil
}

func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}
