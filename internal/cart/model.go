package cart

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinQuantity  = 1
	MaxQuantity  = 100
	DefaultColor = "White"
)

// LineItem is one configured product in a cart.
type LineItem struct {
	ID                string          `json:"id"`
	ProductName       string          `json:"product_name"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Quantity          int             `json:"quantity"`
	Color             string          `json:"color"`
	CustomizationText string          `json:"customization_text,omitempty"`
	DesignImageRef    string          `json:"design_image_ref"`
}

func (l LineItem) LinePrice() decimal.Decimal { return l.UnitPrice }
func (l LineItem) LineQuantity() int          { return l.Quantity }

// Validate checks the invariants every line must hold before it enters a cart.
func (l LineItem) Validate() error {
	switch {
	case strings.TrimSpace(l.ProductName) == "":
		return ErrProductRequired
	case l.Quantity < MinQuantity || l.Quantity > MaxQuantity:
		return ErrInvalidQuantity
	case l.UnitPrice.IsNegative():
		return ErrInvalidPrice
	case strings.TrimSpace(l.DesignImageRef) == "":
		return ErrDesignRequired
	}
	return nil
}

// CartItem is a persisted server-side line.
type CartItem struct {
	LineItem
	UserID    uint
	CreatedAt time.Time
	UpdatedAt time.Time
}

type AddToCartParams struct {
	UserID            uint
	ProductName       string
	Quantity          int
	Color             string
	CustomizationText string
	DesignImageRef    string
}

type DeleteFromCartParams struct {
	UserID uint
	ItemID string
}
