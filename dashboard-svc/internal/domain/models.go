package domain

import (
	"github.com/shopspring/decimal"
)

func init() {
	// the remote API expects plain JSON numbers for prices
	decimal.MarshalJSONWithoutQuotes = true
}

type Category string

const (
	CategoryAppetizer  Category = "appetizer"
	CategoryMainCourse Category = "main course"
	CategoryDessert    Category = "dessert"
	CategoryBeverages  Category = "beverages"
	CategorySnacks     Category = "snacks"
)

var Categories = []Category{
	CategoryAppetizer,
	CategoryMainCourse,
	CategoryDessert,
	CategoryBeverages,
	CategorySnacks,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Variant struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type MenuItem struct {
	ID              string          `json:"_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Stock           int             `json:"stock"`
	PreparationTime int             `json:"preparationTime"`
	Category        Category        `json:"category"`
	Image           string          `json:"image"`
	Ingredients     []string        `json:"ingredients,omitempty"`
	Variants        []Variant       `json:"variants,omitempty"`
	IsSpecial       bool            `json:"isSpecial"`
	IsAvailable     bool            `json:"isAvailable"`
	Discount        decimal.Decimal `json:"discount"`
	Owner           string          `json:"owner"`
	CreatedAt       *Timestamp      `json:"createdAt,omitempty"`
	ModifiedAt      *Timestamp      `json:"modifiedAt,omitempty"`
}

// Upload is an image file attached to a create or update payload.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (u *Upload) Present() bool {
	return u != nil && len(u.Data) > 0
}

// MenuItemInput is a partial menu item payload. Nil fields are not sent.
// A present Upload supersedes Image.
type MenuItemInput struct {
	Name            *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description     *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price           *decimal.Decimal `json:"price,omitempty" validate:"omitempty,gte=0"`
	Stock           *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	PreparationTime *int             `json:"preparationTime,omitempty" validate:"omitempty,gte=0"`
	Category        *Category        `json:"category,omitempty" validate:"omitempty,menu_category"`
	Image           *string          `json:"image,omitempty"`
	Ingredients     []string         `json:"ingredients,omitempty"`
	IsSpecial       *bool            `json:"isSpecial,omitempty"`
	IsAvailable     *bool            `json:"isAvailable,omitempty"`
	Discount        *decimal.Decimal `json:"discount,omitempty" validate:"omitempty,gte=0"`
	Upload          *Upload          `json:"-"`
}

type OrderStatus string

const (
	StatusNew       OrderStatus = "new"
	StatusPreparing OrderStatus = "preparing"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{StatusNew, StatusPreparing, StatusCompleted, StatusCancelled}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusPreparing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

var PaymentStatuses = []PaymentStatus{PaymentPending, PaymentPaid, PaymentFailed}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

type OrderItem struct {
	MenuItem string `json:"menuItem"`
	Quantity int    `json:"quantity"`
}

type Order struct {
	ID                   string          `json:"_id"`
	RecipientName        string          `json:"recipientName"`
	RecipientEmail       string          `json:"recipientEmail"`
	RecipientPhoneNumber string          `json:"recipientPhoneNumber"`
	Delivery             Delivery        `json:"delivery"`
	Status               OrderStatus     `json:"status"`
	PaymentStatus        PaymentStatus   `json:"paymentStatus"`
	PaymentMethod        string          `json:"paymentMethod"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	Items                []OrderItem     `json:"items"`
	Owner                string          `json:"owner"`
	CreatedAt            *Timestamp      `json:"createdAt,omitempty"`
}

// OrderUpdate is a partial order payload; orders are created outside the dashboard.
type OrderUpdate struct {
	Status        *OrderStatus   `json:"status,omitempty" validate:"omitempty,order_status"`
	PaymentStatus *PaymentStatus `json:"paymentStatus,omitempty" validate:"omitempty,payment_status"`
}

type User struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}
