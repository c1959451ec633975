package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	StatusWaiting   = "Waiting"
	StatusShipped   = "Shipped"
	StatusDelivered = "Delivered"
	StatusCancelled = "Cancelled"
	StatusConfirmed = "Confirmed"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusWaiting, StatusShipped, StatusDelivered, StatusCancelled, StatusConfirmed:
		return true
	}
	return false
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID          uint      `gorm:"column:member_id;primaryKey" json:"member_id"`
	Username    string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"column:password;not null" json:"-"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	PhoneNumber string    `gorm:"size:30" json:"phone_number"`
	ProfileImg  string    `gorm:"column:profileimg" json:"profileimg"`
	Role        string    `gorm:"size:20;not null;default:'user'" json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }

// Product ids are kept dense (1..N); see service.CatalogService.
type Product struct {
	ID          uint            `gorm:"column:product_id;primaryKey" json:"product_id"`
	Name        string          `gorm:"column:product_name;size:255;not null" json:"product_name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Category    string          `gorm:"size:100;index" json:"category"`
	SalesCount  int             `gorm:"not null;default:0" json:"sales_count"`
	Images      []string        `gorm:"column:images_base64;serializer:json" json:"images"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Product) TableName() string { return "products" }

type CartItem struct {
	ID        uint `gorm:"column:cart_id;primaryKey" json:"cart_id"`
	MemberID  uint `gorm:"uniqueIndex:idx_cart_member_product;not null" json:"member_id"`
	ProductID uint `gorm:"uniqueIndex:idx_cart_member_product;index;not null" json:"product_id"`
	Quantity  int  `gorm:"not null" json:"quantity"`
}

func (CartItem) TableName() string { return "shopping_cart" }

type Favorite struct {
	ID        uint      `gorm:"column:favorite_id;primaryKey" json:"favorite_id"`
	MemberID  uint      `gorm:"uniqueIndex:idx_favorite_member_product;not null" json:"member_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_favorite_member_product;index;not null" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Favorite) TableName() string { return "favorite_products" }

type Order struct {
	ID             uint            `gorm:"column:order_id;primaryKey" json:"order_id"`
	MemberID       uint            `gorm:"index;not null" json:"member_id"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Status         string          `gorm:"size:20;not null;default:'Waiting';index" json:"status"`
	TrackingNumber *string         `gorm:"size:100" json:"tracking_number"`
	CarrierName    *string         `gorm:"size:100" json:"carrier_name"`
	PaymentImage   *string         `gorm:"column:payment_image_base64" json:"payment_image_base64"`
	OrderDate      time.Time       `gorm:"autoCreateTime" json:"order_date"`
}

func (Order) TableName() string { return "orders" }

// OrderItem snapshots quantity and unit price at order time.
type OrderItem struct {
	ID        uint            `gorm:"column:order_item_id;primaryKey" json:"order_item_id"`
	OrderID   uint            `gorm:"index;not null" json:"order_id"`
	ProductID uint            `gorm:"index;not null" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

func (OrderItem) TableName() string { return "order_items" }

type Review struct {
	ID        uint      `gorm:"column:review_id;primaryKey" json:"review_id"`
	ProductID uint      `gorm:"index;not null" json:"product_id"`
	MemberID  uint      `gorm:"index;not null" json:"member_id"`
	Text      *string   `gorm:"column:review" json:"review"`
	Rating    int       `gorm:"not null" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

func (Review) TableName() string { return "product_reviews" }

// SalesSummary rows are written once per order item at confirmation and
// never touched again. They carry their own copy of the product fields.
type SalesSummary struct {
	ID              uint            `gorm:"column:summary_id;primaryKey" json:"summary_id"`
	OrderID         uint            `gorm:"index;not null" json:"order_id"`
	MemberID        uint            `gorm:"not null" json:"member_id"`
	ProductID       uint            `gorm:"not null" json:"product_id"`
	ProductName     string          `gorm:"size:255" json:"product_name"`
	ProductCategory string          `gorm:"size:100" json:"product_category"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	OrderDate       time.Time       `gorm:"index;not null" json:"order_date"`
}

func (SalesSummary) TableName() string { return "sales_summary" }

// All lists every table in migration order.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&CartItem{},
		&Favorite{},
		&Order{},
		&OrderItem{},
		&Review{},
		&SalesSummary{},
	}
}
