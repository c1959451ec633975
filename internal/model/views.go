package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductListing is a product row with its average review rating.
type ProductListing struct {
	Product
	AverageRating float64 `json:"average_rating"`
}

type CartLine struct {
	CartID         uint            `json:"cart_id"`
	ProductID      uint            `json:"product_id"`
	QuantityInCart int             `json:"quantity_in_cart"`
	ProductName    string          `json:"product_name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	ProductStock   int             `json:"product_stock"`
	Images         []string        `json:"images" gorm:"column:images_base64;serializer:json"`
}

type FavoriteLine struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images" gorm:"column:images_base64;serializer:json"`
}

// OrderItemDetail is an order line joined with the current product row.
type OrderItemDetail struct {
	OrderItemID     uint            `json:"order_item_id"`
	OrderID         uint            `json:"order_id"`
	ProductID       uint            `json:"product_id"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	ProductName     string          `json:"product_name"`
	Description     string          `json:"description"`
	ProductPrice    decimal.Decimal `json:"product_price"`
	ProductQuantity int             `json:"product_quantity"`
	Category        string          `json:"category"`
	SalesCount      int             `json:"sales_count"`
	Images          []string        `json:"images" gorm:"column:images_base64;serializer:json"`
}

// AdminOrder is an order with the contact details of its owner.
type AdminOrder struct {
	Order
	UserName       string `json:"user_name"`
	UserEmail      string `json:"user_email"`
	UserAddress    string `json:"user_address"`
	UserProfileImg string `json:"user_profileimg" gorm:"column:user_profileimg"`
	UserPhone      string `json:"user_phone"`
}

type ReviewDetail struct {
	Review
	Username   string `json:"username"`
	ProfileImg string `json:"profileimg" gorm:"column:profileimg"`
}

type ProductSales struct {
	ProductName   string          `json:"product_name"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	SaleDate      string          `json:"sale_date"`
}

type DailySales struct {
	SaleDate     string          `json:"sale_date"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type SalesReport struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	TopProducts   []ProductSales  `json:"top_products"`
	SalesOverTime []DailySales    `json:"sales_over_time"`
}

// Session is what a successful login or registration hands back.
type Session struct {
	Token    string    `json:"token"`
	UserID   uint      `json:"userId"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	Expires  time.Time `json:"expires_at"`
}
