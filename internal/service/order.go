package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/NEPJU/APIs/internal/model"
)

type OrderLine struct {
	ProductID uint
	Quantity  int
	Price     decimal.Decimal
}

// OrderPatch lists the order columns a status update may touch. Status is
// always written; nil pointers leave their column alone.
type OrderPatch struct {
	Status         string
	TrackingNumber *string
	PaymentImage   *string
}

func (p OrderPatch) columns() (map[string]any, error) {
	if !model.ValidStatus(p.Status) {
		return nil, validationf("invalid status %q", p.Status)
	}
	cols := map[string]any{"status": p.Status}
	if p.TrackingNumber != nil {
		cols["tracking_number"] = *p.TrackingNumber
	}
	if p.PaymentImage != nil {
		cols["payment_image_base64"] = *p.PaymentImage
	}
	return cols, nil
}

type OrderService interface {
	Place(ctx context.Context, memberID uint, lines []OrderLine, total decimal.Decimal) (model.Order, error)
	MemberOrders(ctx context.Context, memberID uint) ([]model.Order, error)
	Get(ctx context.Context, orderID uint) (model.Order, error)
	Items(ctx context.Context, orderID uint) ([]model.OrderItemDetail, error)
	AdminOrders(ctx context.Context) ([]model.AdminOrder, error)
	UpdateStatus(ctx context.Context, orderID uint, patch OrderPatch) error
	Cancel(ctx context.Context, orderID uint) error
	ConfirmPayment(ctx context.Context, orderID uint, status string) error
	AddTracking(ctx context.Context, orderID uint, trackingNumber, carrier string) error
	AttachPaymentProof(ctx context.Context, orderID uint, mimeType string, data []byte) (string, error)
}

type orderService struct {
	db    *gorm.DB
	cache ProductCache
	email EmailService
}

func NewOrderService(db *gorm.DB, cache ProductCache, email EmailService) OrderService {
	if cache == nil {
		cache = noCache{}
	}
	return &orderService{db: db, cache: cache, email: email}
}

func (s *orderService) Place(ctx context.Context, memberID uint, lines []OrderLine, total decimal.Decimal) (model.Order, error) {
	if memberID == 0 {
		return model.Order{}, validationf("memberId is required")
	}
	if len(lines) == 0 {
		return model.Order{}, validationf("cartItems must not be empty")
	}
	if total.IsNegative() {
		return model.Order{}, validationf("totalAmount must not be negative")
	}
	for i, l := range lines {
		if l.ProductID == 0 || l.Quantity <= 0 || l.Price.IsNegative() {
			return model.Order{}, validationf("cartItems[%d] needs product_id, a positive quantity and a price", i)
		}
	}

	order := model.Order{MemberID: memberID, TotalAmount: total, Status: model.StatusWaiting}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen := make(map[uint]bool, len(lines))
		for _, l := range lines {
			if seen[l.ProductID] {
				continue
			}
			seen[l.ProductID] = true
			if err := productExists(ctx, tx, l.ProductID); err != nil {
				return err
			}
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		items := make([]model.OrderItem, 0, len(lines))
		for _, l := range lines {
			items = append(items, model.OrderItem{
				OrderID:   order.ID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				Price:     l.Price,
			})
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

func (s *orderService) MemberOrders(ctx context.Context, memberID uint) ([]model.Order, error) {
	orders := []model.Order{}
	err := s.db.WithContext(ctx).Where("member_id = ?", memberID).Order("order_id asc").Find(&orders).Error
	return orders, err
}

func (s *orderService) Get(ctx context.Context, orderID uint) (model.Order, error) {
	var o model.Order
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, notFoundf("Order not found")
	}
	return o, err
}

func (s *orderService) Items(ctx context.Context, orderID uint) ([]model.OrderItemDetail, error) {
	items := []model.OrderItemDetail{}
	err := s.db.WithContext(ctx).Table("order_items AS oi").
		Select(`oi.order_item_id, oi.order_id, oi.quantity, oi.price, p.product_id, p.product_name,
			p.description, p.price AS product_price, p.quantity AS product_quantity, p.category,
			p.sales_count, p.images_base64`).
		Joins("JOIN products p ON oi.product_id = p.product_id").
		Where("oi.order_id = ?", orderID).
		Order("oi.order_item_id asc").
		Scan(&items).Error
	return items, err
}

var adminStatuses = []string{model.StatusWaiting, model.StatusShipped, model.StatusDelivered, model.StatusCancelled}

func (s *orderService) AdminOrders(ctx context.Context) ([]model.AdminOrder, error) {
	orders := []model.AdminOrder{}
	err := s.db.WithContext(ctx).Table("orders").
		Select(`orders.*, users.name AS user_name, users.email AS user_email, users.address AS user_address,
			users.profileimg AS user_profileimg, users.phone_number AS user_phone`).
		Joins("JOIN users ON orders.member_id = users.member_id").
		Where("orders.status IN ?", adminStatuses).
		Order("orders.order_id desc").
		Scan(&orders).Error
	return orders, err
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID uint, patch OrderPatch) error {
	cols, err := patch.columns()
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&model.Order{}).Where("order_id = ?", orderID).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFoundf("Order not found")
	}
	return nil
}

func (s *orderService) Cancel(ctx context.Context, orderID uint) error {
	return s.UpdateStatus(ctx, orderID, OrderPatch{Status: model.StatusCancelled})
}

type confirmLine struct {
	ProductID   uint
	Quantity    int
	Price       decimal.Decimal
	ProductName string
	Category    string
}

// ConfirmPayment sets the order's status and, the first time an order is
// confirmed, takes its items out of stock and writes one sales_summary row
// per item. All of it commits together or not at all.
func (s *orderService) ConfirmPayment(ctx context.Context, orderID uint, status string) error {
	if !model.ValidStatus(status) {
		return validationf("invalid status %q", status)
	}

	var order model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).Where("order_id = ?", orderID).Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFoundf("Order not found")
		}
		if err := tx.Where("order_id = ?", orderID).First(&order).Error; err != nil {
			return err
		}

		var logged int64
		if err := tx.Model(&model.SalesSummary{}).Where("order_id = ?", orderID).Count(&logged).Error; err != nil {
			return err
		}
		if logged > 0 {
			return nil
		}

		var lines []confirmLine
		if err := tx.Table("order_items AS oi").
			Select("oi.product_id, oi.quantity, oi.price, p.product_name, p.category").
			Joins("JOIN products p ON oi.product_id = p.product_id").
			Where("oi.order_id = ?", orderID).
			Order("oi.order_item_id asc").
			Scan(&lines).Error; err != nil {
			return err
		}

		for _, l := range lines {
			if err := tx.Model(&model.Product{}).Where("product_id = ?", l.ProductID).UpdateColumns(map[string]any{
				"quantity":    gorm.Expr("quantity - ?", l.Quantity),
				"sales_count": gorm.Expr("sales_count + ?", l.Quantity),
			}).Error; err != nil {
				return err
			}
			entry := model.SalesSummary{
				OrderID:         order.ID,
				MemberID:        order.MemberID,
				ProductID:       l.ProductID,
				ProductName:     l.ProductName,
				ProductCategory: l.Category,
				Quantity:        l.Quantity,
				Price:           l.Price,
				TotalPrice:      l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))),
				OrderDate:       order.OrderDate,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	s.notify(ctx, order.MemberID, fmt.Sprintf("Order #%d %s", order.ID, strings.ToLower(status)),
		fmt.Sprintf("Your payment for order #%d has been confirmed. Current status: %s.", order.ID, status))
	return nil
}

// AddTracking only applies to shipped orders. An unknown order and an order
// in any other state are reported the same way.
func (s *orderService) AddTracking(ctx context.Context, orderID uint, trackingNumber, carrier string) error {
	trackingNumber = strings.TrimSpace(trackingNumber)
	carrier = strings.TrimSpace(carrier)
	if trackingNumber == "" || carrier == "" {
		return validationf("Order ID, tracking number, and carrier name are required")
	}

	res := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND status = ?", orderID, model.StatusShipped).
		Updates(map[string]any{"tracking_number": trackingNumber, "carrier_name": carrier})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFoundf("Order not found or not in Shipped status")
	}

	var memberID uint
	if err := s.db.WithContext(ctx).Model(&model.Order{}).Where("order_id = ?", orderID).
		Pluck("member_id", &memberID).Error; err == nil {
		s.notify(ctx, memberID, fmt.Sprintf("Order #%d has shipped", orderID),
			fmt.Sprintf("Your order #%d is on its way with %s. Tracking number: %s.", orderID, carrier, trackingNumber))
	}
	return nil
}

// AttachPaymentProof stores the uploaded file inline as a data URL and
// returns it.
func (s *orderService) AttachPaymentProof(ctx context.Context, orderID uint, mimeType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", validationf("No file uploaded")
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	url := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
	res := s.db.WithContext(ctx).Model(&model.Order{}).Where("order_id = ?", orderID).
		Update("payment_image_base64", url)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", notFoundf("Order not found")
	}
	return url, nil
}

// notify is best effort: a failed lookup or send is logged and dropped.
func (s *orderService) notify(ctx context.Context, memberID uint, subject, body string) {
	if s.email == nil {
		return
	}
	var u model.User
	if err := s.db.WithContext(ctx).Where("member_id = ?", memberID).First(&u).Error; err != nil {
		return
	}
	if err := s.email.Send(u.Email, subject, body); err != nil {
		log.Printf("order: notify member %d: %v", memberID, err)
	}
}
