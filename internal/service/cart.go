package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/NEPJU/APIs/internal/model"
	"github.com/NEPJU/APIs/internal/store"
)

type CartService interface {
	Add(ctx context.Context, memberID, productID uint, qty int) ([]model.CartLine, error)
	Get(ctx context.Context, memberID uint) ([]model.CartLine, error)
	Remove(ctx context.Context, memberID, productID uint) error
}

type cartService struct{ db *gorm.DB }

func NewCartService(db *gorm.DB) CartService { return &cartService{db: db} }

// Add puts qty of a product in the member's cart, accumulating onto an
// existing line. It returns the whole cart afterwards.
func (s *cartService) Add(ctx context.Context, memberID, productID uint, qty int) ([]model.CartLine, error) {
	if memberID == 0 || productID == 0 {
		return nil, validationf("memberId and productId are required")
	}
	if qty <= 0 {
		return nil, validationf("quantity must be greater than 0")
	}
	if err := productExists(ctx, s.db, productID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	for attempt := 0; attempt < 2; attempt++ {
		res := db.Model(&model.CartItem{}).
			Where("member_id = ? AND product_id = ?", memberID, productID).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", qty))
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			break
		}
		err := db.Create(&model.CartItem{MemberID: memberID, ProductID: productID, Quantity: qty}).Error
		if err == nil {
			break
		}
		// lost the race against a concurrent insert; the row exists now
		if !store.IsDuplicate(err) || attempt == 1 {
			return nil, err
		}
	}
	return s.Get(ctx, memberID)
}

func (s *cartService) Get(ctx context.Context, memberID uint) ([]model.CartLine, error) {
	lines := []model.CartLine{}
	err := s.db.WithContext(ctx).Table("shopping_cart AS sc").
		Select(`sc.cart_id, sc.product_id, sc.quantity AS quantity_in_cart, p.product_name, p.description,
			p.price, p.quantity AS product_stock, p.images_base64`).
		Joins("JOIN products p ON sc.product_id = p.product_id").
		Where("sc.member_id = ?", memberID).
		Order("sc.cart_id asc").
		Scan(&lines).Error
	return lines, err
}

// Remove is idempotent: removing a product that is not in the cart succeeds.
func (s *cartService) Remove(ctx context.Context, memberID, productID uint) error {
	return s.db.WithContext(ctx).
		Where("member_id = ? AND product_id = ?", memberID, productID).
		Delete(&model.CartItem{}).Error
}

func productExists(ctx context.Context, db *gorm.DB, productID uint) error {
	var p model.Product
	err := db.WithContext(ctx).Select("product_id").Where("product_id = ?", productID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundf("Product not found")
	}
	return err
}
