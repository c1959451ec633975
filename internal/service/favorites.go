package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/NEPJU/APIs/internal/model"
	"github.com/NEPJU/APIs/internal/store"
)

type FavoriteService interface {
	Add(ctx context.Context, memberID, productID uint) error
	List(ctx context.Context, memberID uint) ([]model.FavoriteLine, error)
	Remove(ctx context.Context, memberID, productID uint) error
}

type favoriteService struct{ db *gorm.DB }

func NewFavoriteService(db *gorm.DB) FavoriteService { return &favoriteService{db: db} }

func (s *favoriteService) Add(ctx context.Context, memberID, productID uint) error {
	if memberID == 0 || productID == 0 {
		return validationf("memberId and productId are required")
	}
	if err := productExists(ctx, s.db, productID); err != nil {
		return err
	}

	var n int64
	db := s.db.WithContext(ctx)
	if err := db.Model(&model.Favorite{}).
		Where("member_id = ? AND product_id = ?", memberID, productID).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return duplicatef("Product is already in favorites")
	}
	if err := db.Create(&model.Favorite{MemberID: memberID, ProductID: productID}).Error; err != nil {
		if store.IsDuplicate(err) {
			return duplicatef("Product is already in favorites")
		}
		return err
	}
	return nil
}

func (s *favoriteService) List(ctx context.Context, memberID uint) ([]model.FavoriteLine, error) {
	lines := []model.FavoriteLine{}
	err := s.db.WithContext(ctx).Table("favorite_products AS f").
		Select("p.product_id, p.product_name, p.description, p.price, p.images_base64").
		Joins("JOIN products p ON f.product_id = p.product_id").
		Where("f.member_id = ?", memberID).
		Order("f.favorite_id asc").
		Scan(&lines).Error
	return lines, err
}

func (s *favoriteService) Remove(ctx context.Context, memberID, productID uint) error {
	res := s.db.WithContext(ctx).
		Where("member_id = ? AND product_id = ?", memberID, productID).
		Delete(&model.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFoundf("Favorite not found")
	}
	return nil
}
