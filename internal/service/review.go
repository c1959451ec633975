package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/NEPJU/APIs/internal/model"
)

type ReviewService interface {
	AddRating(ctx context.Context, productID, memberID uint, rating int) (uint, error)
	AddReview(ctx context.Context, productID, memberID uint, text string, rating int) (uint, error)
	ForProduct(ctx context.Context, productID uint) ([]model.ReviewDetail, error)
	// Delete removes a review. Unless asAdmin is set only the author's own
	// review matches. Deleting nothing is not an error.
	Delete(ctx context.Context, reviewID, memberID uint, asAdmin bool) error
}

type reviewService struct {
	db    *gorm.DB
	cache ProductCache
}

func NewReviewService(db *gorm.DB, cache ProductCache) ReviewService {
	if cache == nil {
		cache = noCache{}
	}
	return &reviewService{db: db, cache: cache}
}

func (s *reviewService) AddRating(ctx context.Context, productID, memberID uint, rating int) (uint, error) {
	return s.add(ctx, productID, memberID, nil, rating)
}

func (s *reviewService) AddReview(ctx context.Context, productID, memberID uint, text string, rating int) (uint, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, validationf("review is required")
	}
	return s.add(ctx, productID, memberID, &text, rating)
}

func (s *reviewService) add(ctx context.Context, productID, memberID uint, text *string, rating int) (uint, error) {
	if productID == 0 || memberID == 0 {
		return 0, validationf("product_id and member_id are required")
	}
	if rating < 1 || rating > 5 {
		return 0, validationf("rating must be between 1 and 5")
	}
	if err := productExists(ctx, s.db, productID); err != nil {
		return 0, err
	}
	r := model.Review{ProductID: productID, MemberID: memberID, Text: text, Rating: rating}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return 0, err
	}
	s.cache.Invalidate(ctx)
	return r.ID, nil
}

func (s *reviewService) ForProduct(ctx context.Context, productID uint) ([]model.ReviewDetail, error) {
	out := []model.ReviewDetail{}
	err := s.db.WithContext(ctx).Table("product_reviews AS r").
		Select("r.*, u.username, u.profileimg").
		Joins("JOIN users u ON r.member_id = u.member_id").
		Where("r.product_id = ?", productID).
		Order("r.created_at desc, r.review_id desc").
		Scan(&out).Error
	return out, err
}

func (s *reviewService) Delete(ctx context.Context, reviewID, memberID uint, asAdmin bool) error {
	q := s.db.WithContext(ctx).Where("review_id = ?", reviewID)
	if !asAdmin {
		q = q.Where("member_id = ?", memberID)
	}
	res := q.Delete(&model.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		s.cache.Invalidate(ctx)
	}
	return nil
}
