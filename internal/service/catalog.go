package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/NEPJU/APIs/internal/model"
	"github.com/NEPJU/APIs/internal/store"
)

// Tables holding a product_id that must follow the product through
// renumbering. sales_summary is a ledger and keeps the id it was written with.
var productRefTables = []string{"order_items", "favorite_products", "shopping_cart", "product_reviews"}

type NewProduct struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    *int
	Category    string
	Images      []string
}

type ProductUpdate struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    *int
	Category    string
}

type CatalogService interface {
	Create(ctx context.Context, p NewProduct) (model.Product, error)
	Update(ctx context.Context, id uint, p ProductUpdate) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]model.ProductListing, error)
	Get(ctx context.Context, id uint) (model.Product, error)
}

type catalogService struct {
	db    *gorm.DB
	cache ProductCache
}

func NewCatalogService(db *gorm.DB, cache ProductCache) CatalogService {
	if cache == nil {
		cache = noCache{}
	}
	return &catalogService{db: db, cache: cache}
}

func (s *catalogService) Create(ctx context.Context, in NewProduct) (model.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	switch {
	case in.Name == "":
		return model.Product{}, validationf("product_name is required")
	case !in.Price.IsPositive():
		return model.Product{}, validationf("price must be greater than 0")
	case in.Quantity == nil || *in.Quantity < 0:
		return model.Product{}, validationf("quantity is required")
	case in.Category == "":
		return model.Product{}, validationf("category is required")
	case len(in.Images) == 0:
		return model.Product{}, validationf("at least one image is required")
	}

	p := model.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    *in.Quantity,
		Category:    in.Category,
		Images:      in.Images,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		return store.WithForeignKeysSuspended(tx, func(tx *gorm.DB) error {
			moved, err := renumber(tx)
			if err != nil {
				return err
			}
			if id, ok := moved[p.ID]; ok {
				p.ID = id
			}
			return nil
		})
	})
	if err != nil {
		return model.Product{}, err
	}
	s.cache.Invalidate(ctx)
	return p, nil
}

func (s *catalogService) Update(ctx context.Context, id uint, in ProductUpdate) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" || strings.TrimSpace(in.Description) == "" || !in.Price.IsPositive() ||
		in.Quantity == nil || in.Category == "" {
		return validationf("All fields are required")
	}

	res := s.db.WithContext(ctx).Model(&model.Product{}).Where("product_id = ?", id).Updates(map[string]any{
		"product_name": in.Name,
		"description":  in.Description,
		"price":        in.Price,
		"quantity":     *in.Quantity,
		"category":     in.Category,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFoundf("Product not found")
	}
	s.cache.Invalidate(ctx)
	return nil
}

// Delete removes the product and every row pointing at it, then closes the
// gap it leaves in the id sequence.
func (s *catalogService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return store.WithForeignKeysSuspended(tx, func(tx *gorm.DB) error {
			for _, table := range productRefTables {
				if err := tx.Exec("DELETE FROM "+table+" WHERE product_id = ?", id).Error; err != nil {
					return err
				}
			}
			res := tx.Where("product_id = ?", id).Delete(&model.Product{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return notFoundf("Product not found")
			}
			_, err := renumber(tx)
			return err
		})
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

func (s *catalogService) List(ctx context.Context) ([]model.ProductListing, error) {
	if cached, ok := s.cache.Get(ctx); ok {
		return cached, nil
	}

	db := s.db.WithContext(ctx)
	var products []model.Product
	if err := db.Order("product_id asc").Find(&products).Error; err != nil {
		return nil, err
	}
	var ratings []struct {
		ProductID uint
		Average   float64
	}
	if err := db.Model(&model.Review{}).
		Select("product_id, AVG(rating) AS average").
		Group("product_id").
		Scan(&ratings).Error; err != nil {
		return nil, err
	}
	avg := make(map[uint]float64, len(ratings))
	for _, r := range ratings {
		avg[r.ProductID] = r.Average
	}

	out := make([]model.ProductListing, 0, len(products))
	for _, p := range products {
		if p.Images == nil {
			p.Images = []string{}
		}
		out = append(out, model.ProductListing{Product: p, AverageRating: avg[p.ID]})
	}
	s.cache.Set(ctx, out)
	return out, nil
}

func (s *catalogService) Get(ctx context.Context, id uint) (model.Product, error) {
	var p model.Product
	err := s.db.WithContext(ctx).Where("product_id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, notFoundf("Product not found")
	}
	return p, err
}

// renumber rewrites product ids to their rank (1..N) in ascending id order
// and carries every reference along. Walking upwards means the target id is
// always already vacated. It returns old->new for every product that moved.
func renumber(tx *gorm.DB) (map[uint]uint, error) {
	var ids []uint
	if err := tx.Model(&model.Product{}).Order("product_id asc").Pluck("product_id", &ids).Error; err != nil {
		return nil, err
	}

	moved := make(map[uint]uint)
	for i, old := range ids {
		next := uint(i + 1)
		if old == next {
			continue
		}
		if err := tx.Exec("UPDATE products SET product_id = ? WHERE product_id = ?", next, old).Error; err != nil {
			return nil, err
		}
		for _, table := range productRefTables {
			if err := tx.Exec("UPDATE "+table+" SET product_id = ? WHERE product_id = ?", next, old).Error; err != nil {
				return nil, err
			}
		}
		moved[old] = next
	}
	return moved, nil
}
