package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/NEPJU/APIs/internal/model"
	"github.com/NEPJU/APIs/internal/store/storetest"
)

func TestCatalogCreateRenumbers(t *testing.T) {
	db := storetest.New(t)
	cache := &countingCache{}
	svc := NewCatalogService(db, cache)

	seedProduct(t, db, "A", "10", 1)
	b := seedProduct(t, db, "B", "10", 1)
	seedProduct(t, db, "C", "10", 1)
	require.NoError(t, db.Where("product_id = ?", b.ID).Delete(&model.Product{}).Error)
	require.Equal(t, []uint{1, 3}, productIDs(t, db))

	p, err := svc.Create(context.Background(), NewProduct{
		Name:     "D",
		Price:    dec("19.99"),
		Quantity: ptr(4),
		Category: "toys",
		Images:   []string{"data:image/png;base64,AAAA"},
	})
	require.NoError(t, err)

	assert.Equal(t, uint(3), p.ID)
	assert.Equal(t, []uint{1, 2, 3}, productIDs(t, db))
	assert.Equal(t, "C", loadProduct(t, db, 2).Name)
	assert.Equal(t, "D", loadProduct(t, db, 3).Name)
	assert.Equal(t, 1, cache.invalidations)
}

func TestCatalogCreateValidation(t *testing.T) {
	db := storetest.New(t)
	svc := NewCatalogService(db, nil)
	ctx := context.Background()

	valid := NewProduct{
		Name:     "Lamp",
		Price:    dec("5"),
		Quantity: ptr(0),
		Category: "home",
		Images:   []string{"img"},
	}
	cases := map[string]func(p *NewProduct){
		"no name":     func(p *NewProduct) { p.Name = "  " },
		"zero price":  func(p *NewProduct) { p.Price = dec("0") },
		"no quantity": func(p *NewProduct) { p.Quantity = nil },
		"negative":    func(p *NewProduct) { p.Quantity = ptr(-1) },
		"no category": func(p *NewProduct) { p.Category = "" },
		"no images":   func(p *NewProduct) { p.Images = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := svc.Create(ctx, in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Empty(t, productIDs(t, db))

	p, err := svc.Create(ctx, valid)
	require.NoError(t, err)
	assert.Equal(t, uint(1), p.ID)
}

func TestCatalogDeleteRemapsReferences(t *testing.T) {
	db := storetest.New(t)
	svc := NewCatalogService(db, nil)
	u := seedUser(t, db, "alice")

	seedProduct(t, db, "A", "10", 5)
	doomed := seedProduct(t, db, "B", "20", 5)
	c := seedProduct(t, db, "C", "30", 5)

	order := model.Order{MemberID: u.ID, TotalAmount: dec("50"), Status: model.StatusWaiting}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&[]model.OrderItem{
		{OrderID: order.ID, ProductID: doomed.ID, Quantity: 1, Price: dec("20")},
		{OrderID: order.ID, ProductID: c.ID, Quantity: 1, Price: dec("30")},
	}).Error)
	require.NoError(t, db.Create(&[]model.CartItem{
		{MemberID: u.ID, ProductID: doomed.ID, Quantity: 1},
		{MemberID: u.ID, ProductID: c.ID, Quantity: 2},
	}).Error)
	require.NoError(t, db.Create(&model.Favorite{MemberID: u.ID, ProductID: c.ID}).Error)
	require.NoError(t, db.Create(&model.Review{MemberID: u.ID, ProductID: c.ID, Rating: 5}).Error)
	require.NoError(t, db.Create(&model.SalesSummary{
		OrderID: order.ID, MemberID: u.ID, ProductID: c.ID, ProductName: "C",
		Quantity: 1, Price: dec("30"), TotalPrice: dec("30"), OrderDate: time.Now().UTC(),
	}).Error)

	require.NoError(t, svc.Delete(context.Background(), doomed.ID))

	assert.Equal(t, []uint{1, 2}, productIDs(t, db))
	assert.Equal(t, "C", loadProduct(t, db, 2).Name)

	var items []model.OrderItem
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, uint(2), items[0].ProductID)

	var cart []model.CartItem
	require.NoError(t, db.Where("member_id = ?", u.ID).Find(&cart).Error)
	require.Len(t, cart, 1)
	assert.Equal(t, uint(2), cart[0].ProductID)
	assert.Equal(t, 2, cart[0].Quantity)

	var fav model.Favorite
	require.NoError(t, db.First(&fav).Error)
	assert.Equal(t, uint(2), fav.ProductID)

	var rev model.Review
	require.NoError(t, db.First(&rev).Error)
	assert.Equal(t, uint(2), rev.ProductID)

	// the ledger keeps the id it was written with
	var entry model.SalesSummary
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, c.ID, entry.ProductID)
}

func TestCatalogDeleteRollsBackFailedRenumber(t *testing.T) {
	db := storetest.New(t)
	svc := NewCatalogService(db, nil)
	u := seedUser(t, db, "erin")

	seedProduct(t, db, "A", "10", 5)
	doomed := seedProduct(t, db, "B", "20", 5)
	c := seedProduct(t, db, "C", "30", 5)
	require.NoError(t, db.Create(&[]model.CartItem{
		{MemberID: u.ID, ProductID: doomed.ID, Quantity: 1},
		{MemberID: u.ID, ProductID: c.ID, Quantity: 2},
	}).Error)
	require.NoError(t, db.Create(&[]model.Favorite{
		{MemberID: u.ID, ProductID: doomed.ID},
		{MemberID: u.ID, ProductID: c.ID},
	}).Error)
	require.NoError(t, db.Create(&model.Review{MemberID: u.ID, ProductID: doomed.ID, Rating: 4}).Error)

	// fail the last remap statement, after products and the other tables moved
	boom := errors.New("reviews table locked")
	require.NoError(t, db.Callback().Raw().Before("gorm:raw").Register("test:fail_review_remap", func(tx *gorm.DB) {
		if strings.HasPrefix(tx.Statement.SQL.String(), "UPDATE product_reviews") {
			_ = tx.AddError(boom)
		}
	}))

	err := svc.Delete(context.Background(), doomed.ID)
	require.ErrorIs(t, err, boom)

	assert.Equal(t, []uint{1, 2, 3}, productIDs(t, db))
	assert.Equal(t, "B", loadProduct(t, db, 2).Name)
	assert.Equal(t, "C", loadProduct(t, db, 3).Name)

	var cart []uint
	require.NoError(t, db.Model(&model.CartItem{}).Order("product_id asc").Pluck("product_id", &cart).Error)
	assert.Equal(t, []uint{2, 3}, cart)

	var favs []uint
	require.NoError(t, db.Model(&model.Favorite{}).Order("product_id asc").Pluck("product_id", &favs).Error)
	assert.Equal(t, []uint{2, 3}, favs)

	var reviews int64
	require.NoError(t, db.Model(&model.Review{}).Where("product_id = ?", doomed.ID).Count(&reviews).Error)
	assert.Equal(t, int64(1), reviews)
}

func TestCatalogDeleteUnknown(t *testing.T) {
	db := storetest.New(t)
	svc := NewCatalogService(db, nil)
	seedProduct(t, db, "A", "10", 1)

	err := svc.Delete(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []uint{1}, productIDs(t, db))
}

func TestCatalogUpdate(t *testing.T) {
	db := storetest.New(t)
	svc := NewCatalogService(db, nil)
	ctx := context.Background()
	p := seedProduct(t, db, "A", "10", 1)

	upd := ProductUpdate{Name: "A2", Description: "better", Price: dec("12.50"), Quantity: ptr(7), Category: "tools"}
	require.NoError(t, svc.Update(ctx, p.ID, upd))

	got := loadProduct(t, db, p.ID)
	assert.Equal(t, "A2", got.Name)
	assert.Equal(t, 7, got.Quantity)
	assert.True(t, dec("12.50").Equal(got.Price), got.Price.String())

	missing := upd
	missing.Description = ""
	require.ErrorIs(t, svc.Update(ctx, p.ID, missing), ErrValidation)

	require.ErrorIs(t, svc.Update(ctx, 99, upd), ErrNotFound)
}

func TestCatalogListAverageRating(t *testing.T) {
	db := storetest.New(t)
	svc := NewCatalogService(db, nil)
	u := seedUser(t, db, "bob")
	a := seedProduct(t, db, "A", "10", 1)
	seedProduct(t, db, "B", "10", 1)
	require.NoError(t, db.Create(&[]model.Review{
		{ProductID: a.ID, MemberID: u.ID, Rating: 4},
		{ProductID: a.ID, MemberID: u.ID, Rating: 5},
	}).Error)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.InDelta(t, 4.5, list[0].AverageRating, 0.001)
	assert.Zero(t, list[1].AverageRating)
	assert.Equal(t, []string{"data:image/png;base64,AAAA"}, list[0].Images)
}

func TestCatalogListServedFromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := storetest.New(t)
	svc := NewCatalogService(db, NewProductCache(rdb, time.Minute))
	ctx := context.Background()
	seedProduct(t, db, "A", "10", 1)

	first, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, mr.Exists(productListKey))

	// written behind the service's back: the cached list still wins
	seedProduct(t, db, "B", "10", 1)
	cached, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	_, err = svc.Create(ctx, NewProduct{Name: "C", Price: dec("1"), Quantity: ptr(1), Category: "x", Images: []string{"i"}})
	require.NoError(t, err)
	assert.False(t, mr.Exists(productListKey))

	fresh, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}
