package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/NEPJU/APIs/internal/model"
)

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedUser(t *testing.T, db *gorm.DB, name string) model.User {
	t.Helper()
	u := model.User{Username: name, Email: name + "@example.com", Password: "x", Role: model.RoleUser}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// seedProduct inserts a product row directly, bypassing renumbering.
func seedProduct(t *testing.T, db *gorm.DB, name, price string, qty int) model.Product {
	t.Helper()
	p := model.Product{
		Name:     name,
		Price:    dec(price),
		Quantity: qty,
		Category: "general",
		Images:   []string{"data:image/png;base64,AAAA"},
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func productIDs(t *testing.T, db *gorm.DB) []uint {
	t.Helper()
	var ids []uint
	require.NoError(t, db.Model(&model.Product{}).Order("product_id asc").Pluck("product_id", &ids).Error)
	return ids
}

func loadProduct(t *testing.T, db *gorm.DB, id uint) model.Product {
	t.Helper()
	var p model.Product
	require.NoError(t, db.Where("product_id = ?", id).First(&p).Error)
	return p
}

type sentMail struct{ To, Subject, Body string }

type recordingEmail struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (r *recordingEmail) Send(to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMail{to, subject, body})
	return r.err
}

func (r *recordingEmail) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

type countingCache struct {
	noCache
	invalidations int
}

func (c *countingCache) Invalidate(context.Context) { c.invalidations++ }

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(fmt.Sprintf("bad test date %q", s))
	}
	return d.UTC()
}
