package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/NEPJU/APIs/internal/model"
	"github.com/NEPJU/APIs/internal/store/storetest"
)

func seedLedger(t *testing.T, db *gorm.DB) {
	t.Helper()
	rows := []model.SalesSummary{
		{OrderID: 1, MemberID: 1, ProductID: 1, ProductName: "Kettle", Quantity: 2, Price: dec("100"), TotalPrice: dec("200"), OrderDate: day("2024-03-01 09:30")},
		{OrderID: 1, MemberID: 1, ProductID: 2, ProductName: "Mug", Quantity: 1, Price: dec("50"), TotalPrice: dec("50"), OrderDate: day("2024-03-01 09:30")},
		{OrderID: 2, MemberID: 2, ProductID: 2, ProductName: "Mug", Quantity: 3, Price: dec("50"), TotalPrice: dec("150"), OrderDate: day("2024-03-01 23:59")},
		{OrderID: 3, MemberID: 2, ProductID: 1, ProductName: "Kettle", Quantity: 1, Price: dec("100"), TotalPrice: dec("100"), OrderDate: day("2024-03-03 00:00")},
	}
	require.NoError(t, db.Create(&rows).Error)
}

func TestSalesSummarySingleDay(t *testing.T) {
	db := storetest.New(t)
	seedLedger(t, db)
	svc := NewReportService(db)

	r, err := svc.SalesSummary(context.Background(), DateRange{Date: "2024-03-01"})
	require.NoError(t, err)

	assert.True(t, dec("400").Equal(r.TotalSales), r.TotalSales.String())
	require.Len(t, r.TopProducts, 2)
	assert.Equal(t, "Kettle", r.TopProducts[0].ProductName)
	assert.Equal(t, int64(2), r.TopProducts[0].TotalQuantity)
	assert.Equal(t, "Mug", r.TopProducts[1].ProductName)
	assert.Equal(t, int64(4), r.TopProducts[1].TotalQuantity)
	assert.True(t, dec("200").Equal(r.TopProducts[1].TotalRevenue))
	assert.Equal(t, "2024-03-01", r.TopProducts[0].SaleDate)

	require.Len(t, r.SalesOverTime, 1)
	assert.Equal(t, "2024-03-01", r.SalesOverTime[0].SaleDate)
	assert.True(t, dec("400").Equal(r.SalesOverTime[0].TotalRevenue))
}

func TestSalesSummaryRange(t *testing.T) {
	db := storetest.New(t)
	seedLedger(t, db)
	svc := NewReportService(db)

	r, err := svc.SalesSummary(context.Background(), DateRange{Start: "2024-03-01", End: "2024-03-03"})
	require.NoError(t, err)

	assert.True(t, dec("500").Equal(r.TotalSales), r.TotalSales.String())
	require.Len(t, r.SalesOverTime, 2)
	assert.Equal(t, "2024-03-01", r.SalesOverTime[0].SaleDate)
	assert.Equal(t, "2024-03-03", r.SalesOverTime[1].SaleDate)
	assert.Len(t, r.TopProducts, 3)
}

func TestSalesSummaryEmptyRange(t *testing.T) {
	db := storetest.New(t)
	seedLedger(t, db)
	svc := NewReportService(db)

	r, err := svc.SalesSummary(context.Background(), DateRange{Date: "2023-01-01"})
	require.NoError(t, err)
	assert.True(t, r.TotalSales.IsZero())
	assert.NotNil(t, r.TopProducts)
	assert.Empty(t, r.TopProducts)
	assert.NotNil(t, r.SalesOverTime)
	assert.Empty(t, r.SalesOverTime)
}

func TestSalesSummaryBadRange(t *testing.T) {
	svc := NewReportService(storetest.New(t))
	ctx := context.Background()

	for _, r := range []DateRange{
		{},
		{Start: "2024-03-01"},
		{Date: "03/01/2024"},
		{Start: "2024-03-05", End: "2024-03-01"},
	} {
		_, err := svc.SalesSummary(ctx, r)
		assert.ErrorIs(t, err, ErrValidation, "%+v", r)
	}
}
