package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/NEPJU/APIs/internal/model"
	"github.com/NEPJU/APIs/internal/store"
)

const dateLayout = "2006-01-02"

// DateRange selects sales_summary rows by order date. Either Date or both
// Start and End (inclusive) must be set, all as YYYY-MM-DD.
type DateRange struct {
	Date  string
	Start string
	End   string
}

// bounds returns the half-open interval [from, to) in UTC.
func (r DateRange) bounds() (time.Time, time.Time, error) {
	if r.Date != "" {
		d, err := time.Parse(dateLayout, r.Date)
		if err != nil {
			return time.Time{}, time.Time{}, validationf("date must be YYYY-MM-DD")
		}
		return d, d.AddDate(0, 0, 1), nil
	}
	if r.Start == "" || r.End == "" {
		return time.Time{}, time.Time{}, validationf("Provide either date or start_date and end_date")
	}
	from, err := time.Parse(dateLayout, r.Start)
	if err != nil {
		return time.Time{}, time.Time{}, validationf("start_date must be YYYY-MM-DD")
	}
	to, err := time.Parse(dateLayout, r.End)
	if err != nil {
		return time.Time{}, time.Time{}, validationf("end_date must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, validationf("end_date is before start_date")
	}
	return from, to.AddDate(0, 0, 1), nil
}

type ReportService interface {
	SalesSummary(ctx context.Context, r DateRange) (model.SalesReport, error)
}

type reportService struct{ db *gorm.DB }

func NewReportService(db *gorm.DB) ReportService { return &reportService{db: db} }

func (s *reportService) SalesSummary(ctx context.Context, r DateRange) (model.SalesReport, error) {
	from, to, err := r.bounds()
	if err != nil {
		return model.SalesReport{}, err
	}
	inRange := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&model.SalesSummary{}).
			Where("order_date >= ? AND order_date < ?", from, to)
	}

	day := store.UTCDate(s.db.Dialector.Name(), "order_date")

	report := model.SalesReport{
		TotalSales:    decimal.Zero,
		TopProducts:   []model.ProductSales{},
		SalesOverTime: []model.DailySales{},
	}

	if err := inRange().
		Select("product_name, SUM(quantity) AS total_quantity, SUM(total_price) AS total_revenue, " + day + " AS sale_date").
		Group("product_name, " + day).
		Order("total_revenue desc, product_name asc").
		Scan(&report.TopProducts).Error; err != nil {
		return model.SalesReport{}, err
	}

	if err := inRange().Select("COALESCE(SUM(total_price), 0)").Row().Scan(&report.TotalSales); err != nil {
		return model.SalesReport{}, err
	}

	if err := inRange().
		Select(day + " AS sale_date, SUM(total_price) AS total_revenue").
		Group(day).
		Order("sale_date asc").
		Scan(&report.SalesOverTime).Error; err != nil {
		return model.SalesReport{}, err
	}

	// drivers hand DATE() back either as text or as a midnight timestamp
	for i := range report.TopProducts {
		report.TopProducts[i].SaleDate = dayOnly(report.TopProducts[i].SaleDate)
	}
	for i := range report.SalesOverTime {
		report.SalesOverTime[i].SaleDate = dayOnly(report.SalesOverTime[i].SaleDate)
	}
	return report, nil
}

func dayOnly(s string) string {
	if len(s) > len(dateLayout) {
		return s[:len(dateLayout)]
	}
	return s
}
