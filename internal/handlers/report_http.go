package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NEPJU/APIs/internal/service"
)

type ReportHTTP struct {
	S service.ReportService
}

func NewReportHTTP(s service.ReportService) *ReportHTTP { return &ReportHTTP{S: s} }

// SalesSummary takes ?date=YYYY-MM-DD or ?start_date=...&end_date=...
func (h *ReportHTTP) SalesSummary(c *gin.Context) {
	report, err := h.S.SalesSummary(c.Request.Context(), service.DateRange{
		Date:  c.Query("date"),
		Start: c.Query("start_date"),
		End:   c.Query("end_date"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
