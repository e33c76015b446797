package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"stock-inventory/internal/lowstock"
	"stock-inventory/internal/report"

	"github.com/gin-gonic/gin"
)

const contentTypeCSV = "text/csv; charset=utf-8"

type ReportHandler struct {
	service ProductService
	loc     *time.Location
	now     func() time.Time
}

func NewReportHandler(svc ProductService, loc *time.Location) *ReportHandler {
	return &ReportHandler{service: svc, loc: loc, now: time.Now}
}

type summaryResponse struct {
	Summary    report.Summary         `json:"summary"`
	Categories []report.CategoryStats `json:"categories"`
}

// Dashboard godoc
// @Summary      Inventory health overview
// @Tags         reports
// @Produce      json
// @Success      200  {object}  report.Dashboard
// @Failure      500  {object}  errorResponse
// @Router       /dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	items, err := h.service.AllProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, report.BuildDashboard(items))
}

// Summary godoc
// @Summary      Inventory totals with a per-category breakdown
// @Tags         reports
// @Produce      json
// @Success      200  {object}  summaryResponse
// @Failure      500  {object}  errorResponse
// @Router       /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	items, err := h.service.AllProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load report"})
		return
	}

	c.JSON(http.StatusOK, summaryResponse{
		Summary:    report.Summarize(items),
		Categories: report.ByCategory(items),
	})
}

// ExportCSV godoc
// @Summary      Download the catalog as CSV
// @Tags         reports
// @Produce      text/csv
// @Success      200  {string}  string  "CSV file"
// @Failure      500  {object}  errorResponse
// @Router       /reports/export [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	items, err := h.service.AllProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load report"})
		return
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, items); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to export report"})
		return
	}

	filename := report.ExportFilename(lowstock.DayOf(h.now(), h.loc))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentTypeCSV, buf.Bytes())
}
