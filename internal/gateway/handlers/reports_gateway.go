package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"asetra-system/internal/services/assets/handler"
)

type ReportHTTPHandler struct {
	service *handler.AssetHandler
}

func NewReportHTTPHandler(service *handler.AssetHandler) *ReportHTTPHandler {
	return &ReportHTTPHandler{
		service: service,
	}
}

// ExportReport resolves the selection and returns the artifact descriptor.
// Rendering the file bytes is the download endpoint's (or an external
// generator's) concern.
func (s *ReportHTTPHandler) ExportReport(c *gin.Context) {
	var input handler.ExportReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := s.service.ExportReport(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, resp)
}

// DownloadReport streams the XLSX rendition of a report selection. PDF
// rendering stays with the external generator, so only xlsx is accepted here.
func (s *ReportHTTPHandler) DownloadReport(c *gin.Context) {
	format := c.DefaultQuery("format", "xlsx")
	if format != "xlsx" {
		fail(c, http.StatusBadRequest, "only xlsx downloads are rendered by this service")
		return
	}

	input := handler.ExportReportInput{
		Category:       parseStringQuery(c, "category"),
		LocationID:     parseInt64Query(c, "location_id"),
		Status:         parseStringQuery(c, "status"),
		Format:         format,
		IncludeSummary: parseBoolQuery(c, "include_summary"),
	}

	resp, err := s.service.ExportReport(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := writeReportWorkbook(c, resp); err != nil {
		fail(c, http.StatusInternalServerError, "Failed to write report: "+err.Error())
		return
	}
}

var assetSheetHeaders = []string{
	"Asset Number", "Serial Number", "Name", "Category", "Brand", "Model",
	"Purchase Date", "Purchase Price", "Warranty Expiry", "Location", "Status", "Created At",
}

func writeReportWorkbook(c *gin.Context, report *handler.ExportReportResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Assets"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, header := range assetSheetHeaders {
		cell := fmt.Sprintf("%s1", string(rune('A'+i)))
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, asset := range report.Data.Assets {
		row := assetRow(asset)
		for colIdx, value := range row {
			cell := fmt.Sprintf("%s%d", string(rune('A'+colIdx)), rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range assetSheetHeaders {
		col := string(rune('A' + i))
		f.SetColWidth(sheetName, col, col, 16)
	}

	if report.Data.Summary != nil {
		if err := writeSummarySheet(f, headerStyle, report.Data.Summary); err != nil {
			return err
		}
	}

	f.DeleteSheet("Sheet1")

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", report.Filename))

	return f.Write(c.Writer)
}

func writeSummarySheet(f *excelize.File, headerStyle int, summary *handler.ReportSummary) error {
	const sheetName = "Summary"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	f.SetCellValue(sheetName, "A1", "Total Assets")
	f.SetCellValue(sheetName, "B1", summary.TotalAssets)
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	row := 3
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Category")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), "Count")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	for _, entry := range summary.Categories {
		row++
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), entry.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), entry.Count)
	}

	row += 2
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Status")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), "Count")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	for _, entry := range summary.StatusCounts {
		row++
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), entry.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), entry.Count)
	}

	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "B", 10)
	return nil
}

func assetRow(asset handler.AssetResponse) []string {
	locationName := ""
	if asset.Location != nil {
		locationName = asset.Location.Name
	}

	return []string{
		asset.AssetNumber,
		asset.SerialNumber,
		asset.Name,
		asset.Category,
		strOrEmpty(asset.Brand),
		strOrEmpty(asset.Model),
		dateOrEmpty(asset.PurchaseDate),
		priceOrEmpty(asset.PurchasePrice),
		dateOrEmpty(asset.WarrantyExpiry),
		locationName,
		asset.Status,
		asset.CreatedAt.Format(time.RFC3339),
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func priceOrEmpty(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *p)
}
