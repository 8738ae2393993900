package infra

// pdf.go — Commission report rendering using go-pdf/fpdf.
// One A4 page (or more) with:
//   - Report header with the covered period
//   - Per-teller table (name, trade count, gross volume, commission)
//   - Bold totals row
//
// The output file is saved to storagePath/report_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/santechrwanda/broker-sub002/internal/model"
	"github.com/santechrwanda/broker-sub002/internal/repository"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateCommissionPDF renders the commission report for the given period
// rows. storagePath is created if needed. Returns the absolute path of the
// generated file.
func GenerateCommissionPDF(report *model.Report, lines []repository.CommissionRow, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("report_%s.pdf", report.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Commission Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	period := fmt.Sprintf("%s — %s",
		report.PeriodFrom.Format("02 Jan 2006"),
		report.PeriodTo.Format("02 Jan 2006"))
	pdf.CellFormat(contentW, 6, period, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 5, "Generated "+time.Now().Format("02 Jan 2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Table header ─────────────────────────────────────────────────────────
	col1 := contentW * 0.40 // teller
	col2 := contentW * 0.15 // trades
	col3 := contentW * 0.22 // gross
	col4 := contentW * 0.23 // commission

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 7, "Teller", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "Trades", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col3, 7, "Gross", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, "Commission", "B", 1, "R", false, 0, "")

	// ── Rows ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 9)
	totalTrades := int64(0)
	totalGross := decimal.Zero
	totalCommission := decimal.Zero
	for _, line := range lines {
		name := line.TellerName
		if len(name) > 38 {
			name = name[:37] + "…"
		}
		pdf.CellFormat(col1, 6, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, fmt.Sprintf("%d", line.Trades), "", 0, "R", false, 0, "")
		pdf.CellFormat(col3, 6, line.Gross.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, line.Commission.StringFixed(2), "", 1, "R", false, 0, "")

		totalTrades += line.Trades
		totalGross = totalGross.Add(line.Gross)
		totalCommission = totalCommission.Add(line.Commission)
	}

	if len(lines) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(contentW, 8, "No trades recorded in this period.", "", 1, "C", false, 0, "")
	}

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(1)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col1, 7, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, fmt.Sprintf("%d", totalTrades), "", 0, "R", false, 0, "")
	pdf.CellFormat(col3, 7, totalGross.StringFixed(2), "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, totalCommission.StringFixed(2), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write %s: %w", filePath, err)
	}
	return filePath, nil
}
