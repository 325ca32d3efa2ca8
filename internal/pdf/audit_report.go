package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"habeshaexpat/internal/models"
)

// Generator is an interface so handlers can be tested with a fake.
type Generator interface {
	GenerateAuditReport(entries []*models.AuditLog) (string, error)
}

type ReportGenerator struct {
	RootDir string // storage root, e.g. "./files"
}

func NewReportGenerator(rootDir string) *ReportGenerator {
	return &ReportGenerator{RootDir: filepath.Clean(rootDir)}
}

func (g *ReportGenerator) GenerateAuditReport(entries []*models.AuditLog) (string, error) {
	filename := fmt.Sprintf("audit_%s.pdf", time.Now().Format("20060102_150405"))
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Audit Trail", false)
	pdf.SetAuthor("Habesha Expat Admin", false)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Audit Trail", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s — %d entries", time.Now().Format("2006-01-02 15:04"), len(entries)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	g.tableHeader(pdf)
	pdf.SetFont("Helvetica", "", 9)
	for _, e := range entries {
		if pdf.GetY() > 265 {
			pdf.AddPage()
			g.tableHeader(pdf)
			pdf.SetFont("Helvetica", "", 9)
		}
		pdf.CellFormat(35, 6, e.CreatedAt.Format("2006-01-02 15:04:05"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, clip(e.Actor, 32), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, e.Action, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, clip(e.Detail, 30), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, e.IP, "1", 1, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return absPath, nil
}

func (g *ReportGenerator) tableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(35, 7, "Time", "1", 0, "L", true, 0, "")
	pdf.CellFormat(45, 7, "Actor", "1", 0, "L", true, 0, "")
	pdf.CellFormat(35, 7, "Action", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 7, "Detail", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 7, "IP", "1", 1, "L", true, 0, "")
}

func (g *ReportGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create files root: %w", err)
	}
	return filepath.Join(g.RootDir, filepath.Base(filename)), nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
