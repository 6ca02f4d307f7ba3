package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

func renderPDF(doc *document) ([]byte, error) {
	p, ins := doc.Project, doc.Insights

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(p.Name+" - Launch Readiness Report", true)
	pdf.SetCreationDate(doc.ExportedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 10, tr(p.Name+" - Launch Readiness Report"), "", "L", false)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Generated "+doc.ExportedAt.Format("2006-01-02"))
	pdf.Ln(10)

	heading := func(s string) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, tr(s))
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 11)
	}
	line := func(s string) {
		pdf.MultiCell(0, 6, tr(s), "", "L", false)
	}

	heading("Readiness")
	line(fmt.Sprintf("Completion rate: %.2f%%", ins.CompletionRate))
	line(fmt.Sprintf("Readiness score: %d/100", ins.ReadinessScore))
	if !doc.Stakeholder {
		line("Risk level: " + string(ins.RiskLevel))
	}
	line(fmt.Sprintf("Days in progress: %d", ins.TimeSpent))
	pdf.Ln(4)

	if len(ins.KeyFindings) > 0 {
		heading("Key Findings")
		for _, f := range ins.KeyFindings {
			line("- " + f)
		}
		pdf.Ln(4)
	}
	if len(ins.NextSteps) > 0 {
		heading("Next Steps")
		for _, s := range ins.NextSteps {
			line("- " + s)
		}
		pdf.Ln(4)
	}

	if len(ins.Phases) > 0 {
		heading("Phase Progress")
		pdf.SetFont("Helvetica", "B", 10)
		for _, h := range []string{"Phase", "Completed", "Total", "Progress"} {
			pdf.CellFormat(40, 7, h, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
		for _, ph := range ins.Phases {
			pdf.CellFormat(40, 7, string(ph.Phase), "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 7, fmt.Sprint(ph.Completed), "1", 0, "R", false, 0, "")
			pdf.CellFormat(40, 7, fmt.Sprint(ph.Total), "1", 0, "R", false, 0, "")
			pdf.CellFormat(40, 7, fmt.Sprintf("%d%%", ph.Percentage), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	for _, section := range doc.Sections {
		d := p.Data[section]
		if len(d) == 0 {
			continue
		}
		heading(title(section))
		for _, k := range sortedKeys(d) {
			line(k + ": " + formatValue(d[k]))
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
