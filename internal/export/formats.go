package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"launchhub/internal/insight"
	"launchhub/internal/model"
)

type jsonExport struct {
	Project         *model.Project      `json:"project"`
	Progress        *model.UserProgress `json:"progress"`
	Insights        jsonInsights        `json:"insights"`
	StakeholderView bool                `json:"stakeholderView"`
	ExportedAt      time.Time           `json:"exportedAt"`
}

// jsonInsights drops the risk fields from stakeholder exports.
type jsonInsights struct {
	insight.Insights
	RiskLevel model.Level          `json:"riskLevel,omitempty"`
	Risk      *insight.RiskSummary `json:"risk,omitempty"`
}

func renderJSON(doc *document) ([]byte, error) {
	ins := jsonInsights{Insights: doc.Insights}
	if !doc.Stakeholder {
		ins.RiskLevel = doc.Insights.RiskLevel
		ins.Risk = &doc.Insights.Risk
	}
	return json.MarshalIndent(jsonExport{
		Project:         doc.Project,
		Progress:        doc.Progress,
		Insights:        ins,
		StakeholderView: doc.Stakeholder,
		ExportedAt:      doc.ExportedAt,
	}, "", "  ")
}

func renderCSV(doc *document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return nil, err
	}
	if err := w.WriteAll(stepRows(doc.Progress)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderMarkdown(doc *document) ([]byte, error) {
	p, ins := doc.Project, doc.Insights
	var b strings.Builder

	fmt.Fprintf(&b, "# %s - Launch Readiness Report\n\n", p.Name)
	fmt.Fprintf(&b, "_Generated %s_\n\n", doc.ExportedAt.Format("2006-01-02"))
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Description)
	}

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- **Industry:** %s\n", p.Industry)
	fmt.Fprintf(&b, "- **Target Market:** %s\n", p.TargetMarket)
	fmt.Fprintf(&b, "- **Stage:** %s\n\n", p.Stage)

	b.WriteString("## Readiness\n\n")
	fmt.Fprintf(&b, "- **Completion Rate:** %.2f%%\n", ins.CompletionRate)
	fmt.Fprintf(&b, "- **Readiness Score:** %d/100\n", ins.ReadinessScore)
	if !doc.Stakeholder {
		fmt.Fprintf(&b, "- **Risk Level:** %s\n", ins.RiskLevel)
	}
	fmt.Fprintf(&b, "- **Days in Progress:** %d\n\n", ins.TimeSpent)

	writeList(&b, "Key Findings", ins.KeyFindings)
	writeList(&b, "Next Steps", ins.NextSteps)

	if len(ins.Phases) > 0 {
		b.WriteString("## Phase Progress\n\n")
		b.WriteString("| Phase | Completed | Total | Progress |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, ph := range ins.Phases {
			fmt.Fprintf(&b, "| %s | %d | %d | %d%% |\n", ph.Phase, ph.Completed, ph.Total, ph.Percentage)
		}
		b.WriteString("\n")
	}

	for _, section := range doc.Sections {
		d := p.Data[section]
		if len(d) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", title(section))
		for _, k := range sortedKeys(d) {
			fmt.Fprintf(&b, "- **%s:** %s\n", k, formatValue(d[k]))
		}
		b.WriteString("\n")
	}
	return []byte(b.String()), nil
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", heading)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func renderXLSX(doc *document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const progressSheet, findingsSheet = "Progress", "Findings"
	if err := f.SetSheetName(f.GetSheetName(0), progressSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	header := make([]interface{}, len(CSVHeader))
	for i, h := range CSVHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(progressSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to set headers for sheet '%s': %w", progressSheet, err)
	}
	for i, row := range stepRows(doc.Progress) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(progressSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to set row %d in sheet '%s': %w", i+2, progressSheet, err)
		}
	}

	if _, err := f.NewSheet(findingsSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet '%s': %w", findingsSheet, err)
	}
	rows := [][]interface{}{
		{"Completion Rate", doc.Insights.CompletionRate},
		{"Readiness Score", doc.Insights.ReadinessScore},
		{"Days in Progress", doc.Insights.TimeSpent},
	}
	if !doc.Stakeholder {
		rows = append(rows, []interface{}{"Risk Level", string(doc.Insights.RiskLevel)})
	}
	for _, kf := range doc.Insights.KeyFindings {
		rows = append(rows, []interface{}{"Key Finding", kf})
	}
	for _, ns := range doc.Insights.NextSteps {
		rows = append(rows, []interface{}{"Next Step", ns})
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(findingsSheet, cell, &rows[i]); err != nil {
			return nil, fmt.Errorf("failed to set row %d in sheet '%s': %w", i+1, findingsSheet, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
