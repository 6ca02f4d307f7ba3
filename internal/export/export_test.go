package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"launchhub/internal/model"
)

func freezeTime(t *testing.T, at time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = orig })
}

func fixture() (*model.Project, *model.UserProgress) {
	created := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	done := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)
	p := &model.Project{
		ID:        "p1",
		UserID:    "u1",
		Name:      "Acme",
		Industry:  "SaaS",
		Stage:     model.StageDevelopment,
		CreatedAt: created,
		Data: map[string]model.PhaseData{
			"validation": {"marketSize": "$1B"},
			"financial":  {"projectedRevenue": "$100K"},
			"technical":  {"selectedStack": []any{"React", "Node.js"}},
			"risks": {"risks": []any{
				map[string]any{"id": "r1", "description": "churn", "impact": "high", "probability": "high"},
			}},
		},
	}
	u := &model.UserProgress{
		UserID:    "u1",
		ProjectID: "p1",
		Phases: map[model.Phase]model.PhaseProgress{
			model.PhaseValidation: {Phase: model.PhaseValidation, Steps: []model.Step{
				{StepID: "market-research", Status: model.StepCompleted, CompletedAt: &done, Notes: "sized, with TAM"},
				{StepID: "competitor-analysis", Status: model.StepCompleted, CompletedAt: &done},
			}},
			model.PhaseDefinition: {Phase: model.PhaseDefinition, Steps: []model.Step{
				{StepID: "vision-mission", Status: model.StepInProgress, Notes: `said "soon"`},
			}},
		},
	}
	return p, u
}

func TestExport_UnsupportedFormat(t *testing.T) {
	p, u := fixture()
	_, err := (&Exporter{}).Export(p, u, Options{Format: "xml"})
	require.Error(t, err)
	assert.Equal(t, "Unsupported export format: xml", err.Error())

	var ufe *UnsupportedFormatError
	require.ErrorAs(t, err, &ufe)
	assert.Equal(t, "xml", ufe.Format)
}

func TestExport_FilenamesAndMimeTypes(t *testing.T) {
	p, u := fixture()
	tests := []struct {
		format   Format
		filename string
		mime     string
	}{
		{FormatJSON, "Acme-export.json", "application/json"},
		{FormatCSV, "Acme-progress.csv", "text/csv"},
		{FormatMarkdown, "Acme-report.md", "text/markdown"},
		{FormatPDF, "Acme-report.pdf", "application/pdf"},
		{FormatXLSX, "Acme-progress.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			res, err := (&Exporter{}).Export(p, u, Options{Format: tt.format})
			require.NoError(t, err)
			assert.Equal(t, tt.filename, res.Filename)
			assert.Equal(t, tt.mime, res.MimeType)
			assert.NotEmpty(t, res.Data)
		})
	}
}

func TestExport_CSV(t *testing.T) {
	p, u := fixture()
	res, err := (&Exporter{}).Export(p, u, Options{Format: FormatCSV})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(res.Data), "Phase,Step,Status,Completion Date,Notes\n"))

	records, err := csv.NewReader(bytes.NewReader(res.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"validation", "market-research", "completed", "2026-02-12", "sized, with TAM"}, records[1])
	assert.Equal(t, []string{"definition", "vision-mission", "in_progress", "", `said "soon"`}, records[3])
}

func TestExport_CSVWithoutProgress(t *testing.T) {
	p, _ := fixture()
	res, err := (&Exporter{}).Export(p, nil, Options{Format: FormatCSV})
	require.NoError(t, err)
	assert.Equal(t, "Phase,Step,Status,Completion Date,Notes\n", string(res.Data))
}

func TestExport_Markdown(t *testing.T) {
	freezeTime(t, time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC))
	p, u := fixture()
	res, err := (&Exporter{}).Export(p, u, Options{Format: FormatMarkdown})
	require.NoError(t, err)

	md := string(res.Data)
	firstLine := strings.SplitN(md, "\n", 2)[0]
	assert.Equal(t, "# Acme - Launch Readiness Report", firstLine)
	assert.Contains(t, md, "_Generated 2026-02-20_")
	assert.Contains(t, md, "- Market size estimated at $1B")
	assert.Contains(t, md, "- Complete definition phase: vision-mission")
	assert.Contains(t, md, "**Completion Rate:** 66.67%")
	assert.Contains(t, md, "| validation | 2 | 2 | 100% |")
	assert.Contains(t, md, "## Technical")
	assert.Contains(t, md, "**Risk Level:** medium")
}

func TestExport_StakeholderView(t *testing.T) {
	p, u := fixture()
	res, err := (&Exporter{}).Export(p, u, Options{Format: FormatJSON, StakeholderView: true})
	require.NoError(t, err)

	var out struct {
		Project  model.Project `json:"project"`
		Insights struct {
			KeyFindings []string `json:"keyFindings"`
		} `json:"insights"`
		StakeholderView bool `json:"stakeholderView"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &out))
	assert.True(t, out.StakeholderView)
	assert.Contains(t, out.Project.Data, "validation")
	assert.Contains(t, out.Project.Data, "financial")
	assert.NotContains(t, out.Project.Data, "technical")
	assert.NotContains(t, out.Project.Data, "risks")
	assert.Equal(t, []string{"Market size estimated at $1B", "Projected first-year revenue: $100K"}, out.Insights.KeyFindings)

	// the caller's project is left untouched
	assert.Contains(t, p.Data, "technical")
	assert.Equal(t, "sized, with TAM", u.Phases[model.PhaseValidation].Steps[0].Notes)

	body := string(res.Data)
	assert.NotContains(t, body, `"riskLevel"`)
	assert.NotContains(t, body, `"risk"`)
	assert.NotContains(t, body, `"critical"`)
	assert.NotContains(t, body, "sized, with TAM")
	assert.Contains(t, body, `"market-research"`)
}

func TestExport_InternalJSONKeepsRisk(t *testing.T) {
	p, u := fixture()
	res, err := (&Exporter{}).Export(p, u, Options{Format: FormatJSON})
	require.NoError(t, err)

	var out struct {
		Insights struct {
			RiskLevel model.Level `json:"riskLevel"`
			Risk      *struct {
				Critical int `json:"critical"`
			} `json:"risk"`
		} `json:"insights"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &out))
	assert.Equal(t, model.LevelMedium, out.Insights.RiskLevel)
	require.NotNil(t, out.Insights.Risk)
	assert.Equal(t, 1, out.Insights.Risk.Critical)
	assert.Contains(t, string(res.Data), "sized, with TAM")
}

func TestExport_StakeholderViewHidesNotesInEveryFormat(t *testing.T) {
	p, u := fixture()
	for _, f := range []Format{FormatCSV, FormatMarkdown} {
		res, err := (&Exporter{}).Export(p, u, Options{Format: f, StakeholderView: true})
		require.NoError(t, err)
		assert.NotContains(t, string(res.Data), "sized, with TAM", f)
		assert.NotContains(t, string(res.Data), "Risk Level", f)
	}

	res, err := (&Exporter{}).Export(p, u, Options{Format: FormatCSV, StakeholderView: true})
	require.NoError(t, err)
	assert.Contains(t, string(res.Data), "validation,market-research,completed,")
}

func TestExport_StakeholderSectionsConfigurable(t *testing.T) {
	p, u := fixture()

	res, err := NewExporter([]string{"technical"}).Export(p, u, Options{Format: FormatMarkdown, StakeholderView: true})
	require.NoError(t, err)
	md := string(res.Data)
	assert.Contains(t, md, "## Technical")
	assert.NotContains(t, md, "## Validation")
	assert.NotContains(t, md, "Risk Level")

	res, err = NewExporter([]string{"technical"}).Export(p, u, Options{
		Format: FormatMarkdown, StakeholderView: true, StakeholderSections: []string{"validation"},
	})
	require.NoError(t, err)
	assert.Contains(t, string(res.Data), "## Validation")
	assert.NotContains(t, string(res.Data), "## Technical")
}

func TestExport_PDF(t *testing.T) {
	p, u := fixture()
	p.Name = "Café Über"
	res, err := (&Exporter{}).Export(p, u, Options{Format: FormatPDF})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(res.Data, []byte("%PDF-")))
	assert.Equal(t, "Café Über-report.pdf", res.Filename)
}

func TestExport_XLSX(t *testing.T) {
	p, u := fixture()
	res, err := (&Exporter{}).Export(p, u, Options{Format: FormatXLSX})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(res.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Progress")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, "vision-mission", rows[3][1])

	findings, err := f.GetRows("Findings")
	require.NoError(t, err)
	assert.Equal(t, "Completion Rate", findings[0][0])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "a-b-export.json", Filename("a/b", "export", "json"))
	assert.Equal(t, "project-report.md", Filename("  ", "report", "md"))
}
