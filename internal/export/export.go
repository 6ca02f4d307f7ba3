// Package export renders a project, its progress and insights into
// downloadable files.
package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"launchhub/internal/insight"
	"launchhub/internal/model"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatXLSX     Format = "xlsx"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatPDF, FormatXLSX}

// DefaultStakeholderSections are the data sections shown to outside
// stakeholders when no explicit set is configured.
var DefaultStakeholderSections = []string{"validation", "financial"}

// CSVHeader is the first row of every CSV export.
var CSVHeader = []string{"Phase", "Step", "Status", "Completion Date", "Notes"}

// UnsupportedFormatError is returned for any format outside Formats.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return "Unsupported export format: " + e.Format
}

type Options struct {
	Format          Format
	StakeholderView bool
	// StakeholderSections overrides the exporter's inclusion set.
	StakeholderSections []string
}

// Result is a rendered file ready for download.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

type renderer struct {
	suffix string
	ext    string
	mime   string
	render func(doc *document) ([]byte, error)
}

var renderers = map[Format]renderer{
	FormatJSON:     {"export", "json", "application/json", renderJSON},
	FormatCSV:      {"progress", "csv", "text/csv", renderCSV},
	FormatMarkdown: {"report", "md", "text/markdown", renderMarkdown},
	FormatPDF:      {"report", "pdf", "application/pdf", renderPDF},
	FormatXLSX:     {"progress", "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", renderXLSX},
}

// Exporter renders projects. The zero value uses DefaultStakeholderSections.
type Exporter struct {
	stakeholderSections []string
}

func NewExporter(stakeholderSections []string) *Exporter {
	return &Exporter{stakeholderSections: stakeholderSections}
}

// document is the normalized input every renderer reads.
type document struct {
	Project     *model.Project
	Progress    *model.UserProgress
	Insights    insight.Insights
	Sections    []string
	Stakeholder bool
	ExportedAt  time.Time
}

// Export renders p and u in the requested format. A nil progress is treated
// as empty.
func (e *Exporter) Export(p *model.Project, u *model.UserProgress, opts Options) (*Result, error) {
	r, ok := renderers[opts.Format]
	if !ok {
		return nil, &UnsupportedFormatError{Format: string(opts.Format)}
	}
	if p == nil {
		return nil, fmt.Errorf("export: nil project")
	}

	doc := &document{
		Project:     p,
		Progress:    u,
		Insights:    insight.Compose(p, u),
		Stakeholder: opts.StakeholderView,
		ExportedAt:  timeNow().UTC(),
	}
	if opts.StakeholderView {
		sections := opts.StakeholderSections
		if len(sections) == 0 {
			sections = e.stakeholderSections
		}
		if len(sections) == 0 {
			sections = DefaultStakeholderSections
		}
		doc.Project = filterSections(p, sections)
		doc.Progress = publicProgress(u)
		doc.Insights.KeyFindings = insight.KeyFindings(doc.Project)
		doc.Insights.RiskLevel = ""
		doc.Insights.Risk = insight.RiskSummary{}
	}
	doc.Sections = sortedSections(doc.Project)

	data, err := r.render(doc)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", opts.Format, err)
	}
	return &Result{
		Data:     data,
		Filename: Filename(p.Name, r.suffix, r.ext),
		MimeType: r.mime,
	}, nil
}

// Filename builds "{name}-{suffix}.{ext}" with path separators removed.
func Filename(name, suffix, ext string) string {
	name = strings.NewReplacer("/", "-", "\\", "-").Replace(strings.TrimSpace(name))
	if name == "" {
		name = "project"
	}
	return fmt.Sprintf("%s-%s.%s", name, suffix, ext)
}

// filterSections returns a shallow copy of p keeping only the listed data
// sections.
func filterSections(p *model.Project, sections []string) *model.Project {
	cp := *p
	cp.Data = make(map[string]model.PhaseData, len(sections))
	for _, s := range sections {
		if d, ok := p.Data[s]; ok {
			cp.Data[s] = d
		}
	}
	return &cp
}

// publicProgress copies u without step notes or step data.
func publicProgress(u *model.UserProgress) *model.UserProgress {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Phases = make(map[model.Phase]model.PhaseProgress, len(u.Phases))
	for ph, pp := range u.Phases {
		steps := make([]model.Step, len(pp.Steps))
		for i, st := range pp.Steps {
			st.Notes = ""
			st.Data = nil
			steps[i] = st
		}
		pp.Steps = steps
		cp.Phases[ph] = pp
	}
	return &cp
}

// sortedSections lists data sections in phase order, then any others
// alphabetically.
func sortedSections(p *model.Project) []string {
	var known, other []string
	for _, ph := range model.PhaseOrder {
		if _, ok := p.Data[string(ph)]; ok {
			known = append(known, string(ph))
		}
	}
	for k := range p.Data {
		if _, err := model.ParsePhase(k); err != nil {
			other = append(other, k)
		}
	}
	sort.Strings(other)
	return append(known, other...)
}

func sortedKeys(d model.PhaseData) []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatValue renders a free-form data value on one line.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, x := range t {
			parts = append(parts, formatValue(x))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+formatValue(t[k]))
		}
		return "{" + strings.Join(parts, "; ") + "}"
	default:
		return fmt.Sprint(t)
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

// stepRows flattens progress into CSV/XLSX rows in phase order.
func stepRows(u *model.UserProgress) [][]string {
	var rows [][]string
	for _, pp := range u.OrderedPhases() {
		for _, s := range pp.Steps {
			rows = append(rows, []string{string(pp.Phase), s.StepID, string(s.Status), formatDate(s.CompletedAt), s.Notes})
		}
	}
	return rows
}
