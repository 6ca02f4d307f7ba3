package model

import (
	"encoding/json"
	"strings"
	"time"
)

// RisksKey is the data section holding the project's risk register.
const RisksKey = "risks"

// PhaseData is the free-form record a phase form saves.
type PhaseData map[string]any

// Project is a user's launch project. Data holds one record per phase key;
// a missing key means the phase form has not been filled yet.
type Project struct {
	ID           string               `json:"id"`
	UserID       string               `json:"userId"`
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Industry     string               `json:"industry"`
	TargetMarket string               `json:"targetMarket"`
	Stage        Stage                `json:"stage"`
	Data         map[string]PhaseData `json:"data"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// String returns the trimmed string stored at data[section][field], or "".
func (p *Project) String(section, field string) string {
	v, ok := p.field(section, field)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	}
	return ""
}

// Strings returns the non-empty strings stored at data[section][field].
func (p *Project) Strings(section, field string) []string {
	v, ok := p.field(section, field)
	if !ok {
		return nil
	}
	var out []string
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	}
	return out
}

// Risks decodes the risk register at data.risks.risks. Malformed entries are
// skipped.
func (p *Project) Risks() []Risk {
	v, ok := p.field(RisksKey, "risks")
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		if typed, ok := v.([]Risk); ok {
			return typed
		}
		return nil
	}
	risks := make([]Risk, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			continue
		}
		var r Risk
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		if !r.Impact.Valid() || !r.Probability.Valid() {
			continue
		}
		risks = append(risks, r)
	}
	return risks
}

func (p *Project) field(section, field string) (any, bool) {
	if p == nil || p.Data == nil {
		return nil, false
	}
	rec, ok := p.Data[section]
	if !ok || rec == nil {
		return nil, false
	}
	v, ok := rec[field]
	return v, ok && v != nil
}

// Risk is one entry of the risk register.
type Risk struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Impact      Level  `json:"impact"`
	Probability Level  `json:"probability"`
	Category    string `json:"category"`
}
