package service

import (
	"launchhub/internal/template"
)

type TemplateService struct {
	registry *template.Registry
}

func NewTemplateService(registry *template.Registry) *TemplateService {
	return &TemplateService{registry: registry}
}

// List returns every template, or those in category when it is set.
func (s *TemplateService) List(category string) []*template.Template {
	if category != "" {
		return s.registry.ListByCategory(category)
	}
	return s.registry.List()
}

func (s *TemplateService) Get(id string) (*template.Template, error) {
	return s.registry.Get(id)
}

// Render validates values against the template's variables and fills it in.
func (s *TemplateService) Render(id string, values map[string]string) (string, error) {
	t, err := s.registry.Get(id)
	if err != nil {
		return "", err
	}
	if err := template.ValidateValues(t, values); err != nil {
		return "", err
	}
	return template.Render(t, values), nil
}
