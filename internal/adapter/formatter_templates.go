package adapter

import (
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

//go:embed templates/*.tmpl
var formatterTemplateFS embed.FS

var (
	formatterTemplates *template.Template
	formatterOnce      sync.Once
	errFormatter       error
)

func executeFormatterTemplate(name string, data any) (string, error) {
	formatterOnce.Do(func() {
		tmpl := template.New("formatter")
		var err error
		formatterTemplates, err = tmpl.ParseFS(formatterTemplateFS, "templates/*.tmpl")
		if err != nil {
			errFormatter = fmt.Errorf("failed to parse formatter templates: %w", err)
		}
	})

	if errFormatter != nil {
		return "", errFormatter
	}

	var builder strings.Builder
	if err := formatterTemplates.ExecuteTemplate(&builder, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return strings.TrimRight(builder.String(), "\n"), nil
}
