package api

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"index", "home", "words", "pictures", "point_shoot",
	"login", "logout", "create", "post", "error",
}

// formField is the input to the "field" partial in create.html.
type formField struct {
	Name     string
	Label    string
	Value    string
	Error    string
	Required bool
}

var templateFuncs = template.FuncMap{
	// Post bodies are sanitized before they are stored.
	"safeHTML": func(s string) template.HTML { return template.HTML(s) },
	"field": func(name, label, value, errMsg string, required bool) formField {
		return formField{Name: name, Label: label, Value: value, Error: errMsg, Required: required}
	},
}

// parsePages parses every page together with the base layout.
func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}
