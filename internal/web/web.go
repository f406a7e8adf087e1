// Package web holds the HTML pages rendered by the API router.
package web

import (
	"embed"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page template names.
const (
	PageHome               = "home.html"
	PageComplimentsForm    = "compliments_form.html"
	PageComplimentsResults = "compliments_results.html"
	PageAnimalFacts        = "animal_facts.html"
	PageImageFilter        = "image_filter.html"
	PageGIFSearch          = "gif_search.html"
)

// Funcs are available to every page.
var Funcs = template.FuncMap{
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

// Templates parses every page together with the shared layout partials.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(templateFS, "templates/*.html")
}
