package web

import (
	"embed"
	"html/template"
	"time"

	"attendance-monitor/internal/attendance"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"date": func(t time.Time) string { return t.Format(time.DateOnly) },
		"sessionLabel": func(s attendance.Session) string {
			return s.Label()
		},
	}
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}
