// Package report renders the printable analytics report. The document is
// regenerated from the aggregation on every request and never stored.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"servicos/internal/aggregate"
	"servicos/internal/core"
)

//go:embed templates/report.html
var templatesFS embed.FS

// Header identifies who asked for the report and over which window.
type Header struct {
	UserName    string
	AllUsers    bool
	GeneratedAt time.Time
	AutoPrint   bool
}

// Data is everything the report template needs. The period comes from the
// analytics.
type Data struct {
	Header
	aggregate.Analytics
}

type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded template.
func New() (*Renderer, error) {
	t, err := template.New("report.html").Funcs(Funcs()).ParseFS(templatesFS, "templates/report.html")
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &Renderer{tmpl: t}, nil
}

// Render writes the report document to w.
func (r *Renderer) Render(w io.Writer, d Data) error {
	if err := r.tmpl.ExecuteTemplate(w, "report.html", d); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// Funcs are the formatting helpers shared by the report and the dashboard
// templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"brl":        func(m core.Money) string { return m.BRL() },
		"percent":    FormatPercent,
		"monthLabel": MonthLabel,
		"datetime":   func(t time.Time) string { return t.Format("02/01/2006 15:04") },
		"date":       func(t time.Time) string { return t.Format("02/01/2006") },
	}
}

// FormatPercent renders a share with one decimal and a comma separator.
func FormatPercent(p float64) string {
	return strings.Replace(fmt.Sprintf("%.1f%%", p), ".", ",", 1)
}

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthLabel turns a "2006-01" bucket key into "Janeiro de 2006". Keys that
// do not parse are returned unchanged.
func MonthLabel(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return fmt.Sprintf("%s de %d", monthNames[t.Month()-1], t.Year())
}
