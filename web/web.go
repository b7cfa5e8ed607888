// Package web holds the HTML templates, compiled into the binary.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"gorm.io/datatypes"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"percent": func(score float64) string {
		return fmt.Sprintf("%.1f", score)
	},
	"date": func(v interface{}) string {
		switch d := v.(type) {
		case datatypes.Date:
			return time.Time(d).Format("02 Jan 2006")
		case time.Time:
			return d.Format("02 Jan 2006")
		case *time.Time:
			if d == nil {
				return ""
			}
			return d.Format("02 Jan 2006")
		}
		return ""
	},
	"has": func(list []string, s string) bool {
		for _, v := range list {
			if v == s {
				return true
			}
		}
		return false
	},
}

// Templates parses every page and partial. Pages are looked up by file name,
// e.g. "index.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}
