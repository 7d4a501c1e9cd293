// Package web embeds the HTML templates.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"slices"
	"strconv"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"pct":       func(v float64) string { return strconv.FormatFloat(v, 'f', 0, 64) + "%" },
		"num":       func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
		"fixed":     func(v float64, prec int) string { return strconv.FormatFloat(v, 'f', prec, 64) },
		"share":     func(r float64) string { return strconv.FormatFloat(100*r, 'f', 1, 64) + "%" },
		"money":     Money,
		"hasInt":    func(list []int, v int) bool { return slices.Contains(list, v) },
		"hasString": func(list []string, v string) bool { return slices.Contains(list, v) },
		"kib":       func(n int) string { return fmt.Sprintf("%.1f KiB", float64(n)/1024) },
	}
}

// Money formats ringgit with thousands separators, e.g. "RM 1,250,000".
func Money(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-RM " + b.String()
	}
	return "RM " + b.String()
}
