package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"investimmo-bot/services"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"euros": services.FormatEuros,
	"pct": func(v float64, decimals int) string {
		return fmt.Sprintf("%.*f %%", decimals, v)
	},
	"neg": func(v float64) float64 { return -v },
	"duration": func(d time.Duration) string {
		d = d.Round(time.Minute)
		return fmt.Sprintf("%dh%02d", int(d.Hours()), int(d.Minutes())%60)
	},
	"tone": func(v float64) string {
		switch {
		case v > 0:
			return "good"
		case v < 0:
			return "bad"
		}
		return "neutral"
	},
}

func parsePages() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}
