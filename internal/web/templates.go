package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/Masterminds/sprig/v3"
	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"landing", "login", "signup", "dashboard", "inventory"}

// Templates renders full pages for echo. Each page is parsed together with
// the layout and the shared table partial.
type Templates struct {
	pages map[string]*template.Template
	cells *template.Template
}

func funcMap() template.FuncMap {
	fm := sprig.FuncMap()
	fm["safe"] = func(s string) template.HTML { return template.HTML(s) } // #nosec G203 -- fragments come from cells.html
	fm["comma"] = func(n any) string {
		switch v := n.(type) {
		case int:
			return humanize.Comma(int64(v))
		case int64:
			return humanize.Comma(v)
		default:
			return fmt.Sprint(n)
		}
	}
	fm["money"] = func(cents int64, currency string) string {
		return formatMoney(float64(cents)/100, currency)
	}
	fm["percent"] = func(n, of int) int {
		if of <= 0 {
			return 0
		}
		return n * 100 / of
	}
	fm["ago"] = humanize.Time
	return fm
}

// LoadTemplates parses the embedded templates.
func LoadTemplates() (*Templates, error) {
	t := &Templates{pages: map[string]*template.Template{}}
	for _, name := range pages {
		tmpl, err := template.New(name).Funcs(funcMap()).ParseFS(templateFS,
			"templates/layout.html", "templates/table.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		t.pages[name] = tmpl
	}
	cells, err := template.New("cells").Funcs(funcMap()).ParseFS(templateFS, "templates/cells.html")
	if err != nil {
		return nil, fmt.Errorf("parse cells: %w", err)
	}
	t.cells = cells
	return t, nil
}

// Render implements echo.Renderer.
func (t *Templates) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}
