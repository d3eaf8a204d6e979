package reports

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/de-tools/industry-reports/pkg/models/domain"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

type page struct {
	Lang          string
	Title         string
	CurrentPeriod string
}

type languageGroup struct {
	Language string
	Reports  []domain.Report
}

type indexPage struct {
	page
	LastUpdated string
	Groups      []languageGroup
}

type reportPage struct {
	page
	Report domain.Report
	// Content is the pre-rendered report document, emitted verbatim.
	Content template.HTML
}

type errorPage struct {
	page
	Code    int
	Message string
}

// groupByLanguage keeps the first-seen order of both languages and reports.
func groupByLanguage(reports []domain.Report) []languageGroup {
	var groups []languageGroup
	index := make(map[string]int)
	for _, r := range reports {
		i, ok := index[r.Language]
		if !ok {
			i = len(groups)
			index[r.Language] = i
			groups = append(groups, languageGroup{Language: r.Language})
		}
		groups[i].Reports = append(groups[i].Reports, r)
	}
	return groups
}

// render executes the named template into a buffer so that a template failure
// can still be answered with an error page.
func render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("template", name).Msg("failed to render page")
		if name != "error.html" {
			renderError(w, r, http.StatusInternalServerError)
			return
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func renderError(w http.ResponseWriter, r *http.Request, status int) {
	message := "Internal server error"
	if status == http.StatusNotFound {
		message = "Page not found"
	}
	render(w, r, status, "error.html", errorPage{
		page:    page{Lang: "en", Title: message},
		Code:    status,
		Message: message,
	})
}
