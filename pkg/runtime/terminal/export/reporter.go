package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/industry-reports/pkg/models/domain"
	"github.com/dustin/go-humanize"
)

type TableConfig struct {
	NameWidth     int
	SizeWidth     int
	ModifiedWidth int
	AgeWidth      int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:     32,
		SizeWidth:     14,
		ModifiedWidth: 19,
		AgeWidth:      16,
	}
}

// Reporter prints report file listings as a fixed-width table
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) Handle(files []domain.ReportFile) error {
	funcMap := template.FuncMap{
		"formatRow": func(name, size, modified, age string) string {
			return fmt.Sprintf("| %-*s | %*s | %-*s | %-*s |",
				c.config.NameWidth, name,
				c.config.SizeWidth, size,
				c.config.ModifiedWidth, modified,
				c.config.AgeWidth, age)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.SizeWidth+2),
				strings.Repeat("-", c.config.ModifiedWidth+2),
				strings.Repeat("-", c.config.AgeWidth+2))
		},
		"bytes": func(n int64) string {
			return humanize.Comma(n) + " B"
		},
		"modified": func(f domain.ReportFile) string {
			return f.ModTime.Format("2006-01-02 15:04:05")
		},
		"age": func(f domain.ReportFile) string {
			return humanize.Time(f.ModTime)
		},
	}

	tmpl := `Current Reports:
{{separator}}
{{formatRow "Name" "Size" "Modified" "Age"}}
{{separator}}
{{range .}}{{formatRow .Name (bytes .Size) (modified .) (age .)}}
{{else}}{{formatRow "(none)" "" "" ""}}
{{end}}{{separator}}
`

	t, err := template.New("files").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, files)
}
