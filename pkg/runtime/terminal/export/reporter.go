package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	reporttemplate "github.com/de-tools/report-atlas/pkg/template"
)

type TableConfig struct {
	IDWidth          int
	KindWidth        int
	DescriptionWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		IDWidth:          24,
		KindWidth:        12,
		DescriptionWidth: 40,
	}
}

// Reporter prints catalogue listings as console tables
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

type listing struct {
	Title      string
	Worksheets []reporttemplate.Worksheet
}

func (c *Reporter) Worksheets(title string, worksheets []reporttemplate.Worksheet) error {
	funcMap := template.FuncMap{
		"formatRow": func(id string, kind any, desc string) string {
			return fmt.Sprintf("| %-*s | %-*v | %-*s |",
				c.config.IDWidth, id,
				c.config.KindWidth, kind,
				c.config.DescriptionWidth, desc)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+",
				strings.Repeat("-", c.config.IDWidth+2),
				strings.Repeat("-", c.config.KindWidth+2),
				strings.Repeat("-", c.config.DescriptionWidth+2))
		},
	}

	tmpl := `{{if .Title}}{{.Title}}

{{end}}{{separator}}
{{formatRow "Worksheet" "Kind" "Description"}}
{{separator}}
{{range .Worksheets}}{{formatRow .ID .Kind .Description}}
{{end}}{{separator}}
`

	t, err := template.New("worksheets").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, listing{Title: title, Worksheets: worksheets})
}
