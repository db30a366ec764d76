package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/srivatsav-tech/hubspot-data/pkg/models/api"
)

const (
	FormatTable = "table"
	FormatCSV   = "csv"
)

type TableConfig struct {
	NameWidth  int
	CellWidth  int
	StageWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:  32,
		CellWidth:  16,
		StageWidth: 24,
	}
}

// Reporter renders analysis results to the console, either as aligned text
// tables or as raw CSV for piping into other tools.
type Reporter struct {
	writer io.Writer
	format string
	config TableConfig
}

func NewReporter(writer io.Writer, format string) (*Reporter, error) {
	if writer == nil {
		writer = os.Stdout
	}
	if format == "" {
		format = FormatTable
	}
	if format != FormatTable && format != FormatCSV {
		return nil, fmt.Errorf("unknown output format %q, expected %q or %q", format, FormatTable, FormatCSV)
	}
	return &Reporter{
		writer: writer,
		format: format,
		config: DefaultTableConfig(),
	}, nil
}

func (r *Reporter) Matrix(m api.Matrix) error {
	header := append([]string{"deal"}, periodKeys(m.Periods)...)
	rows := make([][]string, 0, len(m.Rows))
	for _, row := range m.Rows {
		name := row.DealName
		if name == "" {
			name = row.DealID
		}
		rows = append(rows, append([]string{name}, row.Cells...))
	}

	if r.format == FormatCSV {
		return r.writeCSV(header, rows)
	}

	widths := append([]int{r.config.NameWidth}, repeatWidth(r.config.CellWidth, len(m.Periods))...)
	return r.writeTable(header, rows, widths)
}

func (r *Reporter) Stagnation(records []api.StagnationRecord) error {
	header := []string{"deal", "current stage", "stagnant", "periods"}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		name := rec.DealName
		if name == "" {
			name = rec.DealID
		}
		rows = append(rows, []string{
			name,
			rec.CurrentStage,
			strconv.Itoa(rec.StagnantPeriods),
			strconv.Itoa(rec.TotalPeriods),
		})
	}

	if r.format == FormatCSV {
		return r.writeCSV(header, rows)
	}
	widths := []int{r.config.NameWidth, r.config.StageWidth, 8, 8}
	return r.writeTable(header, rows, widths)
}

func (r *Reporter) Stages(stages []api.Stage) error {
	header := []string{"field", "stage"}
	rows := make([][]string, 0, len(stages))
	for _, s := range stages {
		rows = append(rows, []string{s.Field, s.Name})
	}

	if r.format == FormatCSV {
		return r.writeCSV(header, rows)
	}
	widths := []int{48, r.config.StageWidth}
	return r.writeTable(header, rows, widths)
}

func (r *Reporter) Snapshots(snapshots []api.Snapshot) error {
	header := []string{"id", "extracted at", "deals", "source"}
	rows := make([][]string, 0, len(snapshots))
	for _, s := range snapshots {
		rows = append(rows, []string{s.ID, s.ExtractedAt, strconv.Itoa(s.DealCount), s.Source})
	}

	if r.format == FormatCSV {
		return r.writeCSV(header, rows)
	}
	widths := []int{18, 22, 8, 48}
	return r.writeTable(header, rows, widths)
}

func (r *Reporter) writeCSV(header []string, rows [][]string) error {
	w := csv.NewWriter(r.writer)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (r *Reporter) writeTable(header []string, rows [][]string, widths []int) error {
	funcMap := template.FuncMap{
		"formatRow": func(cells []string) string {
			parts := make([]string, len(cells))
			for i, cell := range cells {
				parts[i] = fmt.Sprintf(" %-*s ", widths[i], truncate(cell, widths[i]))
			}
			return "|" + strings.Join(parts, "|") + "|"
		},
		"separator": func() string {
			parts := make([]string, len(widths))
			for i, w := range widths {
				parts[i] = strings.Repeat("-", w+2)
			}
			return "+" + strings.Join(parts, "+") + "+"
		},
	}

	tmpl := `{{separator}}
{{formatRow .Header}}
{{separator}}
{{range .Rows}}{{formatRow .}}
{{end}}{{separator}}
`

	t, err := template.New("table").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(r.writer, struct {
		Header []string
		Rows   [][]string
	}{Header: header, Rows: rows})
}

func periodKeys(periods []api.Period) []string {
	keys := make([]string, 0, len(periods))
	for _, p := range periods {
		keys = append(keys, p.Key)
	}
	return keys
}

func repeatWidth(w, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = w
	}
	return out
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
