package summary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"countryfx/internal/domain"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jszwec/csvutil"
)

// ErrRender marks a failure to render or persist the summary artifact.
var ErrRender = errors.New("summary render failed")

type Format string

const (
	FormatText     Format = "text"
	FormatHTML     Format = "html"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatHTML, FormatCSV, FormatMarkdown:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", ErrRender, s)
	}
}

// csvRow is one top country; the report-wide fields repeat on every row.
type csvRow struct {
	Rank            int    `csv:"rank"`
	Country         string `csv:"country"`
	EstimatedGDP    string `csv:"estimated_gdp"`
	TotalCountries  int    `csv:"total_countries"`
	LastRefreshedAt string `csv:"last_refreshed_at"`
}

func formatGDP(d domain.CountryGDP) string {
	if !d.EstimatedGDP.Valid {
		return "N/A"
	}
	return d.EstimatedGDP.Decimal.StringFixed(2)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.UTC().Format(time.RFC3339)
}

// Render writes report to w in the given format.
func Render(w io.Writer, report domain.SummaryReport, format Format) error {
	if format == FormatCSV {
		return renderCSV(w, report)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("Countries by estimated GDP")
	t.AppendHeader(table.Row{"#", "Country", "Estimated GDP"})
	for i, c := range report.TopCountries {
		t.AppendRow(table.Row{i + 1, c.Name, formatGDP(c)})
	}
	t.AppendFooter(table.Row{"", "Total countries", report.TotalCountries})
	t.SetCaption("Last refreshed: %s", formatTime(report.LastRefreshedAt))

	var out string
	switch format {
	case FormatHTML:
		out = t.RenderHTML()
	case FormatMarkdown:
		out = t.RenderMarkdown()
	default:
		out = t.Render()
	}
	if _, err := io.WriteString(w, out+"\n"); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}

func renderCSV(w io.Writer, report domain.SummaryReport) error {
	rows := make([]csvRow, 0, len(report.TopCountries))
	for i, c := range report.TopCountries {
		rows = append(rows, csvRow{
			Rank:            i + 1,
			Country:         c.Name,
			EstimatedGDP:    formatGDP(c),
			TotalCountries:  report.TotalCountries,
			LastRefreshedAt: formatTime(report.LastRefreshedAt),
		})
	}
	b, err := csvutil.Marshal(rows)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}

// FileGenerator renders the summary and replaces the file at path atomically.
type FileGenerator struct {
	path   string
	format Format
}

func NewFileGenerator(path string, format string) (*FileGenerator, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty summary path", ErrRender)
	}
	return &FileGenerator{path: path, format: f}, nil
}

func (g *FileGenerator) Path() string { return g.path }

func (g *FileGenerator) Generate(ctx context.Context, report domain.SummaryReport) error {
	var buf bytes.Buffer
	if err := Render(&buf, report, g.format); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return writeAtomic(g.path, buf.Bytes())
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("%w: create summary dir: %w", ErrRender, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrRender, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write summary: %w", ErrRender, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: close summary: %w", ErrRender, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: chmod summary: %w", ErrRender, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: replace summary: %w", ErrRender, err)
	}
	return nil
}
